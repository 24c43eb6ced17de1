package models

import (
	"time"
)

// Project is the gateway's read-only view of a portfolio project.
type Project struct {
	ID               string     `db:"id"                 json:"id"`
	Title            string     `db:"title"              json:"title"`
	Description      *string    `db:"description"        json:"description"`
	Status           string     `db:"status"             json:"status"`
	LifecycleStatus  string     `db:"lifecycle_status"   json:"lifecycle_status"`
	Priority         *string    `db:"priority"           json:"priority"`
	PoleID           *string    `db:"pole_id"            json:"pole_id"`
	DirectionID      *string    `db:"direction_id"       json:"direction_id"`
	ServiceID        *string    `db:"service_id"         json:"service_id"`
	ProjectManagerID *string    `db:"project_manager_id" json:"project_manager_id"`
	StartDate        *time.Time `db:"start_date"         json:"start_date"`
	EndDate          *time.Time `db:"end_date"           json:"end_date"`
	SuiviDGS         bool       `db:"suivi_dgs"          json:"suivi_dgs"`
	CreatedAt        time.Time  `db:"created_at"         json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"         json:"updated_at"`
}

// Review is the most recent review snapshot of a project.
type Review struct {
	Weather    string    `db:"weather"    json:"weather"`
	Progress   *string   `db:"progress"   json:"progress"`
	Completion int       `db:"completion" json:"completion"`
	Comment    *string   `db:"comment"    json:"comment"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ProjectStatistics holds related-row counts for a project.
type ProjectStatistics struct {
	TeamMembers int `json:"team_members"`
	Tasks       int `json:"tasks"`
	Risks       int `json:"risks"`
}

// TeamMember is a project member with denormalized profile fields.
type TeamMember struct {
	UserID    string    `db:"user_id"    json:"user_id"`
	Email     *string   `db:"email"      json:"email"`
	FirstName *string   `db:"first_name" json:"first_name"`
	LastName  *string   `db:"last_name"  json:"last_name"`
	Role      string    `db:"role"       json:"role"`
	JoinedAt  time.Time `db:"joined_at"  json:"joined_at"`
}

// Task is a project task.
type Task struct {
	ID          string     `db:"id"          json:"id"`
	ProjectID   string     `db:"project_id"  json:"project_id"`
	Title       string     `db:"title"       json:"title"`
	Description *string    `db:"description" json:"description"`
	Status      string     `db:"status"      json:"status"`
	Priority    *string    `db:"priority"    json:"priority"`
	Assignee    *string    `db:"assignee"    json:"assignee"`
	StartDate   *time.Time `db:"start_date"  json:"start_date"`
	EndDate     *time.Time `db:"end_date"    json:"end_date"`
	CreatedAt   time.Time  `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"  json:"updated_at"`
}

// Risk is a project risk.
type Risk struct {
	ID             string    `db:"id"              json:"id"`
	ProjectID      string    `db:"project_id"      json:"project_id"`
	Title          string    `db:"title"           json:"title"`
	Description    *string   `db:"description"     json:"description"`
	Status         string    `db:"status"          json:"status"`
	Severity       string    `db:"severity"        json:"severity"`
	Probability    string    `db:"probability"     json:"probability"`
	MitigationPlan *string   `db:"mitigation_plan" json:"mitigation_plan"`
	CreatedAt      time.Time `db:"created_at"      json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"      json:"updated_at"`
}
