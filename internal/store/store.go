package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio-hub/gateway/pkg/models"
)

var ErrNotFound = errors.New("resource not found")

// TokenStore is the data access needed to validate API tokens.
type TokenStore interface {
	GetActiveTokenByHash(ctx context.Context, hash string) (*models.APIToken, error)
	UpdateTokenLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
}

// CallLogStore persists gateway call log entries.
type CallLogStore interface {
	InsertCallLog(ctx context.Context, entry *models.CallLog) error
}

// ProjectReader is the read-only portfolio data the resource handlers serve.
type ProjectReader interface {
	ListProjects(ctx context.Context, filter ProjectFilter) ([]*models.Project, int, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ProjectExists(ctx context.Context, id string) (bool, error)
	GetLatestReview(ctx context.Context, projectID string) (*models.Review, error)
	GetProjectStatistics(ctx context.Context, projectID string) (models.ProjectStatistics, error)
	ListProjectMembers(ctx context.Context, projectID string) ([]*models.TeamMember, error)
	ListProjectTasks(ctx context.Context, filter TaskFilter) ([]*models.Task, error)
	ListProjectRisks(ctx context.Context, filter RiskFilter) ([]*models.Risk, error)
}

// Store is the data access interface. All database operations go through here.
type Store interface {
	TokenStore
	CallLogStore
	ProjectReader

	Ping(ctx context.Context) error
	ListTokens(ctx context.Context) ([]*models.APIToken, error)
	ListCallLogs(ctx context.Context, tokenID uuid.UUID, limit int) ([]*models.CallLog, error)
}

const (
	DefaultProjectLimit = 50
	MaxProjectLimit     = 100
)

// ProjectFilter selects a page of projects. Scope narrows the result set
// before the caller-supplied equality filters apply.
type ProjectFilter struct {
	Scope           models.Scope
	Status          string
	LifecycleStatus string
	PoleID          string
	DirectionID     string
	ServiceID       string
	Search          string
	SuiviDGS        *bool
	Limit           int
	Offset          int
}

// Normalize clamps pagination to the supported range.
func (f *ProjectFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultProjectLimit
	}
	if f.Limit > MaxProjectLimit {
		f.Limit = MaxProjectLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

type TaskFilter struct {
	ProjectID string
	Status    string
	Assignee  string
}

type RiskFilter struct {
	ProjectID   string
	Status      string
	Severity    string
	Probability string
}
