package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/portfolio-hub/gateway/internal/scope"
	"github.com/portfolio-hub/gateway/pkg/models"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var tokenColumns = []string{
	"id", "name", "token_hash", "scopes", "is_active", "expires_at", "last_used_at", "created_at",
}

var callLogColumns = []string{
	"id", "token_id", "endpoint", "method", "status_code", "response_time_ms",
	"ip_address", "user_agent", "created_at",
}

var projectColumns = []string{
	"id", "title", "description", "status", "lifecycle_status", "priority",
	"pole_id", "direction_id", "service_id", "project_manager_id",
	"start_date", "end_date", "suivi_dgs", "created_at", "updated_at",
}

var taskColumns = []string{
	"id", "project_id", "title", "description", "status", "priority", "assignee",
	"start_date", "end_date", "created_at", "updated_at",
}

var riskColumns = []string{
	"id", "project_id", "title", "description", "status", "severity", "probability",
	"mitigation_plan", "created_at", "updated_at",
}

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	db DBInterface
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db DBInterface) *PostgresStore {
	return &PostgresStore{db: db}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// --- API Tokens ---

// GetActiveTokenByHash returns the active token whose stored digest equals hash.
// Expiry is left to the caller.
func (s *PostgresStore) GetActiveTokenByHash(ctx context.Context, hash string) (*models.APIToken, error) {
	query, args, err := psql.Select(tokenColumns...).
		From("api_tokens").
		Where(squirrel.Eq{"token_hash": hash, "is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build token query: %w", err)
	}
	var token models.APIToken
	if err := pgxscan.Get(ctx, s.db, &token, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get token by hash: %w", err)
	}
	return &token, nil
}

func (s *PostgresStore) UpdateTokenLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	query, args, err := psql.Update("api_tokens").
		Set("last_used_at", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build token update: %w", err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update token last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListTokens(ctx context.Context) ([]*models.APIToken, error) {
	query, args, err := psql.Select(tokenColumns...).
		From("api_tokens").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build token list: %w", err)
	}
	var tokens []*models.APIToken
	if err := pgxscan.Select(ctx, s.db, &tokens, query, args...); err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	return tokens, nil
}

// --- Call Logs ---

func (s *PostgresStore) InsertCallLog(ctx context.Context, entry *models.CallLog) error {
	query, args, err := psql.Insert("api_logs").
		Columns(callLogColumns...).
		Values(entry.ID, entry.TokenID, entry.Endpoint, entry.Method, entry.StatusCode,
			entry.ResponseTimeMS, entry.IPAddress, entry.UserAgent, entry.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build call log insert: %w", err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert call log: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListCallLogs(ctx context.Context, tokenID uuid.UUID, limit int) ([]*models.CallLog, error) {
	if limit <= 0 {
		limit = 50
	}
	query, args, err := psql.Select(callLogColumns...).
		From("api_logs").
		Where(squirrel.Eq{"token_id": tokenID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build call log list: %w", err)
	}
	var entries []*models.CallLog
	if err := pgxscan.Select(ctx, s.db, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list call logs: %w", err)
	}
	return entries, nil
}

// --- Projects ---

// ListProjects returns one page of projects visible to filter.Scope and the
// total number of matching rows before pagination.
func (s *PostgresStore) ListProjects(ctx context.Context, filter ProjectFilter) ([]*models.Project, int, error) {
	filter.Normalize()

	base := scope.NarrowListQuery(filter.Scope, psql.Select().From("projects"))
	base = applyProjectFilter(base, filter)

	countQuery, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build project count: %w", err)
	}
	var total int
	if err := s.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	dataQuery, dataArgs, err := base.Columns(projectColumns...).
		OrderBy("created_at DESC", "id").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build project list: %w", err)
	}
	projects := []*models.Project{}
	if err := pgxscan.Select(ctx, s.db, &projects, dataQuery, dataArgs...); err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	return projects, total, nil
}

func applyProjectFilter(q squirrel.SelectBuilder, f ProjectFilter) squirrel.SelectBuilder {
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": f.Status})
	}
	if f.LifecycleStatus != "" {
		q = q.Where(squirrel.Eq{"lifecycle_status": f.LifecycleStatus})
	}
	if f.PoleID != "" {
		q = q.Where(squirrel.Eq{"pole_id": f.PoleID})
	}
	if f.DirectionID != "" {
		q = q.Where(squirrel.Eq{"direction_id": f.DirectionID})
	}
	if f.ServiceID != "" {
		q = q.Where(squirrel.Eq{"service_id": f.ServiceID})
	}
	if f.SuiviDGS != nil {
		q = q.Where(squirrel.Eq{"suivi_dgs": *f.SuiviDGS})
	}
	if f.Search != "" {
		q = q.Where(squirrel.ILike{"title": "%" + escapeLike(f.Search) + "%"})
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (s *PostgresStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	query, args, err := psql.Select(projectColumns...).
		From("projects").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build project query: %w", err)
	}
	var p models.Project
	if err := pgxscan.Get(ctx, s.db, &p, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) ProjectExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check project exists: %w", err)
	}
	return exists, nil
}

// GetLatestReview returns ErrNotFound when the project has never been reviewed.
func (s *PostgresStore) GetLatestReview(ctx context.Context, projectID string) (*models.Review, error) {
	query, args, err := psql.Select("weather", "progress", "completion", "comment", "created_at").
		From("project_reviews").
		Where(squirrel.Eq{"project_id": projectID}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build review query: %w", err)
	}
	var r models.Review
	if err := pgxscan.Get(ctx, s.db, &r, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get latest review: %w", err)
	}
	return &r, nil
}

func (s *PostgresStore) GetProjectStatistics(ctx context.Context, projectID string) (models.ProjectStatistics, error) {
	var stats models.ProjectStatistics
	err := s.db.QueryRow(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM project_members WHERE project_id = $1),
		   (SELECT COUNT(*) FROM tasks WHERE project_id = $1),
		   (SELECT COUNT(*) FROM risks WHERE project_id = $1)`, projectID,
	).Scan(&stats.TeamMembers, &stats.Tasks, &stats.Risks)
	if err != nil {
		return models.ProjectStatistics{}, fmt.Errorf("get project statistics: %w", err)
	}
	return stats, nil
}

func (s *PostgresStore) ListProjectMembers(ctx context.Context, projectID string) ([]*models.TeamMember, error) {
	query, args, err := psql.Select(
		"pm.user_id", "p.email", "p.first_name", "p.last_name", "pm.role", "pm.joined_at",
	).
		From("project_members pm").
		LeftJoin("profiles p ON p.id = pm.user_id").
		Where(squirrel.Eq{"pm.project_id": projectID}).
		OrderBy("pm.joined_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build member query: %w", err)
	}
	members := []*models.TeamMember{}
	if err := pgxscan.Select(ctx, s.db, &members, query, args...); err != nil {
		return nil, fmt.Errorf("list project members: %w", err)
	}
	return members, nil
}

func (s *PostgresStore) ListProjectTasks(ctx context.Context, filter TaskFilter) ([]*models.Task, error) {
	q := psql.Select(taskColumns...).
		From("tasks").
		Where(squirrel.Eq{"project_id": filter.ProjectID})
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Assignee != "" {
		q = q.Where(squirrel.Eq{"assignee": filter.Assignee})
	}
	query, args, err := q.OrderBy("created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build task query: %w", err)
	}
	tasks := []*models.Task{}
	if err := pgxscan.Select(ctx, s.db, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("list project tasks: %w", err)
	}
	return tasks, nil
}

func (s *PostgresStore) ListProjectRisks(ctx context.Context, filter RiskFilter) ([]*models.Risk, error) {
	q := psql.Select(riskColumns...).
		From("risks").
		Where(squirrel.Eq{"project_id": filter.ProjectID})
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Severity != "" {
		q = q.Where(squirrel.Eq{"severity": filter.Severity})
	}
	if filter.Probability != "" {
		q = q.Where(squirrel.Eq{"probability": filter.Probability})
	}
	query, args, err := q.OrderBy("created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build risk query: %w", err)
	}
	risks := []*models.Risk{}
	if err := pgxscan.Select(ctx, s.db, &risks, query, args...); err != nil {
		return nil, fmt.Errorf("list project risks: %w", err)
	}
	return risks, nil
}
