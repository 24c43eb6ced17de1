package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	mw "github.com/portfolio-hub/gateway/internal/api/middleware"
	"github.com/portfolio-hub/gateway/internal/api/response"
	"github.com/portfolio-hub/gateway/internal/scope"
	"github.com/portfolio-hub/gateway/internal/store"
	"github.com/portfolio-hub/gateway/pkg/models"
)

const (
	msgProjectNotFound = "Project not found"
	msgProjectDenied   = "Access denied to this project"
)

// projectDetail is the body of GET /api/projects/{id}.
type projectDetail struct {
	Project    *models.Project          `json:"project"`
	LastReview *models.Review           `json:"last_review"`
	Statistics models.ProjectStatistics `json:"statistics"`
}

// NewListProjectsHandler returns an http.HandlerFunc for GET /api/projects.
func NewListProjectsHandler(s store.ProjectReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok, ok := mw.GetToken(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "Invalid, expired or inactive API key")
			return
		}

		filter := parseProjectFilter(r)
		filter.Scope = tok.Scopes
		filter.Normalize()

		projects, total, err := s.ListProjects(r.Context(), filter)
		if err != nil {
			upstreamError(w, "projects", err)
			return
		}

		response.Collection(w, projects, response.Pagination{
			Limit:  filter.Limit,
			Offset: filter.Offset,
			Total:  total,
		})
	}
}

// NewGetProjectHandler returns an http.HandlerFunc for GET /api/projects/{id}.
func NewGetProjectHandler(s store.ProjectReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := authorizeProject(w, r, s)
		if !ok {
			return
		}
		ctx := r.Context()

		project, err := s.GetProject(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, msgProjectNotFound)
			return
		}
		if err != nil {
			upstreamError(w, "project", err)
			return
		}

		review, err := s.GetLatestReview(ctx, id)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			upstreamError(w, "project", err)
			return
		}

		stats, err := s.GetProjectStatistics(ctx, id)
		if err != nil {
			upstreamError(w, "project", err)
			return
		}

		response.JSON(w, http.StatusOK, projectDetail{
			Project:    project,
			LastReview: review,
			Statistics: stats,
		})
	}
}

// NewProjectTeamHandler returns an http.HandlerFunc for GET /api/projects/{id}/team.
func NewProjectTeamHandler(s store.ProjectReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := authorizeProject(w, r, s)
		if !ok {
			return
		}

		members, err := s.ListProjectMembers(r.Context(), id)
		if err != nil {
			upstreamError(w, "team members", err)
			return
		}
		response.Data(w, members)
	}
}

// NewProjectTasksHandler returns an http.HandlerFunc for GET /api/projects/{id}/tasks.
func NewProjectTasksHandler(s store.ProjectReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := authorizeProject(w, r, s)
		if !ok {
			return
		}

		q := r.URL.Query()
		tasks, err := s.ListProjectTasks(r.Context(), store.TaskFilter{
			ProjectID: id,
			Status:    q.Get("status"),
			Assignee:  q.Get("assignee"),
		})
		if err != nil {
			upstreamError(w, "tasks", err)
			return
		}
		response.Data(w, tasks)
	}
}

// NewProjectRisksHandler returns an http.HandlerFunc for GET /api/projects/{id}/risks.
func NewProjectRisksHandler(s store.ProjectReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := authorizeProject(w, r, s)
		if !ok {
			return
		}

		q := r.URL.Query()
		risks, err := s.ListProjectRisks(r.Context(), store.RiskFilter{
			ProjectID:   id,
			Status:      q.Get("status"),
			Severity:    q.Get("severity"),
			Probability: q.Get("probability"),
		})
		if err != nil {
			upstreamError(w, "risks", err)
			return
		}
		response.Data(w, risks)
	}
}

// authorizeProject resolves the {id} path parameter and writes the error
// response when the caller may not read it. Existence is checked before
// scope, and both before any child rows are read.
func authorizeProject(w http.ResponseWriter, r *http.Request, s store.ProjectReader) (string, bool) {
	tok, ok := mw.GetToken(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Invalid, expired or inactive API key")
		return "", false
	}
	id := chi.URLParam(r, "id")

	exists, err := projectExists(r.Context(), s, id)
	if err != nil {
		upstreamError(w, "project", err)
		return "", false
	}
	if !exists {
		response.Error(w, http.StatusNotFound, msgProjectNotFound)
		return "", false
	}
	if !scope.IsAuthorizedForProject(tok.Scopes, id) {
		response.Error(w, http.StatusForbidden, msgProjectDenied)
		return "", false
	}
	return id, true
}

func projectExists(ctx context.Context, s store.ProjectReader, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	return s.ProjectExists(ctx, id)
}

func parseProjectFilter(r *http.Request) store.ProjectFilter {
	q := r.URL.Query()
	f := store.ProjectFilter{
		Status:          q.Get("status"),
		LifecycleStatus: q.Get("lifecycle_status"),
		PoleID:          q.Get("pole_id"),
		DirectionID:     q.Get("direction_id"),
		ServiceID:       q.Get("service_id"),
		Search:          q.Get("search"),
		Limit:           queryInt(q.Get("limit"), store.DefaultProjectLimit),
		Offset:          queryInt(q.Get("offset"), 0),
	}
	if v := q.Get("suivi_dgs"); v != "" {
		monitored := v == "true"
		f.SuiviDGS = &monitored
	}
	return f
}

func queryInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// upstreamError reports a failed data-store call with its message for diagnostics.
func upstreamError(w http.ResponseWriter, resource string, err error) {
	response.ErrorWithDetails(w, http.StatusInternalServerError, "Failed to fetch "+resource, err.Error())
}
