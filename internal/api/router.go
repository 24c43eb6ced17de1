package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/portfolio-hub/gateway/internal/api/handler"
	mw "github.com/portfolio-hub/gateway/internal/api/middleware"
	"github.com/portfolio-hub/gateway/internal/api/response"
	"github.com/portfolio-hub/gateway/internal/metrics"
	"github.com/portfolio-hub/gateway/internal/store"
	"github.com/portfolio-hub/gateway/pkg/models"
)

// uuidPattern only admits canonical UUID segments, so anything else falls
// through to not-found instead of reaching a handler.
const uuidPattern = `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`

const projectsPath = "/api/projects"

// Route binds a method and chi pattern to a handler and the data category
// the token must be allowed to read.
type Route struct {
	Method   string
	Pattern  string
	DataType string
	Handler  func(store.ProjectReader) http.HandlerFunc
}

// Routes is the gateway's route table, matched after prefix stripping.
var Routes = []Route{
	{http.MethodGet, projectsPath, models.DataTypeProjects, handler.NewListProjectsHandler},
	{http.MethodGet, projectsPath + "/{id:" + uuidPattern + "}", models.DataTypeProjects, handler.NewGetProjectHandler},
	{http.MethodGet, projectsPath + "/{id:" + uuidPattern + "}/team", models.DataTypeTeam, handler.NewProjectTeamHandler},
	{http.MethodGet, projectsPath + "/{id:" + uuidPattern + "}/tasks", models.DataTypeTasks, handler.NewProjectTasksHandler},
	{http.MethodGet, projectsPath + "/{id:" + uuidPattern + "}/risks", models.DataTypeRisks, handler.NewProjectRisksHandler},
}

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth         *mw.Auth
	CallRecorder *mw.CallRecorder
	RateLimit    *mw.RateLimit // nil disables rate limiting
	Metrics      *metrics.Metrics
	Tracing      func(http.Handler) http.Handler

	Projects      store.ProjectReader
	HealthHandler http.HandlerFunc

	RoutePrefixes []string
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	if deps.Tracing != nil {
		r.Use(deps.Tracing)
	}
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	if deps.Metrics != nil {
		r.Use(mw.Metrics(deps.Metrics))
	}
	r.Use(mw.CORS)
	r.Use(mw.StripPrefix(deps.RoutePrefixes))

	// Public
	if deps.HealthHandler != nil {
		r.Get("/health", deps.HealthHandler)
	}
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	// Authenticated: unknown paths and methods also authenticate and are logged.
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.CallRecorder.Record)
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}

		for _, rt := range Routes {
			r.With(mw.RequireDataType(rt.DataType)).Method(rt.Method, rt.Pattern, rt.Handler(deps.Projects))
		}

		r.NotFound(notFound)
		r.MethodNotAllowed(notFound)
	})

	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == projectsPath || strings.HasPrefix(r.URL.Path, projectsPath+"/") {
		response.Error(w, http.StatusNotFound, "Endpoint not found")
		return
	}
	response.Error(w, http.StatusNotFound, "Endpoint not found. Available endpoints: "+projectsPath)
}
