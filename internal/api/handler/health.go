package handler

import (
	"context"
	"net/http"

	"github.com/portfolio-hub/gateway/internal/api/response"
)

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHealthHandler returns an http.HandlerFunc for GET /health. Nil
// dependencies are skipped so optional services need not be configured.
func NewHealthHandler(deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]string, len(deps))
		degraded := false

		for name, p := range deps {
			if p == nil {
				continue
			}
			checks[name] = "ok"
			if err := p.Ping(r.Context()); err != nil {
				checks[name] = "degraded"
				degraded = true
			}
		}

		if degraded {
			response.ErrorWithDetails(w, http.StatusServiceUnavailable,
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
