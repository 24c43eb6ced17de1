package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/portfolio-hub/gateway/internal/api/response"
	"github.com/portfolio-hub/gateway/internal/metrics"
	"github.com/portfolio-hub/gateway/internal/scope"
	"github.com/portfolio-hub/gateway/pkg/models"
)

const (
	msgCredentialMissing = "API key required. Use X-API-Key header or Authorization: Bearer token"
	msgCredentialInvalid = "Invalid, expired or inactive API key"
)

// TokenValidator resolves a raw secret to a usable token, or nil.
type TokenValidator interface {
	Validate(ctx context.Context, raw string) (*models.APIToken, error)
}

// Auth authenticates API tokens presented by callers.
type Auth struct {
	validator TokenValidator
	metrics   *metrics.Metrics
}

// NewAuth creates the middleware. m may be nil.
func NewAuth(v TokenValidator, m *metrics.Metrics) *Auth {
	return &Auth{validator: v, metrics: m}
}

// Authenticate reads the secret from X-API-Key or a Bearer Authorization
// header, validates it, and sets the token in the request context.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractCredential(r)
		if raw == "" {
			a.fail("missing")
			response.Error(w, http.StatusUnauthorized, msgCredentialMissing)
			return
		}

		t, err := a.validator.Validate(r.Context(), raw)
		if err != nil {
			slog.Error("token lookup failed", "error", err, "path", r.URL.Path)
			a.fail("error")
			response.InternalError(w, err.Error())
			return
		}
		if t == nil {
			a.fail("invalid")
			response.Error(w, http.StatusUnauthorized, msgCredentialInvalid)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithToken(r.Context(), t)))
	})
}

// RequireDataType returns middleware that checks whether the authenticated
// token may read the given data category.
func RequireDataType(dataType string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t, ok := GetToken(r)
			if !ok || !scope.AllowsDataType(t.Scopes, dataType) {
				response.Error(w, http.StatusForbidden, "Access denied to this data type")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Auth) fail(reason string) {
	if a.metrics != nil {
		a.metrics.AuthFailures.WithLabelValues(reason).Inc()
	}
}

// extractCredential prefers X-API-Key over the Authorization header.
func extractCredential(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		return key
	}
	return extractBearerToken(r)
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
