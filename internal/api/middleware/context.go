package middleware

import (
	"context"
	"net/http"

	"github.com/portfolio-hub/gateway/pkg/models"
)

type contextKey string

const tokenKey contextKey = "api_token"

// WithToken stores the authenticated token on ctx.
func WithToken(ctx context.Context, t *models.APIToken) context.Context {
	return context.WithValue(ctx, tokenKey, t)
}

// TokenFromContext returns the token set by Authenticate.
func TokenFromContext(ctx context.Context) (*models.APIToken, bool) {
	t, ok := ctx.Value(tokenKey).(*models.APIToken)
	return t, ok && t != nil
}

// GetToken is TokenFromContext for handlers.
func GetToken(r *http.Request) (*models.APIToken, bool) {
	return TokenFromContext(r.Context())
}
