// Package calllog records one entry per authenticated gateway call.
package calllog

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio-hub/gateway/internal/store"
	"github.com/portfolio-hub/gateway/pkg/models"
)

const unknown = "unknown"

// Runner spawns best-effort work outside the request path.
type Runner interface {
	Go(ctx context.Context, name string, fn func(ctx context.Context) error)
}

type Logger struct {
	store  store.CallLogStore
	runner Runner
	now    func() time.Time
}

func NewLogger(s store.CallLogStore, r Runner) *Logger {
	return &Logger{store: s, runner: r, now: time.Now}
}

// Log writes the entry in the background. Insert failures are logged by the
// runner and never reach the caller.
func (l *Logger) Log(r *http.Request, tokenID uuid.UUID, endpoint string, status int, elapsed time.Duration) {
	entry := &models.CallLog{
		ID:             uuid.New(),
		TokenID:        tokenID,
		Endpoint:       endpoint,
		Method:         r.Method,
		StatusCode:     status,
		ResponseTimeMS: elapsed.Milliseconds(),
		IPAddress:      ClientIP(r),
		UserAgent:      UserAgent(r),
		CreatedAt:      l.now().UTC(),
	}

	l.runner.Go(r.Context(), "call_log", func(ctx context.Context) error {
		if err := l.store.InsertCallLog(ctx, entry); err != nil {
			return fmt.Errorf("token %s: %w", entry.TokenID, err)
		}
		return nil
	})
}

// ClientIP returns the first X-Forwarded-For hop, then X-Real-IP, else "unknown".
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return unknown
}

func UserAgent(r *http.Request) string {
	if ua := r.Header.Get("User-Agent"); ua != "" {
		return ua
	}
	return unknown
}
