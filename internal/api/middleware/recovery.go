package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/portfolio-hub/gateway/internal/api/response"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := newStatusRecorder(w)
		defer func() {
			if p := recover(); p != nil {
				handlePanic(rec, r, p)
			}
		}()
		next.ServeHTTP(rec, r)
	})
}

// handlePanic logs a recovered panic with its stack and answers 500 unless a
// response has already started. attrs are appended to the log line.
func handlePanic(rec *statusRecorder, r *http.Request, p any, attrs ...any) {
	args := []any{
		"error", p,
		"stack", string(debug.Stack()),
		"method", r.Method,
		"path", r.URL.Path,
	}
	slog.Error("panic recovered", append(args, attrs...)...)

	if !rec.wroteHeader {
		response.InternalError(rec, fmt.Sprint(p))
	}
}
