package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// CallLogger persists one entry per authenticated call.
type CallLogger interface {
	Log(r *http.Request, tokenID uuid.UUID, endpoint string, status int, elapsed time.Duration)
}

// CallRecorder logs every request that carries an authenticated token, with
// the status actually sent. It must run after Authenticate.
type CallRecorder struct {
	logger CallLogger
}

func NewCallRecorder(l CallLogger) *CallRecorder {
	return &CallRecorder{logger: l}
}

func (c *CallRecorder) Record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t, ok := GetToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := newStatusRecorder(w)

		defer func() {
			if p := recover(); p != nil {
				handlePanic(rec, r, p, "token_id", t.ID)
			}
			c.logger.Log(r, t.ID, r.URL.Path, rec.status, time.Since(start))
		}()

		next.ServeHTTP(rec, r)
	})
}
