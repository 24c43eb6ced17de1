package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/portfolio-hub/gateway/internal/api/response"
	"github.com/portfolio-hub/gateway/internal/cache"
	"github.com/portfolio-hub/gateway/internal/metrics"
)

const (
	defaultRequestsPerMinute = 60
	rateLimitWindow          = 60 * time.Second
)

// RateLimit provides fixed-window per-token rate limiting via Redis.
type RateLimit struct {
	cache          cache.Cache
	requestsPerMin int
	metrics        *metrics.Metrics
	now            func() time.Time
}

// NewRateLimit creates a new RateLimit middleware. m may be nil.
func NewRateLimit(c cache.Cache, requestsPerMin int, m *metrics.Metrics) *RateLimit {
	if requestsPerMin <= 0 {
		requestsPerMin = defaultRequestsPerMinute
	}
	return &RateLimit{cache: c, requestsPerMin: requestsPerMin, metrics: m, now: time.Now}
}

// Limit applies rate limiting to the token set by Authenticate.
func (rl *RateLimit) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t, ok := GetToken(r)
		if !ok {
			// Authenticate did not run
			next.ServeHTTP(w, r)
			return
		}

		window := rl.now().Unix() / int64(rateLimitWindow.Seconds())
		count, err := rl.cache.IncrWithExpiry(r.Context(), cache.RateLimitKey(t.ID, window), rateLimitWindow)
		if err != nil {
			// On Redis error, allow the request (fail open)
			slog.Warn("rate limit check failed", "error", err, "token_id", t.ID)
			next.ServeHTTP(w, r)
			return
		}

		remaining := rl.requestsPerMin - int(count)
		if remaining < 0 {
			remaining = 0
		}
		resetTime := (window + 1) * int64(rateLimitWindow.Seconds())

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.requestsPerMin))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime, 10))

		if count > int64(rl.requestsPerMin) {
			if rl.metrics != nil {
				rl.metrics.RateLimited.Inc()
			}
			w.Header().Set("Retry-After", "60")
			response.Error(w, http.StatusTooManyRequests, "Too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}
