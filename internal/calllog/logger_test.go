package calllog_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio-hub/gateway/internal/async"
	"github.com/portfolio-hub/gateway/internal/calllog"
	"github.com/portfolio-hub/gateway/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCallLogStore struct {
	entries []*models.CallLog
	err     error
}

func (f *fakeCallLogStore) InsertCallLog(_ context.Context, entry *models.CallLog) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func TestLog_WritesEntry(t *testing.T) {
	s := &fakeCallLogStore{}
	runner := async.NewRunner(time.Second)
	l := calllog.NewLogger(s, runner)
	tokenID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/projects?limit=5", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.Header.Set("User-Agent", "reporting-bot/1.0")

	l.Log(req, tokenID, "/api/projects", http.StatusOK, 42*time.Millisecond)
	require.NoError(t, runner.Wait(context.Background()))

	require.Len(t, s.entries, 1)
	e := s.entries[0]
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, tokenID, e.TokenID)
	assert.Equal(t, "/api/projects", e.Endpoint)
	assert.Equal(t, http.MethodGet, e.Method)
	assert.Equal(t, http.StatusOK, e.StatusCode)
	assert.Equal(t, int64(42), e.ResponseTimeMS)
	assert.Equal(t, "203.0.113.7", e.IPAddress)
	assert.Equal(t, "reporting-bot/1.0", e.UserAgent)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestLog_InsertFailureIsSwallowed(t *testing.T) {
	s := &fakeCallLogStore{err: errors.New("disk full")}
	runner := async.NewRunner(time.Second)
	l := calllog.NewLogger(s, runner)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	assert.NotPanics(t, func() {
		l.Log(req, uuid.New(), "/api/projects", http.StatusInternalServerError, time.Millisecond)
	})
	assert.NoError(t, runner.Wait(context.Background()))
	assert.Empty(t, s.entries)
}

func TestLog_OutlivesRequestContext(t *testing.T) {
	s := &fakeCallLogStore{}
	runner := async.NewRunner(time.Second)
	l := calllog.NewLogger(s, runner)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil).WithContext(ctx)
	cancel()

	l.Log(req, uuid.New(), "/api/projects", http.StatusOK, time.Millisecond)
	require.NoError(t, runner.Wait(context.Background()))
	assert.Len(t, s.entries, 1)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded for first hop", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.2"}, "198.51.100.1"},
		{"forwarded for single", map[string]string{"X-Forwarded-For": " 198.51.100.9 "}, "198.51.100.9"},
		{"forwarded for wins over real ip", map[string]string{"X-Forwarded-For": "198.51.100.1", "X-Real-IP": "192.0.2.5"}, "198.51.100.1"},
		{"real ip", map[string]string{"X-Real-IP": "192.0.2.5"}, "192.0.2.5"},
		{"empty forwarded falls through", map[string]string{"X-Forwarded-For": " , 10.0.0.1", "X-Real-IP": "192.0.2.5"}, "192.0.2.5"},
		{"none", nil, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, calllog.ClientIP(req))
		})
	}
}

func TestUserAgent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Del("User-Agent")
	assert.Equal(t, "unknown", calllog.UserAgent(req))

	req.Header.Set("User-Agent", "curl/8.5.0")
	assert.Equal(t, "curl/8.5.0", calllog.UserAgent(req))
}
