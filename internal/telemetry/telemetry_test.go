package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestInit_WithoutEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	shutdown, err := Init(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestParseSampler(t *testing.T) {
	assert.Equal(t, "AlwaysOnSampler", parseSampler("always_on", "").Description())
	assert.Equal(t, "AlwaysOffSampler", parseSampler("ALWAYS_OFF", "").Description())
	assert.Equal(t, "TraceIDRatioBased{0.25}", parseSampler("traceidratio", "0.25").Description())
	assert.Equal(t, "AlwaysOnSampler", parseSampler("traceidratio", "7").Description())
	assert.Contains(t, parseSampler("", "").Description(), "ParentBased")
}

func TestNormalizeServiceName(t *testing.T) {
	assert.Equal(t, "portfolio-gateway", normalizeServiceName("  "))
	assert.Equal(t, "edge", normalizeServiceName(" edge "))
}

func TestHTTPMiddleware_StartsSpan(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	shutdown, err := Init(context.Background(), "test-gateway")
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	var valid bool
	h := HTTPMiddleware("test-gateway")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		valid = trace.SpanContextFromContext(r.Context()).IsValid()
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/projects", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, valid)
}
