package serverapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"query-engine/internal/config"
)

func TestWrapHTTPHandler_UsesHTTPRootSpanName(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	tp.RegisterSpanProcessor(recorder)
	originalTP := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(originalTP)
	})

	cfg := &config.Config{
		Observability: config.ObservabilityConfig{TracingEnabled: true},
	}
	handler := wrapHTTPHandler(cfg, testLogger(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	assert.Contains(t, names, "POST /graphql")
}

func TestWrapHTTPHandler_PassThroughWhenDisabled(t *testing.T) {
	inner := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	handler := wrapHTTPHandler(&config.Config{}, testLogger(), inner)
	assert.NotNil(t, handler)
	_, wrapped := handler.(http.HandlerFunc)
	assert.True(t, wrapped, "handler is returned unchanged")
}

func TestNormalizeHTTPSpanRoute(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "/graphql", expected: "/graphql"},
		{input: "/health", expected: "/health"},
		{input: "/metrics", expected: "/metrics"},
		{input: "/", expected: "/"},
		{input: "/users/123", expected: "/*"},
		{input: "", expected: "/*"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizeHTTPSpanRoute(tt.input), tt.input)
	}
	assert.Equal(t, "HTTP /*", httpRootSpanName(nil))
}
