package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"query-engine/internal/gqlrequest"
	"query-engine/internal/logging"
)

func newBufferLogger(buf *bytes.Buffer) *logging.Logger {
	return &logging.Logger{Logger: slog.New(slog.NewJSONHandler(buf, nil))}
}

func TestLoggingMiddleware_GeneratesRequestID(t *testing.T) {
	var buf bytes.Buffer
	var seenID string
	var seenLogger *logging.Logger

	handler := LoggingMiddleware(newBufferLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = logging.GetRequestID(r.Context())
		seenLogger = logging.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql", nil))

	require.NotEmpty(t, seenID)
	assert.Equal(t, seenID, rec.Header().Get(RequestIDHeader))
	assert.NotNil(t, seenLogger)
	assert.Equal(t, http.StatusTeapot, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, seenID, entry["request_id"])
	assert.Equal(t, "http", entry["component"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])
	assert.EqualValues(t, 5, entry["bytes"])
}

func TestLoggingMiddleware_ReusesIncomingRequestID(t *testing.T) {
	var buf bytes.Buffer
	handler := LoggingMiddleware(newBufferLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req-123", logging.GetRequestID(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `"level":"INFO"`)
}

func TestRequestAnalysisMiddleware_PopulatesContextAndRewindsBody(t *testing.T) {
	var (
		seen     *gqlrequest.Analysis
		bodyCopy string
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = gqlrequest.AnalysisFromContext(r.Context())
		b, _ := io.ReadAll(r.Body)
		bodyCopy = string(b)
	})

	body := `{"query":"query Feed { posts(first: $n) { title } }","operationName":"Feed","variables":{"n":3}}`
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	RequestAnalysisMiddleware(1<<20)(next).ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, seen)
	require.NoError(t, seen.Err())
	assert.Equal(t, "query", seen.OperationType)
	assert.Equal(t, "Feed", seen.OperationName)
	assert.Equal(t, json.Number("3"), seen.Variables["n"])
	assert.NotEmpty(t, seen.OperationHash)
	assert.Equal(t, body, bodyCopy)
}

func TestRequestAnalysisMiddleware_BodyLimit(t *testing.T) {
	var seen *gqlrequest.Analysis
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = gqlrequest.AnalysisFromContext(r.Context())
	})

	body := `{"query":"{ users { id } }"}`
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	RequestAnalysisMiddleware(8)(next).ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, seen)
	require.Error(t, seen.DecodeError)
	var tooLarge *http.MaxBytesError
	assert.True(t, errors.As(seen.DecodeError, &tooLarge))
	assert.Error(t, seen.Err())
}
