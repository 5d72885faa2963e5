package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewLogger_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Level: "warn", Format: "json", Output: &buf})

	logger.Info("hidden")
	logger.WithFields(slog.String("table", "users")).Warn("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "users", entry["table"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(Config{Level: "info", Format: "text", Output: &buf}).WithRequestID("r1").Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "request_id=r1")
}

func TestNewLogger_WithProviderWritesLocally(t *testing.T) {
	var buf bytes.Buffer
	provider := sdklog.NewLoggerProvider()
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	logger := NewLogger(Config{Level: "info", Format: "json", Output: &buf, LoggerProvider: provider})
	logger.Info("exported")

	_, ok := logger.Handler().(*multiHandler)
	assert.True(t, ok)
	assert.Contains(t, buf.String(), `"msg":"exported"`)
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.NotNil(t, FromContext(ctx))
	assert.Empty(t, GetRequestID(ctx))

	logger := NewLogger(Config{Output: &bytes.Buffer{}})
	ctx = WithLogger(ctx, logger)
	ctx = WithRequestIDContext(ctx, "abc")
	assert.Same(t, logger, FromContext(ctx))
	assert.Equal(t, "abc", GetRequestID(ctx))
}
