package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"query-engine/internal/gqlrequest"
)

func TestRequestSpanAttributes(t *testing.T) {
	analysis := gqlrequest.AnalyzeEnvelope(gqlrequest.Envelope{
		Query:             `query Q { user(id: "u1") { id posts { id } } }`,
		DocumentSizeBytes: 40,
	})
	require.NoError(t, analysis.Err())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range RequestSpanAttributes(analysis) {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "Q", attrs["graphql.operation.name"].AsString())
	assert.Equal(t, "query", attrs["graphql.operation.type"].AsString())
	assert.NotEmpty(t, attrs["graphql.operation.hash"].AsString())
	assert.Equal(t, int64(1), attrs["graphql.query.root_fields"].AsInt64())
	assert.Equal(t, int64(4), attrs["graphql.query.field_count"].AsInt64())
	assert.Equal(t, int64(3), attrs["graphql.query.depth"].AsInt64())
}

func TestRequestSpanAttributesNil(t *testing.T) {
	assert.Empty(t, RequestSpanAttributes(nil))
}

func TestRequestLogFieldsIncludesTraceID(t *testing.T) {
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02, 0x03},
		SpanID:     trace.SpanID{0x0a},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	fields := RequestLogFields(ctx, &gqlrequest.Analysis{OperationName: "Q"})
	require.Len(t, fields, 2)
	assert.Equal(t, slog.String("operation_name", "Q"), fields[0])
	assert.Equal(t, slog.String("trace_id", spanCtx.TraceID().String()), fields[1])
}
