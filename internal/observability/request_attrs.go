package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"query-engine/internal/gqlrequest"
)

// RequestSpanAttributes describes an analyzed request as span attributes.
func RequestSpanAttributes(analysis *gqlrequest.Analysis) []attribute.KeyValue {
	if analysis == nil {
		return nil
	}
	attrs := make([]attribute.KeyValue, 0, 8)
	if analysis.OperationName != "" {
		attrs = append(attrs, attribute.String("graphql.operation.name", analysis.OperationName))
	}
	if analysis.OperationType != "" {
		attrs = append(attrs, attribute.String("graphql.operation.type", analysis.OperationType))
	}
	if analysis.OperationHash != "" {
		attrs = append(attrs, attribute.String("graphql.operation.hash", analysis.OperationHash))
	}
	if analysis.Envelope.DocumentSizeBytes > 0 {
		attrs = append(attrs, attribute.Int("graphql.document.size_bytes", analysis.Envelope.DocumentSizeBytes))
	}
	if analysis.Operation != nil {
		attrs = append(attrs,
			attribute.Int("graphql.query.root_fields", len(analysis.Operation.SelectionSet.Selections)),
			attribute.Int("graphql.query.field_count", analysis.FieldCount),
			attribute.Int("graphql.query.depth", analysis.SelectionDepth),
		)
	}
	return attrs
}

// RequestLogFields describes an analyzed request as structured log fields,
// adding the trace ID when ctx carries a valid span.
func RequestLogFields(ctx context.Context, analysis *gqlrequest.Analysis) []any {
	fields := make([]any, 0, 4)
	if analysis != nil {
		if analysis.OperationName != "" {
			fields = append(fields, slog.String("operation_name", analysis.OperationName))
		}
		if analysis.OperationHash != "" {
			fields = append(fields, slog.String("operation_hash", analysis.OperationHash))
		}
	}

	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		fields = append(fields, slog.String("trace_id", spanCtx.TraceID().String()))
	}
	return fields
}
