package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// EngineMetrics holds the query engine instruments.
type EngineMetrics struct {
	requestDuration metric.Float64Histogram
	requestCounter  metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
	queryCounter    metric.Int64Counter
	errorCounter    metric.Int64Counter
	planNodes       metric.Int64Histogram
	planDepth       metric.Int64Histogram
	irBuildDuration metric.Float64Histogram
}

// InitEngineMetrics creates the engine instruments on the global meter provider.
func InitEngineMetrics() (*EngineMetrics, error) {
	meter := otel.Meter("query-engine")

	requestDuration, err := meter.Float64Histogram(
		"engine.request.duration",
		metric.WithDescription("Duration of query requests in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request duration histogram: %w", err)
	}

	requestCounter, err := meter.Int64Counter(
		"engine.requests.total",
		metric.WithDescription("Total number of query requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"engine.requests.active",
		metric.WithDescription("Number of requests being executed"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create active requests counter: %w", err)
	}

	queryCounter, err := meter.Int64Counter(
		"engine.queries.total",
		metric.WithDescription("Top-level queries by kind and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create query counter: %w", err)
	}

	errorCounter, err := meter.Int64Counter(
		"engine.errors.total",
		metric.WithDescription("Failed top-level queries by error class"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create error counter: %w", err)
	}

	planNodes, err := meter.Int64Histogram(
		"engine.plan.nodes",
		metric.WithDescription("Number of query nodes in a planned tree"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create plan nodes histogram: %w", err)
	}

	planDepth, err := meter.Int64Histogram(
		"engine.plan.depth",
		metric.WithDescription("Selection depth of planned operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create plan depth histogram: %w", err)
	}

	irBuildDuration, err := meter.Float64Histogram(
		"engine.ir.build.duration",
		metric.WithDescription("Time spent assembling result trees in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create IR build duration histogram: %w", err)
	}

	return &EngineMetrics{
		requestDuration: requestDuration,
		requestCounter:  requestCounter,
		activeRequests:  activeRequests,
		queryCounter:    queryCounter,
		errorCounter:    errorCounter,
		planNodes:       planNodes,
		planDepth:       planDepth,
		irBuildDuration: irBuildDuration,
	}, nil
}

// RecordRequest records a request with its duration and whether any
// top-level query failed.
func (m *EngineMetrics) RecordRequest(ctx context.Context, duration time.Duration, hasErrors bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.Bool("has_errors", hasErrors))
	m.requestDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	m.requestCounter.Add(ctx, 1, attrs)
}

// RecordQuery records the outcome of one top-level query.
func (m *EngineMetrics) RecordQuery(ctx context.Context, kind, outcome string) {
	if m == nil {
		return
	}
	m.queryCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("query_kind", kind),
		attribute.String("outcome", outcome),
	))
}

// RecordError counts a failed top-level query by error class.
func (m *EngineMetrics) RecordError(ctx context.Context, class string) {
	if m == nil {
		return
	}
	m.errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("error_class", class)))
}

// RecordPlan records the size of a planned query tree.
func (m *EngineMetrics) RecordPlan(ctx context.Context, nodes int, kind string) {
	if m == nil {
		return
	}
	m.planNodes.Record(ctx, int64(nodes), metric.WithAttributes(attribute.String("query_kind", kind)))
}

// RecordDepth records the selection depth of an operation.
func (m *EngineMetrics) RecordDepth(ctx context.Context, depth int) {
	if m == nil {
		return
	}
	m.planDepth.Record(ctx, int64(depth))
}

// RecordIRBuild records how long result assembly took.
func (m *EngineMetrics) RecordIRBuild(ctx context.Context, duration time.Duration) {
	if m == nil {
		return
	}
	m.irBuildDuration.Record(ctx, float64(duration.Microseconds())/1000)
}

// IncrementActiveRequests increments the active requests counter
func (m *EngineMetrics) IncrementActiveRequests(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeRequests.Add(ctx, 1)
}

// DecrementActiveRequests decrements the active requests counter
func (m *EngineMetrics) DecrementActiveRequests(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeRequests.Add(ctx, -1)
}

// InitMetrics initializes the engine metrics and logs once they are ready.
func InitMetrics(logger *slog.Logger) (*EngineMetrics, error) {
	metrics, err := InitEngineMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize engine metrics: %w", err)
	}

	logger.Info("engine metrics initialized")
	return metrics, nil
}
