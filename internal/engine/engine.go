// Package engine runs a whole request: it plans every top-level field,
// executes the plans through an Executor and assembles the result trees
// into one response. Top-level fields fail independently of each other.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/graphql-go/graphql/language/ast"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"query-engine/internal/gqlrequest"
	"query-engine/internal/ir"
	"query-engine/internal/logging"
	"query-engine/internal/models"
	"query-engine/internal/naming"
	"query-engine/internal/observability"
	"query-engine/internal/planner"
	"query-engine/internal/result"
)

// Executor runs one planned top-level query.
type Executor interface {
	Execute(ctx context.Context, q planner.Query) (result.Result, error)
}

// Engine is safe for concurrent use; all per-request state lives in Execute.
type Engine struct {
	schema      *models.Schema
	executor    Executor
	namer       *naming.Namer
	limits      planner.PlanLimits
	parallelism int
	metrics     *observability.EngineMetrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithNamer sets the naming conventions used to recognize entry points.
func WithNamer(namer *naming.Namer) Option {
	return func(e *Engine) {
		e.namer = namer
	}
}

// WithLimits bounds the size of each planned query tree.
func WithLimits(limits planner.PlanLimits) Option {
	return func(e *Engine) {
		e.limits = limits
	}
}

// WithParallelism executes up to n top-level queries of one request
// concurrently. Values below 2 execute them one after another.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		e.parallelism = n
	}
}

// WithMetrics records engine metrics.
func WithMetrics(metrics *observability.EngineMetrics) Option {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

// New creates an engine over schema that executes plans with executor.
func New(schema *models.Schema, executor Executor, opts ...Option) (*Engine, error) {
	if schema == nil {
		return nil, fmt.Errorf("schema is required")
	}
	if executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	e := &Engine{
		schema:      schema,
		executor:    executor,
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.namer == nil {
		e.namer = naming.Default()
	}
	return e, nil
}

// task is one top-level field of a request.
type task struct {
	name  string
	query planner.Query
	res   result.Result
	err   error
}

// ExecuteQuery analyzes and executes a query document.
func (e *Engine) ExecuteQuery(ctx context.Context, query string, variables map[string]any) *Response {
	analysis := gqlrequest.AnalyzeEnvelope(gqlrequest.Envelope{Query: query, DocumentSizeBytes: len(query)})
	if analysis.Err() == nil && variables != nil {
		analysis.Variables = variables
	}
	return e.Execute(ctx, analysis)
}

// Execute runs the operation selected by analysis.
func (e *Engine) Execute(ctx context.Context, analysis *gqlrequest.Analysis) *Response {
	start := time.Now()
	ctx, span := otel.Tracer("query-engine/engine").Start(ctx, "engine.execute",
		trace.WithAttributes(observability.RequestSpanAttributes(analysis)...))
	defer span.End()

	e.metrics.IncrementActiveRequests(ctx)
	defer e.metrics.DecrementActiveRequests(ctx)

	logger := logging.FromContext(ctx).WithFields(observability.RequestLogFields(ctx, analysis)...)
	resp := e.execute(logging.WithLogger(ctx, logger), analysis)

	hasErrors := len(resp.Errors) > 0
	if hasErrors {
		span.SetStatus(codes.Error, resp.Errors[0].Message)
	}
	span.SetAttributes(attribute.Int("engine.error_count", len(resp.Errors)))
	e.metrics.RecordRequest(ctx, time.Since(start), hasErrors)
	return resp
}

func (e *Engine) execute(ctx context.Context, analysis *gqlrequest.Analysis) *Response {
	if analysis == nil {
		return requestError(fmt.Errorf("request is nil"))
	}
	if err := analysis.Err(); err != nil {
		return requestError(&planner.QueryValidationError{Message: err.Error()})
	}
	if analysis.OperationType != string(ast.OperationTypeQuery) {
		return requestError(&planner.UnsupportedError{Construct: analysis.OperationType})
	}
	e.metrics.RecordDepth(ctx, analysis.SelectionDepth)

	tasks := e.plan(ctx, analysis)
	e.run(ctx, tasks)

	start := time.Now()
	builder := ir.NewBuilder()
	for _, t := range tasks {
		if t.err != nil {
			builder.AddError(t.name, t.err)
			continue
		}
		builder.Add(t.res)
	}
	responses := builder.Build()
	e.metrics.RecordIRBuild(ctx, time.Since(start))

	logger := logging.FromContext(ctx)
	for i, r := range responses {
		outcome := "success"
		if r.Err != nil {
			outcome = "error"
			class := errorClass(r.Err)
			e.metrics.RecordError(ctx, class)
			logger.Warn("top-level query failed",
				slog.String("field", r.Name),
				slog.String("error_class", class),
				slog.String("error", r.Err.Error()),
			)
		}
		e.metrics.RecordQuery(ctx, queryKind(tasks[i].query), outcome)
	}
	return newResponse(responses)
}

// plan plans every top-level field in request order. Fields that are not
// entry points are skipped; failures are kept as tasks so they keep their
// position in the response.
func (e *Engine) plan(ctx context.Context, analysis *gqlrequest.Analysis) []*task {
	opts := []planner.PlanOption{
		planner.WithNamer(e.namer),
		planner.WithVariables(analysis.Variables),
		planner.WithLimits(e.limits),
	}

	logger := logging.FromContext(ctx)
	seen := make(map[string]bool)
	var tasks []*task
	for _, selection := range analysis.RootFields() {
		field, ok := selection.(*ast.Field)
		if !ok {
			tasks = append(tasks, &task{err: &planner.UnsupportedError{Construct: "fragment"}})
			continue
		}

		name := field.Name.Value
		if seen[name] {
			tasks = append(tasks, &task{name: name, err: &planner.QueryValidationError{Message: fmt.Sprintf("field %s is selected more than once", name)}})
			continue
		}
		seen[name] = true

		q, err := planner.PlanQuery(e.schema, field, opts...)
		if err != nil {
			tasks = append(tasks, &task{name: name, err: err})
			continue
		}
		if q == nil {
			logger.Debug("skipping field without entry point", slog.String("field", name))
			continue
		}
		e.metrics.RecordPlan(ctx, planner.CountNodes(q), queryKind(q))
		tasks = append(tasks, &task{name: name, query: q})
	}
	return tasks
}

// run executes planned tasks. Every task records its own outcome, so one
// failure never cancels its siblings.
func (e *Engine) run(ctx context.Context, tasks []*task) {
	if e.parallelism < 2 {
		for _, t := range tasks {
			e.runTask(ctx, t)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(e.parallelism)
	for _, t := range tasks {
		g.Go(func() error {
			e.runTask(ctx, t)
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Engine) runTask(ctx context.Context, t *task) {
	if t.query == nil || t.err != nil {
		return
	}
	res, err := e.executor.Execute(ctx, t.query)
	if err != nil {
		t.err = err
		return
	}
	if res == nil {
		t.err = fmt.Errorf("executor returned no result for %s", t.name)
		return
	}
	t.res = res
}

func queryKind(q planner.Query) string {
	switch q.(type) {
	case *planner.SingleQuery:
		return planner.KindSingle.String()
	case *planner.MultiQuery:
		return planner.KindMulti.String()
	default:
		return planner.KindNone.String()
	}
}
