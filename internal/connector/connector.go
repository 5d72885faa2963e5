// Package connector executes query plan trees against a MySQL-compatible
// database and returns execution result trees. Every plan node becomes one
// parameterized SELECT; relation queries run once per parent row so nested
// results stay positionally aligned with the rows that own them.
package connector

import (
	"context"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"go.opentelemetry.io/otel/attribute"

	"query-engine/internal/dbexec"
	"query-engine/internal/logging"
	"query-engine/internal/planner"
	"query-engine/internal/result"
)

// Connector runs planned queries through a QueryExecutor.
type Connector struct {
	exec dbexec.QueryExecutor
}

// New creates a connector backed by exec.
func New(exec dbexec.QueryExecutor) *Connector {
	return &Connector{exec: exec}
}

// Execute runs a top-level query tree. Only single and multi queries can be
// executed directly; relation queries need a parent row.
func (c *Connector) Execute(ctx context.Context, q planner.Query) (res result.Result, err error) {
	if q == nil {
		return nil, fmt.Errorf("query is nil")
	}
	ctx, span := startSpan(ctx, "connector.execute",
		attribute.String("query.name", q.QueryName()),
		attribute.String("db.table", q.QueryModel().TableName()),
	)
	run := &execution{exec: c.exec, logger: logging.FromContext(ctx)}
	defer func() {
		span.SetAttributes(attribute.Int("db.statement_count", run.statements))
		finishSpan(span, err)
	}()

	switch query := q.(type) {
	case *planner.SingleQuery:
		return run.single(ctx, query)
	case *planner.MultiQuery:
		return run.multi(ctx, query)
	default:
		return nil, fmt.Errorf("cannot execute %T without a parent record", q)
	}
}

// execution holds the state of one top-level Execute call.
type execution struct {
	exec       dbexec.QueryExecutor
	logger     *logging.Logger
	statements int
}

func (e *execution) single(ctx context.Context, q *planner.SingleQuery) (result.Result, error) {
	proj := newProjection(q)
	stmt, err := toSQL(selectByKeys(proj, []string{q.Selector.Field.ColumnName()}, []any{q.Selector.Value}).Limit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to build query for %s: %w", q.Name, err)
	}

	rows, err := e.query(ctx, proj, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	out := &result.Single{Name: q.Name, FieldNames: proj.names}
	if len(rows) == 0 {
		return out, nil
	}

	record := proj.record(rows[0])
	out.Record = &record
	out.Nested, err = e.nested(ctx, q.Nested, proj, rows[0])
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *execution) multi(ctx context.Context, q *planner.MultiQuery) (result.Result, error) {
	proj := newProjection(q)
	builder, err := applyArguments(selectByKeys(proj, nil, nil), proj, q.Args)
	if err != nil {
		return nil, err
	}
	return e.list(ctx, q.Name, proj, builder, q.Nested)
}

func (e *execution) list(ctx context.Context, name string, proj *projection, builder sq.SelectBuilder, nested []planner.Query) (*result.Multi, error) {
	stmt, err := toSQL(builder)
	if err != nil {
		return nil, fmt.Errorf("failed to build query for %s: %w", name, err)
	}
	rows, err := e.query(ctx, proj, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}

	out := &result.Multi{
		Name:       name,
		FieldNames: proj.names,
		Records:    make([]result.Record, 0, len(rows)),
	}
	if len(nested) > 0 {
		out.Nested = make([][]result.Result, 0, len(rows))
	}
	for _, row := range rows {
		out.Records = append(out.Records, proj.record(row))
		if len(nested) == 0 {
			continue
		}
		children, err := e.nested(ctx, nested, proj, row)
		if err != nil {
			return nil, err
		}
		out.Nested = append(out.Nested, children)
	}
	return out, nil
}

// nested executes the relation queries of one parent row in plan order.
func (e *execution) nested(ctx context.Context, queries []planner.Query, parent *projection, row []any) ([]result.Result, error) {
	if len(queries) == 0 {
		return nil, nil
	}
	out := make([]result.Result, 0, len(queries))
	for _, q := range queries {
		var (
			res result.Result
			err error
		)
		switch query := q.(type) {
		case *planner.OneRelationQuery:
			res, err = e.oneRelation(ctx, query, parent.values(row, query.Parent.LocalColumns))
		case *planner.ManyRelationQuery:
			res, err = e.manyRelation(ctx, query, parent.values(row, query.Parent.LocalColumns))
		default:
			err = fmt.Errorf("%w: %T nested under a record", planner.ErrInvariant, q)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (e *execution) oneRelation(ctx context.Context, q *planner.OneRelationQuery, keys []any) (result.Result, error) {
	proj := newProjection(q)
	out := &result.Single{
		Name:       q.Name,
		FieldNames: proj.names,
		Optional:   !q.Parent.IsRequired,
	}
	if hasNil(keys) {
		out.Optional = true
		return out, nil
	}

	stmt, err := toSQL(selectByKeys(proj, q.Parent.RemoteColumns, keys).Limit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to build query for %s: %w", q.Name, err)
	}
	rows, err := e.query(ctx, proj, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return out, nil
	}

	record := proj.record(rows[0])
	out.Record = &record
	out.Nested, err = e.nested(ctx, q.Nested, proj, rows[0])
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *execution) manyRelation(ctx context.Context, q *planner.ManyRelationQuery, keys []any) (result.Result, error) {
	proj := newProjection(q)
	if hasNil(keys) {
		return &result.Multi{Name: q.Name, FieldNames: proj.names, Records: []result.Record{}}, nil
	}
	builder, err := applyArguments(selectByKeys(proj, q.Parent.RemoteColumns, keys), proj, q.Args)
	if err != nil {
		return nil, err
	}
	return e.list(ctx, q.Name, proj, builder, q.Nested)
}

// query runs one statement and returns the converted rows.
func (e *execution) query(ctx context.Context, proj *projection, query string, args ...any) ([][]any, error) {
	e.statements++
	e.logger.Debug("executing query",
		slog.String("table", proj.model.TableName()),
		slog.String("sql", query),
		slog.Int("args", len(args)),
	)

	rows, err := e.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", proj.model.TableName(), classifyError(err))
	}
	defer func() {
		_ = rows.Close()
	}()

	out, err := scanRows(rows, proj.fields)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", proj.model.TableName(), classifyError(err))
	}
	return out, nil
}

func hasNil(values []any) bool {
	for _, v := range values {
		if v == nil {
			return true
		}
	}
	return false
}
