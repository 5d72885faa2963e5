package connector

import (
	"math"

	sq "github.com/Masterminds/squirrel"

	"query-engine/internal/models"
	"query-engine/internal/planner"
	"query-engine/internal/result"
	"query-engine/internal/sqlutil"
)

// SQLQuery represents a parameterized SQL statement and its arguments.
type SQLQuery struct {
	SQL  string
	Args []any
}

func toSQL(builder sq.SelectBuilder) (SQLQuery, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return SQLQuery{}, err
	}
	return SQLQuery{SQL: query, Args: args}, nil
}

// projection is the column list of one statement: the requested fields
// followed by implicit columns needed to join nested queries.
type projection struct {
	model     *models.Model
	fields    []planner.SelectedField
	names     []string
	requested []int
	byColumn  map[string]int
}

func newProjection(q planner.Query) *projection {
	model := q.QueryModel()
	selected := q.Selection()
	for _, child := range q.NestedQueries() {
		rel := parentRelation(child)
		if rel == nil {
			continue
		}
		for _, column := range rel.LocalColumns {
			selected = selected.WithImplicit(scalarForColumn(model, column))
		}
	}
	if len(selected.Fields) == 0 {
		// A statement needs at least one column even when only relations
		// or nothing at all was selected.
		if id := model.IDField(); id != nil {
			selected = selected.WithImplicit(id)
		} else if scalars := model.ScalarFields(); len(scalars) > 0 {
			selected = selected.WithImplicit(scalars[0])
		}
	}

	p := &projection{
		model:    model,
		fields:   selected.Fields,
		names:    selected.Names(),
		byColumn: make(map[string]int, len(selected.Fields)),
	}
	for i, f := range selected.Fields {
		if _, exists := p.byColumn[f.Field.ColumnName()]; !exists {
			p.byColumn[f.Field.ColumnName()] = i
		}
		if !f.Implicit {
			p.requested = append(p.requested, i)
		}
	}
	return p
}

// record keeps the requested values of row, dropping implicit columns.
func (p *projection) record(row []any) result.Record {
	values := make([]any, len(p.requested))
	for i, idx := range p.requested {
		values[i] = row[idx]
	}
	return result.Record{Values: values}
}

// values picks the given columns out of row.
func (p *projection) values(row []any, columns []string) []any {
	out := make([]any, len(columns))
	for i, column := range columns {
		if idx, ok := p.byColumn[column]; ok {
			out[i] = row[idx]
		}
	}
	return out
}

func parentRelation(q planner.Query) *models.RelationField {
	switch query := q.(type) {
	case *planner.OneRelationQuery:
		return query.Parent
	case *planner.ManyRelationQuery:
		return query.Parent
	default:
		return nil
	}
}

// scalarForColumn finds the field backed by column, or describes the bare
// column when the model does not expose it.
func scalarForColumn(model *models.Model, column string) *models.ScalarField {
	for _, f := range model.ScalarFields() {
		if f.ColumnName() == column {
			return f
		}
	}
	return &models.ScalarField{Name: column, Column: column}
}

// selectByKeys selects the projection from the model table, filtered by
// equality on each of columns.
func selectByKeys(p *projection, columns []string, values []any) sq.SelectBuilder {
	cols := make([]string, 0, len(p.fields))
	for _, f := range p.fields {
		cols = append(cols, sqlutil.QuoteIdentifier(f.Field.ColumnName()))
	}

	builder := sq.Select(cols...).
		From(sqlutil.QuoteIdentifier(p.model.TableName())).
		PlaceholderFormat(sq.Question)

	if len(columns) > 0 {
		eq := sq.Eq{}
		for i, column := range columns {
			eq[sqlutil.QuoteIdentifier(column)] = values[i]
		}
		builder = builder.Where(eq)
	}
	return builder
}

// applyArguments adds cursor filters, ordering and the window. Cursors are
// identifier values; rows are always ordered by the identifier last so
// windows are stable.
func applyArguments(builder sq.SelectBuilder, p *projection, args planner.QueryArguments) (sq.SelectBuilder, error) {
	id := p.model.IDField()
	if (args.After != nil || args.Before != nil) && id == nil {
		return builder, &planner.UnsupportedError{Construct: "cursor on model " + p.model.Name + " without identifier"}
	}

	if args.After != nil {
		builder = builder.Where(sq.Gt{sqlutil.QuoteIdentifier(id.ColumnName()): args.After.Value})
	}
	if args.Before != nil {
		builder = builder.Where(sq.Lt{sqlutil.QuoteIdentifier(id.ColumnName()): args.Before.Value})
	}

	if args.OrderBy != nil {
		builder = builder.OrderBy(sqlutil.QuoteIdentifier(args.OrderBy.Field.ColumnName()) + " " + args.OrderBy.SortOrder.String())
	}
	if id != nil && (args.OrderBy == nil || args.OrderBy.Field != id) {
		builder = builder.OrderBy(sqlutil.QuoteIdentifier(id.ColumnName()) + " ASC")
	}

	if args.First != nil {
		builder = builder.Limit(uint64(*args.First))
	}
	if args.Skip != nil {
		if args.First == nil {
			// MySQL has no OFFSET without LIMIT.
			builder = builder.Limit(math.MaxUint64)
		}
		builder = builder.Offset(uint64(*args.Skip))
	}
	return builder, nil
}
