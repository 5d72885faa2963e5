// Package introspection reads an existing database catalog from
// information_schema: tables, columns, primary keys, foreign keys, and
// indexes. The result feeds models.FromDatabase; it is not consulted while
// planning or serializing a query.
package introspection

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Column represents a database column
type Column struct {
	Name         string
	DataType     string
	ColumnType   string
	IsNullable   bool
	IsPrimaryKey bool
	HasDefault   bool
	Comment      string
	// ForeignKey is set when the column is the single column of a FK constraint.
	ForeignKey *ColumnReference
	// Sequence is set for auto-increment columns.
	Sequence *Sequence
}

// ColumnReference points at a column of another table.
type ColumnReference struct {
	Table  string
	Column string
}

// Sequence describes the auto-increment counter behind a column.
type Sequence struct {
	Name    string
	Current uint64
}

// Index represents a database index with ordered columns.
type Index struct {
	Name    string
	Unique  bool
	Columns []string
}

// ForeignKey is one column row of a foreign key constraint.
type ForeignKey struct {
	ColumnName       string // e.g., "author_id"
	ReferencedTable  string // e.g., "users"
	ReferencedColumn string // e.g., "id"
	ConstraintName   string // e.g., "posts_ibfk_1"
	OrdinalPosition  int    // Column position within the FK constraint
}

// Table represents a database table
type Table struct {
	Name        string
	Comment     string
	Columns     []Column
	ForeignKeys []ForeignKey
	Indexes     []Index
}

// Schema represents the inspected database schema
type Schema struct {
	Name   string
	Tables []Table
}

// Table looks a table up by name.
func (s *Schema) Table(name string) (*Table, bool) {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i], true
		}
	}
	return nil, false
}

// Queryer provides query access for schema introspection.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Inspector reads a database catalog.
type Inspector interface {
	Inspect(ctx context.Context, databaseName string) (*Schema, error)
}

// SQLInspector inspects a MySQL-compatible database through information_schema.
type SQLInspector struct {
	db Queryer
}

// NewSQLInspector creates an inspector backed by db.
func NewSQLInspector(db Queryer) *SQLInspector {
	return &SQLInspector{db: db}
}

// Inspect queries information_schema to discover base tables and their
// columns, keys, and indexes. Views are not supported and are skipped.
func (i *SQLInspector) Inspect(ctx context.Context, databaseName string) (*Schema, error) {
	ctx, span := startSpan(ctx, "introspection.inspect",
		attribute.String("db.name", databaseName),
	)
	defer span.End()

	schema := &Schema{Name: databaseName, Tables: []Table{}}

	tables, err := getTables(ctx, i.db, databaseName)
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}

	for _, info := range tables {
		table, err := inspectTable(ctx, i.db, databaseName, info)
		if err != nil {
			recordSpanError(span, err)
			return nil, err
		}
		schema.Tables = append(schema.Tables, table)
	}

	span.SetAttributes(attribute.Int("db.table_count", len(schema.Tables)))
	return schema, nil
}

func inspectTable(ctx context.Context, db Queryer, databaseName string, info tableInfo) (Table, error) {
	columns, err := getColumns(ctx, db, databaseName, info.Name)
	if err != nil {
		return Table{}, fmt.Errorf("failed to get columns for %s: %w", info.Name, err)
	}
	primaryKeys, err := getPrimaryKeys(ctx, db, databaseName, info.Name)
	if err != nil {
		return Table{}, fmt.Errorf("failed to get primary keys for table %s: %w", info.Name, err)
	}
	foreignKeys, err := getForeignKeys(ctx, db, databaseName, info.Name)
	if err != nil {
		return Table{}, fmt.Errorf("failed to get foreign keys for table %s: %w", info.Name, err)
	}
	indexes, err := getIndexes(ctx, db, databaseName, info.Name)
	if err != nil {
		return Table{}, fmt.Errorf("failed to get indexes for table %s: %w", info.Name, err)
	}

	pkSet := make(map[string]struct{}, len(primaryKeys))
	for _, pk := range primaryKeys {
		pkSet[pk] = struct{}{}
	}

	table := Table{
		Name:        info.Name,
		Comment:     info.Comment,
		Columns:     columns,
		ForeignKeys: foreignKeys,
		Indexes:     indexes,
	}
	for ci := range table.Columns {
		col := &table.Columns[ci]
		if _, ok := pkSet[col.Name]; ok {
			col.IsPrimaryKey = true
		}
		if col.Sequence != nil {
			col.Sequence.Name = info.Name + "_" + col.Name + "_seq"
			col.Sequence.Current = info.AutoIncrement
		}
	}
	for _, fk := range ForeignKeyConstraints(table) {
		if len(fk.ColumnNames) != 1 {
			continue
		}
		for ci := range table.Columns {
			if table.Columns[ci].Name == fk.ColumnNames[0] {
				table.Columns[ci].ForeignKey = &ColumnReference{Table: fk.ReferencedTable, Column: fk.ReferencedColumns[0]}
			}
		}
	}
	return table, nil
}

type tableInfo struct {
	Name          string
	Comment       string
	AutoIncrement uint64
}

// queryRows runs query inside a child span and hands each row to scan.
func queryRows(ctx context.Context, db Queryer, spanName string, attrs []attribute.KeyValue, query string, args []any, scan func(*sql.Rows) error) error {
	ctx, span := startSpan(ctx, spanName, attrs...)
	defer span.End()

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		recordSpanError(span, err)
		return err
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		if err := scan(rows); err != nil {
			recordSpanError(span, err)
			return err
		}
	}
	if err := rows.Err(); err != nil {
		recordSpanError(span, err)
		return err
	}
	return nil
}

func tableAttrs(databaseName, tableName string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("db.name", databaseName),
		attribute.String("db.table", tableName),
	}
}

func getTables(ctx context.Context, db Queryer, databaseName string) ([]tableInfo, error) {
	query := `
		SELECT TABLE_NAME, TABLE_COMMENT, AUTO_INCREMENT
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ?
		AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME
	`

	var tables []tableInfo
	err := queryRows(ctx, db, "introspection.get_tables",
		[]attribute.KeyValue{attribute.String("db.name", databaseName)},
		query, []any{databaseName},
		func(rows *sql.Rows) error {
			var info tableInfo
			var comment sql.NullString
			var autoIncrement sql.NullInt64
			if err := rows.Scan(&info.Name, &comment, &autoIncrement); err != nil {
				return err
			}
			if comment.Valid {
				info.Comment = strings.TrimSpace(comment.String)
			}
			if autoIncrement.Valid && autoIncrement.Int64 > 0 {
				info.AutoIncrement = uint64(autoIncrement.Int64)
			}
			tables = append(tables, info)
			return nil
		})
	return tables, err
}

func getColumns(ctx context.Context, db Queryer, databaseName, tableName string) ([]Column, error) {
	query := `
		SELECT
			COLUMN_NAME,
			DATA_TYPE,
			COLUMN_TYPE,
			COLUMN_COMMENT,
			IS_NULLABLE,
			COLUMN_DEFAULT,
			EXTRA
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`

	var columns []Column
	err := queryRows(ctx, db, "introspection.get_columns",
		tableAttrs(databaseName, tableName),
		query, []any{databaseName, tableName},
		func(rows *sql.Rows) error {
			var col Column
			var comment sql.NullString
			var isNullable string
			var columnDefault sql.NullString
			var extra string
			if err := rows.Scan(&col.Name, &col.DataType, &col.ColumnType, &comment, &isNullable, &columnDefault, &extra); err != nil {
				return err
			}
			if comment.Valid {
				col.Comment = strings.TrimSpace(comment.String)
			}
			col.IsNullable = strings.EqualFold(isNullable, "YES")
			col.HasDefault = columnDefault.Valid
			if strings.Contains(strings.ToLower(extra), "auto_increment") {
				col.Sequence = &Sequence{}
			}
			columns = append(columns, col)
			return nil
		})
	return columns, err
}

func getPrimaryKeys(ctx context.Context, db Queryer, databaseName, tableName string) ([]string, error) {
	query := `
		SELECT COLUMN_NAME
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = ?
		AND TABLE_NAME = ?
		AND CONSTRAINT_NAME = 'PRIMARY'
		ORDER BY ORDINAL_POSITION
	`

	var primaryKeys []string
	err := queryRows(ctx, db, "introspection.get_primary_keys",
		tableAttrs(databaseName, tableName),
		query, []any{databaseName, tableName},
		func(rows *sql.Rows) error {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			primaryKeys = append(primaryKeys, name)
			return nil
		})
	return primaryKeys, err
}

func getForeignKeys(ctx context.Context, db Queryer, databaseName, tableName string) ([]ForeignKey, error) {
	query := `
		SELECT
			COLUMN_NAME,
			REFERENCED_TABLE_NAME,
			REFERENCED_COLUMN_NAME,
			CONSTRAINT_NAME,
			ORDINAL_POSITION
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = ?
			AND TABLE_NAME = ?
			AND REFERENCED_TABLE_NAME IS NOT NULL
		ORDER BY CONSTRAINT_NAME, ORDINAL_POSITION
	`

	var foreignKeys []ForeignKey
	err := queryRows(ctx, db, "introspection.get_foreign_keys",
		tableAttrs(databaseName, tableName),
		query, []any{databaseName, tableName},
		func(rows *sql.Rows) error {
			var fk ForeignKey
			if err := rows.Scan(&fk.ColumnName, &fk.ReferencedTable, &fk.ReferencedColumn, &fk.ConstraintName, &fk.OrdinalPosition); err != nil {
				return err
			}
			foreignKeys = append(foreignKeys, fk)
			return nil
		})
	return foreignKeys, err
}

func getIndexes(ctx context.Context, db Queryer, databaseName, tableName string) ([]Index, error) {
	query := `
		SELECT
			INDEX_NAME,
			NON_UNIQUE,
			SEQ_IN_INDEX,
			COLUMN_NAME
		FROM INFORMATION_SCHEMA.STATISTICS
		WHERE TABLE_SCHEMA = ?
			AND TABLE_NAME = ?
		ORDER BY INDEX_NAME, SEQ_IN_INDEX
	`

	var order []string
	byName := make(map[string]*Index)
	err := queryRows(ctx, db, "introspection.get_indexes",
		tableAttrs(databaseName, tableName),
		query, []any{databaseName, tableName},
		func(rows *sql.Rows) error {
			var name string
			var nonUnique int
			var seq int
			var column string
			if err := rows.Scan(&name, &nonUnique, &seq, &column); err != nil {
				return err
			}
			idx, ok := byName[name]
			if !ok {
				idx = &Index{Name: name, Unique: nonUnique == 0}
				byName[name] = idx
				order = append(order, name)
			}
			idx.Columns = append(idx.Columns, column)
			return nil
		})
	if err != nil {
		return nil, err
	}

	indexes := make([]Index, 0, len(order))
	for _, name := range order {
		indexes = append(indexes, *byName[name])
	}
	return indexes, nil
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer("query-engine/introspection")
	ctx, span := tracer.Start(ctx, name)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

func recordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
