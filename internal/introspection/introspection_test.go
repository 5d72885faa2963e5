package introspection

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectTable(mock sqlmock.Sqlmock, table string, columns *sqlmock.Rows, pks *sqlmock.Rows, fks *sqlmock.Rows, indexes *sqlmock.Rows) {
	mock.ExpectQuery("FROM INFORMATION_SCHEMA.COLUMNS").
		WithArgs("blog", table).
		WillReturnRows(columns)
	mock.ExpectQuery("CONSTRAINT_NAME = 'PRIMARY'").
		WithArgs("blog", table).
		WillReturnRows(pks)
	mock.ExpectQuery("REFERENCED_TABLE_NAME IS NOT NULL").
		WithArgs("blog", table).
		WillReturnRows(fks)
	mock.ExpectQuery("FROM INFORMATION_SCHEMA.STATISTICS").
		WithArgs("blog", table).
		WillReturnRows(indexes)
}

func columnRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"COLUMN_NAME", "DATA_TYPE", "COLUMN_TYPE", "COLUMN_COMMENT", "IS_NULLABLE", "COLUMN_DEFAULT", "EXTRA"})
}

func fkRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"COLUMN_NAME", "REFERENCED_TABLE_NAME", "REFERENCED_COLUMN_NAME", "CONSTRAINT_NAME", "ORDINAL_POSITION"})
}

func indexRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"INDEX_NAME", "NON_UNIQUE", "SEQ_IN_INDEX", "COLUMN_NAME"})
}

func TestInspect(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM INFORMATION_SCHEMA.TABLES").
		WithArgs("blog").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME", "TABLE_COMMENT", "AUTO_INCREMENT"}).
			AddRow("posts", "", 11).
			AddRow("users", " people ", nil))

	expectTable(mock, "posts",
		columnRows().
			AddRow("id", "int", "int(11)", "", "NO", nil, "auto_increment").
			AddRow("title", "varchar", "varchar(255)", "", "NO", nil, "").
			AddRow("author_id", "varchar", "varchar(36)", "", "YES", nil, ""),
		sqlmock.NewRows([]string{"COLUMN_NAME"}).AddRow("id"),
		fkRows().AddRow("author_id", "users", "id", "posts_ibfk_1", 1),
		indexRows().
			AddRow("PRIMARY", 0, 1, "id").
			AddRow("idx_author", 1, 1, "author_id"),
	)
	expectTable(mock, "users",
		columnRows().
			AddRow("id", "varchar", "varchar(36)", "", "NO", nil, "").
			AddRow("email", "varchar", "varchar(255)", "login", "NO", "", ""),
		sqlmock.NewRows([]string{"COLUMN_NAME"}).AddRow("id"),
		fkRows(),
		indexRows().
			AddRow("PRIMARY", 0, 1, "id").
			AddRow("uniq_email", 0, 1, "email"),
	)

	schema, err := NewSQLInspector(db).Inspect(context.Background(), "blog")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, "blog", schema.Name)
	require.Len(t, schema.Tables, 2)

	posts, ok := schema.Table("posts")
	require.True(t, ok)
	require.Len(t, posts.Columns, 3)
	assert.True(t, posts.Columns[0].IsPrimaryKey)
	require.NotNil(t, posts.Columns[0].Sequence)
	assert.Equal(t, Sequence{Name: "posts_id_seq", Current: 11}, *posts.Columns[0].Sequence)
	assert.False(t, posts.Columns[1].IsNullable)
	assert.True(t, posts.Columns[2].IsNullable)
	require.NotNil(t, posts.Columns[2].ForeignKey)
	assert.Equal(t, ColumnReference{Table: "users", Column: "id"}, *posts.Columns[2].ForeignKey)
	require.Len(t, posts.Indexes, 2)
	assert.Equal(t, Index{Name: "PRIMARY", Unique: true, Columns: []string{"id"}}, posts.Indexes[0])
	assert.Equal(t, Index{Name: "idx_author", Unique: false, Columns: []string{"author_id"}}, posts.Indexes[1])

	users, ok := schema.Table("users")
	require.True(t, ok)
	assert.Equal(t, "people", users.Comment)
	assert.Equal(t, "login", users.Columns[1].Comment)
	assert.True(t, users.Columns[1].HasDefault)
	assert.Nil(t, users.Columns[0].Sequence)
	assert.Nil(t, users.ForeignKeys)

	_, ok = schema.Table("comments")
	assert.False(t, ok)
}

func TestInspect_CompositeForeignKeyNotAttachedToColumn(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM INFORMATION_SCHEMA.TABLES").
		WithArgs("blog").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME", "TABLE_COMMENT", "AUTO_INCREMENT"}).AddRow("memberships", "", nil))
	expectTable(mock, "memberships",
		columnRows().
			AddRow("tenant_id", "int", "int", "", "NO", nil, "").
			AddRow("user_id", "int", "int", "", "NO", nil, ""),
		sqlmock.NewRows([]string{"COLUMN_NAME"}),
		fkRows().
			AddRow("tenant_id", "users", "tenant_id", "fk_user", 1).
			AddRow("user_id", "users", "id", "fk_user", 2),
		indexRows(),
	)

	schema, err := NewSQLInspector(db).Inspect(context.Background(), "blog")
	require.NoError(t, err)

	table := schema.Tables[0]
	assert.Len(t, table.ForeignKeys, 2)
	assert.Nil(t, table.Columns[0].ForeignKey)
	assert.Nil(t, table.Columns[1].ForeignKey)
}

func TestInspect_TableQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM INFORMATION_SCHEMA.TABLES").
		WithArgs("blog").
		WillReturnError(errors.New("connection reset"))

	_, err = NewSQLInspector(db).Inspect(context.Background(), "blog")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get tables")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestInspect_ColumnQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM INFORMATION_SCHEMA.TABLES").
		WithArgs("blog").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME", "TABLE_COMMENT", "AUTO_INCREMENT"}).AddRow("users", "", nil))
	mock.ExpectQuery("FROM INFORMATION_SCHEMA.COLUMNS").
		WithArgs("blog", "users").
		WillReturnError(errors.New("denied"))

	_, err = NewSQLInspector(db).Inspect(context.Background(), "blog")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get columns for users")
}
