package connector

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"query-engine/internal/dbexec"
	"query-engine/internal/ir"
	"query-engine/internal/models"
	"query-engine/internal/planner"
	"query-engine/internal/result"
)

func testSchema(t *testing.T) *models.Schema {
	t.Helper()
	user := models.NewModel("User", "users",
		&models.ScalarField{Name: "id", Type: models.TypeString, IsID: true, IsRequired: true},
		&models.ScalarField{Name: "name", Type: models.TypeString},
		&models.ScalarField{Name: "age", Type: models.TypeInt},
		&models.ScalarField{Name: "active", Type: models.TypeBoolean},
		&models.RelationField{Name: "posts", IsList: true, RelatedModelName: "Post", LocalColumns: []string{"id"}, RemoteColumns: []string{"author_id"}},
	)
	post := models.NewModel("Post", "posts",
		&models.ScalarField{Name: "id", Type: models.TypeString, IsID: true, IsRequired: true},
		&models.ScalarField{Name: "title", Type: models.TypeString},
		&models.ScalarField{Name: "authorId", Column: "author_id", Type: models.TypeString},
		&models.RelationField{Name: "author", RelatedModelName: "User", LocalColumns: []string{"author_id"}, RemoteColumns: []string{"id"}},
	)
	tag := models.NewModel("Tag", "tags",
		&models.ScalarField{Name: "label", Type: models.TypeString},
	)
	schema, err := models.NewSchema(user, post, tag)
	require.NoError(t, err)
	return schema
}

func plan(t *testing.T, schema *models.Schema, query string) planner.Query {
	t.Helper()
	doc, err := parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{Body: []byte(query), Name: "test"}),
	})
	require.NoError(t, err)
	op := doc.Definitions[0].(*ast.OperationDefinition)
	q, err := planner.PlanQuery(schema, op.SelectionSet.Selections[0].(*ast.Field))
	require.NoError(t, err)
	require.NotNil(t, q)
	return q
}

func newMock(t *testing.T) (*Connector, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(dbexec.NewStandardExecutor(db)), mock
}

func TestExecute_SingleWithToManyRelation(t *testing.T) {
	schema := testSchema(t)
	conn, mock := newMock(t)

	mock.ExpectQuery("SELECT `id`, `name` FROM `users` WHERE `id` = ? LIMIT 1").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("u1", "Ann"))
	mock.ExpectQuery("SELECT `id`, `title` FROM `posts` WHERE `author_id` = ? ORDER BY `id` ASC").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow("p1", "A").AddRow("p2", "B"))

	res, err := conn.Execute(context.Background(), plan(t, schema, `{ user(id: "u1") { id name posts { id title } } }`))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	single, ok := res.(*result.Single)
	require.True(t, ok)
	assert.Equal(t, []string{"id", "name"}, single.FieldNames)
	require.NotNil(t, single.Record)
	assert.Equal(t, []any{"u1", "Ann"}, single.Record.Values)

	item, err := ir.Build(res)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"id":   "u1",
		"name": "Ann",
		"posts": []any{
			map[string]any{"id": "p1", "title": "A"},
			map[string]any{"id": "p2", "title": "B"},
		},
	}, item.Interface())
}

func TestExecute_MultiWithImplicitJoinColumn(t *testing.T) {
	schema := testSchema(t)
	conn, mock := newMock(t)

	mock.ExpectQuery("SELECT `title`, `author_id` FROM `posts` ORDER BY `title` DESC, `id` ASC LIMIT 2 OFFSET 1").
		WillReturnRows(sqlmock.NewRows([]string{"title", "author_id"}).AddRow("B", "u1").AddRow("A", nil))
	mock.ExpectQuery("SELECT `name` FROM `users` WHERE `id` = ? LIMIT 1").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Ann"))

	res, err := conn.Execute(context.Background(), plan(t, schema, `{ posts(first: 2, skip: 1, orderby: title_DESC) { title author { name } } }`))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	multi, ok := res.(*result.Multi)
	require.True(t, ok)
	assert.Equal(t, []string{"title"}, multi.FieldNames)
	require.Len(t, multi.Records, 2)
	assert.Equal(t, []any{"B"}, multi.Records[0].Values)
	require.Len(t, multi.Nested, 2)

	missing := multi.Nested[1][0].(*result.Single)
	assert.Nil(t, missing.Record)
	assert.True(t, missing.Optional)

	item, err := ir.Build(res)
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"title": "B", "author": map[string]any{"name": "Ann"}},
		map[string]any{"title": "A", "author": nil},
	}, item.Interface())
}

func TestExecute_SingleNotFound(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectQuery("SELECT `id` FROM `users` WHERE `id` = ? LIMIT 1").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	res, err := conn.Execute(context.Background(), plan(t, testSchema(t), `{ user(id: "nope") { id posts { id } } }`))
	require.NoError(t, err)
	single := res.(*result.Single)
	assert.Nil(t, single.Record)
	assert.False(t, single.Optional)
	assert.Empty(t, single.Nested)
}

func TestExecute_CursorAndSkipWindow(t *testing.T) {
	schema := testSchema(t)
	conn, mock := newMock(t)

	mock.ExpectQuery("SELECT `id` FROM `posts` WHERE `id` > ? ORDER BY `id` ASC LIMIT 3").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("p2"))
	_, err := conn.Execute(context.Background(), plan(t, schema, `{ posts(after: "p1", first: 3) { id } }`))
	require.NoError(t, err)

	mock.ExpectQuery("SELECT `id` FROM `posts` WHERE `id` < ? ORDER BY `id` ASC LIMIT 18446744073709551615 OFFSET 5").
		WithArgs("p9").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = conn.Execute(context.Background(), plan(t, schema, `{ posts(before: "p9", skip: 5) { id } }`))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_CursorWithoutIdentifier(t *testing.T) {
	conn, _ := newMock(t)

	_, err := conn.Execute(context.Background(), plan(t, testSchema(t), `{ tags(after: "x") { label } }`))
	var unsupported *planner.UnsupportedError
	require.True(t, errors.As(err, &unsupported))
}

func TestExecute_ConvertsTextProtocolValues(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectQuery("SELECT `age`, `active`, `name` FROM `users` ORDER BY `id` ASC").
		WillReturnRows(sqlmock.NewRows([]string{"age", "active", "name"}).
			AddRow([]byte("42"), []byte("1"), []byte("Ann")).
			AddRow(nil, int64(0), nil))

	res, err := conn.Execute(context.Background(), plan(t, testSchema(t), `{ users { age active name } }`))
	require.NoError(t, err)
	multi := res.(*result.Multi)
	assert.Equal(t, []any{int64(42), true, "Ann"}, multi.Records[0].Values)
	assert.Equal(t, []any{nil, false, nil}, multi.Records[1].Values)
}

func TestExecute_RelationsOnlySelectsIdentifier(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectQuery("SELECT `id` FROM `users` ORDER BY `id` ASC").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u1"))
	mock.ExpectQuery("SELECT `title` FROM `posts` WHERE `author_id` = ? ORDER BY `id` ASC").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"title"}))

	res, err := conn.Execute(context.Background(), plan(t, testSchema(t), `{ users { posts { title } } }`))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	multi := res.(*result.Multi)
	assert.Empty(t, multi.FieldNames)
	assert.Equal(t, []any{}, multi.Records[0].Values)
}

func TestExecute_AccessDenied(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectQuery("SELECT `id` FROM `users` ORDER BY `id` ASC").
		WillReturnError(&mysql.MySQLError{Number: 1142, Message: "SELECT command denied to user"})

	_, err := conn.Execute(context.Background(), plan(t, testSchema(t), `{ users { id } }`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAccessDenied))
	assert.Contains(t, err.Error(), "failed to query users")
}

func TestExecute_RejectsRelationAtTopLevel(t *testing.T) {
	schema := testSchema(t)
	conn, _ := newMock(t)
	user, _ := schema.FindModel("User")
	posts, err := user.FindFromRelation("posts")
	require.NoError(t, err)

	_, err = conn.Execute(context.Background(), &planner.ManyRelationQuery{Name: "posts", Parent: posts, Model: posts.RelatedModel()})
	require.Error(t, err)

	_, err = conn.Execute(context.Background(), nil)
	require.Error(t, err)
}

func TestExecute_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	conn, mock := newMock(t)
	mock.ExpectQuery("SELECT `id` FROM `users` WHERE `id` = ? LIMIT 1").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u1"))
	mock.ExpectQuery("SELECT `id` FROM `posts` WHERE `author_id` = ? ORDER BY `id` ASC").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := conn.Execute(context.Background(), plan(t, testSchema(t), `{ user(id: "u1") { id posts { id } } }`))
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "connector.execute", spans[0].Name())
	attrs := map[string]any{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "user", attrs["query.name"])
	assert.Equal(t, int64(2), attrs["db.statement_count"])
	assert.Equal(t, "success", attrs["connector.outcome"])
}
