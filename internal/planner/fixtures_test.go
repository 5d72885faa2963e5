package planner

import (
	"testing"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"
	"github.com/stretchr/testify/require"

	"query-engine/internal/models"
)

// blogSchema: User 1-n Post 1-n Comment, plus Person and Sheep for inflection.
func blogSchema(t *testing.T) *models.Schema {
	t.Helper()
	user := models.NewModel("User", "users",
		&models.ScalarField{Name: "id", Type: models.TypeString, IsID: true, IsRequired: true},
		&models.ScalarField{Name: "name", Type: models.TypeString},
		&models.RelationField{Name: "posts", IsList: true, RelatedModelName: "Post", LocalColumns: []string{"id"}, RemoteColumns: []string{"author_id"}},
	)
	post := models.NewModel("Post", "posts",
		&models.ScalarField{Name: "id", Type: models.TypeString, IsID: true, IsRequired: true},
		&models.ScalarField{Name: "title", Type: models.TypeString},
		&models.ScalarField{Name: "authorId", Column: "author_id", Type: models.TypeString},
		&models.RelationField{Name: "author", RelatedModelName: "User", LocalColumns: []string{"author_id"}, RemoteColumns: []string{"id"}},
		&models.RelationField{Name: "comments", IsList: true, RelatedModelName: "Comment", LocalColumns: []string{"id"}, RemoteColumns: []string{"post_id"}},
	)
	comment := models.NewModel("Comment", "comments",
		&models.ScalarField{Name: "id", Type: models.TypeInt, IsID: true, IsRequired: true},
		&models.ScalarField{Name: "body", Type: models.TypeString},
		&models.ScalarField{Name: "postId", Column: "post_id", Type: models.TypeString},
		&models.RelationField{Name: "post", IsRequired: true, RelatedModelName: "Post", LocalColumns: []string{"post_id"}, RemoteColumns: []string{"id"}},
	)
	person := models.NewModel("Person", "people",
		&models.ScalarField{Name: "id", Type: models.TypeInt, IsID: true, IsRequired: true},
	)
	sheep := models.NewModel("Sheep", "sheep",
		&models.ScalarField{Name: "id", Type: models.TypeInt, IsID: true, IsRequired: true},
	)

	schema, err := models.NewSchema(user, post, comment, person, sheep)
	require.NoError(t, err)
	return schema
}

func findModel(t *testing.T, schema *models.Schema, name string) *models.Model {
	t.Helper()
	m, ok := schema.FindModel(name)
	require.True(t, ok, "model %s", name)
	return m
}

// parseField returns the first top-level field of query.
func parseField(t *testing.T, query string) *ast.Field {
	t.Helper()
	doc, err := parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{
			Body: []byte(query),
			Name: "test",
		}),
	})
	require.NoError(t, err)
	require.NotEmpty(t, doc.Definitions)
	op, ok := doc.Definitions[0].(*ast.OperationDefinition)
	require.True(t, ok)
	require.NotEmpty(t, op.SelectionSet.Selections)
	field, ok := op.SelectionSet.Selections[0].(*ast.Field)
	require.True(t, ok)
	return field
}

func uint32Ptr(v uint32) *uint32 {
	return &v
}
