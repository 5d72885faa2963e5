package planner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanQuery_UserWithPosts(t *testing.T) {
	schema := blogSchema(t)
	user := findModel(t, schema, "User")
	post := findModel(t, schema, "Post")

	q, err := PlanQuery(schema, parseField(t, `{ user(id: "u1") { id name posts { id title } } }`))
	require.NoError(t, err)

	single, ok := q.(*SingleQuery)
	require.True(t, ok, "got %T", q)
	assert.Equal(t, "user", single.Name)
	assert.Same(t, user, single.Model)
	assert.Equal(t, "id", single.Selector.Field.Name)
	assert.Equal(t, "u1", single.Selector.Value)
	assert.Equal(t, []string{"id", "name"}, single.Selected.Names())

	require.Len(t, single.Nested, 1)
	posts, ok := single.Nested[0].(*ManyRelationQuery)
	require.True(t, ok, "got %T", single.Nested[0])
	assert.Equal(t, "posts", posts.QueryName())
	assert.Same(t, post, posts.Model)
	assert.Equal(t, "posts", posts.Parent.Name)
	assert.Same(t, posts.Parent, posts.Selected.Parent)
	assert.Equal(t, []string{"id", "title"}, posts.Selected.Names())
	assert.Empty(t, posts.Nested)
	assert.True(t, posts.Args.IsEmpty())
}

func TestPlanQuery_RepeatedScalarsProjectedOnce(t *testing.T) {
	schema := blogSchema(t)

	q, err := PlanQuery(schema, parseField(t, `{ user(id: "u1") { id id posts { id id } } }`))
	require.NoError(t, err)

	single, ok := q.(*SingleQuery)
	require.True(t, ok, "got %T", q)
	assert.Equal(t, []string{"id"}, single.Selected.Names())
	require.Len(t, single.Nested, 1)
	assert.Equal(t, []string{"id"}, single.Nested[0].Selection().Names())
}

func TestPlanQuery_MultiWithNestedChain(t *testing.T) {
	schema := blogSchema(t)

	q, err := PlanQuery(schema, parseField(t, `{
		posts(first: 2, orderby: title_ASC) {
			title
			comments(skip: 1) { body post { id } }
			author { name }
		}
	}`))
	require.NoError(t, err)

	multi, ok := q.(*MultiQuery)
	require.True(t, ok)
	assert.Equal(t, uint32Ptr(2), multi.Args.First)
	assert.Equal(t, "title", multi.Args.OrderBy.Field.Name)
	assert.Equal(t, 4, CountNodes(q))

	require.Len(t, multi.Nested, 2)
	comments, ok := multi.Nested[0].(*ManyRelationQuery)
	require.True(t, ok)
	assert.Equal(t, uint32Ptr(1), comments.Args.Skip)
	require.Len(t, comments.Nested, 1)
	back, ok := comments.Nested[0].(*OneRelationQuery)
	require.True(t, ok)
	assert.Equal(t, "post", back.Name)
	assert.Equal(t, "Post", back.Model.Name)

	author, ok := multi.Nested[1].(*OneRelationQuery)
	require.True(t, ok)
	assert.Equal(t, "author", author.QueryName())
	assert.Equal(t, []string{"name"}, author.Selection().Names())
	assert.Equal(t, "User", author.QueryModel().Name)
}

func TestPlanQuery_IrregularPlural(t *testing.T) {
	schema := blogSchema(t)

	q, err := PlanQuery(schema, parseField(t, `{ people { id } }`))
	require.NoError(t, err)
	multi, ok := q.(*MultiQuery)
	require.True(t, ok)
	assert.Equal(t, "Person", multi.Model.Name)
}

func TestPlanQuery_NotAnEntryPoint(t *testing.T) {
	schema := blogSchema(t)

	for _, query := range []string{`{ viewer { id } }`, `{ Users { id } }`, `{ author { id } }`} {
		q, err := PlanQuery(schema, parseField(t, query))
		require.NoError(t, err, query)
		assert.Nil(t, q, query)
	}
}

func TestPlanQuery_Errors(t *testing.T) {
	schema := blogSchema(t)

	tests := []struct {
		name    string
		query   string
		wantMsg string
	}{
		{name: "unknown top-level argument", query: `{ users(limit: 5) { id } }`, wantMsg: "unknown key: `limit`"},
		{name: "unknown nested argument", query: `{ users { posts(limit: 5) { id } } }`, wantMsg: "unknown key: `limit`"},
		{name: "to-one relation with arguments", query: `{ posts { author(id: "u1") { id } } }`, wantMsg: "relation field author does not accept arguments"},
		{name: "unknown nested field", query: `{ users { posts { rating } } }`, wantMsg: "selected field rating not found on model Post"},
		{name: "single without selector", query: `{ user { id } }`, wantMsg: "missing selector argument for model User"},
		{name: "argument after selector", query: `{ user(id: "u1", limit: 5) { id } }`, wantMsg: "unknown key: `limit`"},
		{name: "repeated relation", query: `{ user(id: "u1") { posts { id } posts { title } } }`, wantMsg: "relation posts is selected more than once on user"},
		{name: "where filter", query: `{ users(where: {name: "a"}) { id } }`, wantMsg: "unsupported construct: where"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := PlanQuery(schema, parseField(t, tt.query))
			require.Error(t, err)
			assert.Nil(t, q)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.True(t, IsUserError(err))
		})
	}
}

func TestPlanQuery_Variables(t *testing.T) {
	schema := blogSchema(t)
	field := parseField(t, `query($id: String, $n: Int) { user(id: $id) { posts(first: $n) { id } } }`)

	q, err := PlanQuery(schema, field, WithVariables(map[string]any{"id": "u3", "n": 4}))
	require.NoError(t, err)
	single := q.(*SingleQuery)
	assert.Equal(t, "u3", single.Selector.Value)
	assert.Equal(t, uint32Ptr(4), single.Nested[0].(*ManyRelationQuery).Args.First)
}

func TestPlanQuery_Limits(t *testing.T) {
	schema := blogSchema(t)
	field := parseField(t, `{ users { posts { comments { post { id } } } } }`)

	_, err := PlanQuery(schema, field, WithLimits(PlanLimits{MaxDepth: 4}))
	require.NoError(t, err)

	_, err = PlanQuery(schema, field, WithLimits(PlanLimits{MaxDepth: 3}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum depth of 3")

	wide := parseField(t, `{ posts { author { id } comments { id } } }`)
	_, err = PlanQuery(schema, wide, WithLimits(PlanLimits{MaxNodes: 2}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum of 2 nested queries")

	_, err = PlanQuery(schema, wide, WithLimits(PlanLimits{MaxNodes: 3}))
	require.NoError(t, err)
}

func TestPlanQuery_LimitsCheckedBeforeResolving(t *testing.T) {
	schema := blogSchema(t)
	field := parseField(t, `{ users { posts { nope { id } } } }`)

	_, err := PlanQuery(schema, field, WithLimits(PlanLimits{MaxDepth: 2}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum depth of 2")

	_, err = PlanQuery(schema, field)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "selected field nope not found")
}

func TestPlanQuery_RequiresSchemaAndField(t *testing.T) {
	_, err := PlanQuery(nil, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvariant))
}
