package naming

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelName(t *testing.T) {
	namer := Default()

	tests := []struct {
		input    string
		expected string
	}{
		{"users", "User"},
		{"user_profiles", "UserProfile"},
		{"order_items", "OrderItem"},
		{"people", "Person"},
		{"a", "A"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, namer.ModelName(tt.input))
		})
	}
}

func TestToCamelCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"user_name", "userName"},
		{"created_at", "createdAt"},
		{"id", "id"},
		{"User", "user"},
		{"BlogPost", "blogPost"},
		{"api-v2-key", "apiV2Key"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToCamelCase(tt.input))
		})
	}
}

func TestEntryPointNames(t *testing.T) {
	namer := Default()

	tests := []struct {
		model  string
		single string
		list   string
	}{
		{"User", "user", "users"},
		{"Post", "post", "posts"},
		{"BlogPost", "blogPost", "blogPosts"},
		{"Person", "person", "people"},
		{"Category", "category", "categories"},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.single, namer.SingleQueryName(tt.model))
			assert.Equal(t, tt.list, namer.ListQueryName(tt.model))
		})
	}
}

func TestPluralize(t *testing.T) {
	namer := Default()

	tests := []struct {
		input    string
		expected string
	}{
		{"user", "users"},
		{"category", "categories"},
		{"person", "people"},
		{"child", "children"},
		{"status", "statuses"},
		{"orderItem", "orderItems"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, namer.Pluralize(tt.input))
		})
	}
}

func TestSingularize(t *testing.T) {
	namer := Default()

	tests := []struct {
		input    string
		expected string
	}{
		{"users", "user"},
		{"categories", "category"},
		{"people", "person"},
		{"children", "child"},
		{"statuses", "status"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, namer.Singularize(tt.input))
		})
	}
}

func TestOverrides(t *testing.T) {
	namer := New(Config{
		PluralOverrides:   map[string]string{"staff": "staff"},
		SingularOverrides: map[string]string{"data": "datum"},
	}, nil)

	assert.Equal(t, "staff", namer.Pluralize("staff"))
	assert.Equal(t, "Staff", namer.Pluralize("Staff"))
	assert.Equal(t, "users", namer.Pluralize("user"))
	assert.Equal(t, "datum", namer.Singularize("data"))
	assert.Equal(t, "user", namer.Singularize("users"))
	assert.Equal(t, "staff", namer.ListQueryName("Staff"))
}

func TestManyToOneFieldName(t *testing.T) {
	namer := Default()

	tests := []struct {
		fkColumn string
		expected string
	}{
		{"author_id", "author"},
		{"user_id", "user"},
		{"created_by_user_id", "createdByUser"},
		{"owner_fk", "owner"},
		{"simple", "simple"},
	}

	for _, tt := range tests {
		t.Run(tt.fkColumn, func(t *testing.T) {
			assert.Equal(t, tt.expected, namer.ManyToOneFieldName(tt.fkColumn))
		})
	}
}

func TestOneToManyFieldName(t *testing.T) {
	namer := Default()

	tests := []struct {
		sourceTable string
		fkColumn    string
		isOnlyFK    bool
		expected    string
	}{
		{"comments", "user_id", true, "comments"},
		{"posts", "author_id", false, "authorPosts"},
		{"order_items", "order_id", true, "orderItems"},
	}

	for _, tt := range tests {
		t.Run(tt.sourceTable+"_"+tt.fkColumn, func(t *testing.T) {
			assert.Equal(t, tt.expected, namer.OneToManyFieldName(tt.sourceTable, tt.fkColumn, tt.isOnlyFK))
		})
	}
}

func TestReservedWordSuffixing(t *testing.T) {
	var buf bytes.Buffer
	namer := New(DefaultConfig(), slog.New(slog.NewTextHandler(&buf, nil)))

	assert.Equal(t, "Query_", namer.ModelName("query"))
	assert.Equal(t, "Type_", namer.ModelName("types"))
	assert.Equal(t, "ProductsAggregate_", namer.ModelName("products_aggregate"))
	assert.Equal(t, "User", namer.ModelName("users"))
	assert.Contains(t, buf.String(), "reserved")
}

func TestCollision_Models(t *testing.T) {
	var buf bytes.Buffer
	namer := New(DefaultConfig(), slog.New(slog.NewTextHandler(&buf, nil)))

	assert.Equal(t, "UserProfile", namer.RegisterModel("user_profiles"))
	assert.Equal(t, "UserProfile2", namer.RegisterModel("user_profile"))
	assert.Contains(t, buf.String(), "naming collision detected")
}

func TestCollision_RelationToScalar(t *testing.T) {
	namer := Default()

	namer.RegisterScalarField("Order", "author")
	assert.Equal(t, "authorRef", namer.RegisterRelationField("Order", "author", "users", false))

	namer.RegisterScalarField("User", "posts")
	assert.Equal(t, "postsRel", namer.RegisterRelationField("User", "posts", "posts", true))
}

func TestReset(t *testing.T) {
	namer := Default()
	namer.RegisterModel("users")
	namer.Reset()
	assert.Equal(t, "User", namer.RegisterModel("users"))
}
