package naming

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Namer provides all name transformation functions used to derive model,
// field, and query entry point names. It handles pluralization, reserved
// words, and collisions.
type Namer struct {
	config   Config
	logger   *slog.Logger
	resolver *CollisionResolver
}

// New creates a Namer with the given configuration
func New(cfg Config, logger *slog.Logger) *Namer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Namer{
		config:   cfg,
		logger:   logger,
		resolver: NewCollisionResolver(logger),
	}
}

// Default returns a Namer with default configuration
func Default() *Namer {
	return New(DefaultConfig(), nil)
}

// Reset clears the collision resolver state, allowing the namer to be reused
// for a new catalog build.
func (n *Namer) Reset() {
	n.resolver = NewCollisionResolver(n.logger)
}

// ModelName converts a table name to a singular PascalCase model name.
// Example: "user_profiles" -> "UserProfile"
func (n *Namer) ModelName(tableName string) string {
	// Reserved patterns are checked before case conversion because
	// "_aggregate" is lost after PascalCase conversion.
	if isReservedPattern(strings.ToLower(tableName)) {
		name := toPascalCase(n.Singularize(tableName))
		n.logger.Warn("model name conflicts with reserved pattern, auto-suffixed",
			slog.String("original", name),
			slog.String("renamed", name+"_"),
		)
		return name + "_"
	}

	name := toPascalCase(n.Singularize(tableName))
	return n.validateTypeAndSuffix(name)
}

// FieldName converts a column/table name to a field name (camelCase).
// Example: "user_name" -> "userName"
func (n *Namer) FieldName(columnName string) string {
	return ToCamelCase(columnName)
}

// SingleQueryName returns the root field name that addresses exactly one
// record of a model: the camel-cased singular form.
// Example: "BlogPost" -> "blogPost"
func (n *Namer) SingleQueryName(modelName string) string {
	return n.Singularize(ToCamelCase(modelName))
}

// ListQueryName returns the root field name that lists records of a model:
// the camel-cased plural form.
// Example: "BlogPost" -> "blogPosts"
func (n *Namer) ListQueryName(modelName string) string {
	return n.Pluralize(ToCamelCase(modelName))
}

// ManyToOneFieldName generates the relation field name for a many-to-one
// relation based on the FK column name with common suffixes stripped.
// Example: "author_id" -> "author", "created_by_user_id" -> "createdByUser"
func (n *Namer) ManyToOneFieldName(fkColumn string) string {
	name := fkColumn
	for _, suffix := range []string{"_id", "_fk"} {
		if strings.HasSuffix(strings.ToLower(name), suffix) {
			name = name[:len(name)-len(suffix)]
			break
		}
	}
	return n.FieldName(name)
}

// OneToManyFieldName generates the relation field name for a one-to-many relation.
// If isOnlyFK is true (single FK from source table), uses pluralized table name.
// Otherwise, prefixes with the FK column name for disambiguation.
// Example: isOnlyFK=true: "comments" -> "comments"
// Example: isOnlyFK=false, fkColumn="author_id": "posts" -> "authorPosts"
func (n *Namer) OneToManyFieldName(sourceTable, fkColumn string, isOnlyFK bool) string {
	tablePlural := n.Pluralize(n.FieldName(sourceTable))

	if isOnlyFK {
		return tablePlural
	}

	prefix := n.ManyToOneFieldName(fkColumn)
	if len(tablePlural) > 0 {
		return prefix + strings.ToUpper(tablePlural[:1]) + tablePlural[1:]
	}
	return prefix
}

// RegisterModel registers a table name and returns the resolved model name.
// If a collision occurs, returns a suffixed name and logs a warning.
func (n *Namer) RegisterModel(tableName string) string {
	return n.resolver.RegisterType(n.ModelName(tableName), tableName)
}

// RegisterScalarField registers a column field and returns the resolved field name.
// Columns always win in precedence, so this establishes the field name.
func (n *Namer) RegisterScalarField(modelName, columnName string) string {
	fieldName := n.validateFieldAndSuffix(n.FieldName(columnName))
	return n.resolver.RegisterField(modelName, fieldName, "column:"+columnName)
}

// RegisterRelationField registers a relation field and returns the resolved name.
// If the field collides with a column, applies a Ref (to-one) or Rel (to-many) suffix.
func (n *Namer) RegisterRelationField(modelName, fieldName, source string, isList bool) string {
	fieldName = n.validateFieldAndSuffix(fieldName)
	if n.resolver.FieldExists(modelName, fieldName) {
		if isList {
			fieldName = fieldName + "Rel"
		} else {
			fieldName = fieldName + "Ref"
		}
	}
	fieldName = n.validateFieldAndSuffix(fieldName)
	return n.resolver.RegisterField(modelName, fieldName, "relation:"+source)
}

func (n *Namer) validateTypeAndSuffix(name string) string {
	if isReservedTypeName(name) {
		safeName := name + "_"
		n.logger.Warn("model name conflicts with reserved word, auto-suffixed",
			slog.String("original", name),
			slog.String("renamed", safeName),
		)
		return safeName
	}
	return name
}

func (n *Namer) validateFieldAndSuffix(name string) string {
	if isReservedFieldName(name) {
		safeName := name + "_"
		n.logger.Warn("field name conflicts with reserved word, auto-suffixed",
			slog.String("original", name),
			slog.String("renamed", safeName),
		)
		return safeName
	}
	return name
}

// ToCamelCase converts snake_case, kebab-case, or PascalCase to camelCase.
// Example: "user_name" -> "userName", "BlogPost" -> "blogPost"
func ToCamelCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' })
	if len(parts) == 0 {
		return ""
	}
	for i := 1; i < len(parts); i++ {
		parts[i] = upperFirst(parts[i])
	}
	return lowerFirst(strings.Join(parts, ""))
}

// toPascalCase converts snake_case to PascalCase
func toPascalCase(s string) string {
	parts := strings.Split(s, "_")
	for i, part := range parts {
		parts[i] = upperFirst(part)
	}
	return strings.Join(parts, "")
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
