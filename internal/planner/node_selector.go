package planner

import (
	"github.com/graphql-go/graphql/language/ast"

	"query-engine/internal/models"
)

// NodeSelector identifies exactly one record by equality on a scalar field.
type NodeSelector struct {
	Field *models.ScalarField
	Value any
}

// ExtractNodeSelector reads the selector of a single-record lookup from the
// only argument of field. Both user(id: "u1") and user(where: {id: "u1"})
// are accepted; the object form must carry exactly one entry.
func ExtractNodeSelector(field *ast.Field, model *models.Model, vars map[string]any) (NodeSelector, error) {
	if field == nil || len(field.Arguments) == 0 || field.Arguments[0] == nil || field.Arguments[0].Name == nil {
		return NodeSelector{}, validationErrorf("missing selector argument for model %s", model.Name)
	}
	arg := field.Arguments[0]
	for _, extra := range field.Arguments[1:] {
		if extra != nil && extra.Name != nil {
			return NodeSelector{}, validationErrorf("unknown key: `%s`", extra.Name.Value)
		}
	}

	value, err := resolveValue(arg.Value, vars)
	if err != nil {
		return NodeSelector{}, err
	}

	name := arg.Name.Value
	if obj, ok := value.(map[string]any); ok {
		if len(obj) != 1 {
			return NodeSelector{}, validationErrorf("selector for model %s must name exactly one field, got %d", model.Name, len(obj))
		}
		for k, v := range obj {
			name, value = k, v
		}
	}

	scalar, err := model.FindFromScalar(name)
	if err != nil {
		return NodeSelector{}, validationErrorf("unknown selector field `%s` on model %s", name, model.Name)
	}

	switch v := value.(type) {
	case string, int64, float64, bool:
	case EnumValue:
		value = string(v)
	case []any:
		return NodeSelector{}, &UnsupportedError{Construct: "list selector value"}
	case map[string]any:
		return NodeSelector{}, &UnsupportedError{Construct: "object selector value"}
	case nil:
		return NodeSelector{}, validationErrorf("selector field `%s` must not be null", name)
	default:
		return NodeSelector{}, &UnsupportedError{Construct: "selector value"}
	}

	return NodeSelector{Field: scalar, Value: value}, nil
}
