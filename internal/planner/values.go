package planner

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/graphql-go/graphql/language/ast"
)

// EnumValue is an unquoted enum literal such as name_ASC.
type EnumValue string

// resolveValue converts an argument value into a plain Go value. Variables are
// substituted from vars. Integers become int64, floats float64, enums
// EnumValue, lists []any and objects map[string]any.
func resolveValue(value ast.Value, vars map[string]any) (any, error) {
	switch v := value.(type) {
	case *ast.Variable:
		if v.Name == nil {
			return nil, validationErrorf("variable without a name")
		}
		raw, ok := vars[v.Name.Value]
		if !ok {
			return nil, validationErrorf("variable `$%s` is not defined", v.Name.Value)
		}
		return normalizeVariable(raw), nil
	case *ast.StringValue:
		return v.Value, nil
	case *ast.IntValue:
		n, err := strconv.ParseInt(v.Value, 10, 64)
		if err != nil {
			return nil, validationErrorf("invalid number provided")
		}
		return n, nil
	case *ast.FloatValue:
		f, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			return nil, validationErrorf("invalid float provided")
		}
		return f, nil
	case *ast.BooleanValue:
		return v.Value, nil
	case *ast.EnumValue:
		return EnumValue(v.Value), nil
	case *ast.ListValue:
		out := make([]any, 0, len(v.Values))
		for _, item := range v.Values {
			resolved, err := resolveValue(item, vars)
			if err != nil {
				return nil, err
			}
			out = append(out, resolved)
		}
		return out, nil
	case *ast.ObjectValue:
		out := make(map[string]any, len(v.Fields))
		for _, f := range v.Fields {
			if f == nil || f.Name == nil {
				continue
			}
			resolved, err := resolveValue(f.Value, vars)
			if err != nil {
				return nil, err
			}
			out[f.Name.Value] = resolved
		}
		return out, nil
	case nil:
		return nil, nil
	default:
		return nil, &UnsupportedError{Construct: "value kind " + value.GetKind()}
	}
}

// normalizeVariable maps decoded JSON numbers onto the literal types.
func normalizeVariable(raw any) any {
	switch v := raw.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case float64:
		if v == math.Trunc(v) && v >= math.MinInt64 && v < math.MaxInt64 {
			return int64(v)
		}
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case uint32:
		return int64(v)
	default:
		return raw
	}
}

// asCount accepts a non-negative integer that fits a uint32.
func asCount(value any) (uint32, bool) {
	n, ok := value.(int64)
	if !ok || n < 0 || n > math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}
