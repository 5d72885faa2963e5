package planner

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql/language/ast"

	"query-engine/internal/models"
)

// SortOrder is the direction of an ordering.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

func (o SortOrder) String() string {
	if o == Descending {
		return "DESC"
	}
	return "ASC"
}

// Cursor is an opaque pagination position, stored verbatim.
type Cursor struct {
	Value string
}

// OrderBy orders a listing by one scalar field.
type OrderBy struct {
	Field     *models.ScalarField
	SortOrder SortOrder
}

// QueryArguments are the normalized pagination and ordering options of a
// listing. The zero value means no pagination and no ordering.
type QueryArguments struct {
	Skip    *uint32
	First   *uint32
	Last    *uint32
	After   *Cursor
	Before  *Cursor
	OrderBy *OrderBy
}

// IsEmpty reports whether no option is set.
func (a QueryArguments) IsEmpty() bool {
	return a.Skip == nil && a.First == nil && a.Last == nil &&
		a.After == nil && a.Before == nil && a.OrderBy == nil
}

// ExtractQueryArguments normalizes the arguments of a listing selection
// against model. Arguments are applied left to right; a later argument
// overrides an earlier one writing the same option.
//
// last, and after or before given as an integer, all set First. Backward
// windows are not modelled yet, so Last is never populated here.
func ExtractQueryArguments(field *ast.Field, model *models.Model, vars map[string]any) (QueryArguments, error) {
	var args QueryArguments
	if field == nil {
		return args, nil
	}

	for _, arg := range field.Arguments {
		if arg == nil || arg.Name == nil {
			continue
		}
		name := arg.Name.Value
		if name == "where" {
			return QueryArguments{}, &UnsupportedError{Construct: "where"}
		}

		value, err := resolveValue(arg.Value, vars)
		if err != nil {
			return QueryArguments{}, err
		}

		switch name {
		case "skip":
			n, ok := asCount(value)
			if !ok {
				return QueryArguments{}, validationErrorf("invalid number provided")
			}
			args.Skip = &n
		case "first", "last":
			n, ok := asCount(value)
			if !ok {
				return QueryArguments{}, validationErrorf("invalid number provided")
			}
			args.First = &n
		case "after", "before":
			switch v := value.(type) {
			case string:
				cursor := &Cursor{Value: v}
				if name == "after" {
					args.After = cursor
				} else {
					args.Before = cursor
				}
			case int64:
				n, ok := asCount(v)
				if !ok {
					return QueryArguments{}, validationErrorf("invalid number provided")
				}
				args.First = &n
			default:
				return QueryArguments{}, validationErrorf("invalid cursor provided for `%s`", name)
			}
		case "orderby":
			_, fromVariable := arg.Value.(*ast.Variable)
			orderBy, err := parseOrderBy(value, model, fromVariable)
			if err != nil {
				return QueryArguments{}, err
			}
			args.OrderBy = orderBy
		default:
			return QueryArguments{}, validationErrorf("unknown key: `%s`", name)
		}
	}

	return args, nil
}

// parseOrderBy resolves an enum value shaped <field>_<ASC|DESC>. A string is
// only accepted from a variable, where enum values arrive as JSON strings.
func parseOrderBy(value any, model *models.Model, fromVariable bool) (*OrderBy, error) {
	var raw string
	switch v := value.(type) {
	case EnumValue:
		raw = string(v)
	case string:
		if !fromVariable {
			return nil, validationErrorf("orderby expects an enum value")
		}
		raw = v
	default:
		return nil, validationErrorf("orderby expects an enum value")
	}

	parts := strings.Split(raw, "_")
	if len(parts) != 2 {
		return nil, validationErrorf("invalid orderby value `%s`, expected <field>_<ASC|DESC>", raw)
	}

	field, err := model.FindFromScalar(parts[0])
	if err != nil {
		return nil, validationErrorf("unknown field `%s`", parts[0])
	}

	var order SortOrder
	switch parts[1] {
	case "ASC":
		order = Ascending
	case "DESC":
		order = Descending
	default:
		return nil, fmt.Errorf("%w: sort direction %q", ErrInvariant, parts[1])
	}

	return &OrderBy{Field: field, SortOrder: order}, nil
}
