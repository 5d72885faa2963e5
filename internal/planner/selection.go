package planner

import (
	"errors"

	"github.com/graphql-go/graphql/language/ast"

	"query-engine/internal/models"
)

// SelectedField is one scalar column projected by a query. Implicit fields
// are added by the execution layer for joins and are never serialized.
type SelectedField struct {
	Field    *models.ScalarField
	Implicit bool
}

// SelectedFields is the scalar projection of one query, in request order.
type SelectedFields struct {
	Fields []SelectedField
	// Parent is the relation the selection was reached through, nil at the root.
	Parent *models.RelationField
}

// Names returns the requested (non-implicit) field names in order.
func (s SelectedFields) Names() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if !f.Implicit {
			names = append(names, f.Field.Name)
		}
	}
	return names
}

// Contains reports whether a field with the given name is projected.
func (s SelectedFields) Contains(name string) bool {
	for _, f := range s.Fields {
		if f.Field.Name == name {
			return true
		}
	}
	return false
}

// WithImplicit returns a copy with field appended as an implicit projection,
// unless a field with the same name is already present.
func (s SelectedFields) WithImplicit(field *models.ScalarField) SelectedFields {
	if s.Contains(field.Name) {
		return s
	}
	out := SelectedFields{
		Fields: make([]SelectedField, 0, len(s.Fields)+1),
		Parent: s.Parent,
	}
	out.Fields = append(out.Fields, s.Fields...)
	out.Fields = append(out.Fields, SelectedField{Field: field, Implicit: true})
	return out
}

// CollectSelectedFields resolves the selection set of field against model.
// Scalar fields become entries, each at most once; relation fields are left
// to the nested query assembler. Every selection must be a plain field that
// exists on model.
func CollectSelectedFields(model *models.Model, field *ast.Field, parent *models.RelationField) (SelectedFields, error) {
	selected := SelectedFields{Parent: parent}
	if field == nil || field.SelectionSet == nil {
		return selected, nil
	}

	for _, selection := range field.SelectionSet.Selections {
		sel, ok := selection.(*ast.Field)
		if !ok {
			return SelectedFields{}, &UnsupportedError{Construct: "fragment"}
		}
		if sel.Name == nil {
			continue
		}

		resolved, err := model.FindFromAll(sel.Name.Value)
		if err != nil {
			if errors.Is(err, models.ErrFieldNotFound) {
				return SelectedFields{}, validationErrorf("selected field %s not found on model %s", sel.Name.Value, model.Name)
			}
			return SelectedFields{}, err
		}

		// A repeated scalar is projected once.
		if scalar, ok := resolved.(*models.ScalarField); ok && !selected.Contains(scalar.Name) {
			selected.Fields = append(selected.Fields, SelectedField{Field: scalar})
		}
	}

	return selected, nil
}
