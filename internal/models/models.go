// Package models holds the read-only data model catalog consumed by the
// planner: models, their scalar and relation fields, and lookup helpers.
// A Schema is built once and shared across requests; nothing in it is
// mutated after NewSchema returns.
package models

import (
	"errors"
	"fmt"
)

// ErrFieldNotFound is wrapped by every failed field lookup.
var ErrFieldNotFound = errors.New("field not found")

// Field is either a *ScalarField or a *RelationField.
type Field interface {
	FieldName() string
	isField()
}

// ScalarField is a model field holding a primitive value.
type ScalarField struct {
	Name       string
	Column     string
	Type       TypeIdentifier
	IsID       bool
	IsRequired bool
	IsUnique   bool
}

func (f *ScalarField) FieldName() string { return f.Name }
func (*ScalarField) isField()            {}

// ColumnName returns the storage column, defaulting to the field name.
func (f *ScalarField) ColumnName() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// RelationField references another model. LocalColumns and RemoteColumns are
// positional: LocalColumns[i] on the owning table joins RemoteColumns[i] on
// the related table.
type RelationField struct {
	Name             string
	IsList           bool
	IsRequired       bool
	RelatedModelName string
	LocalColumns     []string
	RemoteColumns    []string

	related *Model
	owner   *Model
}

func (f *RelationField) FieldName() string { return f.Name }
func (*RelationField) isField()            {}

// RelatedModel returns the model this relation points to. It is nil until
// the owning model has been linked by NewSchema.
func (f *RelationField) RelatedModel() *Model { return f.related }

// Model returns the model that declares this relation.
func (f *RelationField) Model() *Model { return f.owner }

// Model is a named, ordered set of fields backed by a table.
type Model struct {
	Name  string
	Table string

	fields  []Field
	byName  map[string]Field
	scalars []*ScalarField
}

// NewModel creates a model with fields in declaration order. Field names must
// be unique; NewSchema reports duplicates.
func NewModel(name, table string, fields ...Field) *Model {
	m := &Model{
		Name:   name,
		Table:  table,
		byName: make(map[string]Field, len(fields)),
	}
	for _, f := range fields {
		m.fields = append(m.fields, f)
		if _, exists := m.byName[f.FieldName()]; !exists {
			m.byName[f.FieldName()] = f
		}
		switch typed := f.(type) {
		case *ScalarField:
			m.scalars = append(m.scalars, typed)
		case *RelationField:
			typed.owner = m
		}
	}
	return m
}

// TableName returns the storage table, defaulting to the model name.
func (m *Model) TableName() string {
	if m.Table != "" {
		return m.Table
	}
	return m.Name
}

// Fields returns all fields in declaration order.
func (m *Model) Fields() []Field {
	return m.fields
}

// ScalarFields returns the scalar fields in declaration order.
func (m *Model) ScalarFields() []*ScalarField {
	return m.scalars
}

// RelationFields returns the relation fields in declaration order.
func (m *Model) RelationFields() []*RelationField {
	var out []*RelationField
	for _, f := range m.fields {
		if rel, ok := f.(*RelationField); ok {
			out = append(out, rel)
		}
	}
	return out
}

// IDField returns the first scalar field marked as identifier.
func (m *Model) IDField() *ScalarField {
	for _, f := range m.scalars {
		if f.IsID {
			return f
		}
	}
	return nil
}

// FindFromAll looks a field up by name regardless of its kind.
func (m *Model) FindFromAll(name string) (Field, error) {
	if f, ok := m.byName[name]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w: %s on model %s", ErrFieldNotFound, name, m.Name)
}

// FindFromScalar looks a scalar field up by name.
func (m *Model) FindFromScalar(name string) (*ScalarField, error) {
	if f, ok := m.byName[name].(*ScalarField); ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w: scalar %s on model %s", ErrFieldNotFound, name, m.Name)
}

// FindFromRelation looks a relation field up by name.
func (m *Model) FindFromRelation(name string) (*RelationField, error) {
	if f, ok := m.byName[name].(*RelationField); ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w: relation %s on model %s", ErrFieldNotFound, name, m.Name)
}
