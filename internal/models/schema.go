package models

import (
	"fmt"
)

// Schema is the set of models addressable by queries.
type Schema struct {
	models []*Model
	byName map[string]*Model
}

// NewSchema links relation fields to their related models and validates the
// catalog: model names and field names are unique, every relation points to
// a known model, and join column lists are positional pairs.
func NewSchema(models ...*Model) (*Schema, error) {
	s := &Schema{
		models: models,
		byName: make(map[string]*Model, len(models)),
	}
	for _, m := range models {
		if m == nil || m.Name == "" {
			return nil, fmt.Errorf("model name is required")
		}
		if _, exists := s.byName[m.Name]; exists {
			return nil, fmt.Errorf("duplicate model %s", m.Name)
		}
		s.byName[m.Name] = m
	}

	for _, m := range models {
		seen := make(map[string]struct{}, len(m.fields))
		for _, f := range m.fields {
			name := f.FieldName()
			if name == "" {
				return nil, fmt.Errorf("model %s has a field without a name", m.Name)
			}
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("duplicate field %s on model %s", name, m.Name)
			}
			seen[name] = struct{}{}

			rel, ok := f.(*RelationField)
			if !ok {
				continue
			}
			related, ok := s.byName[rel.RelatedModelName]
			if !ok {
				return nil, fmt.Errorf("relation %s.%s references unknown model %s", m.Name, rel.Name, rel.RelatedModelName)
			}
			if len(rel.LocalColumns) != len(rel.RemoteColumns) {
				return nil, fmt.Errorf("relation %s.%s has %d local and %d remote columns",
					m.Name, rel.Name, len(rel.LocalColumns), len(rel.RemoteColumns))
			}
			rel.related = related
		}
	}

	return s, nil
}

// Models returns the models in registration order.
func (s *Schema) Models() []*Model {
	return s.models
}

// FindModel looks a model up by name.
func (s *Schema) FindModel(name string) (*Model, bool) {
	m, ok := s.byName[name]
	return m, ok
}
