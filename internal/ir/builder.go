package ir

import (
	"fmt"

	"query-engine/internal/result"
)

// Response is the outcome of one top-level query: either Data or Err.
type Response struct {
	Name string
	Data Item
	Err  error
}

// Responses are ordered like the top-level queries of the request.
type Responses []Response

// Errors returns the failed responses in order.
func (r Responses) Errors() []Response {
	var out []Response
	for _, resp := range r {
		if resp.Err != nil {
			out = append(out, resp)
		}
	}
	return out
}

// Builder collects top-level results and failures and converts them into
// responses. Each entry is converted independently; a structural problem in
// one result never affects another.
type Builder struct {
	entries []entry
}

type entry struct {
	name string
	res  result.Result
	err  error
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends top-level results.
func (b *Builder) Add(results ...result.Result) *Builder {
	for _, res := range results {
		name := ""
		if res != nil {
			name = res.ResultName()
		}
		b.entries = append(b.entries, entry{name: name, res: res})
	}
	return b
}

// AddError appends a top-level query that failed before producing a result.
func (b *Builder) AddError(name string, err error) *Builder {
	b.entries = append(b.entries, entry{name: name, err: err})
	return b
}

// Build converts every entry in order.
func (b *Builder) Build() Responses {
	out := make(Responses, 0, len(b.entries))
	for _, e := range b.entries {
		if e.err != nil {
			out = append(out, Response{Name: e.name, Err: e.err})
			continue
		}
		item, err := Build(e.res)
		if err != nil {
			out = append(out, Response{Name: e.name, Err: err})
			continue
		}
		out = append(out, Response{Name: e.name, Data: item})
	}
	return out
}

// Build converts one result tree: a single result becomes a *Map, a multi
// result a List of *Map.
func Build(res result.Result) (Item, error) {
	switch r := res.(type) {
	case *result.Single:
		return buildSingle(r)
	case *result.Multi:
		return buildMulti(r)
	case nil:
		return nil, structuralErrorf("missing result")
	default:
		return nil, fmt.Errorf("unknown result type %T", res)
	}
}

func buildSingle(s *result.Single) (Item, error) {
	if s == nil {
		return nil, structuralErrorf("missing result")
	}
	if s.Record == nil {
		if s.Optional {
			return Value{}, nil
		}
		return nil, structuralErrorf("record not found for %s", s.Name)
	}

	m, err := buildRecord(s.Name, s.FieldNames, *s.Record)
	if err != nil {
		return nil, err
	}
	if err := mergeNested(s.Name, m, s.Nested); err != nil {
		return nil, err
	}
	return m, nil
}

func buildMulti(r *result.Multi) (Item, error) {
	if r == nil {
		return nil, structuralErrorf("missing result")
	}
	if len(r.Nested) != 0 && len(r.Nested) != len(r.Records) {
		return nil, structuralErrorf("%s has %d records but %d nested result sets", r.Name, len(r.Records), len(r.Nested))
	}

	list := make(List, 0, len(r.Records))
	for i, record := range r.Records {
		m, err := buildRecord(r.Name, r.FieldNames, record)
		if err != nil {
			return nil, err
		}
		if len(r.Nested) > 0 {
			if err := mergeNested(r.Name, m, r.Nested[i]); err != nil {
				return nil, err
			}
		}
		list = append(list, m)
	}
	return list, nil
}

func buildRecord(name string, fieldNames []string, record result.Record) (*Map, error) {
	if len(record.Values) != len(fieldNames) {
		return nil, structuralErrorf("%s row has %d values for %d fields", name, len(record.Values), len(fieldNames))
	}
	m := NewMap()
	for i, field := range fieldNames {
		if !m.Insert(field, Value{Raw: record.Values[i]}) {
			return nil, structuralErrorf("%s selects field %s twice", name, field)
		}
	}
	return m, nil
}

// mergeNested inserts each nested result under its relation name.
func mergeNested(name string, m *Map, nested []result.Result) error {
	for _, child := range nested {
		item, err := Build(child)
		if err != nil {
			return err
		}
		if !m.Insert(child.ResultName(), item) {
			return structuralErrorf("nested result %s collides with an existing key on %s", child.ResultName(), name)
		}
	}
	return nil
}
