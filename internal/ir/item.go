// Package ir converts execution results into a serialization-ready item tree
// of maps, lists and leaf values that mirrors the shape of the request.
package ir

import (
	"bytes"
	"encoding/json"
	"time"
)

// Item is a node of the IR tree: *Map, List or Value.
type Item interface {
	// Interface returns the item as plain Go values: map[string]any, []any
	// or the leaf value.
	Interface() any
	isItem()
}

// Map is a name-keyed collection that remembers insertion order, so that
// serialized objects follow the order of the request.
type Map struct {
	keys   []string
	values map[string]Item
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{values: make(map[string]Item)}
}

// Insert adds key unless it is already present, and reports whether it did.
func (m *Map) Insert(key string, item Item) bool {
	if _, exists := m.values[key]; exists {
		return false
	}
	m.keys = append(m.keys, key)
	m.values[key] = item
	return true
}

// Get returns the item stored under key.
func (m *Map) Get(key string) (Item, bool) {
	item, ok := m.values[key]
	return item, ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	return m.keys
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.keys)
}

func (m *Map) Interface() any {
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		out[k] = m.values[k].Interface()
	}
	return out
}

// MarshalJSON writes the entries in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// List is an ordered sequence of items.
type List []Item

func (l List) Interface() any {
	out := make([]any, len(l))
	for i, item := range l {
		out[i] = item.Interface()
	}
	return out
}

// MarshalJSON writes an empty list as [] rather than null.
func (l List) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Item(l))
}

// Value is a leaf scalar. A nil Raw serializes as null.
type Value struct {
	Raw any
}

func (v Value) Interface() any {
	return v.Raw
}

// MarshalJSON renders byte slices as strings and times in RFC 3339.
func (v Value) MarshalJSON() ([]byte, error) {
	switch raw := v.Raw.(type) {
	case []byte:
		return json.Marshal(string(raw))
	case time.Time:
		return json.Marshal(raw.Format(time.RFC3339Nano))
	default:
		return json.Marshal(raw)
	}
}

func (*Map) isItem()  {}
func (List) isItem()  {}
func (Value) isItem() {}
