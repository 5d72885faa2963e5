package ir

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapInsertKeepsFirst(t *testing.T) {
	m := NewMap()
	assert.True(t, m.Insert("b", Value{Raw: 1}))
	assert.True(t, m.Insert("a", Value{Raw: 2}))
	assert.False(t, m.Insert("b", Value{Raw: 3}))

	got, ok := m.Get("b")
	require.True(t, ok)
	assert.Equal(t, Value{Raw: 1}, got)
	assert.Equal(t, []string{"b", "a"}, m.Keys())

	_, ok = m.Get("c")
	assert.False(t, ok)
}

func TestMarshalJSON(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	m := NewMap()
	m.Insert("z", Value{Raw: "last-letter-first"})
	m.Insert("bytes", Value{Raw: []byte("raw")})
	m.Insert("at", Value{Raw: ts})
	m.Insert("none", Value{})
	m.Insert("nums", List{Value{Raw: 1}, Value{Raw: 2.5}})
	m.Insert("empty", List(nil))
	m.Insert("nested", NewMap())

	encoded, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t,
		`{"z":"last-letter-first","bytes":"raw","at":"2024-05-01T12:30:00Z","none":null,"nums":[1,2.5],"empty":[],"nested":{}}`,
		string(encoded))
}
