// Package result holds the execution result tree: raw rows produced by the
// execution layer for each node of a query plan, with the nested results of
// every row kept positionally next to it.
package result

// Record is one row: values in the order of the owning result's FieldNames.
type Record struct {
	Values []any
}

// Result is either a *Single or a *Multi.
type Result interface {
	ResultName() string
	isResult()
}

// Single is the outcome of a single-record or to-one query.
type Single struct {
	// Name is the selection or relation field name the result is keyed by.
	Name       string
	FieldNames []string
	// Record is nil when no row matched.
	Record *Record
	// Optional marks a missing record as a legitimate null, as for a
	// to-one relation over a nullable foreign key.
	Optional bool
	// Nested holds one result per nested query of the plan node.
	Nested []Result
}

// Multi is the outcome of a listing or to-many query.
type Multi struct {
	Name       string
	FieldNames []string
	Records    []Record
	// Nested[i] holds the nested results of Records[i].
	Nested [][]Result
}

func (s *Single) ResultName() string { return s.Name }
func (*Single) isResult()            {}

func (m *Multi) ResultName() string { return m.Name }
func (*Multi) isResult()            {}

// NewRecord is a convenience for building records in order.
func NewRecord(values ...any) Record {
	return Record{Values: values}
}
