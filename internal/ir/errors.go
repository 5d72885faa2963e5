package ir

import "fmt"

// StructuralError reports a result tree that does not match the shape of
// the query plan that produced it, or a required record that is missing.
type StructuralError struct {
	Message string
}

func (e *StructuralError) Error() string {
	return e.Message
}

func structuralErrorf(format string, args ...any) error {
	return &StructuralError{Message: fmt.Sprintf(format, args...)}
}
