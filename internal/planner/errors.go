package planner

import (
	"errors"
	"fmt"
)

var (
	// ErrInvariant marks an internal grammar violation that user input
	// cannot produce when the request was validated against the schema.
	ErrInvariant = errors.New("internal invariant violated")

	// ErrBuilderState is returned when a builder is built twice or before it
	// has everything it needs.
	ErrBuilderState = errors.New("invalid builder state")
)

// QueryValidationError reports a malformed or unresolvable part of a request.
type QueryValidationError struct {
	Message string
}

func (e *QueryValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) error {
	return &QueryValidationError{Message: fmt.Sprintf(format, args...)}
}

// UnsupportedError reports a query shape the planner does not handle yet.
type UnsupportedError struct {
	Construct string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported construct: %s", e.Construct)
}

// IsUserError reports whether err was caused by the request rather than by
// the planner or the schema.
func IsUserError(err error) bool {
	var validation *QueryValidationError
	var unsupported *UnsupportedError
	return errors.As(err, &validation) || errors.As(err, &unsupported)
}
