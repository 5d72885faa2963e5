package engine

import (
	"errors"

	"query-engine/internal/connector"
	"query-engine/internal/ir"
	"query-engine/internal/planner"
)

// Error codes reported in error extensions.
const (
	CodeValidation   = "VALIDATION_FAILED"
	CodeUnsupported  = "UNSUPPORTED"
	CodeStructural   = "INCONSISTENT_RESULT"
	CodeAccessDenied = "ACCESS_DENIED"
	CodeInternal     = "INTERNAL"
)

// Response is the serializable outcome of a request. Data is absent when the
// request failed before any field was planned.
type Response struct {
	Data   *ir.Map `json:"data,omitempty"`
	Errors []Error `json:"errors,omitempty"`
}

// Error describes one failure. Path names the top-level field it belongs to.
type Error struct {
	Message    string         `json:"message"`
	Path       []string       `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func newError(path string, err error) Error {
	out := Error{
		Message:    err.Error(),
		Extensions: map[string]any{"code": errorCode(err)},
	}
	if path != "" {
		out.Path = []string{path}
	}
	return out
}

func requestError(err error) *Response {
	return &Response{Errors: []Error{newError("", err)}}
}

// newResponse keys data by top-level field name. A failed field is null in
// data and described in errors.
func newResponse(responses ir.Responses) *Response {
	out := &Response{Data: ir.NewMap()}
	for _, r := range responses {
		if r.Err != nil {
			out.Errors = append(out.Errors, newError(r.Name, r.Err))
			if r.Name != "" {
				out.Data.Insert(r.Name, ir.Value{})
			}
			continue
		}
		out.Data.Insert(r.Name, r.Data)
	}
	return out
}

func errorCode(err error) string {
	var (
		validation  *planner.QueryValidationError
		unsupported *planner.UnsupportedError
		structural  *ir.StructuralError
	)
	switch {
	case errors.As(err, &validation):
		return CodeValidation
	case errors.As(err, &unsupported):
		return CodeUnsupported
	case errors.As(err, &structural):
		return CodeStructural
	case errors.Is(err, connector.ErrAccessDenied):
		return CodeAccessDenied
	default:
		return CodeInternal
	}
}

// errorClass is the metric label for err.
func errorClass(err error) string {
	switch errorCode(err) {
	case CodeValidation:
		return "validation"
	case CodeUnsupported:
		return "unsupported"
	case CodeStructural:
		return "structural"
	case CodeAccessDenied:
		return "access_denied"
	default:
		return "internal"
	}
}
