// Package gqlrequest decodes query requests, picks the operation to run and
// derives the request metadata used for logging, tracing and plan limits.
package gqlrequest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"
)

const anonymousOperation = "<anonymous>"

// Analysis is a decoded request together with the operation the engine will
// plan. Each stage records its own failure so middleware can attach whatever
// metadata was derived before the failure.
type Analysis struct {
	Envelope  Envelope
	Variables map[string]any

	Document  *ast.Document
	Operation *ast.OperationDefinition

	OperationName string
	OperationType string
	VariableCount int

	// FieldCount and SelectionDepth measure the selection tree as written.
	// Fragments are not expanded; the planner rejects them per root field.
	FieldCount     int
	SelectionDepth int

	// Shape is the printed form of the root fields and OperationHash
	// identifies it together with the operation type and variable types.
	Shape         string
	OperationHash string

	DecodeError    error
	VariablesError error
	ParseError     error
	SelectionError error
}

// Err returns the first error that prevents the request from being planned.
func (a *Analysis) Err() error {
	if a.DecodeError != nil {
		return fmt.Errorf("failed to decode request: %w", a.DecodeError)
	}
	for _, err := range []error{a.VariablesError, a.ParseError, a.SelectionError} {
		if err != nil {
			return err
		}
	}
	if a.Operation == nil {
		return errors.New("request does not include a query")
	}
	return nil
}

// RootFields returns the top-level selections of the chosen operation in
// request order. Each one is planned and executed on its own.
func (a *Analysis) RootFields() []ast.Selection {
	if a.Operation == nil || a.Operation.SelectionSet == nil {
		return nil
	}
	return a.Operation.SelectionSet.Selections
}

// AnalyzeRequest decodes r and analyzes its payload. A decode failure is kept
// on the returned Analysis rather than returned.
func AnalyzeRequest(r *http.Request) *Analysis {
	env, err := DecodeEnvelope(r)
	a := AnalyzeEnvelope(env)
	a.DecodeError = err
	return a
}

// AnalyzeEnvelope parses env and derives the operation metadata.
func AnalyzeEnvelope(env Envelope) *Analysis {
	a := &Analysis{Envelope: env}

	a.Variables, a.VariablesError = env.DecodeVariables()
	if a.VariablesError != nil || strings.TrimSpace(env.Query) == "" {
		return a
	}

	a.Document, a.ParseError = parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{Body: []byte(env.Query), Name: "request"}),
	})
	if a.ParseError != nil {
		return a
	}

	op, err := pickOperation(a.Document, env.OperationName)
	if err != nil {
		a.SelectionError = err
		return a
	}
	a.describe(op)
	return a
}

func (a *Analysis) describe(op *ast.OperationDefinition) {
	a.Operation = op
	a.OperationType = string(op.Operation)
	a.OperationName = anonymousOperation
	if op.Name != nil && op.Name.Value != "" {
		a.OperationName = op.Name.Value
	}
	a.VariableCount = len(op.VariableDefinitions)
	a.FieldCount, a.SelectionDepth = measureSelections(op.SelectionSet, 1)

	// A root field the printer cannot render leaves the hash empty; planning
	// reports the real problem for that field.
	if shape, err := operationShape(op); err == nil {
		a.Shape = shape
		a.OperationHash = shapeDigest(a.OperationType, variableSignature(op), shape)
	}
}

// pickOperation returns the operation named name, or the only operation in
// doc when name is empty.
func pickOperation(doc *ast.Document, name string) (*ast.OperationDefinition, error) {
	var (
		only  *ast.OperationDefinition
		count int
	)
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok || op == nil {
			continue
		}
		if name != "" && op.Name != nil && op.Name.Value == name {
			return op, nil
		}
		only = op
		count++
	}

	switch {
	case name != "":
		return nil, fmt.Errorf("unknown operation named %q", name)
	case count == 0:
		return nil, errors.New("request does not include an operation")
	case count > 1:
		return nil, errors.New("operationName is required when request has multiple operations")
	}
	return only, nil
}

// measureSelections counts the fields under set and returns the deepest
// level reached, where depth is the level of set itself. Fragment spreads and
// inline fragments count as neither fields nor levels.
func measureSelections(set *ast.SelectionSet, depth int) (fields, deepest int) {
	if set == nil || len(set.Selections) == 0 {
		return 0, depth - 1
	}
	deepest = depth
	for _, selection := range set.Selections {
		field, ok := selection.(*ast.Field)
		if !ok {
			continue
		}
		fields++
		childFields, childDepth := measureSelections(field.SelectionSet, depth+1)
		fields += childFields
		deepest = max(deepest, childDepth)
	}
	return fields, deepest
}
