package gqlrequest

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/printer"
)

// operationShape prints each root field of op on its own line in request
// order. Whitespace, comments and the operation name do not affect it.
func operationShape(op *ast.OperationDefinition) (string, error) {
	if op.SelectionSet == nil {
		return "", nil
	}
	var b strings.Builder
	for _, selection := range op.SelectionSet.Selections {
		node, ok := selection.(ast.Node)
		if !ok {
			return "", fmt.Errorf("cannot print selection %T", selection)
		}
		printed, err := printNode(node)
		if err != nil {
			return "", err
		}
		b.WriteString(printed)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// variableSignature prints the declared variables, which change how the
// same root fields are planned.
func variableSignature(op *ast.OperationDefinition) string {
	parts := make([]string, 0, len(op.VariableDefinitions))
	for _, def := range op.VariableDefinitions {
		if printed, err := printNode(def); err == nil {
			parts = append(parts, printed)
		}
	}
	return strings.Join(parts, ", ")
}

func printNode(node ast.Node) (string, error) {
	printed, ok := printer.Print(node).(string)
	if !ok {
		return "", fmt.Errorf("cannot print %s node", node.GetKind())
	}
	return printed, nil
}

// shapeDigest hashes parts with a length prefix on each so that adjacent
// parts cannot trade bytes.
func shapeDigest(parts ...string) string {
	h := sha256.New()
	var size [8]byte
	for _, part := range parts {
		binary.BigEndian.PutUint64(size[:], uint64(len(part)))
		h.Write(size[:])
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}
