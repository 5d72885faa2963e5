package planner

import (
	"github.com/graphql-go/graphql/language/ast"
)

// PlanLimits bounds the size of a query plan tree. Zero disables a limit.
type PlanLimits struct {
	// MaxDepth is the deepest allowed relation nesting; a top-level query
	// has depth 1.
	MaxDepth int
	// MaxNodes caps the number of queries in one tree.
	MaxNodes int
}

// PlanCost is the shape of a planned or requested tree.
type PlanCost struct {
	Depth int
	Nodes int
}

// EstimateCost measures the selection of field without consulting the
// schema: every field that carries a selection set counts as one query.
func EstimateCost(field *ast.Field) PlanCost {
	if field == nil {
		return PlanCost{}
	}
	depth, nodes := selectionCost(field, 1)
	return PlanCost{Depth: depth, Nodes: nodes}
}

func selectionCost(field *ast.Field, current int) (depth, nodes int) {
	depth, nodes = current, 1
	if field.SelectionSet == nil {
		return depth, nodes
	}
	for _, selection := range field.SelectionSet.Selections {
		sub, ok := selection.(*ast.Field)
		if !ok || sub.SelectionSet == nil {
			continue
		}
		subDepth, subNodes := selectionCost(sub, current+1)
		if subDepth > depth {
			depth = subDepth
		}
		nodes += subNodes
	}
	return depth, nodes
}

// check validates one more query at depth against the limits, given the
// number of queries planned so far.
func (l PlanLimits) check(depth, nodes int) error {
	if l.MaxDepth > 0 && depth > l.MaxDepth {
		return validationErrorf("query exceeds maximum depth of %d (depth: %d)", l.MaxDepth, depth)
	}
	if l.MaxNodes > 0 && nodes > l.MaxNodes {
		return validationErrorf("query exceeds maximum of %d nested queries (planned: %d)", l.MaxNodes, nodes)
	}
	return nil
}
