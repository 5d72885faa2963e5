package planner

import (
	"errors"

	"github.com/graphql-go/graphql/language/ast"

	"query-engine/internal/models"
	"query-engine/internal/naming"
)

type planOptions struct {
	namer  *naming.Namer
	vars   map[string]any
	limits *PlanLimits
}

// PlanOption customizes planning behavior.
type PlanOption func(*planOptions)

// WithNamer sets the naming conventions used to recognize entry points.
func WithNamer(namer *naming.Namer) PlanOption {
	return func(o *planOptions) {
		o.namer = namer
	}
}

// WithVariables provides request variables referenced by arguments.
func WithVariables(vars map[string]any) PlanOption {
	return func(o *planOptions) {
		o.vars = vars
	}
}

// WithLimits enforces plan size limits for a query.
func WithLimits(limits PlanLimits) PlanOption {
	return func(o *planOptions) {
		o.limits = &limits
	}
}

// planContext carries request-scoped planning state through the recursion.
type planContext struct {
	namer  *naming.Namer
	vars   map[string]any
	limits PlanLimits
	nodes  int
}

func (pc *planContext) enter(depth int) error {
	pc.nodes++
	return pc.limits.check(depth, pc.nodes)
}

// PlanQuery is the primary planning entrypoint (GraphQL AST -> query tree).
// It plans one top-level field. A field that names no model's single or
// list entry point yields a nil Query and a nil error so callers can skip it.
func PlanQuery(schema *models.Schema, field *ast.Field, opts ...PlanOption) (Query, error) {
	if schema == nil || field == nil || field.Name == nil {
		return nil, errors.New("schema and field are required")
	}

	options := &planOptions{}
	for _, opt := range opts {
		opt(options)
	}

	pc := &planContext{
		namer: options.namer,
		vars:  options.vars,
	}
	if pc.namer == nil {
		pc.namer = naming.Default()
	}
	if options.limits != nil {
		pc.limits = *options.limits
	}

	for _, model := range schema.Models() {
		builder := NewBuilder(Infer(pc.namer, model, field.Name.Value, nil), nil)
		if builder == nil {
			continue
		}
		// Reject oversized selections before resolving any of them.
		cost := EstimateCost(field)
		if err := pc.limits.check(cost.Depth, cost.Nodes); err != nil {
			return nil, err
		}
		if err := pc.enter(1); err != nil {
			return nil, err
		}
		if err := builder.setup(pc, model, field, 1); err != nil {
			return nil, err
		}
		return builder.Build()
	}

	return nil, nil
}
