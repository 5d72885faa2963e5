package planner

import (
	"fmt"

	"github.com/graphql-go/graphql/language/ast"

	"query-engine/internal/models"
)

// collectNestedQueries plans one child query per relation field selected on
// model, in selection order. Scalar selections were already validated by
// CollectSelectedFields and are skipped here.
func collectNestedQueries(pc *planContext, model *models.Model, field *ast.Field, depth int) ([]Query, error) {
	if field == nil || field.SelectionSet == nil {
		return nil, nil
	}

	var nested []Query
	seen := make(map[string]bool)
	for _, selection := range field.SelectionSet.Selections {
		sel, ok := selection.(*ast.Field)
		if !ok || sel.Name == nil {
			continue
		}
		rel, err := model.FindFromRelation(sel.Name.Value)
		if err != nil {
			continue
		}
		if seen[rel.Name] {
			return nil, validationErrorf("relation %s is selected more than once on %s", rel.Name, field.Name.Value)
		}
		seen[rel.Name] = true
		related := rel.RelatedModel()
		if related == nil {
			return nil, fmt.Errorf("%w: relation %s.%s is not linked to a model", ErrInvariant, model.Name, rel.Name)
		}

		if err := pc.enter(depth + 1); err != nil {
			return nil, err
		}

		builder := NewBuilder(Infer(pc.namer, related, sel.Name.Value, rel), rel)
		if err := builder.setup(pc, related, sel, depth+1); err != nil {
			return nil, err
		}
		query, err := builder.Build()
		if err != nil {
			return nil, err
		}
		nested = append(nested, query)
	}
	return nested, nil
}
