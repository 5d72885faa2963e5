package planner

import (
	"fmt"

	"github.com/graphql-go/graphql/language/ast"

	"query-engine/internal/models"
	"query-engine/internal/naming"
)

// Kind classifies a selection into the query it requests.
type Kind int

const (
	// KindNone means the selection is not a query entry point.
	KindNone Kind = iota
	KindSingle
	KindMulti
	KindOneRelation
	KindManyRelation
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindMulti:
		return "multi"
	case KindOneRelation:
		return "one_relation"
	case KindManyRelation:
		return "many_relation"
	default:
		return "none"
	}
}

// Infer decides which query a selection named fieldName requests on model.
// Nested selections are classified by the cardinality of their parent
// relation alone. Top-level selections must match the camel-cased singular
// or plural model name exactly; the singular form is checked first.
func Infer(namer *naming.Namer, model *models.Model, fieldName string, parent *models.RelationField) Kind {
	if parent != nil {
		if parent.IsList {
			return KindManyRelation
		}
		return KindOneRelation
	}
	if model == nil {
		return KindNone
	}
	if namer == nil {
		namer = naming.Default()
	}
	switch fieldName {
	case namer.SingleQueryName(model.Name):
		return KindSingle
	case namer.ListQueryName(model.Name):
		return KindMulti
	default:
		return KindNone
	}
}

// Builder assembles one Query. A builder is set up from a selection by the
// planner, or populated directly, and then built exactly once.
type Builder interface {
	Kind() Kind
	Build() (Query, error)
	setup(pc *planContext, model *models.Model, field *ast.Field, depth int) error
}

// NewBuilder returns an empty builder for kind. Relation kinds require the
// parent relation. KindNone yields nil.
func NewBuilder(kind Kind, parent *models.RelationField) Builder {
	switch kind {
	case KindSingle:
		return &SingleBuilder{}
	case KindMulti:
		return &MultiBuilder{}
	case KindOneRelation:
		return &OneRelationBuilder{Parent: parent}
	case KindManyRelation:
		return &ManyRelationBuilder{Parent: parent}
	default:
		return nil
	}
}

// SingleBuilder builds a *SingleQuery.
type SingleBuilder struct {
	Name     string
	Model    *models.Model
	Selector *NodeSelector
	Selected SelectedFields
	Nested   []Query

	built bool
}

func (b *SingleBuilder) Kind() Kind { return KindSingle }

func (b *SingleBuilder) setup(pc *planContext, model *models.Model, field *ast.Field, depth int) error {
	selector, err := ExtractNodeSelector(field, model, pc.vars)
	if err != nil {
		return err
	}
	selected, err := CollectSelectedFields(model, field, nil)
	if err != nil {
		return err
	}
	nested, err := collectNestedQueries(pc, model, field, depth)
	if err != nil {
		return err
	}
	b.Name = field.Name.Value
	b.Model = model
	b.Selector = &selector
	b.Selected = selected
	b.Nested = nested
	return nil
}

func (b *SingleBuilder) Build() (Query, error) {
	if b.built {
		return nil, fmt.Errorf("%w: single query %s already built", ErrBuilderState, b.Name)
	}
	if b.Name == "" || b.Model == nil || b.Selector == nil || b.Selector.Field == nil {
		return nil, fmt.Errorf("%w: single query requires a name, a model and a selector", ErrBuilderState)
	}
	b.built = true
	return &SingleQuery{
		Name:     b.Name,
		Model:    b.Model,
		Selector: *b.Selector,
		Selected: b.Selected,
		Nested:   b.Nested,
	}, nil
}

// MultiBuilder builds a *MultiQuery.
type MultiBuilder struct {
	Name     string
	Model    *models.Model
	Args     QueryArguments
	Selected SelectedFields
	Nested   []Query

	built bool
}

func (b *MultiBuilder) Kind() Kind { return KindMulti }

func (b *MultiBuilder) setup(pc *planContext, model *models.Model, field *ast.Field, depth int) error {
	args, err := ExtractQueryArguments(field, model, pc.vars)
	if err != nil {
		return err
	}
	selected, err := CollectSelectedFields(model, field, nil)
	if err != nil {
		return err
	}
	nested, err := collectNestedQueries(pc, model, field, depth)
	if err != nil {
		return err
	}
	b.Name = field.Name.Value
	b.Model = model
	b.Args = args
	b.Selected = selected
	b.Nested = nested
	return nil
}

func (b *MultiBuilder) Build() (Query, error) {
	if b.built {
		return nil, fmt.Errorf("%w: multi query %s already built", ErrBuilderState, b.Name)
	}
	if b.Name == "" || b.Model == nil {
		return nil, fmt.Errorf("%w: multi query requires a name and a model", ErrBuilderState)
	}
	b.built = true
	return &MultiQuery{
		Name:     b.Name,
		Model:    b.Model,
		Args:     b.Args,
		Selected: b.Selected,
		Nested:   b.Nested,
	}, nil
}

// OneRelationBuilder builds a *OneRelationQuery.
type OneRelationBuilder struct {
	Name     string
	Parent   *models.RelationField
	Model    *models.Model
	Selected SelectedFields
	Nested   []Query

	built bool
}

func (b *OneRelationBuilder) Kind() Kind { return KindOneRelation }

func (b *OneRelationBuilder) setup(pc *planContext, model *models.Model, field *ast.Field, depth int) error {
	if len(field.Arguments) > 0 {
		return validationErrorf("relation field %s does not accept arguments", field.Name.Value)
	}
	selected, err := CollectSelectedFields(model, field, b.Parent)
	if err != nil {
		return err
	}
	nested, err := collectNestedQueries(pc, model, field, depth)
	if err != nil {
		return err
	}
	b.Name = field.Name.Value
	b.Model = model
	b.Selected = selected
	b.Nested = nested
	return nil
}

func (b *OneRelationBuilder) Build() (Query, error) {
	if b.built {
		return nil, fmt.Errorf("%w: relation query %s already built", ErrBuilderState, b.Name)
	}
	if b.Name == "" || b.Model == nil || b.Parent == nil {
		return nil, fmt.Errorf("%w: relation query requires a name, a model and a parent relation", ErrBuilderState)
	}
	b.built = true
	return &OneRelationQuery{
		Name:     b.Name,
		Parent:   b.Parent,
		Model:    b.Model,
		Selected: b.Selected,
		Nested:   b.Nested,
	}, nil
}

// ManyRelationBuilder builds a *ManyRelationQuery.
type ManyRelationBuilder struct {
	Name     string
	Parent   *models.RelationField
	Model    *models.Model
	Args     QueryArguments
	Selected SelectedFields
	Nested   []Query

	built bool
}

func (b *ManyRelationBuilder) Kind() Kind { return KindManyRelation }

func (b *ManyRelationBuilder) setup(pc *planContext, model *models.Model, field *ast.Field, depth int) error {
	args, err := ExtractQueryArguments(field, model, pc.vars)
	if err != nil {
		return err
	}
	selected, err := CollectSelectedFields(model, field, b.Parent)
	if err != nil {
		return err
	}
	nested, err := collectNestedQueries(pc, model, field, depth)
	if err != nil {
		return err
	}
	b.Name = field.Name.Value
	b.Model = model
	b.Args = args
	b.Selected = selected
	b.Nested = nested
	return nil
}

func (b *ManyRelationBuilder) Build() (Query, error) {
	if b.built {
		return nil, fmt.Errorf("%w: relation query %s already built", ErrBuilderState, b.Name)
	}
	if b.Name == "" || b.Model == nil || b.Parent == nil {
		return nil, fmt.Errorf("%w: relation query requires a name, a model and a parent relation", ErrBuilderState)
	}
	b.built = true
	return &ManyRelationQuery{
		Name:     b.Name,
		Parent:   b.Parent,
		Model:    b.Model,
		Args:     b.Args,
		Selected: b.Selected,
		Nested:   b.Nested,
	}, nil
}
