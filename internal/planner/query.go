package planner

import "query-engine/internal/models"

// Query is one node of a query plan tree. It is one of *SingleQuery,
// *MultiQuery, *OneRelationQuery or *ManyRelationQuery.
type Query interface {
	// QueryName is the selection name, used as the result key.
	QueryName() string
	QueryModel() *models.Model
	Selection() SelectedFields
	NestedQueries() []Query
	isQuery()
}

// SingleQuery fetches one record by selector.
type SingleQuery struct {
	Name     string
	Model    *models.Model
	Selector NodeSelector
	Selected SelectedFields
	Nested   []Query
}

// MultiQuery fetches a window of records.
type MultiQuery struct {
	Name     string
	Model    *models.Model
	Args     QueryArguments
	Selected SelectedFields
	Nested   []Query
}

// OneRelationQuery fetches the related record of a to-one relation for each
// parent record.
type OneRelationQuery struct {
	Name     string
	Parent   *models.RelationField
	Model    *models.Model
	Selected SelectedFields
	Nested   []Query
}

// ManyRelationQuery fetches the related records of a to-many relation for
// each parent record.
type ManyRelationQuery struct {
	Name     string
	Parent   *models.RelationField
	Model    *models.Model
	Args     QueryArguments
	Selected SelectedFields
	Nested   []Query
}

func (q *SingleQuery) QueryName() string         { return q.Name }
func (q *SingleQuery) QueryModel() *models.Model { return q.Model }
func (q *SingleQuery) Selection() SelectedFields { return q.Selected }
func (q *SingleQuery) NestedQueries() []Query    { return q.Nested }
func (*SingleQuery) isQuery()                    {}

func (q *MultiQuery) QueryName() string         { return q.Name }
func (q *MultiQuery) QueryModel() *models.Model { return q.Model }
func (q *MultiQuery) Selection() SelectedFields { return q.Selected }
func (q *MultiQuery) NestedQueries() []Query    { return q.Nested }
func (*MultiQuery) isQuery()                    {}

func (q *OneRelationQuery) QueryName() string         { return q.Name }
func (q *OneRelationQuery) QueryModel() *models.Model { return q.Model }
func (q *OneRelationQuery) Selection() SelectedFields { return q.Selected }
func (q *OneRelationQuery) NestedQueries() []Query    { return q.Nested }
func (*OneRelationQuery) isQuery()                    {}

func (q *ManyRelationQuery) QueryName() string         { return q.Name }
func (q *ManyRelationQuery) QueryModel() *models.Model { return q.Model }
func (q *ManyRelationQuery) Selection() SelectedFields { return q.Selected }
func (q *ManyRelationQuery) NestedQueries() []Query    { return q.Nested }
func (*ManyRelationQuery) isQuery()                    {}

// CountNodes returns the number of queries in the tree rooted at q.
func CountNodes(q Query) int {
	if q == nil {
		return 0
	}
	n := 1
	for _, child := range q.NestedQueries() {
		n += CountNodes(child)
	}
	return n
}
