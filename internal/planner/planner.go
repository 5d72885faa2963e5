// Package planner turns a parsed GraphQL selection into a tree of query
// descriptors. Each top-level field is classified by naming convention into a
// single-record lookup or a multi-record listing; nested relation selections
// become to-one or to-many relation queries bound to their parent relation
// field. The planner performs no I/O and never mutates the model catalog.
package planner
