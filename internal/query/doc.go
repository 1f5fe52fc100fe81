// Package query provides the abstract conjunctive-query representation the
// grounder hands to the data store.
//
// A query is the conjunction of the positive literals of a validated clause,
// optionally restricted by a partial grounding. Treated as relational
// selections over the store, the conjunction produces a result set whose
// rows are variable assignments covering every free variable:
//
//   - shared variables imply equi-joins
//   - constants become selection predicates
//   - a partial grounding adds equality selections
//   - each variable is projected exactly once, in first-occurrence order
//
// The query package is the abstraction boundary between clause analysis and
// backend query engines. The SQL backend lives in querysql; the query types
// here stay backend-agnostic.
package query
