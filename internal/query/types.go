package query

import (
	"github.com/groundworklabs/groundwork/internal/model"
)

// Conjunction is an ordered conjunction of positive atoms. Atom order is
// the clause's literal order; it determines join order hints and the
// stable projection.
type Conjunction struct {
	Atoms []model.Atom
}

// Projection returns the query's projected variables: every variable of the
// conjunction exactly once, in first-occurrence order. The order is stable
// for a given conjunction, which keeps result columns and row ordering
// reproducible.
func (c Conjunction) Projection() []model.Variable {
	var vars []model.Variable
	seen := make(map[model.Variable]bool)
	for _, a := range c.Atoms {
		for _, t := range a.Args {
			if v, ok := t.(model.Variable); ok && !seen[v] {
				seen[v] = true
				vars = append(vars, v)
			}
		}
	}
	return vars
}

// PartialGrounding fixes a subset of the query's variables to constants.
// Applied as additional equality selections during compilation.
type PartialGrounding map[model.Variable]model.Constant

// Clone returns an independent copy of the partial grounding.
func (pg PartialGrounding) Clone() PartialGrounding {
	out := make(PartialGrounding, len(pg))
	for v, c := range pg {
		out[v] = c
	}
	return out
}

// Query couples a conjunction with an optional partial grounding.
type Query struct {
	Formula Conjunction
	Partial PartialGrounding
}

// New builds a query over the conjunction with no partial grounding.
func New(c Conjunction) Query {
	return Query{Formula: c}
}

// WithPartial returns a copy of the query restricted by the partial
// grounding. The grounding is cloned; callers may reuse their map.
func (q Query) WithPartial(pg PartialGrounding) Query {
	q.Partial = pg.Clone()
	return q
}
