package formula

import (
	"github.com/groundworklabs/groundwork/internal/model"
	"github.com/groundworklabs/groundwork/internal/query"
)

// TraceAtom computes the trace assignments induced by a ground atom: every
// way the atom can unify with some literal of the clause whose predicate
// matches, each yielding a partial variable assignment fixing the matched
// variables to the atom's constants.
//
// One assignment is returned per unifying literal; a ground atom that
// unifies with several literals identically yields repeated assignments on
// purpose - the ground-kernel store's merge turns the repeats into
// multiplicity.
func (c *DNFClause) TraceAtom(a *model.GroundAtom) []query.PartialGrounding {
	var out []query.PartialGrounding
	trace := func(atoms []model.Atom) {
		for _, lit := range atoms {
			if lit.Predicate != a.Predicate {
				continue
			}
			if v, ok := unify(lit, a); ok {
				out = append(out, v)
			}
		}
	}
	trace(c.pos)
	trace(c.neg)
	return out
}

// unify matches a literal's argument tuple against a ground atom of the
// same predicate. Constant arguments must equal the atom's constants;
// variable arguments bind, and a repeated variable must bind consistently.
func unify(lit model.Atom, a *model.GroundAtom) (query.PartialGrounding, bool) {
	binding := make(query.PartialGrounding, len(lit.Args))
	for i, t := range lit.Args {
		switch arg := t.(type) {
		case model.Constant:
			if arg != a.Args[i] {
				return nil, false
			}
		case model.Variable:
			if prev, ok := binding[arg]; ok {
				if prev != a.Args[i] {
					return nil, false
				}
				continue
			}
			binding[arg] = a.Args[i]
		default:
			return nil, false
		}
	}
	return binding, true
}
