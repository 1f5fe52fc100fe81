package query

import (
	"fmt"

	"github.com/groundworklabs/groundwork/internal/model"
)

// Validate checks that a query can be mapped to a conjunctive relational
// query: at least one atom, every atom over a Standard predicate with the
// declared arity, and every partially grounded variable actually appearing
// in the conjunction.
func Validate(q Query, reg *model.Registry) error {
	if len(q.Formula.Atoms) == 0 {
		return fmt.Errorf("query has no atoms")
	}

	vars := make(map[model.Variable]bool)
	for i, a := range q.Formula.Atoms {
		p, ok := reg.ByID(a.Predicate)
		if !ok {
			return fmt.Errorf("query atom %d: unknown predicate id %d", i, int(a.Predicate))
		}
		if p.Kind != model.Standard {
			return fmt.Errorf("query atom %d: predicate %s is not a standard predicate", i, p.Name)
		}
		if len(a.Args) != p.Arity() {
			return fmt.Errorf("query atom %d: %s has %d arguments, want %d", i, p.Name, len(a.Args), p.Arity())
		}
		for j, t := range a.Args {
			switch arg := t.(type) {
			case model.Variable:
				vars[arg] = true
			case model.Constant:
				if arg.Kind() != p.Args[j] {
					return fmt.Errorf("query atom %d: %s argument %d is %s, want %s", i, p.Name, j, arg.Kind(), p.Args[j])
				}
			default:
				return fmt.Errorf("query atom %d: %s argument %d has unknown term kind %T", i, p.Name, j, t)
			}
		}
	}

	for v := range q.Partial {
		if !vars[v] {
			return fmt.Errorf("partial grounding binds %s, which does not appear in the query", v)
		}
	}

	return nil
}
