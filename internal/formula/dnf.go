package formula

import (
	"fmt"

	"github.com/groundworklabs/groundwork/internal/model"
)

// Literal is an atom or its negation inside a DNF clause.
type Literal struct {
	Atom    model.Atom
	Negated bool
}

// dnfClauses reduces f (negated when negated is true) to disjunctive normal
// form and returns its clauses. Each clause is a conjunction of literals
// with duplicate literals removed.
//
// Negation is pushed inward on the fly (De Morgan), implications expand to
// disjunctions, and equivalences to the conjunction of both implications,
// so no separate NNF pass is needed.
func dnfClauses(f Formula, negated bool) ([][]Literal, error) {
	switch n := f.(type) {
	case Atom:
		return [][]Literal{{{Atom: n.Atom, Negated: negated}}}, nil

	case Negation:
		return dnfClauses(n.Inner, !negated)

	case Conjunction:
		if len(n.Parts) == 0 {
			return nil, fmt.Errorf("conjunction must have at least one part")
		}
		if negated {
			// ¬(A ∧ B) = ¬A ∨ ¬B
			return unionClauses(n.Parts, true)
		}
		return crossClauses(n.Parts, false)

	case Disjunction:
		if len(n.Parts) == 0 {
			return nil, fmt.Errorf("disjunction must have at least one part")
		}
		if negated {
			// ¬(A ∨ B) = ¬A ∧ ¬B
			return crossClauses(n.Parts, true)
		}
		return unionClauses(n.Parts, false)

	case Implication:
		// A → B = ¬A ∨ B
		expanded := Disjunction{Parts: []Formula{Negation{Inner: n.Body}, n.Head}}
		return dnfClauses(expanded, negated)

	case Equivalence:
		// A ↔ B = (A → B) ∧ (B → A)
		expanded := Conjunction{Parts: []Formula{
			Implication{Body: n.Left, Head: n.Right},
			Implication{Body: n.Right, Head: n.Left},
		}}
		return dnfClauses(expanded, negated)

	default:
		return nil, fmt.Errorf("unknown formula node type %T", f)
	}
}

// unionClauses concatenates the clause sets of the parts (disjunction).
func unionClauses(parts []Formula, negated bool) ([][]Literal, error) {
	var out [][]Literal
	for _, p := range parts {
		cs, err := dnfClauses(p, negated)
		if err != nil {
			return nil, err
		}
		out = append(out, cs...)
	}
	return out, nil
}

// crossClauses distributes conjunction over the parts' clause sets: every
// combination of one clause per part merges into one clause.
func crossClauses(parts []Formula, negated bool) ([][]Literal, error) {
	acc := [][]Literal{nil}
	for _, p := range parts {
		cs, err := dnfClauses(p, negated)
		if err != nil {
			return nil, err
		}
		next := make([][]Literal, 0, len(acc)*len(cs))
		for _, left := range acc {
			for _, right := range cs {
				next = append(next, mergeClause(left, right))
			}
		}
		acc = next
	}
	return acc, nil
}

// mergeClause concatenates two clauses, dropping literals already present.
func mergeClause(left, right []Literal) []Literal {
	out := append([]Literal(nil), left...)
	for _, lit := range right {
		if !containsLiteral(out, lit) {
			out = append(out, lit)
		}
	}
	return out
}

func containsLiteral(clause []Literal, lit Literal) bool {
	for _, have := range clause {
		if have.Negated == lit.Negated && have.Atom.Equal(lit.Atom) {
			return true
		}
	}
	return false
}
