package formula

import (
	"github.com/groundworklabs/groundwork/internal/model"
)

// Formula is a sealed interface over the formula tree nodes. Only types in
// this package implement it, enabling exhaustive type switches in the
// normalizer.
type Formula interface {
	formulaNode() // Marker method - seals interface to this package
}

// Atom is a leaf node wrapping a model atom.
type Atom struct {
	model.Atom
}

func (Atom) formulaNode() {}

// NewAtom builds an atom leaf over p, checking arity and constant kinds.
func NewAtom(p *model.Predicate, args ...model.Term) (Atom, error) {
	a, err := model.NewAtom(p, args...)
	if err != nil {
		return Atom{}, err
	}
	return Atom{a}, nil
}

// Lift wraps an existing model atom as a formula leaf.
func Lift(a model.Atom) Atom { return Atom{a} }

// Negation negates its inner formula.
type Negation struct {
	Inner Formula
}

func (Negation) formulaNode() {}

// Conjunction is the n-ary "and" of its parts.
type Conjunction struct {
	Parts []Formula
}

func (Conjunction) formulaNode() {}

// Disjunction is the n-ary "or" of its parts.
type Disjunction struct {
	Parts []Formula
}

func (Disjunction) formulaNode() {}

// Implication is "Body implies Head".
type Implication struct {
	Body Formula
	Head Formula
}

func (Implication) formulaNode() {}

// Equivalence is "Left if and only if Right".
type Equivalence struct {
	Left  Formula
	Right Formula
}

func (Equivalence) formulaNode() {}

// And builds a conjunction.
func And(parts ...Formula) Conjunction { return Conjunction{Parts: parts} }

// Or builds a disjunction.
func Or(parts ...Formula) Disjunction { return Disjunction{Parts: parts} }

// Not negates a formula.
func Not(f Formula) Negation { return Negation{Inner: f} }

// Implies builds an implication.
func Implies(body, head Formula) Implication { return Implication{Body: body, Head: head} }

// Equiv builds an equivalence.
func Equiv(left, right Formula) Equivalence { return Equivalence{Left: left, Right: right} }
