package model

import (
	"fmt"
	"strings"
)

// Atom is a predicate applied to an arity-sized tuple of terms. Atoms may
// mix variables and constants; an atom with only constants is ground.
type Atom struct {
	Predicate PredicateID
	Args      []Term
}

// NewAtom builds an atom over p, checking arity and that constant arguments
// match the predicate's argument kinds.
func NewAtom(p *Predicate, args ...Term) (Atom, error) {
	if len(args) != p.Arity() {
		return Atom{}, fmt.Errorf("atom %s: got %d arguments, want %d", p.Name, len(args), p.Arity())
	}
	for i, t := range args {
		c, ok := t.(Constant)
		if !ok {
			continue
		}
		if c.Kind() != p.Args[i] {
			return Atom{}, fmt.Errorf("atom %s: argument %d is %s, want %s", p.Name, i, c.Kind(), p.Args[i])
		}
	}
	return Atom{Predicate: p.ID, Args: append([]Term(nil), args...)}, nil
}

// Variables returns the atom's variables in first-occurrence order.
func (a Atom) Variables() []Variable {
	var vars []Variable
	seen := make(map[Variable]bool)
	for _, t := range a.Args {
		if v, ok := t.(Variable); ok && !seen[v] {
			seen[v] = true
			vars = append(vars, v)
		}
	}
	return vars
}

// IsGround reports whether every argument is a constant.
func (a Atom) IsGround() bool {
	for _, t := range a.Args {
		if _, ok := t.(Constant); !ok {
			return false
		}
	}
	return true
}

// Equal reports structural equality of two atoms.
func (a Atom) Equal(b Atom) bool {
	if a.Predicate != b.Predicate || len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if a.Args[i] != b.Args[i] {
			return false
		}
	}
	return true
}

// String renders the atom using the registry for the predicate name.
func (a Atom) String(reg *Registry) string {
	p := reg.MustByID(a.Predicate)
	parts := make([]string, len(a.Args))
	for i, t := range a.Args {
		switch v := t.(type) {
		case Variable:
			parts[i] = v.String()
		case Constant:
			parts[i] = v.Encode()
		default:
			parts[i] = fmt.Sprintf("%v", t)
		}
	}
	return fmt.Sprintf("%s(%s)", p.Name, strings.Join(parts, ", "))
}

// GroundAtom is a fully ground atom. Identity is (predicate, tuple of
// values); the atom manager interns ground atoms so that equal identity
// means the same object.
type GroundAtom struct {
	Predicate PredicateID
	Args      []Constant

	key string
}

// NewGroundAtom builds a ground atom over p, checking arity and argument
// kinds, and precomputes its identity key.
func NewGroundAtom(p *Predicate, args []Constant) (*GroundAtom, error) {
	if len(args) != p.Arity() {
		return nil, fmt.Errorf("ground atom %s: got %d arguments, want %d", p.Name, len(args), p.Arity())
	}
	for i, c := range args {
		if c.Kind() != p.Args[i] {
			return nil, fmt.Errorf("ground atom %s: argument %d is %s, want %s", p.Name, i, c.Kind(), p.Args[i])
		}
	}
	copied := append([]Constant(nil), args...)
	return &GroundAtom{
		Predicate: p.ID,
		Args:      copied,
		key:       AtomIdentity(p.ID, copied),
	}, nil
}

// Key returns the content-addressed identity of the atom.
func (g *GroundAtom) Key() string { return g.key }

// String renders the ground atom using the registry for the predicate name.
func (g *GroundAtom) String(reg *Registry) string {
	p := reg.MustByID(g.Predicate)
	parts := make([]string, len(g.Args))
	for i, c := range g.Args {
		parts[i] = c.Encode()
	}
	return fmt.Sprintf("%s(%s)", p.Name, strings.Join(parts, ", "))
}
