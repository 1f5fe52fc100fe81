package model

import (
	"fmt"
	"strings"
)

// GroundRule is a predicate-free, fully ground instance of a rule: an
// ordered list of positive ground atoms, an ordered list of negative ground
// atoms, and a grounding multiplicity.
//
// Identity is the unordered multiset of signed literals. Two ground rules
// with identical multisets are the same rule; stores merge them by
// incrementing the multiplicity.
//
// Lifecycle: created on first grounding, mutated only via
// IncreaseGroundings, never partially updated.
type GroundRule struct {
	Pos []*GroundAtom
	Neg []*GroundAtom

	// Weight and Hard are set by the rule kernel's instancer and are not
	// part of the rule's identity.
	Weight float64
	Hard   bool

	mult int
	key  string
}

// NewGroundRule builds a ground rule from the two literal lists, copying
// both (callers may reuse the passed slices as scratch buffers). The
// multiplicity starts at 1.
func NewGroundRule(pos, neg []*GroundAtom) *GroundRule {
	posCopy := append([]*GroundAtom(nil), pos...)
	negCopy := append([]*GroundAtom(nil), neg...)
	return &GroundRule{
		Pos:  posCopy,
		Neg:  negCopy,
		mult: 1,
		key:  RuleIdentity(posCopy, negCopy),
	}
}

// Key returns the content-addressed identity of the rule's signed literal
// multiset.
func (r *GroundRule) Key() string { return r.key }

// Multiplicity returns the number of groundings merged into this rule,
// counting a repeat of the same grounding again. Always >= 1.
func (r *GroundRule) Multiplicity() int { return r.mult }

// IncreaseGroundings records one more grounding of the same literal
// multiset.
func (r *GroundRule) IncreaseGroundings() { r.mult++ }

// String renders the rule as a conjunction of signed ground literals in
// literal order, e.g. "Friend(alice, bob) & !Likes(bob, tea)".
func (r *GroundRule) String(reg *Registry) string {
	parts := make([]string, 0, len(r.Pos)+len(r.Neg))
	for _, a := range r.Pos {
		parts = append(parts, a.String(reg))
	}
	for _, a := range r.Neg {
		parts = append(parts, "!"+a.String(reg))
	}
	s := strings.Join(parts, " & ")
	if r.mult > 1 {
		return fmt.Sprintf("%s x%d", s, r.mult)
	}
	return s
}
