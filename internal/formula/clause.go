package formula

import (
	"strings"

	"github.com/groundworklabs/groundwork/internal/model"
	"github.com/groundworklabs/groundwork/internal/query"
)

// DNFClause is the canonical form used for grounding: the single DNF clause
// of the negated rule formula, split into positive and negative literals.
//
// A clause accepted by Analyze satisfies:
//   - every variable occurs in at least one positive literal over a
//     Standard predicate (so its domain is finite and enumerable)
//   - the clause is non-ground
//   - the positive-literal conjunction forms a well-formed query whose
//     projection covers every free variable
//
// The clause is immutable after construction.
type DNFClause struct {
	reg  *model.Registry
	pos  []model.Atom
	neg  []model.Atom
	vars []model.Variable
}

// Analyze negates f, reduces the negation to DNF, and validates the result
// as a groundable clause. The returned clause is logically equivalent to
// the negation of f. On rejection exactly one ValidationError is returned
// with the code of the violated condition.
func Analyze(f Formula, reg *model.Registry) (*DNFClause, error) {
	clauses, err := dnfClauses(f, true)
	if err != nil {
		return nil, err
	}

	if len(clauses) != 1 {
		return nil, &ValidationError{
			Code:    CodeMultipleClauses,
			Message: "formula must be equivalent to a single disjunction of literals",
		}
	}

	c := &DNFClause{reg: reg}
	for _, lit := range clauses[0] {
		if lit.Negated {
			c.neg = append(c.neg, lit.Atom)
		} else {
			c.pos = append(c.pos, lit.Atom)
		}
	}
	c.vars = collectVariables(c.pos, c.neg)

	// Binding invariant: each variable must be enumerable through a
	// positive literal over a Standard predicate. (Relative to the
	// original formula these are its negative literals; the polarity here
	// is that of the normalized clause.)
	bound := make(map[model.Variable]bool)
	for _, a := range c.pos {
		p := reg.MustByID(a.Predicate)
		if p.Kind != model.Standard {
			continue
		}
		for _, t := range a.Args {
			if v, ok := t.(model.Variable); ok {
				bound[v] = true
			}
		}
	}
	for _, v := range c.vars {
		if !bound[v] {
			return nil, &ValidationError{
				Code:     CodeUnboundVariable,
				Message:  "variable must be used at least once as an argument of a positive literal with a standard predicate",
				Variable: v,
			}
		}
	}

	if len(c.vars) == 0 {
		return nil, &ValidationError{
			Code:    CodeGroundFormula,
			Message: "formula has no variables",
		}
	}

	if err := c.checkQueriable(); err != nil {
		return nil, err
	}

	return c, nil
}

// checkQueriable verifies the positive-literal conjunction maps to a
// conjunctive query: non-empty and entirely over Standard predicates.
func (c *DNFClause) checkQueriable() error {
	if len(c.pos) == 0 {
		return &ValidationError{
			Code:    CodeNotQueriable,
			Message: "clause has no queriable literals",
		}
	}
	for _, a := range c.pos {
		if p := c.reg.MustByID(a.Predicate); p.Kind != model.Standard {
			return &ValidationError{
				Code:    CodeNotQueriable,
				Message: "positive literal over predicate " + p.Name + " cannot be queried",
			}
		}
	}
	return nil
}

// PosLiterals returns the positive literals in clause order. The returned
// slice is shared; callers must not modify it.
func (c *DNFClause) PosLiterals() []model.Atom { return c.pos }

// NegLiterals returns the negative literals in clause order. The returned
// slice is shared; callers must not modify it.
func (c *DNFClause) NegLiterals() []model.Atom { return c.neg }

// Variables returns the clause's variables in first-occurrence order
// (positive literals first).
func (c *DNFClause) Variables() []model.Variable { return c.vars }

// Predicates returns the distinct predicates appearing anywhere in the
// clause, in first-occurrence order. Used for event registration.
func (c *DNFClause) Predicates() []model.PredicateID {
	var ids []model.PredicateID
	seen := make(map[model.PredicateID]bool)
	for _, a := range c.pos {
		if !seen[a.Predicate] {
			seen[a.Predicate] = true
			ids = append(ids, a.Predicate)
		}
	}
	for _, a := range c.neg {
		if !seen[a.Predicate] {
			seen[a.Predicate] = true
			ids = append(ids, a.Predicate)
		}
	}
	return ids
}

// QueryFormula returns the conjunctive query over the clause's positive
// literals. The same query is handed to the data store unchanged for every
// grounding pass.
func (c *DNFClause) QueryFormula() query.Conjunction {
	return query.Conjunction{Atoms: c.pos}
}

// String renders the clause as its literal conjunction, e.g.
// "Friend(X, Y) & Likes(X, Z) & !Likes(Y, Z)".
func (c *DNFClause) String() string {
	parts := make([]string, 0, len(c.pos)+len(c.neg))
	for _, a := range c.pos {
		parts = append(parts, a.String(c.reg))
	}
	for _, a := range c.neg {
		parts = append(parts, "!"+a.String(c.reg))
	}
	return strings.Join(parts, " & ")
}

func collectVariables(pos, neg []model.Atom) []model.Variable {
	var vars []model.Variable
	seen := make(map[model.Variable]bool)
	collect := func(atoms []model.Atom) {
		for _, a := range atoms {
			for _, t := range a.Args {
				if v, ok := t.(model.Variable); ok && !seen[v] {
					seen[v] = true
					vars = append(vars, v)
				}
			}
		}
	}
	collect(pos)
	collect(neg)
	return vars
}
