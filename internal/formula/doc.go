// Package formula provides logical formulas over atoms and their reduction
// to the single clausal form the grounder queries.
//
// A formula is a tree over the connectives {and, or, not, implies,
// equivalent} with atom leaves. Analyze negates the formula, reduces the
// negation to disjunctive normal form, and accepts only formulas equivalent
// to a single universally quantified disjunction: the negation must reduce
// to exactly one DNF clause (a conjunction of literals).
//
// The accepted clause is immutable and carries everything grounding needs:
// the positive/negative literal split, the conjunctive query formula over
// the positive literals, and trace-assignment computation for atom
// activation events.
//
// Validation failures carry distinct codes (MultipleClauses,
// UnboundVariable, GroundFormula, NotQueriable) so callers can match the
// violated condition; see errors.go.
package formula
