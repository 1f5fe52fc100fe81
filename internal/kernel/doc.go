// Package kernel implements rule kernels: the owners of validated clauses
// that drive full and event-driven incremental grounding.
//
// A RuleKernel is built once from a formula; construction negates the
// formula, reduces it to a single DNF clause, and validates it (see the
// formula package). The clause is immutable afterwards and the kernel is
// identity-stable: Clone is refused.
//
// GroundAll enumerates every ground rule the clause induces against the
// atom manager's current view and merges each into the ground-kernel
// store. OnAtomActivated regrounds exactly the rule instances newly
// triggered by one atom's activation, using the clause's trace assignments
// and partially grounded queries.
//
// How the two literal lists become a concrete ground rule is a capability
// supplied at construction (GroundInstancer), not inheritance; the rest of
// the kernel has no polymorphic surface.
package kernel
