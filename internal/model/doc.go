// Package model provides the canonical term, predicate, and atom types for
// groundwork.
//
// This package contains the foundational data model. All other internal
// packages import model; model imports nothing internal. This keeps the
// model the bottom layer with no circular dependencies.
//
// Key design constraints:
//   - Predicates are owned by a Registry and referenced by PredicateID
//     everywhere else; atoms never hold back-pointers.
//   - Constant is a sealed variant (integer id, string, unique identifier,
//     double); every constant has a stable text encoding used both for
//     storage columns and for identity hashing.
//   - Identity of ground atoms and ground rules is content-addressed:
//     SHA-256 over the canonical encoding with domain separation.
package model
