// Package atom provides the atom manager and the atom event framework.
//
// The manager interns ground atoms (two atoms with equal identity are the
// same object) and dispatches conjunctive queries to the data store view it
// wraps.
//
// The event framework turns atom activations into explicit message passing:
// activations enter a FIFO queue stamped by a logical clock, and Drain
// delivers them serially to the handlers registered for the atom's
// predicate. A handler is never re-entered concurrently; the framework is
// the serialization point across activations. The only supported event set
// is atom-activated.
package atom
