// Package store provides the SQLite-backed partitioned data store the
// grounder reads from.
//
// Each Standard predicate corresponds to one relation with columns
// (arg_0 .. arg_{k-1}, partition_id, value, confidence). Argument columns
// hold the stable text encoding of constants; selections on argument
// columns and joins across shared-variable columns are what the query
// compiler relies on, and a partition_id restriction scopes rows to a
// partition set.
//
// A Database is a view pinned to exactly one write partition and a set of
// read partitions. Partition exclusivity is enforced at open time: no write
// partition of one open database may be a read or write partition of
// another simultaneously open database.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
//
// All open data stores are tracked in a process-wide registry with an
// explicit lifecycle; see registry.go.
package store
