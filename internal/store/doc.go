// Package store provides SQLite-backed durable storage for factordb.
//
// The store holds three tables:
//   - factors: every intermediate or leaf value, its primality and its
//     current best split (f1_id, f2_id) with value(f1) <= value(f2)
//   - factors_old: superseded splits, never deleted
//   - numbers: client-registered values with packed small primes, an
//     optional cofactor reference and the complete flag
//
// # Connections
//
// All access goes through a bounded Pool. WithConn checks out one
// connection, runs the callback and always rolls back whatever was not
// committed before returning the connection to the idle set. Acquiring past
// the bound fails immediately with ErrResourceExhausted; it never blocks.
//
// Every connection is opened with:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//   - _txlock=immediate: transactions take the write lock at BEGIN, so a
//     read-check-write step cannot interleave with another writer
//
// Rows are converted into FactorRow, NumberRow and ArchivedSplit only in the
// scan helpers of this package.
package store
