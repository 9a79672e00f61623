// Package state holds the immutable state snapshot and its pure reducers.
//
// A State is never mutated after construction. Reduce builds the next State
// from the previous one and an action wrapper; sub-states that the action
// does not concern are carried over by pointer (structural sharing).
//
// INVARIANTS:
//   - Reducers never block, perform I/O or panic; failures are stored as values
//   - A request slot moves absent -> pending -> terminal; a terminal result is
//     never replaced by a later action for the same key, except that a fresh
//     request (GetEntry, GetValidationPackage) reopens the slot
//   - Maps inside a published snapshot are never written; reducers copy on write
package state
