// Package engine implements the action dispatch engine and the bridge from
// asynchronous operations to state.
//
// ARCHITECTURE:
//
// Single-Writer Reducer Loop:
// Any goroutine may Dispatch an action. Actions are stamped with a
// monotonic ID and appended to an unbounded FIFO queue. Run is the only
// consumer: it applies state.Reduce to each action in receipt order,
// publishes the resulting snapshot atomically and wakes every waiter.
//
// Readers never lock. State() returns the latest immutable snapshot, and
// Changed() returns a channel that is closed on the next publication.
//
// Future-to-State Bridge:
// Operations that wait on a network response or a background computation
// dispatch an action and then Await a Future whose probe inspects each new
// snapshot. Await blocks on change notification, never on a timer.
//
// Worker Pool:
// CPU or I/O heavy work (validation package assembly) runs on a bounded
// Pool. A saturated pool in reject mode refuses the submission so the caller
// can record the failure as the request's result.
//
// CRITICAL PATTERNS:
//
// Logical Clock:
// Wrapper IDs come from Clock.Next() under the queue lock, so application
// order and ID order always agree. Wall-clock time is never used for ordering.
package engine
