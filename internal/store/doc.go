// Package store provides SQLite-backed persistence for a node.
//
// One database file holds three tables:
//   - content: the content-addressable store (ContentStorage)
//   - eav: entity-attribute-value triples (EAVStorage)
//   - action_log: every applied action, in order (ActionLog)
//
// # Critical Patterns
//
// Idempotent writes:
//   - Every INSERT uses ON CONFLICT DO NOTHING; content and triples are
//     keyed by their own value, so rewriting them is harmless
//
// Deterministic reads:
//   - Queries order by their key with COLLATE BINARY
//   - The action log orders by seq, the logical clock, never by time
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
