// Package eav stores entity-attribute-value triples.
//
// Triples are plain comparable values and a Set has set semantics: adding a
// triple twice leaves one copy. Attributes are validated on construction and
// again by every backend's Add, so the zero triple is never stored.
//
// Backends: MemoryStorage (process local), RedisStorage (shared), and
// store.EAVStorage (SQLite). All satisfy the same contract, exercised by
// eavtest.RunStorageContract.
package eav
