// Package storage provides persistence backends for sessions and emotion
// records.
//
// # Backends
//
// Two implementations of the emotion.Storage interface are provided:
//
//   - SQLiteStorage: production backend backed by a SQLite database file.
//     WAL mode, busy timeout and connection pool limits are configurable.
//     Foreign keys are enforced on every pooled connection.
//   - MemoryStorage: map-backed implementation for unit tests, including a
//     hook to inject persistence failures.
//
// # Semantics
//
// Both backends implement the same invariants:
//
//   - Session ids are unique; creating an existing id fails with
//     DuplicateSessionError.
//   - Emotion records require an existing session; inserting against an
//     unknown session fails with UnknownSessionError and writes nothing.
//   - Within a session, stored created_at values never decrease in
//     insertion order. A timestamp older than the session's newest record
//     is clamped to that record's timestamp inside the insert transaction.
//   - PurgeOlderThan deletes exactly the records with created_at strictly
//     before the cutoff, atomically, and is idempotent for a fixed cutoff.
//
// Timestamps are normalized to UTC on write.
package storage
