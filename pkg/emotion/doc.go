// Package emotion provides the core domain model for the emotion analysis
// session service: the closed label set, score distributions, sessions,
// persisted emotion records, the Storage interface, and the typed errors
// shared by every component.
//
// # Label Set
//
// Every classification result is projected onto a closed set of seven
// labels: angry, disgust, fear, happy, sad, surprise, neutral. The set is
// fixed at compile time. Labels holds the canonical ordering; ties between
// equal scores always resolve to the label appearing first in that order,
// so a given Scores value has exactly one dominant label.
//
// # Sessions and Records
//
// A Session groups the analysis requests of one client interaction. Its id
// is an opaque UUID generated at creation. Sessions are never deleted.
//
// An EmotionRecord is one persisted classification result. Records are
// immutable after creation and are removed exclusively by the retention
// pruner (see the retention subpackage). Within a session, CreatedAt is
// non-decreasing in insertion order; the storage backend clamps it.
//
// # Storage
//
// The Storage interface abstracts persistence. Two implementations exist
// in the storage subpackage:
//
//   - SQLiteStorage: production backend with WAL mode and a connection pool
//   - MemoryStorage: in-memory backend for testing
//
// Implementations must be safe for concurrent use; the retention pruner
// and the request orchestrator share a single instance.
//
// # Error Types
//
// Failures are communicated through typed errors so transports can map
// them to status codes with errors.As:
//
//   - InvalidPayloadError: frame payload that does not decode to an image
//   - UnknownSessionError: frame submitted for a session never started
//   - SessionNotFoundError: lookup miss on a session id
//   - DuplicateSessionError: session id collision at creation
//   - AnalysisUnavailableError: transient classifier failure or timeout
//   - StorageError: persistence backend failure
package emotion
