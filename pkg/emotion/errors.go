package emotion

import "fmt"

// InvalidPayloadError indicates a frame payload that could not be decoded
// into a raster image. This is a client error; retrying without fixing the
// input is not useful.
type InvalidPayloadError struct {
	Reason string // What was wrong with the payload
	Cause  error  // Underlying decode error (if any)
}

// Error implements the error interface.
func (e *InvalidPayloadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid payload: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("invalid payload: %s", e.Reason)
}

// Unwrap returns the underlying cause error.
func (e *InvalidPayloadError) Unwrap() error {
	return e.Cause
}

// NewInvalidPayloadError creates a new InvalidPayloadError.
func NewInvalidPayloadError(reason string, cause error) *InvalidPayloadError {
	return &InvalidPayloadError{Reason: reason, Cause: cause}
}

// SessionNotFoundError indicates a lookup for a session id that does not
// exist in storage.
type SessionNotFoundError struct {
	SessionID string
}

// Error implements the error interface.
func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session %q not found", e.SessionID)
}

// UnknownSessionError indicates an operation against a session that was
// never started. The client must call start-session first.
type UnknownSessionError struct {
	SessionID string
}

// Error implements the error interface.
func (e *UnknownSessionError) Error() string {
	return fmt.Sprintf("unknown session %q: session must be started before submitting frames", e.SessionID)
}

// DuplicateSessionError indicates an attempt to create a session whose id
// already exists. Given the generator guarantees this should not occur; it
// is surfaced as an internal-consistency error, never silently swallowed.
type DuplicateSessionError struct {
	SessionID string
}

// Error implements the error interface.
func (e *DuplicateSessionError) Error() string {
	return fmt.Sprintf("duplicate session %q", e.SessionID)
}

// AnalysisUnavailableError indicates a transient classifier-side failure or
// timeout. The whole request is safe to retry later.
type AnalysisUnavailableError struct {
	Timeout bool  // True when the classifier call exceeded its deadline
	Cause   error // Underlying classifier error
}

// Error implements the error interface.
func (e *AnalysisUnavailableError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("analysis unavailable: classifier timeout: %v", e.Cause)
	}
	return fmt.Sprintf("analysis unavailable: %v", e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *AnalysisUnavailableError) Unwrap() error {
	return e.Cause
}

// NewAnalysisUnavailableError creates a new AnalysisUnavailableError.
func NewAnalysisUnavailableError(timeout bool, cause error) *AnalysisUnavailableError {
	return &AnalysisUnavailableError{Timeout: timeout, Cause: cause}
}

// StorageError represents a failure in the storage backend. Transient
// connectivity loss is safe to retry without re-running classification when
// the caller still holds the computed result.
type StorageError struct {
	Backend   string // Storage backend type ("sqlite", "memory")
	Operation string // Operation that failed ("create_session", "record_emotion", "purge", ...)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}
