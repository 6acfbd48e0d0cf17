package classifier

import (
	"fmt"
	"time"
)

// UnavailableError represents a transient classifier failure: a network
// error, a timeout, or a 5xx response. The request is safe to retry later.
type UnavailableError struct {
	// Endpoint is the classifier URL that failed
	Endpoint string

	// Timeout is true when the request exceeded its deadline
	Timeout bool

	// ConfiguredTimeout is the client timeout in effect (if Timeout)
	ConfiguredTimeout time.Duration

	// StatusCode is the HTTP status code (0 for network errors)
	StatusCode int

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("classifier %q timeout after %s", e.Endpoint, e.ConfiguredTimeout)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("classifier %q unavailable (status %d)", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("classifier %q unavailable: %v", e.Endpoint, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// ResponseError represents a non-retryable classifier rejection (4xx).
type ResponseError struct {
	// Endpoint is the classifier URL
	Endpoint string

	// StatusCode is the HTTP status code
	StatusCode int

	// Message is the response body returned by the classifier
	Message string
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	return fmt.Sprintf("classifier %q rejected request (status %d): %s",
		e.Endpoint, e.StatusCode, e.Message)
}

// ParseError represents a malformed classifier response.
type ParseError struct {
	// Endpoint is the classifier URL
	Endpoint string

	// RawResponse is the raw response body that failed to parse
	RawResponse string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("classifier %q response parse error: %v", e.Endpoint, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
