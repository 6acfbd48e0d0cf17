// Package handlers implements the HTTP endpoints of the emotion analysis
// API.
//
// # Endpoints
//
//   - POST /start-session   creates a session and returns its uuid
//   - POST /analyze-emotion classifies one base64 frame for a session
//   - GET  /                returns the service banner
//   - GET  /health          liveness probe
//   - GET  /ready           readiness probe
//
// # Error Mapping
//
// Handlers translate the domain error types into a uniform JSON error body
// with a machine-readable code: invalid_payload (400), unknown_session
// (404), analysis_unavailable (503), storage_error and internal_error
// (500). A classification that succeeds but cannot be persisted is still a
// 200; the body carries a "result_not_persisted" warning.
package handlers
