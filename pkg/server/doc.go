// Package server assembles the HTTP front end of the emotion analysis
// service: the route table, the middleware chain and the lifecycle of the
// underlying http.Server.
//
// # Routes
//
//   - POST /start-session
//   - POST /analyze-emotion
//   - GET  /
//   - GET  /health
//   - GET  /ready
//   - GET  /metrics (when metrics are enabled; path is configurable)
//
// # Middleware Chain
//
// Requests pass through recovery, logging, request id, CORS and timeout
// middleware before reaching a handler. Recovery is outermost so that a
// panic anywhere in the chain still produces a JSON 500.
//
// # Lifecycle
//
// Start blocks until the context is cancelled or the listener fails;
// Shutdown drains in-flight requests within the configured shutdown
// timeout. Both are safe to call once from different goroutines.
package server
