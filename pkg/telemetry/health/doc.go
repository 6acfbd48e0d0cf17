// Package health provides readiness checks for the service dependencies.
//
// A Checker aggregates named dependency checks and runs them concurrently
// with a per-check timeout. The service registers a database check and a
// classifier reachability check; the /ready endpoint reports "ready" only
// when every registered check passes and "degraded" otherwise.
//
// Liveness is deliberately not modeled here: a process that can answer
// /health at all is alive, so that endpoint never consults the checker.
package health
