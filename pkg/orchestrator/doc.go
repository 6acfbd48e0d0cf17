// Package orchestrator sequences the service's two client-facing
// operations.
//
// StartSession generates a UUID, persists the session and returns it; an
// id is only ever handed out with its session row committed. SubmitFrame
// validates the session id shape, delegates classification to the analysis
// gateway and records the result with the classification time as the
// record timestamp.
//
// A storage failure after successful classification does not lose the
// result: SubmitFrame returns it flagged as unpersisted so the transport
// can deliver it along with a warning.
package orchestrator
