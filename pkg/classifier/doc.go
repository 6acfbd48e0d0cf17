// Package classifier provides the HTTP client for the external emotion
// classifier service.
//
// The classifier receives a base64-encoded image and returns a score per
// emotion label plus its own idea of the dominant emotion. The scores are
// taken as-is; projection onto the canonical label set and dominant-label
// recomputation happen in the analysis gateway, not here.
//
// Exactly one request is made per Classify call. Retry policy belongs to
// the caller; a classifier that is slow or down surfaces quickly as an
// UnavailableError rather than stalling the frame pipeline behind hidden
// retries. Requests honor context cancellation, so a disconnected client
// aborts its in-flight classification.
package classifier
