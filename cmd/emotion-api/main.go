// Emotion API is an HTTP service for session-based emotion analysis of
// video frames.
//
// Clients start a session, then submit base64-encoded frames; each frame is
// classified by an external model service and the per-frame score
// distribution is persisted in SQLite. Stored results are pruned on a
// schedule once they exceed the retention window.
//
// Usage:
//
//	# Start the server with default configuration
//	emotion-api run
//
//	# Start with a custom configuration file
//	emotion-api run --config /etc/emotion-api/config.yaml
//
//	# Validate a configuration file without starting the server
//	emotion-api validate --config config.yaml
//
//	# Show version information
//	emotion-api version
package main

func main() {
	Execute()
}
