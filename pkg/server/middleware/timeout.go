package middleware

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware bounds request handling with context.WithTimeout. The
// deadline covers the entire pipeline including the classifier call, so a
// hung classifier surfaces to the handler as a context error rather than a
// stuck connection.
//
// Example usage:
//
//	handler = TimeoutMiddleware(30 * time.Second)(handler)
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
