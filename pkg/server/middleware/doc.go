// Package middleware provides the HTTP middleware chain for the emotion
// analysis API.
//
// The standard chain, outermost first:
//
//	recovery -> logging -> request id -> CORS -> timeout -> handler
//
// Recovery sits outermost so a panic anywhere below still produces a clean
// 500. Logging wraps everything that can set a status code and doubles as
// the request metrics tap. The timeout context is innermost so its
// deadline reaches the classifier call through the request context.
package middleware
