// Package middleware holds the echo middleware chain: CORS, request ids,
// request-scoped logging, tracing, rate limiting, optional Clerk auth, panic
// recovery and the global error handler.
package middleware
