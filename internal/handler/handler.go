// Package handler is the HTTP layer. Handlers receive bound and validated
// requests, call the services and shape their results into responses.
package handler
