// Package middleware provides the HTTP middleware chain for the API server:
// panic recovery, request ID propagation, structured request logging, and
// request metric recording.
package middleware
