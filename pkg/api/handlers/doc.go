// Package handlers implements the HTTP endpoints of the screening API: the
// transaction screening endpoint, the cardinality stats and events endpoints,
// and the health and readiness probes.
package handlers
