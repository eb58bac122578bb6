// Package metrics manages the Prometheus metrics for Vantage Saturn.
//
// Every business metric is recorded through the cardinality guard: the
// Collector evaluates the label set first and only touches the Prometheus
// vector when the guard allows it. On a Drop decision the offending label is
// replaced with an overflow value so the series count stays bounded; on
// CircuitOpenReject the sample is skipped entirely.
//
// The guard's own metrics (decisions, violations, open circuits, tracked
// combinations) are registered directly, bypassing the guard, so enforcement
// remains observable even while a circuit is open.
package metrics
