// Package cardinality bounds the number of distinct label combinations a
// metrics pipeline may emit, protecting the downstream store from unbounded
// series growth.
//
// Every metric-recording call site asks the Guard for a decision before
// touching a meter:
//
//	guard, _ := cardinality.New(cardinality.DefaultConfig())
//	decision := guard.Evaluate("payments_total", map[string]string{"gateway": "stripe"})
//	if decision.Allowed() {
//	    paymentsTotal.WithLabelValues("stripe").Inc()
//	}
//
// The Guard tracks two independent bounds per metric: distinct values per
// label and distinct label combinations per metric. Exceeding either triggers
// the configured violation action (warn, drop, or circuit-break). Consecutive
// violations trip a per-metric circuit breaker that rejects new combinations
// until a cooldown elapses, then recovers through a half-open trial.
//
// Counts are monotonically non-decreasing for the life of the process: the
// Guard alerts on growth, it never evicts observed values. A combination that
// was accepted once is allowed forever, so legitimate steady-state traffic
// can never trip the breaker.
package cardinality
