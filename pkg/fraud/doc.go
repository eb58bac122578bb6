// Package fraud implements the demo transaction screening engine.
//
// The engine evaluates a small YAML-configured ruleset (amount ceilings per
// gateway, watchlisted countries and BINs, per-card velocity) and produces an
// approve / review / decline assessment with a score and reasons. It is
// deliberately simple: its job is to generate realistically skewed label
// traffic for the metrics pipeline, not to catch real fraud.
package fraud
