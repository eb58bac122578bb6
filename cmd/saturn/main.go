// Vantage Saturn is a payment fraud screening service with built-in metric
// cardinality enforcement.
//
// It screens payment transactions against a YAML-configured ruleset and
// records Prometheus metrics about the traffic it sees. Every business metric
// passes through a cardinality guard that bounds label growth, warns on
// violations, and can circuit-break runaway metrics entirely.
//
// Usage:
//
//	# Start the service with default configuration
//	saturn run
//
//	# Start with a custom configuration file
//	saturn run --config /path/to/config.yaml
//
//	# Validate configuration without starting
//	saturn validate
//
//	# Generate screening traffic against a running instance
//	saturn loadgen --cards 500 --explode
//
//	# Show version information
//	saturn version
package main

func main() {
	Execute()
}
