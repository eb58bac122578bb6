package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "saturn",
	Short: "Vantage Saturn - fraud screening with metric cardinality enforcement",
	Long: `Vantage Saturn is a payment fraud screening service that demonstrates
metric cardinality enforcement.

It screens payment transactions against a configurable ruleset and records
Prometheus metrics about the traffic. Every business metric passes through a
cardinality guard that:
  - Bounds distinct values per label and combinations per metric
  - Warns, drops, or circuit-breaks on violations
  - Persists violation events for audit
  - Publishes alerts and violations to Kafka`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
