// Package telemetry provides observability for Vantage Saturn.
//
// # Components
//
//   - logging: structured logging built on log/slog
//   - metrics: Prometheus metrics collection, guarded by the cardinality
//     engine in pkg/cardinality
//
// # Usage
//
//	logger, err := logging.Setup(cfg.Telemetry.Logging, os.Stdout)
//	if err != nil {
//		return err
//	}
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, guard, nil)
//	collector.RecordScreening("stripe", "approve", 0, nil)
//
// Every label applied to a business metric passes through the guard first,
// so a runaway label population degrades into an "_overflow" series instead
// of unbounded time series growth.
package telemetry
