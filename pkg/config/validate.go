package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateGuard(&cfg.Guard)...)
	errs = append(errs, validateFraud(&cfg.Fraud)...)
	errs = append(errs, validateKafka(&cfg.Kafka)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

// validateServer validates server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}
	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}

	return errs
}

// validateGuard validates cardinality guard configuration. Invalid thresholds
// are fatal at startup; the guard must never initialize misconfigured.
func validateGuard(cfg *GuardConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxValuesPerLabel < 1 {
		errs = append(errs, FieldError{
			Field:   "guard.max_values_per_label",
			Message: "must be at least 1",
		})
	}
	if cfg.MaxCombinationsPerMetric < 1 {
		errs = append(errs, FieldError{
			Field:   "guard.max_combinations_per_metric",
			Message: "must be at least 1",
		})
	}
	switch cfg.OnViolation {
	case "warn", "drop", "circuit_break":
	default:
		errs = append(errs, FieldError{
			Field:   "guard.on_violation",
			Message: fmt.Sprintf("must be one of warn, drop, circuit_break, got %q", cfg.OnViolation),
		})
	}
	if cfg.BreakerThreshold < 1 {
		errs = append(errs, FieldError{
			Field:   "guard.breaker_threshold",
			Message: "must be at least 1",
		})
	}
	if cfg.BreakerCooldown < 0 {
		errs = append(errs, FieldError{
			Field:   "guard.breaker_cooldown",
			Message: "must be non-negative",
		})
	}
	if cfg.EventBuffer < 1 {
		errs = append(errs, FieldError{
			Field:   "guard.event_buffer",
			Message: "must be at least 1",
		})
	}

	return errs
}

// validateFraud validates fraud engine configuration.
func validateFraud(cfg *FraudConfig) []FieldError {
	var errs []FieldError

	if cfg.RulesPath == "" {
		errs = append(errs, FieldError{
			Field:   "fraud.rules_path",
			Message: "rules path is required",
		})
	}
	if cfg.VelocityCacheSize < 1 {
		errs = append(errs, FieldError{
			Field:   "fraud.velocity_cache_size",
			Message: "must be at least 1",
		})
	}

	return errs
}

// validateKafka validates Kafka publisher configuration.
func validateKafka(cfg *KafkaConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return nil
	}

	if len(cfg.Brokers) == 0 {
		errs = append(errs, FieldError{
			Field:   "kafka.brokers",
			Message: "at least one broker is required when kafka is enabled",
		})
	}
	if cfg.AlertTopic == "" {
		errs = append(errs, FieldError{
			Field:   "kafka.alert_topic",
			Message: "alert topic is required when kafka is enabled",
		})
	}
	if cfg.ViolationTopic == "" {
		errs = append(errs, FieldError{
			Field:   "kafka.violation_topic",
			Message: "violation topic is required when kafka is enabled",
		})
	}

	return errs
}

// validateAudit validates audit store configuration.
func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory", "sqlite":
	default:
		errs = append(errs, FieldError{
			Field:   "audit.backend",
			Message: fmt.Sprintf("must be one of memory, sqlite, got %q", cfg.Backend),
		})
	}
	if cfg.Backend == "sqlite" && cfg.SQLite.Path == "" {
		errs = append(errs, FieldError{
			Field:   "audit.sqlite.path",
			Message: "database path is required for the sqlite backend",
		})
	}
	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention.days",
			Message: "must be non-negative",
		})
	}
	if cfg.Retention.MaxRows < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention.max_rows",
			Message: "must be non-negative",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error, got %q", cfg.Logging.Level),
		})
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("must be one of json, text, got %q", cfg.Logging.Format),
		})
	}
	if cfg.Metrics.Path != "" && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "must start with /",
		})
	}

	return errs
}
