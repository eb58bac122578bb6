package config

import "time"

// Config is the root configuration structure for Vantage Saturn. It contains
// all configuration sections for the HTTP server, the cardinality guard, the
// fraud engine, Kafka publishing, the audit store, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address
	// and timeouts.
	Server ServerConfig `yaml:"server"`

	// Guard contains the cardinality enforcement thresholds and circuit
	// breaker settings.
	Guard GuardConfig `yaml:"guard"`

	// Fraud contains configuration for the demo fraud screening engine.
	Fraud FraudConfig `yaml:"fraud"`

	// Kafka contains configuration for the alert and violation publisher.
	Kafka KafkaConfig `yaml:"kafka"`

	// Audit contains configuration for the violation event store.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains observability configuration: logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request when
	// keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the bytes the server reads parsing request
	// headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// GuardConfig contains the cardinality guard thresholds. It is constructed
// once at startup and never reconfigured at runtime.
type GuardConfig struct {
	// MaxValuesPerLabel bounds distinct values per label of a metric.
	// Default: 100
	MaxValuesPerLabel int `yaml:"max_values_per_label"`

	// MaxCombinationsPerMetric bounds distinct label combinations per
	// metric.
	// Default: 1000
	MaxCombinationsPerMetric int `yaml:"max_combinations_per_metric"`

	// OnViolation selects the reaction to a violation.
	// Options: "warn", "drop", "circuit_break"
	// Default: "warn"
	OnViolation string `yaml:"on_violation"`

	// BreakerThreshold is the consecutive-violation count that opens a
	// metric's circuit.
	// Default: 5
	BreakerThreshold int `yaml:"breaker_threshold"`

	// BreakerCooldown is how long an open circuit rejects before a
	// half-open trial.
	// Default: 5m
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`

	// EventBuffer is the async warning sink buffer size.
	// Default: 1000
	EventBuffer int `yaml:"event_buffer"`
}

// FraudConfig contains configuration for the fraud screening engine.
type FraudConfig struct {
	// RulesPath is the YAML ruleset file.
	// Default: "./rules.yaml"
	RulesPath string `yaml:"rules_path"`

	// Watch enables hot-reloading of the ruleset on file changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// VelocityCacheSize is the number of cards tracked by the velocity
	// rule's LRU.
	// Default: 10000
	VelocityCacheSize int `yaml:"velocity_cache_size"`
}

// KafkaConfig contains configuration for the alert publisher.
type KafkaConfig struct {
	// Enabled controls whether alerts and violations are published.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Brokers is the list of Kafka broker addresses.
	Brokers []string `yaml:"brokers"`

	// ClientID identifies this producer to the brokers.
	// Default: "saturn"
	ClientID string `yaml:"client_id"`

	// AlertTopic receives declined screening alerts.
	// Default: "saturn.fraud.alerts"
	AlertTopic string `yaml:"alert_topic"`

	// ViolationTopic receives cardinality guard events.
	// Default: "saturn.guard.violations"
	ViolationTopic string `yaml:"violation_topic"`

	// FlushTimeout bounds how long Close waits for in-flight messages.
	// Default: 5s
	FlushTimeout time.Duration `yaml:"flush_timeout"`
}

// AuditConfig contains configuration for the violation event store.
type AuditConfig struct {
	// Enabled controls whether guard events are persisted.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains the sqlite backend settings.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// RecorderBuffer is the async write channel size between the guard and
	// the store.
	// Default: 1000
	RecorderBuffer int `yaml:"recorder_buffer"`

	// Retention contains the janitor settings.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains settings for the sqlite audit backend.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// MaxOpenConns limits open connections to the database.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`
}

// RetentionConfig contains the audit janitor settings.
type RetentionConfig struct {
	// Days is how long entries are retained. 0 disables age-based pruning.
	// Default: 30
	Days int `yaml:"days"`

	// MaxRows caps the total stored entries. 0 means unlimited.
	// Default: 0
	MaxRows int64 `yaml:"max_rows"`

	// Schedule is a cron expression for the pruning job. Empty disables
	// scheduled pruning.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging settings.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled controls whether metrics are recorded and exposed.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "saturn"
	Namespace string `yaml:"namespace"`

	// Path is the scrape endpoint path.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
