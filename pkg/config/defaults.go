package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Guard defaults
	DefaultGuardMaxValuesPerLabel        = 100
	DefaultGuardMaxCombinationsPerMetric = 1000
	DefaultGuardOnViolation              = "warn"
	DefaultGuardBreakerThreshold         = 5
	DefaultGuardBreakerCooldown          = 5 * time.Minute
	DefaultGuardEventBuffer              = 1000

	// Fraud defaults
	DefaultFraudRulesPath         = "./rules.yaml"
	DefaultFraudVelocityCacheSize = 10000

	// Kafka defaults
	DefaultKafkaClientID       = "saturn"
	DefaultKafkaAlertTopic     = "saturn.fraud.alerts"
	DefaultKafkaViolationTopic = "saturn.guard.violations"
	DefaultKafkaFlushTimeout   = 5 * time.Second

	// Audit defaults
	DefaultAuditBackend           = "sqlite"
	DefaultAuditSQLitePath        = "data/audit.db"
	DefaultAuditSQLiteBusyTimeout = 5 * time.Second
	DefaultAuditSQLiteMaxConns    = 10
	DefaultAuditRecorderBuffer    = 1000
	DefaultAuditRetentionDays     = 30
	DefaultAuditRetentionSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsNamespace = "saturn"
	DefaultMetricsPath      = "/metrics"
)

// ApplyDefaults applies default values to a Config struct. It sets defaults
// for any fields that have zero values. This function is idempotent and safe
// to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// Guard defaults
	if cfg.Guard.MaxValuesPerLabel == 0 {
		cfg.Guard.MaxValuesPerLabel = DefaultGuardMaxValuesPerLabel
	}
	if cfg.Guard.MaxCombinationsPerMetric == 0 {
		cfg.Guard.MaxCombinationsPerMetric = DefaultGuardMaxCombinationsPerMetric
	}
	if cfg.Guard.OnViolation == "" {
		cfg.Guard.OnViolation = DefaultGuardOnViolation
	}
	if cfg.Guard.BreakerThreshold == 0 {
		cfg.Guard.BreakerThreshold = DefaultGuardBreakerThreshold
	}
	if cfg.Guard.BreakerCooldown == 0 {
		cfg.Guard.BreakerCooldown = DefaultGuardBreakerCooldown
	}
	if cfg.Guard.EventBuffer == 0 {
		cfg.Guard.EventBuffer = DefaultGuardEventBuffer
	}

	// Fraud defaults
	if cfg.Fraud.RulesPath == "" {
		cfg.Fraud.RulesPath = DefaultFraudRulesPath
	}
	if cfg.Fraud.VelocityCacheSize == 0 {
		cfg.Fraud.VelocityCacheSize = DefaultFraudVelocityCacheSize
	}

	// Kafka defaults
	if cfg.Kafka.ClientID == "" {
		cfg.Kafka.ClientID = DefaultKafkaClientID
	}
	if cfg.Kafka.AlertTopic == "" {
		cfg.Kafka.AlertTopic = DefaultKafkaAlertTopic
	}
	if cfg.Kafka.ViolationTopic == "" {
		cfg.Kafka.ViolationTopic = DefaultKafkaViolationTopic
	}
	if cfg.Kafka.FlushTimeout == 0 {
		cfg.Kafka.FlushTimeout = DefaultKafkaFlushTimeout
	}

	// Audit defaults
	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = DefaultAuditBackend
	}
	if cfg.Audit.SQLite.Path == "" {
		cfg.Audit.SQLite.Path = DefaultAuditSQLitePath
	}
	if cfg.Audit.SQLite.BusyTimeout == 0 {
		cfg.Audit.SQLite.BusyTimeout = DefaultAuditSQLiteBusyTimeout
	}
	if cfg.Audit.SQLite.MaxOpenConns == 0 {
		cfg.Audit.SQLite.MaxOpenConns = DefaultAuditSQLiteMaxConns
	}
	if cfg.Audit.RecorderBuffer == 0 {
		cfg.Audit.RecorderBuffer = DefaultAuditRecorderBuffer
	}
	if cfg.Audit.Retention.Days == 0 {
		cfg.Audit.Retention.Days = DefaultAuditRetentionDays
	}
	if cfg.Audit.Retention.Schedule == "" {
		cfg.Audit.Retention.Schedule = DefaultAuditRetentionSchedule
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}
