package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfigFile(t, "{}\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("Expected default listen address %s, got %s", DefaultListenAddress, cfg.Server.ListenAddress)
	}
	if cfg.Guard.MaxValuesPerLabel != 100 {
		t.Errorf("Expected default max values per label 100, got %d", cfg.Guard.MaxValuesPerLabel)
	}
	if cfg.Guard.MaxCombinationsPerMetric != 1000 {
		t.Errorf("Expected default max combinations 1000, got %d", cfg.Guard.MaxCombinationsPerMetric)
	}
	if cfg.Guard.OnViolation != "warn" {
		t.Errorf("Expected default violation action warn, got %s", cfg.Guard.OnViolation)
	}
	if cfg.Guard.BreakerCooldown != 5*time.Minute {
		t.Errorf("Expected default cooldown 5m, got %v", cfg.Guard.BreakerCooldown)
	}
	if cfg.Audit.Backend != "sqlite" {
		t.Errorf("Expected default audit backend sqlite, got %s", cfg.Audit.Backend)
	}
	if cfg.Kafka.AlertTopic != DefaultKafkaAlertTopic {
		t.Errorf("Expected default alert topic %s, got %s", DefaultKafkaAlertTopic, cfg.Kafka.AlertTopic)
	}
	if cfg.Telemetry.Logging.Level != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_ExplicitValues(t *testing.T) {
	path := writeConfigFile(t, `
server:
  listen_address: "0.0.0.0:9090"
  read_timeout: 10s
guard:
  max_values_per_label: 50
  on_violation: circuit_break
  breaker_threshold: 3
  breaker_cooldown: 1m
fraud:
  rules_path: /etc/saturn/rules.yaml
  watch: true
telemetry:
  logging:
    level: debug
    format: text
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("Expected listen address 0.0.0.0:9090, got %s", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("Expected read timeout 10s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Guard.MaxValuesPerLabel != 50 {
		t.Errorf("Expected max values 50, got %d", cfg.Guard.MaxValuesPerLabel)
	}
	if cfg.Guard.OnViolation != "circuit_break" {
		t.Errorf("Expected action circuit_break, got %s", cfg.Guard.OnViolation)
	}
	if cfg.Guard.BreakerCooldown != time.Minute {
		t.Errorf("Expected cooldown 1m, got %v", cfg.Guard.BreakerCooldown)
	}
	if !cfg.Fraud.Watch {
		t.Error("Expected fraud watch enabled")
	}
	if cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("Expected text format, got %s", cfg.Telemetry.Logging.Format)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "server: [not: valid\n")

	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected error for invalid YAML, got nil")
	}
}

func TestValidate_GuardErrors(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{
			name:  "negative max values",
			yaml:  "guard:\n  max_values_per_label: -1\n",
			field: "guard.max_values_per_label",
		},
		{
			name:  "negative max combinations",
			yaml:  "guard:\n  max_combinations_per_metric: -10\n",
			field: "guard.max_combinations_per_metric",
		},
		{
			name:  "unknown violation action",
			yaml:  "guard:\n  on_violation: explode\n",
			field: "guard.on_violation",
		},
		{
			name:  "negative breaker threshold",
			yaml:  "guard:\n  breaker_threshold: -2\n",
			field: "guard.breaker_threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.yaml)
			_, err := LoadConfig(path)
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Expected error mentioning %s, got: %v", tt.field, err)
			}
		})
	}
}

func TestValidate_KafkaRequiresBrokers(t *testing.T) {
	path := writeConfigFile(t, "kafka:\n  enabled: true\n")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "kafka.brokers") {
		t.Errorf("Expected error mentioning kafka.brokers, got: %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Server.ListenAddress = ""
	cfg.Guard.OnViolation = "bogus"
	cfg.Audit.Backend = "postgres"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}

	verr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("Expected ValidationError, got %T", err)
	}
	if len(verr.Errors) != 3 {
		t.Errorf("Expected 3 field errors, got %d: %v", len(verr.Errors), verr)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, "guard:\n  max_values_per_label: 10\n")

	t.Setenv("SATURN_GUARD_MAX_VALUES_PER_LABEL", "42")
	t.Setenv("SATURN_GUARD_ON_VIOLATION", "drop")
	t.Setenv("SATURN_SERVER_LISTEN_ADDRESS", "127.0.0.1:7070")
	t.Setenv("SATURN_TELEMETRY_LOGGING_LEVEL", "warn")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides failed: %v", err)
	}

	if cfg.Guard.MaxValuesPerLabel != 42 {
		t.Errorf("Expected env override 42, got %d", cfg.Guard.MaxValuesPerLabel)
	}
	if cfg.Guard.OnViolation != "drop" {
		t.Errorf("Expected env override drop, got %s", cfg.Guard.OnViolation)
	}
	if cfg.Server.ListenAddress != "127.0.0.1:7070" {
		t.Errorf("Expected env override listen address, got %s", cfg.Server.ListenAddress)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Expected env override warn, got %s", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidOverride(t *testing.T) {
	path := writeConfigFile(t, "{}\n")

	t.Setenv("SATURN_GUARD_ON_VIOLATION", "bogus")

	if _, err := LoadConfigWithEnvOverrides(path); err == nil {
		t.Error("Expected re-validation to reject invalid override, got nil")
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	first := *cfg
	ApplyDefaults(cfg)

	if cfg.Server != first.Server {
		t.Error("Expected server defaults to be idempotent")
	}
	if cfg.Guard != first.Guard {
		t.Error("Expected guard defaults to be idempotent")
	}
	if cfg.Audit != first.Audit {
		t.Error("Expected audit defaults to be idempotent")
	}
}
