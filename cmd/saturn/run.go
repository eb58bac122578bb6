package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vantage-hq/saturn/pkg/api/handlers"
	"vantage-hq/saturn/pkg/audit"
	"vantage-hq/saturn/pkg/cardinality"
	"vantage-hq/saturn/pkg/config"
	"vantage-hq/saturn/pkg/fraud"
	"vantage-hq/saturn/pkg/server"
	"vantage-hq/saturn/pkg/stream"
	"vantage-hq/saturn/pkg/telemetry/logging"
	"vantage-hq/saturn/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Saturn screening server",
	Long: `Start the Saturn screening server with the specified configuration.

The server screens transactions on /v1/screen, exposes the cardinality guard
on /v1/cardinality/stats and /v1/cardinality/events, and serves Prometheus
metrics when enabled.

Examples:
  # Start with default config
  saturn run

  # Start with custom config
  saturn run --config /etc/saturn/config.yaml

  # Override listen address
  saturn run --listen 0.0.0.0:8080

  # Validate config without starting server
  saturn run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	logger, err := logging.Setup(cfg.Telemetry.Logging, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Vantage Saturn v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Audit store and recorder
	var auditStore audit.Store
	var recorder *audit.Recorder
	if cfg.Audit.Enabled {
		switch cfg.Audit.Backend {
		case "sqlite":
			auditStore, err = audit.NewSQLiteStore(audit.SQLiteOptions{
				Path:         cfg.Audit.SQLite.Path,
				BusyTimeout:  cfg.Audit.SQLite.BusyTimeout,
				MaxOpenConns: cfg.Audit.SQLite.MaxOpenConns,
			})
			if err != nil {
				return fmt.Errorf("failed to create audit store: %w", err)
			}
		case "memory":
			auditStore = audit.NewMemoryStore()
		default:
			return fmt.Errorf("unsupported audit backend: %s", cfg.Audit.Backend)
		}
		defer auditStore.Close()

		recorder = audit.NewRecorder(auditStore, audit.RecorderConfig{
			Buffer: cfg.Audit.RecorderBuffer,
		})
		defer recorder.Close()

		janitor := audit.NewJanitor(auditStore, audit.JanitorConfig{
			RetentionDays: cfg.Audit.Retention.Days,
			MaxRows:       cfg.Audit.Retention.MaxRows,
			Schedule:      cfg.Audit.Retention.Schedule,
		})
		if err := janitor.Start(ctx); err != nil {
			logger.Warn("failed to start audit janitor", "error", err)
		} else {
			defer janitor.Stop()
		}

		fmt.Println("✓ Audit store initialized")
	}

	// Kafka publisher
	var publisher *stream.Publisher
	if cfg.Kafka.Enabled {
		publisher, err = stream.NewPublisher(stream.Config{
			Brokers:        cfg.Kafka.Brokers,
			ClientID:       cfg.Kafka.ClientID,
			AlertTopic:     cfg.Kafka.AlertTopic,
			ViolationTopic: cfg.Kafka.ViolationTopic,
			FlushTimeout:   cfg.Kafka.FlushTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("kafka publisher close failed", "error", err)
			}
		}()

		fmt.Println("✓ Kafka publisher connected")
	}

	// Cardinality guard with its event sink fanout. The collector's sink is
	// appended after construction because the collector needs the guard for
	// its gauges; this happens before any traffic is served.
	fanout := &cardinality.FanoutSink{cardinality.NewLogSink(logger)}
	if recorder != nil {
		*fanout = append(*fanout, recorder)
	}
	if publisher != nil {
		*fanout = append(*fanout, publisher)
	}
	asyncSink := cardinality.NewAsyncSink(fanout, cfg.Guard.EventBuffer)
	defer asyncSink.Close()

	guard, err := cardinality.New(cardinality.Config{
		MaxValuesPerLabel:        cfg.Guard.MaxValuesPerLabel,
		MaxCombinationsPerMetric: cfg.Guard.MaxCombinationsPerMetric,
		OnViolation:              cardinality.ViolationAction(cfg.Guard.OnViolation),
		BreakerThreshold:         cfg.Guard.BreakerThreshold,
		BreakerCooldown:          cfg.Guard.BreakerCooldown,
	}, cardinality.WithSink(asyncSink))
	if err != nil {
		return fmt.Errorf("failed to create cardinality guard: %w", err)
	}

	collector := metrics.NewCollector(cfg.Telemetry.Metrics, guard, nil)
	*fanout = append(*fanout, collector.GuardSink())

	fmt.Printf("✓ Cardinality guard active (on_violation: %s)\n", cfg.Guard.OnViolation)

	// Fraud engine with optional hot reload
	rules := fraud.DefaultRuleset()
	if cfg.Fraud.RulesPath != "" {
		if loaded, err := fraud.LoadRuleset(cfg.Fraud.RulesPath); err != nil {
			logger.Warn("failed to load rules file, using defaults",
				"path", cfg.Fraud.RulesPath,
				"error", err,
			)
		} else {
			rules = loaded
		}
	}

	engine, err := fraud.NewEngine(rules, cfg.Fraud.VelocityCacheSize)
	if err != nil {
		return fmt.Errorf("failed to create fraud engine: %w", err)
	}

	if cfg.Fraud.Watch && cfg.Fraud.RulesPath != "" {
		watcher, err := fraud.NewRulesWatcher(cfg.Fraud.RulesPath, engine, 0)
		if err != nil {
			return fmt.Errorf("failed to create rules watcher: %w", err)
		}
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				logger.Error("rules watcher stopped", "error", err)
			}
		}()
		fmt.Printf("✓ Watching rules file: %s\n", cfg.Fraud.RulesPath)
	}

	fmt.Println("✓ Fraud engine initialized")

	// Publisher may be nil; pass it through an untyped nil-safe check so the
	// screen handler sees a nil interface rather than a typed nil.
	srv := server.NewServer(server.Options{
		Config:     cfg,
		Guard:      guard,
		Engine:     engine,
		Collector:  collector,
		AuditStore: auditStore,
		Publisher:  alertPublisher(publisher),
		Version:    Version,
	})

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

// alertPublisher converts a possibly-nil *stream.Publisher into a clean nil
// interface so handler nil checks behave.
func alertPublisher(p *stream.Publisher) handlers.AlertPublisher {
	if p == nil {
		return nil
	}
	return p
}
