package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"vantage-hq/saturn/pkg/api/handlers"
	"vantage-hq/saturn/pkg/api/middleware"
	"vantage-hq/saturn/pkg/audit"
	"vantage-hq/saturn/pkg/cardinality"
	"vantage-hq/saturn/pkg/config"
	"vantage-hq/saturn/pkg/fraud"
	"vantage-hq/saturn/pkg/telemetry/metrics"
)

// Options holds the collaborators the server exposes over HTTP. AuditStore
// and Publisher may be nil when their features are disabled.
type Options struct {
	Config     *config.Config
	Guard      *cardinality.Guard
	Engine     *fraud.Engine
	Collector  *metrics.Collector
	AuditStore audit.Store
	Publisher  handlers.AlertPublisher
	Version    string
}

// Server is the HTTP API server for the screening service.
type Server struct {
	opts         Options
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates the API server.
func NewServer(opts Options) *Server {
	return &Server{
		opts:         opts,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown via context
// cancellation, SIGINT/SIGTERM, or Shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	serverCfg := s.opts.Config.Server
	s.httpServer = &http.Server{
		Addr:           serverCfg.ListenAddress,
		Handler:        s.setupRoutes(),
		ReadTimeout:    serverCfg.ReadTimeout,
		WriteTimeout:   serverCfg.WriteTimeout,
		IdleTimeout:    serverCfg.IdleTimeout,
		MaxHeaderBytes: serverCfg.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting api server", "address", serverCfg.ListenAddress)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		timeout := s.opts.Config.Server.ShutdownTimeout
		slog.Info("initiating graceful shutdown", "timeout", timeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("api server stopped")
	})

	return shutdownErr
}

// IsRunning returns true while the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler, used by tests to exercise the
// full routing and middleware chain without a listener.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/v1/screen", handlers.NewScreenHandler(s.opts.Engine, s.opts.Collector, s.opts.Publisher))
	mux.Handle("/v1/cardinality/stats", handlers.NewStatsHandler(s.opts.Guard))
	mux.Handle("/v1/cardinality/events", handlers.NewEventsHandler(s.opts.AuditStore))
	mux.Handle("/health", handlers.NewHealthHandler(s.opts.Version))
	mux.Handle("/ready", handlers.NewReadyHandler(s.readinessChecks()))

	if s.opts.Collector != nil && s.opts.Config.Telemetry.Metrics.Enabled {
		path := s.opts.Config.Telemetry.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, s.opts.Collector.Handler())
	}

	var handler http.Handler = mux

	if s.opts.Collector != nil {
		handler = middleware.Metrics(s.opts.Collector)(handler)
	}
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(handler)

	return handler
}

// readinessChecks builds the dependency checks for the /ready probe.
func (s *Server) readinessChecks() map[string]handlers.ReadinessCheck {
	checks := make(map[string]handlers.ReadinessCheck)

	if s.opts.AuditStore != nil {
		store := s.opts.AuditStore
		checks["audit"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), s.opts.Config.Server.ReadTimeout)
			defer cancel()
			_, err := store.Count(ctx)
			return err
		}
	}

	return checks
}
