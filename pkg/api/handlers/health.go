package handlers

import (
	"net/http"
	"time"
)

// HealthHandler handles GET /health: a liveness probe that always succeeds
// while the process serves traffic.
type HealthHandler struct {
	startTime time.Time
	version   string
}

// NewHealthHandler creates the liveness probe handler.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
		version:   version,
	}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "invalid_request", "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}

// ReadinessCheck reports whether one dependency is ready to serve.
type ReadinessCheck func() error

// ReadyHandler handles GET /ready: a readiness probe aggregating dependency
// checks. Any failing check returns 503 with the failure reasons.
type ReadyHandler struct {
	checks map[string]ReadinessCheck
}

// NewReadyHandler creates the readiness probe handler.
func NewReadyHandler(checks map[string]ReadinessCheck) *ReadyHandler {
	return &ReadyHandler{checks: checks}
}

// ServeHTTP implements http.Handler.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "invalid_request", "method not allowed")
		return
	}

	failures := make(map[string]string)
	for name, check := range h.checks {
		if err := check(); err != nil {
			failures[name] = err.Error()
		}
	}

	if len(failures) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":   "not_ready",
			"failures": failures,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}
