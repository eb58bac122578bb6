package handlers

import (
	"net/http"

	"vantage-hq/saturn/pkg/cardinality"
)

// StatsHandler handles GET /v1/cardinality/stats: a point-in-time snapshot of
// the guard's per-metric accounting.
type StatsHandler struct {
	guard *cardinality.Guard
}

// NewStatsHandler creates the stats endpoint handler.
func NewStatsHandler(guard *cardinality.Guard) *StatsHandler {
	return &StatsHandler{guard: guard}
}

// ServeHTTP implements http.Handler.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "invalid_request", "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, h.guard.Stats())
}
