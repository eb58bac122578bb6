package handlers

import (
	"net/http"
	"strconv"

	"vantage-hq/saturn/pkg/audit"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

// EventsHandler handles GET /v1/cardinality/events: recent persisted guard
// events, newest first. Returns 404 when the audit store is disabled.
type EventsHandler struct {
	store audit.Store
}

// NewEventsHandler creates the events endpoint handler. store may be nil when
// auditing is disabled.
func NewEventsHandler(store audit.Store) *EventsHandler {
	return &EventsHandler{store: store}
}

// ServeHTTP implements http.Handler.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "invalid_request", "method not allowed")
		return
	}

	if h.store == nil {
		writeError(w, http.StatusNotFound, "not_found", "audit store is disabled")
		return
	}

	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	entries, err := h.store.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to read audit entries")
		return
	}
	if entries == nil {
		entries = []*audit.Entry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events": entries,
		"count":  len(entries),
	})
}
