package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"vantage-hq/saturn/pkg/fraud"
	"vantage-hq/saturn/pkg/telemetry/metrics"
)

// AlertPublisher publishes declined screening results. Implemented by the
// Kafka publisher; nil disables alerting.
type AlertPublisher interface {
	PublishAlert(txn fraud.Transaction, assessment fraud.Assessment) error
}

// ScreenHandler handles POST /v1/screen: it screens one transaction, records
// the screening metrics, and publishes an alert when the outcome is decline.
type ScreenHandler struct {
	engine    *fraud.Engine
	collector *metrics.Collector
	publisher AlertPublisher
	logger    *slog.Logger
}

// NewScreenHandler creates the screening endpoint handler. publisher may be
// nil when Kafka is disabled.
func NewScreenHandler(engine *fraud.Engine, collector *metrics.Collector, publisher AlertPublisher) *ScreenHandler {
	return &ScreenHandler{
		engine:    engine,
		collector: collector,
		publisher: publisher,
		logger:    slog.Default().With("component", "api"),
	}
}

// ServeHTTP implements http.Handler.
func (h *ScreenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "invalid_request", "method not allowed")
		return
	}

	var txn fraud.Transaction
	if err := json.NewDecoder(r.Body).Decode(&txn); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if txn.ID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}
	if txn.Gateway == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "gateway is required")
		return
	}

	assessment := h.engine.Screen(r.Context(), txn)

	if h.collector != nil {
		h.collector.RecordScreening(txn.Gateway, string(assessment.Outcome), assessment.Score, assessment.RuleHits)
	}

	if assessment.Outcome == fraud.OutcomeDecline && h.publisher != nil {
		if err := h.publisher.PublishAlert(txn, assessment); err != nil {
			// The screening result stands even when alerting fails.
			h.logger.Error("failed to publish fraud alert",
				"transaction_id", txn.ID,
				"error", err,
			)
		}
	}

	writeJSON(w, http.StatusOK, assessment)
}
