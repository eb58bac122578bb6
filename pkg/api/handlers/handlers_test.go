package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vantage-hq/saturn/pkg/audit"
	"vantage-hq/saturn/pkg/cardinality"
	"vantage-hq/saturn/pkg/fraud"
)

type capturedAlert struct {
	txn        fraud.Transaction
	assessment fraud.Assessment
}

type fakePublisher struct {
	alerts []capturedAlert
	err    error
}

func (f *fakePublisher) PublishAlert(txn fraud.Transaction, assessment fraud.Assessment) error {
	if f.err != nil {
		return f.err
	}
	f.alerts = append(f.alerts, capturedAlert{txn: txn, assessment: assessment})
	return nil
}

func testEngine(t *testing.T) *fraud.Engine {
	t.Helper()
	rules := fraud.DefaultRuleset()
	rules.BlockedCountries = []string{"KP"}
	rules.BlockedBINs = []string{"999999"}
	engine, err := fraud.NewEngine(rules, 100)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func screenRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/v1/screen", strings.NewReader(body))
}

func TestScreenHandler_Approve(t *testing.T) {
	handler := NewScreenHandler(testEngine(t), nil, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, screenRequest(`{
		"id": "txn-1",
		"card_id": "card-1",
		"gateway": "stripe",
		"amount_cents": 2500,
		"country": "US"
	}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var assessment fraud.Assessment
	if err := json.Unmarshal(rec.Body.Bytes(), &assessment); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if assessment.Outcome != fraud.OutcomeApprove {
		t.Errorf("Expected approve, got %s", assessment.Outcome)
	}
	if assessment.TransactionID != "txn-1" {
		t.Errorf("Expected transaction ID echoed, got %q", assessment.TransactionID)
	}
}

func TestScreenHandler_DeclinePublishesAlert(t *testing.T) {
	publisher := &fakePublisher{}
	handler := NewScreenHandler(testEngine(t), nil, publisher)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, screenRequest(`{
		"id": "txn-2",
		"card_id": "card-2",
		"card_bin": "999999",
		"gateway": "stripe",
		"country": "KP"
	}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var assessment fraud.Assessment
	if err := json.Unmarshal(rec.Body.Bytes(), &assessment); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if assessment.Outcome != fraud.OutcomeDecline {
		t.Fatalf("Expected decline, got %s", assessment.Outcome)
	}

	if len(publisher.alerts) != 1 {
		t.Fatalf("Expected 1 alert published, got %d", len(publisher.alerts))
	}
	if publisher.alerts[0].txn.ID != "txn-2" {
		t.Errorf("Expected alert for txn-2, got %q", publisher.alerts[0].txn.ID)
	}
}

func TestScreenHandler_PublishFailureDoesNotFailRequest(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("broker down")}
	handler := NewScreenHandler(testEngine(t), nil, publisher)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, screenRequest(`{
		"id": "txn-3",
		"card_id": "card-3",
		"card_bin": "999999",
		"gateway": "stripe",
		"country": "KP"
	}`))

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200 despite publish failure, got %d", rec.Code)
	}
}

func TestScreenHandler_Validation(t *testing.T) {
	handler := NewScreenHandler(testEngine(t), nil, nil)

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid JSON", body: "{not json"},
		{name: "missing id", body: `{"gateway": "stripe"}`},
		{name: "missing gateway", body: `{"id": "txn-4"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, screenRequest(tt.body))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestScreenHandler_MethodNotAllowed(t *testing.T) {
	handler := NewScreenHandler(testEngine(t), nil, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/screen", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", rec.Code)
	}
}

func TestStatsHandler(t *testing.T) {
	guard, err := cardinality.New(cardinality.Config{})
	if err != nil {
		t.Fatalf("cardinality.New failed: %v", err)
	}
	guard.Evaluate("payments_total", map[string]string{"gateway": "stripe"})

	handler := NewStatsHandler(guard)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/cardinality/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var stats cardinality.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if stats.TotalCombinations != 1 {
		t.Errorf("Expected 1 total combination, got %d", stats.TotalCombinations)
	}
	if _, ok := stats.Metrics["payments_total"]; !ok {
		t.Error("Expected payments_total in per-metric stats")
	}
}

func TestEventsHandler(t *testing.T) {
	store := audit.NewMemoryStore()
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		store.Save(context.Background(), &audit.Entry{
			ID:         "entry-" + string(rune('a'+i)),
			Metric:     "payments_total",
			Kind:       "violation",
			OccurredAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	handler := NewEventsHandler(store)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/cardinality/events?limit=3", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var body struct {
		Events []*audit.Entry `json:"events"`
		Count  int            `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Count != 3 {
		t.Errorf("Expected 3 events, got %d", body.Count)
	}
}

func TestEventsHandler_InvalidLimit(t *testing.T) {
	handler := NewEventsHandler(audit.NewMemoryStore())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/cardinality/events?limit=zero", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestEventsHandler_DisabledStore(t *testing.T) {
	handler := NewEventsHandler(nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/cardinality/events", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	handler := NewHealthHandler("1.2.3")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body["status"])
	}
	if body["version"] != "1.2.3" {
		t.Errorf("Expected version 1.2.3, got %v", body["version"])
	}
}

func TestReadyHandler(t *testing.T) {
	checks := map[string]ReadinessCheck{
		"audit": func() error { return nil },
	}
	handler := NewReadyHandler(checks)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	checks["audit"] = func() error { return errors.New("database locked") }

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "database locked") {
		t.Errorf("Expected failure reason in body, got %s", rec.Body.String())
	}
}
