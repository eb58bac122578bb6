package fraud

import (
	"context"
	"testing"
	"time"
)

func testRuleset() *Ruleset {
	rs := &Ruleset{
		MaxAmountCents: map[string]int64{
			"default": 100000,
			"stripe":  500000,
		},
		BlockedCountries: []string{"KP", "IR"},
		BlockedBINs:      []string{"999999"},
		Velocity: VelocityRule{
			MaxTransactions: 3,
			Window:          time.Minute,
		},
	}
	rs.applyDefaults()
	return rs
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(testRuleset(), 100)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func TestScreen_CleanTransaction(t *testing.T) {
	engine := newTestEngine(t)

	result := engine.Screen(context.Background(), Transaction{
		ID:          "txn-1",
		CardID:      "card-1",
		CardBIN:     "411111",
		Gateway:     "stripe",
		AmountCents: 2500,
		Country:     "US",
	})

	if result.Outcome != OutcomeApprove {
		t.Errorf("Expected approve, got %s", result.Outcome)
	}
	if result.Score != 0 {
		t.Errorf("Expected score 0, got %d", result.Score)
	}
	if len(result.RuleHits) != 0 {
		t.Errorf("Expected no rule hits, got %v", result.RuleHits)
	}
	if result.TransactionID != "txn-1" {
		t.Errorf("Expected transaction ID echoed, got %q", result.TransactionID)
	}
}

func TestScreen_AmountLimit(t *testing.T) {
	engine := newTestEngine(t)

	// Over the default ceiling but under stripe's.
	result := engine.Screen(context.Background(), Transaction{
		ID:          "txn-2",
		CardID:      "card-2",
		Gateway:     "stripe",
		AmountCents: 200000,
	})
	if result.Score != 0 {
		t.Errorf("Expected 0 for amount under stripe ceiling, got %d", result.Score)
	}

	// Same amount on a gateway using the default ceiling.
	result = engine.Screen(context.Background(), Transaction{
		ID:          "txn-3",
		CardID:      "card-3",
		Gateway:     "adyen",
		AmountCents: 200000,
	})
	if result.Score != scoreAmountLimit {
		t.Errorf("Expected score %d, got %d", scoreAmountLimit, result.Score)
	}
	if result.Outcome != OutcomeReview {
		t.Errorf("Expected review, got %s", result.Outcome)
	}
	if len(result.RuleHits) != 1 || result.RuleHits[0] != "amount_limit" {
		t.Errorf("Expected amount_limit hit, got %v", result.RuleHits)
	}
}

func TestScreen_BlockedCountry(t *testing.T) {
	engine := newTestEngine(t)

	result := engine.Screen(context.Background(), Transaction{
		ID:          "txn-4",
		CardID:      "card-4",
		Gateway:     "stripe",
		AmountCents: 1000,
		Country:     "KP",
	})

	if result.Score != scoreBlockedCountry {
		t.Errorf("Expected score %d, got %d", scoreBlockedCountry, result.Score)
	}
	if result.Outcome != OutcomeReview {
		t.Errorf("Expected review, got %s", result.Outcome)
	}
}

func TestScreen_BlockedBIN(t *testing.T) {
	engine := newTestEngine(t)

	result := engine.Screen(context.Background(), Transaction{
		ID:          "txn-5",
		CardID:      "card-5",
		CardBIN:     "999999",
		Gateway:     "stripe",
		AmountCents: 1000,
		Country:     "US",
	})

	if result.Score != scoreBlockedBIN {
		t.Errorf("Expected score %d, got %d", scoreBlockedBIN, result.Score)
	}
	if result.Outcome != OutcomeReview {
		t.Errorf("Expected review, got %s", result.Outcome)
	}
}

func TestScreen_StackedHitsDecline(t *testing.T) {
	engine := newTestEngine(t)

	// Blocked country plus blocked BIN clears the decline threshold.
	result := engine.Screen(context.Background(), Transaction{
		ID:          "txn-6",
		CardID:      "card-6",
		CardBIN:     "999999",
		Gateway:     "stripe",
		AmountCents: 1000,
		Country:     "IR",
	})

	expected := scoreBlockedCountry + scoreBlockedBIN
	if result.Score != expected {
		t.Errorf("Expected score %d, got %d", expected, result.Score)
	}
	if result.Outcome != OutcomeDecline {
		t.Errorf("Expected decline, got %s", result.Outcome)
	}
	if len(result.RuleHits) != 2 {
		t.Errorf("Expected 2 rule hits, got %v", result.RuleHits)
	}
}

func TestScreen_Velocity(t *testing.T) {
	engine := newTestEngine(t)
	base := time.Now()

	txn := Transaction{
		ID:          "txn-v",
		CardID:      "card-hot",
		Gateway:     "stripe",
		AmountCents: 1000,
		Country:     "US",
	}

	// First three within the limit.
	for i := 0; i < 3; i++ {
		txn.Timestamp = base.Add(time.Duration(i) * time.Second)
		result := engine.Screen(context.Background(), txn)
		if result.Score != 0 {
			t.Fatalf("Expected score 0 on transaction %d, got %d", i+1, result.Score)
		}
	}

	// Fourth within the window trips the rule.
	txn.Timestamp = base.Add(3 * time.Second)
	result := engine.Screen(context.Background(), txn)
	if result.Score != scoreVelocity {
		t.Errorf("Expected score %d, got %d", scoreVelocity, result.Score)
	}

	// After the window slides past, the card is clean again.
	txn.Timestamp = base.Add(2 * time.Minute)
	result = engine.Screen(context.Background(), txn)
	if result.Score != 0 {
		t.Errorf("Expected score 0 after window expiry, got %d", result.Score)
	}
}

func TestScreen_VelocityPerCard(t *testing.T) {
	engine := newTestEngine(t)
	base := time.Now()

	// Saturate one card.
	for i := 0; i < 4; i++ {
		engine.Screen(context.Background(), Transaction{
			ID:        "txn-a",
			CardID:    "card-a",
			Gateway:   "stripe",
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
	}

	// Another card is unaffected.
	result := engine.Screen(context.Background(), Transaction{
		ID:        "txn-b",
		CardID:    "card-b",
		Gateway:   "stripe",
		Timestamp: base.Add(4 * time.Second),
	})
	if result.Score != 0 {
		t.Errorf("Expected score 0 for distinct card, got %d", result.Score)
	}
}

func TestSetRules_HotSwap(t *testing.T) {
	engine := newTestEngine(t)

	txn := Transaction{
		ID:          "txn-7",
		CardID:      "card-7",
		Gateway:     "stripe",
		AmountCents: 1000,
		Country:     "FR",
	}

	result := engine.Screen(context.Background(), txn)
	if result.Score != 0 {
		t.Fatalf("Expected clean screen before swap, got score %d", result.Score)
	}

	swapped := testRuleset()
	swapped.BlockedCountries = []string{"FR"}
	engine.SetRules(swapped)

	result = engine.Screen(context.Background(), txn)
	if result.Score != scoreBlockedCountry {
		t.Errorf("Expected score %d after swap, got %d", scoreBlockedCountry, result.Score)
	}
}

func TestNewEngine_NilRulesUsesDefaults(t *testing.T) {
	engine, err := NewEngine(nil, 0)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if engine.Rules().DeclineThreshold != 70 {
		t.Errorf("Expected default decline threshold 70, got %d", engine.Rules().DeclineThreshold)
	}
}
