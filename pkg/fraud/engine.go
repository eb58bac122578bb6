package fraud

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Engine screens transactions against the active ruleset. The ruleset can be
// swapped atomically at runtime by the watcher; screening and swapping are
// safe to run concurrently.
type Engine struct {
	mu       sync.RWMutex
	rules    *Ruleset
	velocity *velocityTracker
	logger   *slog.Logger
}

// NewEngine creates a screening engine with the given ruleset.
// velocityCacheSize bounds how many cards the velocity rule tracks.
func NewEngine(rules *Ruleset, velocityCacheSize int) (*Engine, error) {
	if rules == nil {
		rules = DefaultRuleset()
	}
	if velocityCacheSize <= 0 {
		velocityCacheSize = 10000
	}

	velocity, err := newVelocityTracker(velocityCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create velocity tracker: %w", err)
	}

	return &Engine{
		rules:    rules,
		velocity: velocity,
		logger:   slog.Default().With("component", "fraud"),
	}, nil
}

// Rules returns the active ruleset.
func (e *Engine) Rules() *Ruleset {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rules
}

// SetRules swaps the active ruleset. Used by the watcher on hot reload.
func (e *Engine) SetRules(rules *Ruleset) {
	e.mu.Lock()
	e.rules = rules
	e.mu.Unlock()

	e.logger.Info("ruleset swapped",
		"blocked_countries", len(rules.BlockedCountries),
		"blocked_bins", len(rules.BlockedBINs),
	)
}

// Screen evaluates one transaction against the active ruleset.
func (e *Engine) Screen(ctx context.Context, txn Transaction) Assessment {
	rules := e.Rules()

	now := txn.Timestamp
	if now.IsZero() {
		now = time.Now()
	}

	assessment := Assessment{
		TransactionID: txn.ID,
		Outcome:       OutcomeApprove,
	}

	hit := func(rule, reason string, score int) {
		assessment.Score += score
		assessment.RuleHits = append(assessment.RuleHits, rule)
		assessment.Reasons = append(assessment.Reasons, reason)
	}

	if ceiling := rules.amountCeiling(txn.Gateway); ceiling > 0 && txn.AmountCents > ceiling {
		hit("amount_limit",
			fmt.Sprintf("amount %d exceeds gateway ceiling %d", txn.AmountCents, ceiling),
			scoreAmountLimit)
	}

	for _, country := range rules.BlockedCountries {
		if txn.Country == country {
			hit("blocked_country",
				fmt.Sprintf("issuing country %s is watchlisted", txn.Country),
				scoreBlockedCountry)
			break
		}
	}

	for _, bin := range rules.BlockedBINs {
		if txn.CardBIN == bin {
			hit("blocked_bin",
				fmt.Sprintf("card BIN %s is watchlisted", txn.CardBIN),
				scoreBlockedBIN)
			break
		}
	}

	if rules.Velocity.MaxTransactions > 0 && txn.CardID != "" {
		count := e.velocity.observe(txn.CardID, now, rules.Velocity.Window)
		if count > rules.Velocity.MaxTransactions {
			hit("velocity",
				fmt.Sprintf("card made %d transactions within %s (limit %d)",
					count, rules.Velocity.Window, rules.Velocity.MaxTransactions),
				scoreVelocity)
		}
	}

	switch {
	case assessment.Score >= rules.DeclineThreshold:
		assessment.Outcome = OutcomeDecline
	case assessment.Score >= rules.ReviewThreshold:
		assessment.Outcome = OutcomeReview
	}

	e.logger.DebugContext(ctx, "transaction screened",
		"transaction_id", txn.ID,
		"outcome", string(assessment.Outcome),
		"score", assessment.Score,
	)

	return assessment
}
