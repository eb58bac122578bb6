package fraud

import "time"

// Outcome is the screening verdict for a transaction.
type Outcome string

const (
	// OutcomeApprove lets the transaction proceed.
	OutcomeApprove Outcome = "approve"

	// OutcomeReview flags the transaction for manual review.
	OutcomeReview Outcome = "review"

	// OutcomeDecline rejects the transaction.
	OutcomeDecline Outcome = "decline"
)

// Transaction is a payment authorization request to be screened.
type Transaction struct {
	// ID uniquely identifies the transaction.
	ID string `json:"id"`

	// CardID identifies the paying card (tokenized; never a PAN).
	CardID string `json:"card_id"`

	// CardBIN is the first six digits of the card number.
	CardBIN string `json:"card_bin"`

	// Gateway is the payment gateway routing the transaction.
	Gateway string `json:"gateway"`

	// AmountCents is the amount in minor currency units.
	AmountCents int64 `json:"amount_cents"`

	// Currency is the ISO 4217 currency code.
	Currency string `json:"currency"`

	// Country is the ISO 3166-1 alpha-2 issuing country.
	Country string `json:"country"`

	// MerchantID identifies the merchant.
	MerchantID string `json:"merchant_id"`

	// Timestamp is when the transaction was initiated. Zero means now.
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Assessment is the result of screening one transaction.
type Assessment struct {
	// TransactionID echoes the screened transaction's ID.
	TransactionID string `json:"transaction_id"`

	// Outcome is the verdict.
	Outcome Outcome `json:"outcome"`

	// Score is the accumulated risk score that produced the outcome.
	Score int `json:"score"`

	// RuleHits lists the rules that matched.
	RuleHits []string `json:"rule_hits,omitempty"`

	// Reasons are human-readable explanations for each hit.
	Reasons []string `json:"reasons,omitempty"`
}
