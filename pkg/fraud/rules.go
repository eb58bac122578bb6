package fraud

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Ruleset is the YAML-configured screening policy.
type Ruleset struct {
	// MaxAmountCents maps gateway name to the amount ceiling in minor
	// units. The "default" key applies to gateways without an explicit
	// entry; 0 or a missing default means no ceiling.
	MaxAmountCents map[string]int64 `yaml:"max_amount_cents"`

	// BlockedCountries lists watchlisted issuing countries.
	BlockedCountries []string `yaml:"blocked_countries"`

	// BlockedBINs lists watchlisted card BINs.
	BlockedBINs []string `yaml:"blocked_bins"`

	// Velocity bounds transactions per card over a sliding window.
	Velocity VelocityRule `yaml:"velocity"`

	// ReviewThreshold is the score at which a transaction goes to manual
	// review.
	// Default: 40
	ReviewThreshold int `yaml:"review_threshold"`

	// DeclineThreshold is the score at which a transaction is declined.
	// Default: 70
	DeclineThreshold int `yaml:"decline_threshold"`
}

// VelocityRule bounds how many transactions a single card may make within a
// sliding window.
type VelocityRule struct {
	// MaxTransactions is the per-card count ceiling. 0 disables the rule.
	// Default: 10
	MaxTransactions int `yaml:"max_transactions"`

	// Window is the sliding window length.
	// Default: 1m
	Window time.Duration `yaml:"window"`
}

// Rule scores added per hit.
const (
	scoreAmountLimit    = 40
	scoreBlockedCountry = 50
	scoreBlockedBIN     = 60
	scoreVelocity       = 30
)

// DefaultRuleset returns a permissive ruleset used when no file is provided.
func DefaultRuleset() *Ruleset {
	rs := &Ruleset{}
	rs.applyDefaults()
	return rs
}

func (rs *Ruleset) applyDefaults() {
	if rs.ReviewThreshold == 0 {
		rs.ReviewThreshold = 40
	}
	if rs.DeclineThreshold == 0 {
		rs.DeclineThreshold = 70
	}
	if rs.Velocity.MaxTransactions == 0 {
		rs.Velocity.MaxTransactions = 10
	}
	if rs.Velocity.Window == 0 {
		rs.Velocity.Window = time.Minute
	}
}

// validate checks the ruleset for inconsistencies.
func (rs *Ruleset) validate() error {
	if rs.ReviewThreshold < 0 {
		return fmt.Errorf("review_threshold must be non-negative, got %d", rs.ReviewThreshold)
	}
	if rs.DeclineThreshold < rs.ReviewThreshold {
		return fmt.Errorf("decline_threshold (%d) must not be below review_threshold (%d)",
			rs.DeclineThreshold, rs.ReviewThreshold)
	}
	if rs.Velocity.MaxTransactions < 0 {
		return fmt.Errorf("velocity.max_transactions must be non-negative, got %d", rs.Velocity.MaxTransactions)
	}
	if rs.Velocity.Window < 0 {
		return fmt.Errorf("velocity.window must be non-negative, got %s", rs.Velocity.Window)
	}
	for gateway, ceiling := range rs.MaxAmountCents {
		if ceiling < 0 {
			return fmt.Errorf("max_amount_cents[%s] must be non-negative, got %d", gateway, ceiling)
		}
	}
	return nil
}

// amountCeiling returns the amount ceiling for a gateway, falling back to the
// "default" entry. 0 means no ceiling.
func (rs *Ruleset) amountCeiling(gateway string) int64 {
	if ceiling, ok := rs.MaxAmountCents[gateway]; ok {
		return ceiling
	}
	return rs.MaxAmountCents["default"]
}

// LoadRuleset loads and validates a ruleset from a YAML file.
func LoadRuleset(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %q: %w", path, err)
	}

	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %q: %w", path, err)
	}

	rs.applyDefaults()
	if err := rs.validate(); err != nil {
		return nil, fmt.Errorf("invalid rules file %q: %w", path, err)
	}

	return &rs, nil
}
