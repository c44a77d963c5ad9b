// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"strings"
)

// RiskTier is the coarse risk classification of a yield opportunity.
// The same three values double as a user's risk tolerance.
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// Rank orders tiers low < medium < high as 1, 2, 3.
// Unknown tiers rank as medium.
func (r RiskTier) Rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskHigh:
		return 3
	default:
		return 2
	}
}

// Valid reports whether r is one of the three known tiers.
func (r RiskTier) Valid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// ParseRiskTier parses a case-insensitive tier name.
func ParseRiskTier(s string) (RiskTier, error) {
	tier := RiskTier(strings.ToLower(strings.TrimSpace(s)))
	if !tier.Valid() {
		return "", fmt.Errorf("invalid risk tier: %q", s)
	}
	return tier, nil
}

// Source identifies where a yield opportunity was discovered.
type Source string

const (
	SourceVaultAggregator Source = "vault-aggregator"
	SourcePoolProtocol    Source = "pool-protocol"
	SourceLendingProtocol Source = "lending-protocol"
	SourceSocialCopy      Source = "social-copy"
)

// AllSources lists the closed set of opportunity sources.
var AllSources = []Source{
	SourceVaultAggregator,
	SourcePoolProtocol,
	SourceLendingProtocol,
	SourceSocialCopy,
}

// Valid reports whether s belongs to the closed source set.
func (s Source) Valid() bool {
	for _, known := range AllSources {
		if s == known {
			return true
		}
	}
	return false
}

// YieldOpportunity is a candidate place to deposit funds.
// It is rebuilt from external catalog data on every query cycle; only Score and
// AllocationPercent are filled in afterwards by the scorer and the allocator.
type YieldOpportunity struct {
	ID                string   `json:"id"`
	Source            Source   `json:"source"`
	Chain             string   `json:"chain"`
	Protocol          string   `json:"protocol"`
	Name              string   `json:"name"`
	DepositToken      string   `json:"deposit_token"`
	APY               float64  `json:"apy"` // percent, compounded
	APR               float64  `json:"apr"` // percent, simple
	TVL               float64  `json:"tvl"` // USD
	Risk              RiskTier `json:"risk"`
	RiskFactors       []string `json:"risk_factors,omitempty"`
	Score             float64  `json:"score"`
	AllocationPercent float64  `json:"allocation_percent,omitempty"` // fraction of the deposit, 0..1
}

// Validate checks the opportunity invariants.
func (o YieldOpportunity) Validate() error {
	if o.APY < 0 {
		return fmt.Errorf("opportunity %s: negative apy %.4f", o.ID, o.APY)
	}
	if o.TVL < 0 {
		return fmt.Errorf("opportunity %s: negative tvl %.2f", o.ID, o.TVL)
	}
	if !o.Risk.Valid() {
		return fmt.Errorf("opportunity %s: invalid risk tier %q", o.ID, o.Risk)
	}
	return nil
}
