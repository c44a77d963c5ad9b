package vaults

import (
	"strings"

	"github.com/aristath/yieldrouter/internal/domain"
)

// TVL thresholds (USD) used when tags alone do not settle the tier.
const (
	HighRiskTVL   = 100_000.0
	MediumRiskTVL = 1_000_000.0
)

var highRiskTags = map[string]bool{
	"experimental": true,
	"unaudited":    true,
	"leveraged":    true,
	"depeg":        true,
	"exploit":      true,
}

var mediumRiskTags = map[string]bool{
	"impermanent-loss": true,
	"il":               true,
	"volatile":         true,
	"bridge":           true,
	"lockup":           true,
	"new":              true,
	"reward-token":     true,
}

// RiskTier derives a tier from the aggregator's risk tags and the vault TVL.
// Any high-risk tag, or TVL under $100k, makes the vault high risk. Any
// medium-risk tag, or TVL under $1M, makes it medium. Everything else is low.
func RiskTier(tags []string, tvl float64) domain.RiskTier {
	medium := tvl < MediumRiskTVL
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if highRiskTags[t] {
			return domain.RiskHigh
		}
		if mediumRiskTags[t] {
			medium = true
		}
	}

	if tvl < HighRiskTVL {
		return domain.RiskHigh
	}
	if medium {
		return domain.RiskMedium
	}
	return domain.RiskLow
}
