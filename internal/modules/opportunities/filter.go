package opportunities

import (
	"strings"

	"github.com/aristath/yieldrouter/internal/domain"
)

// FilterOpportunities returns the opportunities that pass every filter in cfg.
// An opportunity is dropped when its chain is outside the allow-list (if one is
// set), its APY is below MinAPY, its risk tier is above MaxRisk, its TVL is
// below MinTVL or its source is excluded. Empty input, or everything filtered
// out, yields an empty slice.
func FilterOpportunities(list []domain.YieldOpportunity, cfg RouterConfig) []domain.YieldOpportunity {
	chains := make(map[string]bool, len(cfg.Chains))
	for _, c := range cfg.Chains {
		chains[strings.ToLower(c)] = true
	}
	excluded := make(map[domain.Source]bool, len(cfg.ExcludeSources))
	for _, s := range cfg.ExcludeSources {
		excluded[s] = true
	}
	maxRank := cfg.maxRisk().Rank()

	result := make([]domain.YieldOpportunity, 0, len(list))
	for _, opp := range list {
		if len(chains) > 0 && !chains[strings.ToLower(opp.Chain)] {
			continue
		}
		if opp.APY < cfg.MinAPY {
			continue
		}
		if opp.Risk.Rank() > maxRank {
			continue
		}
		if opp.TVL < cfg.MinTVL {
			continue
		}
		if excluded[opp.Source] {
			continue
		}
		result = append(result, opp)
	}

	return result
}
