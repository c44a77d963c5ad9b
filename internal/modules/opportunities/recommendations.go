package opportunities

import (
	"fmt"
	"sort"

	"github.com/aristath/yieldrouter/internal/domain"
)

// Recommendation thresholds.
const (
	RecommendationLimit = 10

	QuickStartMinTVL = 100_000.0
	SafeYieldMinTVL  = 500_000.0
	BalancedMinTVL   = 100_000.0
	HighYieldMinAPY  = 20.0
)

// Recommendation kinds exposed by the API.
const (
	KindQuickStart = "quick-start"
	KindSafeYield  = "safe-yield"
	KindHighYield  = "high-yield"
	KindBalanced   = "balanced"
)

// The queries below take a list already ranked by score (see Rank) and never
// modify it.

// QuickStart returns the best scored non-high-risk opportunity with at least
// $100k TVL. ok is false when nothing qualifies.
func QuickStart(ranked []domain.YieldOpportunity) (opp domain.YieldOpportunity, ok bool) {
	for _, o := range ranked {
		if o.Risk != domain.RiskHigh && o.TVL >= QuickStartMinTVL {
			return o, true
		}
	}
	return domain.YieldOpportunity{}, false
}

// SafeYield returns up to 10 low-risk opportunities with at least $500k TVL.
func SafeYield(ranked []domain.YieldOpportunity) []domain.YieldOpportunity {
	return takeMatching(ranked, RecommendationLimit, func(o domain.YieldOpportunity) bool {
		return o.Risk == domain.RiskLow && o.TVL >= SafeYieldMinTVL
	})
}

// HighYield returns up to 10 non-high-risk opportunities with APY of at least
// 20%, ordered by raw APY rather than score.
func HighYield(ranked []domain.YieldOpportunity) []domain.YieldOpportunity {
	candidates := takeMatching(ranked, len(ranked), func(o domain.YieldOpportunity) bool {
		return o.Risk != domain.RiskHigh && o.APY >= HighYieldMinAPY
	})
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].APY > candidates[j].APY
	})
	if len(candidates) > RecommendationLimit {
		candidates = candidates[:RecommendationLimit]
	}
	return candidates
}

// Balanced returns up to 10 non-high-risk opportunities with at least $100k TVL.
func Balanced(ranked []domain.YieldOpportunity) []domain.YieldOpportunity {
	return takeMatching(ranked, RecommendationLimit, func(o domain.YieldOpportunity) bool {
		return o.Risk != domain.RiskHigh && o.TVL >= BalancedMinTVL
	})
}

// Recommend dispatches a recommendation query by kind.
func Recommend(kind string, ranked []domain.YieldOpportunity) ([]domain.YieldOpportunity, error) {
	switch kind {
	case KindQuickStart:
		if opp, ok := QuickStart(ranked); ok {
			return []domain.YieldOpportunity{opp}, nil
		}
		return []domain.YieldOpportunity{}, nil
	case KindSafeYield:
		return SafeYield(ranked), nil
	case KindHighYield:
		return HighYield(ranked), nil
	case KindBalanced:
		return Balanced(ranked), nil
	default:
		return nil, fmt.Errorf("unknown recommendation kind %q", kind)
	}
}

func takeMatching(list []domain.YieldOpportunity, limit int, match func(domain.YieldOpportunity) bool) []domain.YieldOpportunity {
	result := make([]domain.YieldOpportunity, 0, limit)
	for _, o := range list {
		if len(result) >= limit {
			break
		}
		if match(o) {
			result = append(result, o)
		}
	}
	return result
}
