package opportunities

import (
	"sort"

	"github.com/aristath/yieldrouter/internal/domain"
)

// ScoreAll returns a copy of list with every Score filled in.
func ScoreAll(list []domain.YieldOpportunity, tolerance domain.RiskTier) []domain.YieldOpportunity {
	scored := make([]domain.YieldOpportunity, len(list))
	for i, opp := range list {
		opp.Score = Score(opp, tolerance)
		scored[i] = opp
	}
	return scored
}

// SortByScore orders opportunities by descending score. The sort is stable so
// ties keep their input order.
func SortByScore(list []domain.YieldOpportunity) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Score > list[j].Score
	})
}

// Rank filters, scores and sorts a catalog for the given config.
// The input slice is not modified.
func Rank(list []domain.YieldOpportunity, cfg RouterConfig) []domain.YieldOpportunity {
	ranked := ScoreAll(FilterOpportunities(list, cfg), cfg.RiskTolerance)
	SortByScore(ranked)
	return ranked
}
