package opportunities

import (
	"math"

	"github.com/aristath/yieldrouter/internal/domain"
)

// Scoring weights. A perfect opportunity scores 70 before multipliers:
// 40 points for yield, 30 for liquidity depth.
const (
	MaxAPYPoints = 40.0
	MaxTVLPoints = 30.0

	// APYForMaxPoints is the APY (percent) at which the yield component saturates.
	APYForMaxPoints = 100.0
	// TVLLog10ForMaxPoints saturates the liquidity component at $10M TVL.
	TVLLog10ForMaxPoints = 7.0

	SocialCopyBoost = 1.10
	// NascentPoolTVL is the TVL below which a pool is treated as nascent.
	NascentPoolTVL     = 10_000.0
	NascentPoolPenalty = 0.80
)

// riskPenalties are subtracted from the raw score per opportunity tier.
var riskPenalties = map[domain.RiskTier]float64{
	domain.RiskLow:    0,
	domain.RiskMedium: 15,
	domain.RiskHigh:   30,
}

// riskMultipliers scale the score per user risk tolerance. A low-tolerance
// user amplifies penalties, a high-tolerance user discounts them.
var riskMultipliers = map[domain.RiskTier]float64{
	domain.RiskLow:    1.5,
	domain.RiskMedium: 1.0,
	domain.RiskHigh:   0.8,
}

// Score computes the opportunity score for a user's risk tolerance.
// The result is never negative and depends only on its arguments.
func Score(opp domain.YieldOpportunity, tolerance domain.RiskTier) float64 {
	apyScore := math.Min(opp.APY/APYForMaxPoints, 1) * MaxAPYPoints
	tvlScore := math.Min(math.Log10(math.Max(opp.TVL, 0)+1)/TVLLog10ForMaxPoints, 1) * MaxTVLPoints

	penalty, ok := riskPenalties[opp.Risk]
	if !ok {
		penalty = riskPenalties[domain.RiskMedium]
	}
	multiplier, ok := riskMultipliers[tolerance]
	if !ok {
		multiplier = riskMultipliers[domain.RiskMedium]
	}

	score := (apyScore + tvlScore - penalty) * multiplier

	if opp.Source == domain.SourceSocialCopy {
		score *= SocialCopyBoost
	}
	if opp.TVL < NascentPoolTVL {
		score *= NascentPoolPenalty
	}

	if math.IsNaN(score) || score < 0 {
		return 0
	}
	return score
}
