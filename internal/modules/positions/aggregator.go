package positions

import (
	"github.com/aristath/yieldrouter/internal/domain"
	"github.com/aristath/yieldrouter/internal/modules/health"
)

// Snapshot is everything the aggregator needs for one user at one moment.
type Snapshot struct {
	Lending domain.LendingPosition
	Pools   domain.PoolPosition
	// LendingAPY is the live supply APY; nil means unavailable.
	LendingAPY *float64
	// PoolAPYs holds live APYs per pool symbol; missing symbols fall back.
	PoolAPYs map[string]float64
}

// Aggregator derives a UnifiedUserPosition from a Snapshot.
type Aggregator struct {
	estimator         DepositEstimator
	feePercent        float64
	legacyPoolWeights bool
	fallback          domain.FallbackAPYTable
}

// NewAggregator creates an aggregator. A nil estimator uses the 95% heuristic.
func NewAggregator(estimator DepositEstimator, feePercent float64, legacyPoolWeights bool) *Aggregator {
	if estimator == nil {
		estimator = HeuristicEstimator{Fraction: DefaultDepositedFraction}
	}
	return &Aggregator{
		estimator:         estimator,
		feePercent:        feePercent,
		legacyPoolWeights: legacyPoolWeights,
		fallback:          domain.DefaultFallbackAPYs,
	}
}

// PoolWeights returns the sub-weighting used for the pool bucket.
func (a *Aggregator) PoolWeights(pools domain.PoolPosition) map[string]float64 {
	if a.legacyPoolWeights {
		return LegacyPoolWeights
	}
	if w := WeightsFromHoldings(pools.Holdings); len(w) > 0 {
		return w
	}
	return LegacyPoolWeights
}

// APY blends the snapshot's lending and pool yields.
func (a *Aggregator) APY(s Snapshot) BlendedAPY {
	lendingAPY := a.fallback.LendingSupplyAPY
	if s.LendingAPY != nil && *s.LendingAPY >= 0 {
		lendingAPY = *s.LendingAPY
	}
	poolAPY := BlendedPoolAPY(s.PoolAPYs, a.PoolWeights(s.Pools), a.fallback)
	return BlendAPY(lendingAPY, poolAPY, a.feePercent)
}

// Aggregate builds the unified view. Total value is lending collateral plus
// pool value. Earnings may be negative. No field is ever NaN.
func (a *Aggregator) Aggregate(s Snapshot) domain.UnifiedUserPosition {
	total := finiteOrZero(s.Lending.TotalCollateralUSD) + finiteOrZero(s.Pools.TotalValueUSD)
	deposited := finiteOrZero(a.estimator.EstimateDeposited(total))
	earnings := total - deposited

	earningsPercent := 0.0
	if deposited > 0 {
		earningsPercent = earnings / deposited * 100
	}

	borrowed := finiteOrZero(s.Lending.TotalDebtUSD)
	available := finiteOrZero(s.Lending.AvailableToBorrowUSD)

	hf := s.Lending.HealthFactor
	if s.Lending.LiquidationThreshold > 0 || borrowed <= 0 {
		hf = health.Factor(s.Lending.TotalCollateralUSD, borrowed, s.Lending.LiquidationThreshold)
	}

	apy := a.APY(s)

	return domain.UnifiedUserPosition{
		TotalValueUSD:        total,
		DepositedUSD:         deposited,
		EarningsUSD:          earnings,
		EarningsPercent:      earningsPercent,
		BorrowCapacityUSD:    borrowed + available,
		BorrowedUSD:          borrowed,
		AvailableToBorrowUSD: available,
		BorrowUtilization:    BorrowUtilization(borrowed, available),
		CurrentAPY:           apy.Net,
		DisplayAPY:           apy.Display,
		HealthFactor:         hf,
		Projected:            ProjectEarnings(deposited, apy.Net),
	}
}
