package positions

import (
	"math"

	"github.com/aristath/yieldrouter/internal/domain"
)

// DefaultDepositedFraction is the share of current value assumed to be
// principal when no deposit ledger exists.
const DefaultDepositedFraction = 0.95

// DepositEstimator estimates how much of a position's current value was
// deposited. A ledger-backed implementation can replace the heuristic without
// touching callers.
type DepositEstimator interface {
	EstimateDeposited(totalValueUSD float64) float64
}

// HeuristicEstimator assumes a fixed fraction of current value is principal.
type HeuristicEstimator struct {
	Fraction float64
}

// EstimateDeposited implements DepositEstimator.
func (e HeuristicEstimator) EstimateDeposited(totalValueUSD float64) float64 {
	return totalValueUSD * e.Fraction
}

// EstimateDeposited applies the default heuristic.
func EstimateDeposited(totalValueUSD float64) float64 {
	return HeuristicEstimator{Fraction: DefaultDepositedFraction}.EstimateDeposited(totalValueUSD)
}

// ProjectEarnings annualizes without compounding:
// yearly = deposited*apy/100, monthly = yearly/12, daily = yearly/365.
func ProjectEarnings(depositedUSD, netAPY float64) domain.EarningsProjection {
	yearly := finiteOrZero(depositedUSD * netAPY / 100)
	return domain.EarningsProjection{
		Daily:   yearly / 365,
		Monthly: yearly / 12,
		Yearly:  yearly,
	}
}

// BorrowUtilization is borrowed / (borrowed + available) as a percentage,
// clamped to [0, 100]. A zero denominator yields 0.
func BorrowUtilization(borrowedUSD, availableUSD float64) float64 {
	denominator := borrowedUSD + availableUSD
	if denominator <= 0 || math.IsNaN(denominator) {
		return 0
	}
	return math.Min(math.Max(borrowedUSD/denominator*100, 0), 100)
}
