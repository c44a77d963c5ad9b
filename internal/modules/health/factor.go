// Package health computes lending health factors, safe withdrawal and borrow
// limits, and classifies proposed actions against liquidation thresholds.
package health

import (
	"math"

	"github.com/aristath/yieldrouter/internal/domain"
)

// Health factor targets.
const (
	// SafeTarget backs the default MAX button.
	SafeTarget = 1.5
	// MinimumTarget is the hard floor; below it the position is liquidatable.
	MinimumTarget = 1.0
)

// Factor computes collateral * lt/100 / debt. Without debt the position can
// never be liquidated and the infinite sentinel is returned, whatever the
// collateral (including zero).
func Factor(collateral, debt, liquidationThresholdPct float64) domain.HealthFactor {
	if debt <= 0 {
		return domain.InfiniteHealthFactor
	}
	hf := collateral * (liquidationThresholdPct / 100) / debt
	if math.IsNaN(hf) || hf < 0 {
		return 0
	}
	return domain.HealthFactor(hf)
}

// MaxWithdrawable returns how much collateral can be removed while keeping the
// health factor at or above target. Without debt everything can be withdrawn.
func MaxWithdrawable(collateral, debt, liquidationThresholdPct, target float64) float64 {
	if debt <= 0 {
		return collateral
	}
	if liquidationThresholdPct <= 0 {
		return 0
	}
	minCollateral := (target * debt) / (liquidationThresholdPct / 100)
	return math.Max(0, collateral-minCollateral)
}

// MaxBorrowable returns how much more can be borrowed while keeping the health
// factor at or above target.
func MaxBorrowable(collateral, debt, liquidationThresholdPct, target float64) float64 {
	if target <= 0 || liquidationThresholdPct <= 0 {
		return 0
	}
	maxDebt := collateral * (liquidationThresholdPct / 100) / target
	return math.Max(0, maxDebt-math.Max(debt, 0))
}

// FactorAfterWithdraw is the health factor once amount of collateral is gone.
// Withdrawing all collateral against outstanding debt yields 0.
func FactorAfterWithdraw(collateral, debt, amount, liquidationThresholdPct float64) domain.HealthFactor {
	if debt <= 0 {
		return domain.InfiniteHealthFactor
	}
	remaining := collateral - amount
	if remaining <= 0 {
		return 0
	}
	return Factor(remaining, debt, liquidationThresholdPct)
}

// FactorAfterBorrow is the health factor once amount of new debt is taken.
func FactorAfterBorrow(collateral, debt, amount, liquidationThresholdPct float64) domain.HealthFactor {
	return Factor(collateral, math.Max(debt, 0)+amount, liquidationThresholdPct)
}

// FactorAfterRepay is the health factor once amount of debt is repaid.
func FactorAfterRepay(collateral, debt, amount, liquidationThresholdPct float64) domain.HealthFactor {
	return Factor(collateral, math.Max(debt-amount, 0), liquidationThresholdPct)
}

// Limits are the withdraw and borrow ceilings for a position at both targets.
type Limits struct {
	HealthFactor         domain.HealthFactor `json:"health_factor"`
	Severity             Severity            `json:"severity"`
	SafeWithdrawUSD      float64             `json:"safe_withdraw_usd"` // keeps HF >= 1.5
	MaxWithdrawUSD       float64             `json:"max_withdraw_usd"`  // keeps HF >= 1.0
	SafeBorrowUSD        float64             `json:"safe_borrow_usd"`   // keeps HF >= 1.5
	MaxBorrowUSD         float64             `json:"max_borrow_usd"`    // keeps HF >= 1.0
	AvailableToBorrowUSD float64             `json:"available_to_borrow_usd"`
	LiquidationThreshold float64             `json:"liquidation_threshold"`
	TotalCollateralUSD   float64             `json:"total_collateral_usd"`
	TotalDebtUSD         float64             `json:"total_debt_usd"`
}

// ComputeLimits evaluates MaxWithdrawable and MaxBorrowable at the safe and
// minimum targets. Borrow ceilings are additionally capped by what the market
// reports as available to borrow when that is known.
func ComputeLimits(p domain.LendingPosition) Limits {
	hf := Factor(p.TotalCollateralUSD, p.TotalDebtUSD, p.LiquidationThreshold)

	safeBorrow := MaxBorrowable(p.TotalCollateralUSD, p.TotalDebtUSD, p.LiquidationThreshold, SafeTarget)
	maxBorrow := MaxBorrowable(p.TotalCollateralUSD, p.TotalDebtUSD, p.LiquidationThreshold, MinimumTarget)
	if p.AvailableToBorrowUSD > 0 {
		safeBorrow = math.Min(safeBorrow, p.AvailableToBorrowUSD)
		maxBorrow = math.Min(maxBorrow, p.AvailableToBorrowUSD)
	}

	return Limits{
		HealthFactor:         hf,
		Severity:             Classify(hf),
		SafeWithdrawUSD:      MaxWithdrawable(p.TotalCollateralUSD, p.TotalDebtUSD, p.LiquidationThreshold, SafeTarget),
		MaxWithdrawUSD:       MaxWithdrawable(p.TotalCollateralUSD, p.TotalDebtUSD, p.LiquidationThreshold, MinimumTarget),
		SafeBorrowUSD:        safeBorrow,
		MaxBorrowUSD:         maxBorrow,
		AvailableToBorrowUSD: p.AvailableToBorrowUSD,
		LiquidationThreshold: p.LiquidationThreshold,
		TotalCollateralUSD:   p.TotalCollateralUSD,
		TotalDebtUSD:         p.TotalDebtUSD,
	}
}
