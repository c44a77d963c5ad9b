package health

import (
	"fmt"

	"github.com/aristath/yieldrouter/internal/domain"
)

// Action is a proposed change to a lending position.
type Action string

const (
	ActionWithdraw Action = "withdraw"
	ActionBorrow   Action = "borrow"
	ActionRepay    Action = "repay"
)

// Level is the outcome of validating an action. Error blocks the action,
// warning is advisory only.
type Level string

const (
	LevelNone    Level = "none"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Validation describes what an action would do to a position.
type Validation struct {
	Action                Action              `json:"action"`
	Amount                float64             `json:"amount"`
	Level                 Level               `json:"level"`
	Message               string              `json:"message,omitempty"`
	CurrentHealthFactor   domain.HealthFactor `json:"current_health_factor"`
	ResultingHealthFactor domain.HealthFactor `json:"resulting_health_factor"`
	Severity              Severity            `json:"severity"`
}

// Blocking reports whether the action must be refused.
func (v Validation) Blocking() bool {
	return v.Level == LevelError
}

// Validate classifies a proposed action. Structurally impossible amounts and
// results below MinimumTarget are errors; results below SafeTarget are
// warnings. A repay never worsens the position, so it only warns when the
// position stays below SafeTarget afterwards.
func Validate(action Action, amount float64, p domain.LendingPosition) Validation {
	v := Validation{
		Action:              action,
		Amount:              amount,
		Level:               LevelNone,
		CurrentHealthFactor: Factor(p.TotalCollateralUSD, p.TotalDebtUSD, p.LiquidationThreshold),
	}
	v.ResultingHealthFactor = v.CurrentHealthFactor
	v.Severity = Classify(v.CurrentHealthFactor)

	if !(amount > 0) {
		return v.fail("amount must be greater than zero")
	}

	switch action {
	case ActionWithdraw:
		if amount > p.TotalCollateralUSD {
			return v.fail(fmt.Sprintf("amount exceeds supplied collateral of %.2f", p.TotalCollateralUSD))
		}
		v.ResultingHealthFactor = FactorAfterWithdraw(p.TotalCollateralUSD, p.TotalDebtUSD, amount, p.LiquidationThreshold)
	case ActionBorrow:
		// Zero means the market did not report availability, as in ComputeLimits.
		if p.AvailableToBorrowUSD > 0 && amount > p.AvailableToBorrowUSD {
			return v.fail(fmt.Sprintf("amount exceeds available to borrow of %.2f", p.AvailableToBorrowUSD))
		}
		v.ResultingHealthFactor = FactorAfterBorrow(p.TotalCollateralUSD, p.TotalDebtUSD, amount, p.LiquidationThreshold)
	case ActionRepay:
		if amount > p.TotalDebtUSD {
			return v.fail(fmt.Sprintf("amount exceeds outstanding debt of %.2f", p.TotalDebtUSD))
		}
		v.ResultingHealthFactor = FactorAfterRepay(p.TotalCollateralUSD, p.TotalDebtUSD, amount, p.LiquidationThreshold)
		v.Severity = Classify(v.ResultingHealthFactor)
		if !v.ResultingHealthFactor.IsInfinite() && v.ResultingHealthFactor.Float64() < SafeTarget {
			v.Level = LevelWarning
			v.Message = fmt.Sprintf("health factor stays low at %s after repaying", v.ResultingHealthFactor)
		}
		return v
	default:
		return v.fail(fmt.Sprintf("unknown action %q", action))
	}

	v.Severity = Classify(v.ResultingHealthFactor)

	switch hf := v.ResultingHealthFactor; {
	case hf.IsInfinite():
	case hf.Float64() < MinimumTarget:
		v.Level = LevelError
		v.Message = fmt.Sprintf("health factor would drop to %s, below the liquidation threshold", hf)
	case hf.Float64() < SafeTarget:
		v.Level = LevelWarning
		v.Message = fmt.Sprintf("health factor would drop to %s, below the recommended %.1f", hf, SafeTarget)
	}

	return v
}

func (v Validation) fail(message string) Validation {
	v.Level = LevelError
	v.Message = message
	return v
}
