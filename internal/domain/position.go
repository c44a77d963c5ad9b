package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// HealthFactor is a lending position's distance from liquidation.
// A position without debt has an infinite health factor, represented by
// +Inf so that every "is it safe" comparison is trivially true.
type HealthFactor float64

// InfiniteHealthFactor is the sentinel for a position without debt.
var InfiniteHealthFactor = HealthFactor(math.Inf(1))

const infiniteHealthFactorJSON = `"infinite"`

// IsInfinite reports whether h is the no-debt sentinel.
func (h HealthFactor) IsInfinite() bool {
	return math.IsInf(float64(h), 1)
}

// Float64 returns the raw value (+Inf for the sentinel).
func (h HealthFactor) Float64() float64 {
	return float64(h)
}

// String renders the factor with two decimals or "infinite".
func (h HealthFactor) String() string {
	if h.IsInfinite() {
		return "infinite"
	}
	return strconv.FormatFloat(float64(h), 'f', 2, 64)
}

// MarshalJSON encodes the sentinel as the string "infinite" because JSON has
// no representation for +Inf.
func (h HealthFactor) MarshalJSON() ([]byte, error) {
	if h.IsInfinite() {
		return []byte(infiniteHealthFactorJSON), nil
	}
	if math.IsNaN(float64(h)) {
		return nil, fmt.Errorf("health factor is NaN")
	}
	return []byte(strconv.FormatFloat(float64(h), 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a number, "infinite" or null (treated as infinite).
func (h *HealthFactor) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(infiniteHealthFactorJSON)) {
		*h = InfiniteHealthFactor
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid health factor %s: %w", string(data), err)
	}
	*h = HealthFactor(v)
	return nil
}

// LendingPosition is a user's account on the lending market, already
// normalized to USD floats and percentages by the lending client.
type LendingPosition struct {
	TotalCollateralUSD   float64      `json:"total_collateral_usd"`
	TotalDebtUSD         float64      `json:"total_debt_usd"`
	AvailableToBorrowUSD float64      `json:"available_to_borrow_usd"`
	LoanToValue          float64      `json:"loan_to_value"`         // percent
	LiquidationThreshold float64      `json:"liquidation_threshold"` // percent
	HealthFactor         HealthFactor `json:"health_factor"`
}

// PoolHolding is one pool share-token balance with its estimated USD value.
type PoolHolding struct {
	Symbol       string  `json:"symbol"`
	ShareBalance float64 `json:"share_balance"`
	ValueUSD     float64 `json:"value_usd"`
}

// PoolPosition aggregates a user's holdings across liquidity pools.
type PoolPosition struct {
	Holdings      []PoolHolding `json:"holdings"`
	TotalValueUSD float64       `json:"total_value_usd"`
}

// NewPoolPosition builds a position and sums the holdings' USD value.
func NewPoolPosition(holdings []PoolHolding) PoolPosition {
	total := 0.0
	for _, h := range holdings {
		total += h.ValueUSD
	}
	return PoolPosition{Holdings: holdings, TotalValueUSD: total}
}

// EarningsProjection is a simple (non-compounded) annualization.
type EarningsProjection struct {
	Daily   float64 `json:"daily"`
	Monthly float64 `json:"monthly"`
	Yearly  float64 `json:"yearly"`
}

// UnifiedUserPosition is the single user-facing view derived from a lending
// position and a pool position. It is recomputed on every refresh and never
// persisted.
type UnifiedUserPosition struct {
	TotalValueUSD        float64            `json:"total_value_usd"`
	DepositedUSD         float64            `json:"deposited_usd"`
	EarningsUSD          float64            `json:"earnings_usd"`
	EarningsPercent      float64            `json:"earnings_percent"`
	BorrowCapacityUSD    float64            `json:"borrow_capacity_usd"`
	BorrowedUSD          float64            `json:"borrowed_usd"`
	AvailableToBorrowUSD float64            `json:"available_to_borrow_usd"`
	BorrowUtilization    float64            `json:"borrow_utilization"` // percent, 0..100
	CurrentAPY           float64            `json:"current_apy"`        // net, full precision
	DisplayAPY           float64            `json:"display_apy"`        // net, one decimal
	HealthFactor         HealthFactor       `json:"health_factor"`
	Projected            EarningsProjection `json:"projected"`
}
