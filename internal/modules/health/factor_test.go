package health

import (
	"math"
	"testing"

	"github.com/aristath/yieldrouter/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactor(t *testing.T) {
	assert.InDelta(t, 2.0625, Factor(10000, 4000, 82.5).Float64(), 1e-12)
	assert.InDelta(t, 0.5, Factor(1000, 1600, 80).Float64(), 1e-12)
}

func TestFactor_NoDebtIsInfinite(t *testing.T) {
	for _, collateral := range []float64{0, 1, 10_000, 1e12} {
		hf := Factor(collateral, 0, 82.5)
		assert.True(t, hf.IsInfinite(), "collateral %.0f", collateral)
		assert.False(t, math.IsNaN(hf.Float64()))
	}
	assert.True(t, Factor(0, -5, 80).IsInfinite())
}

func TestMaxWithdrawable(t *testing.T) {
	tests := []struct {
		name       string
		collateral float64
		debt       float64
		lt         float64
		target     float64
		expected   float64
	}{
		{"safe target", 10000, 4000, 82.5, 1.5, 10000 - (1.5*4000)/0.825},
		{"minimum target", 10000, 4000, 82.5, 1.0, 10000 - 4000/0.825},
		{"no debt returns all collateral", 10000, 0, 82.5, 1.5, 10000},
		{"no debt zero collateral", 0, 0, 82.5, 1.5, 0},
		{"underwater clamps to zero", 1000, 4000, 80, 1.5, 0},
		{"zero threshold", 1000, 100, 0, 1.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, MaxWithdrawable(tt.collateral, tt.debt, tt.lt, tt.target), 1e-9)
		})
	}
}

func TestMaxWithdrawable_ScenarioFromDocs(t *testing.T) {
	assert.InDelta(t, 2727.27, MaxWithdrawable(10000, 4000, 82.5, 1.5), 0.01)
}

func TestMaxWithdrawable_NoDebtIsExact(t *testing.T) {
	for _, c := range []float64{0.1, 123.456, 1e9} {
		assert.Equal(t, c, MaxWithdrawable(c, 0, 75, 1.5))
	}
}

func TestMaxWithdrawable_RoundTrip(t *testing.T) {
	cases := []struct{ collateral, debt, lt float64 }{
		{10000, 4000, 82.5},
		{50000, 1000, 75},
		{2500, 100, 86},
		{1e7, 3e6, 80},
	}
	for _, c := range cases {
		for _, target := range []float64{SafeTarget, MinimumTarget, 1.2, 2.5} {
			w := MaxWithdrawable(c.collateral, c.debt, c.lt, target)
			if Factor(c.collateral, c.debt, c.lt).Float64() <= target {
				assert.Equal(t, 0.0, w, "%+v already at or below target %.1f", c, target)
				continue
			}
			require.Greater(t, w, 0.0)
			hf := FactorAfterWithdraw(c.collateral, c.debt, w, c.lt)
			assert.InDelta(t, target, hf.Float64(), 1e-9, "%+v target %.1f", c, target)
		}
	}
}

func TestFactorAfterWithdraw(t *testing.T) {
	assert.True(t, FactorAfterWithdraw(1000, 0, 500, 80).IsInfinite())
	assert.Equal(t, domain.HealthFactor(0), FactorAfterWithdraw(1000, 100, 1000, 80))
	assert.Equal(t, domain.HealthFactor(0), FactorAfterWithdraw(1000, 100, 2000, 80))
	assert.InDelta(t, 4.0, FactorAfterWithdraw(1000, 100, 500, 80).Float64(), 1e-12)
}

func TestFactorAfterBorrowAndRepay(t *testing.T) {
	assert.InDelta(t, 1.6, FactorAfterBorrow(1000, 0, 500, 80).Float64(), 1e-12)
	assert.InDelta(t, 0.8, FactorAfterBorrow(1000, 500, 500, 80).Float64(), 1e-12)

	assert.InDelta(t, 1.6, FactorAfterRepay(1000, 1000, 500, 80).Float64(), 1e-12)
	assert.True(t, FactorAfterRepay(1000, 500, 500, 80).IsInfinite())
}

func TestMaxBorrowable(t *testing.T) {
	assert.InDelta(t, 1000*0.8/1.5-100, MaxBorrowable(1000, 100, 80, SafeTarget), 1e-9)
	assert.InDelta(t, 700.0, MaxBorrowable(1000, 100, 80, MinimumTarget), 1e-9)
	assert.Equal(t, 0.0, MaxBorrowable(1000, 900, 80, SafeTarget))

	borrowed := MaxBorrowable(1000, 100, 80, SafeTarget)
	assert.InDelta(t, SafeTarget, FactorAfterBorrow(1000, 100, borrowed, 80).Float64(), 1e-9)
}

func TestComputeLimits(t *testing.T) {
	limits := ComputeLimits(domain.LendingPosition{
		TotalCollateralUSD:   10000,
		TotalDebtUSD:         4000,
		AvailableToBorrowUSD: 500,
		LiquidationThreshold: 82.5,
	})

	assert.InDelta(t, 2.0625, limits.HealthFactor.Float64(), 1e-12)
	assert.Equal(t, SeveritySafe, limits.Severity)
	assert.InDelta(t, 2727.27, limits.SafeWithdrawUSD, 0.01)
	assert.InDelta(t, 10000-4000/0.825, limits.MaxWithdrawUSD, 1e-9)
	assert.Equal(t, 500.0, limits.SafeBorrowUSD, "capped by market availability")
	assert.Equal(t, 500.0, limits.MaxBorrowUSD)
	assert.GreaterOrEqual(t, limits.MaxWithdrawUSD, limits.SafeWithdrawUSD)
}

func TestComputeLimits_NoDebt(t *testing.T) {
	limits := ComputeLimits(domain.LendingPosition{TotalCollateralUSD: 800, LiquidationThreshold: 80})

	assert.True(t, limits.HealthFactor.IsInfinite())
	assert.Equal(t, 800.0, limits.SafeWithdrawUSD)
	assert.Equal(t, 800.0, limits.MaxWithdrawUSD)
	assert.InDelta(t, 640.0, limits.MaxBorrowUSD, 1e-9)
}
