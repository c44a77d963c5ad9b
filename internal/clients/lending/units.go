// Package lending reads lending-market accounts and reserve rates and
// normalizes their protocol-native fixed-point units.
package lending

import (
	"fmt"
	"math"
	"strings"

	"github.com/aristath/yieldrouter/internal/domain"
	"github.com/shopspring/decimal"
)

// Fixed-point scales used by the lending protocol.
const (
	BaseCurrencyDecimals = 8  // USD amounts
	WADDecimals          = 18 // health factor
	RAYDecimals          = 27 // interest rates
	SecondsPerYear       = 31_536_000
)

// maxUint256 is reported as the health factor of an account without debt.
var maxUint256 = decimal.RequireFromString(
	"115792089237316195423570985008687907853269984665640564039457584007913129639935",
)

var bpsPerPercent = decimal.NewFromInt(100)

// AccountData is the account summary in protocol-native units. Every field is
// an unsigned integer encoded as a decimal string.
type AccountData struct {
	TotalCollateralBase         string `json:"totalCollateralBase"`
	TotalDebtBase               string `json:"totalDebtBase"`
	AvailableBorrowsBase        string `json:"availableBorrowsBase"`
	CurrentLiquidationThreshold string `json:"currentLiquidationThreshold"` // bps
	LTV                         string `json:"ltv"`                         // bps
	HealthFactor                string `json:"healthFactor"`                // WAD
}

// Normalize converts the account to USD floats and percentages.
// A zero debt or a max-uint256 health factor yields the infinite sentinel.
func (a AccountData) Normalize() (domain.LendingPosition, error) {
	collateral, err := parseUint("totalCollateralBase", a.TotalCollateralBase)
	if err != nil {
		return domain.LendingPosition{}, err
	}
	debt, err := parseUint("totalDebtBase", a.TotalDebtBase)
	if err != nil {
		return domain.LendingPosition{}, err
	}
	available, err := parseUint("availableBorrowsBase", a.AvailableBorrowsBase)
	if err != nil {
		return domain.LendingPosition{}, err
	}
	threshold, err := parseUint("currentLiquidationThreshold", a.CurrentLiquidationThreshold)
	if err != nil {
		return domain.LendingPosition{}, err
	}
	ltv, err := parseUint("ltv", a.LTV)
	if err != nil {
		return domain.LendingPosition{}, err
	}
	hf, err := parseUint("healthFactor", a.HealthFactor)
	if err != nil {
		return domain.LendingPosition{}, err
	}

	position := domain.LendingPosition{
		TotalCollateralUSD:   collateral.Shift(-BaseCurrencyDecimals).InexactFloat64(),
		TotalDebtUSD:         debt.Shift(-BaseCurrencyDecimals).InexactFloat64(),
		AvailableToBorrowUSD: available.Shift(-BaseCurrencyDecimals).InexactFloat64(),
		LiquidationThreshold: threshold.Div(bpsPerPercent).InexactFloat64(),
		LoanToValue:          ltv.Div(bpsPerPercent).InexactFloat64(),
		HealthFactor:         domain.InfiniteHealthFactor,
	}

	if !debt.IsZero() && hf.LessThan(maxUint256) {
		position.HealthFactor = domain.HealthFactor(hf.Shift(-WADDecimals).InexactFloat64())
	}

	return position, nil
}

// RayToAPY converts an annualized rate in RAY units to a compounded APY
// percent, compounding every second over a year.
func RayToAPY(rate string) (float64, error) {
	r, err := parseUint("rate", rate)
	if err != nil {
		return 0, err
	}
	if r.IsZero() {
		return 0, nil
	}

	apr := r.Shift(-RAYDecimals).InexactFloat64()
	apy := (math.Pow(1+apr/SecondsPerYear, SecondsPerYear) - 1) * 100
	if math.IsNaN(apy) || math.IsInf(apy, 0) {
		return 0, fmt.Errorf("rate %s overflows", rate)
	}
	return apy, nil
}

func parseUint(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid %s %q: negative", field, s)
	}
	return d, nil
}
