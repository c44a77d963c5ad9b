// Package positions merges a lending position and pool holdings into one
// user-facing position with a blended APY and projected earnings.
package positions

import (
	"math"
	"sort"
	"strings"

	"github.com/aristath/yieldrouter/internal/domain"
)

// Protocol split of a deposit between the lending market and the pools.
const (
	LendingShare = 0.6
	PoolShare    = 0.4

	DefaultPlatformFeePercent = 10.0
)

// LegacyPoolWeights is the fixed BTC/ETH/ARB sub-weighting used before pool
// weights were derived from balances. Kept for numeric compatibility.
var LegacyPoolWeights = map[string]float64{
	"BTC": 0.6,
	"ETH": 0.3,
	"ARB": 0.1,
}

// BlendedAPY is the result of blending lending and pool yields.
type BlendedAPY struct {
	Gross      float64 `json:"gross"`
	Net        float64 `json:"net"`
	Display    float64 `json:"display"` // Net rounded to one decimal
	FeePercent float64 `json:"fee_percent"`
}

// BlendAPY computes gross = lending*0.6 + pool*0.4 and subtracts the platform
// fee. Only Display is rounded.
func BlendAPY(lendingAPY, poolAPY, feePercent float64) BlendedAPY {
	lendingAPY = finiteOrZero(lendingAPY)
	poolAPY = finiteOrZero(poolAPY)
	feePercent = math.Min(math.Max(finiteOrZero(feePercent), 0), 100)

	gross := lendingAPY*LendingShare + poolAPY*PoolShare
	net := gross * (1 - feePercent/100)

	return BlendedAPY{
		Gross:      gross,
		Net:        net,
		Display:    round(net, 1),
		FeePercent: feePercent,
	}
}

// WeightsFromHoldings derives pool weights from the USD value held in each
// pool. Symbols are upper-cased. Returns nil when nothing is held.
func WeightsFromHoldings(holdings []domain.PoolHolding) map[string]float64 {
	total := 0.0
	bySymbol := make(map[string]float64)
	for _, h := range holdings {
		if h.ValueUSD <= 0 || math.IsNaN(h.ValueUSD) {
			continue
		}
		bySymbol[strings.ToUpper(h.Symbol)] += h.ValueUSD
		total += h.ValueUSD
	}
	if total <= 0 {
		return nil
	}

	weights := make(map[string]float64, len(bySymbol))
	for symbol, value := range bySymbol {
		weights[symbol] = value / total
	}
	return weights
}

// BlendedPoolAPY weights per-pool APYs. A pool whose live APY is missing uses
// the fallback table; a pool with neither is left out and the remaining
// weights are renormalized. Empty weights mean LegacyPoolWeights. The result
// is 0 when nothing can be priced, never NaN.
func BlendedPoolAPY(apyBySymbol map[string]float64, weights map[string]float64, fallback domain.FallbackAPYTable) float64 {
	if len(weights) == 0 {
		weights = LegacyPoolWeights
	}

	live := make(map[string]float64, len(apyBySymbol))
	for symbol, apy := range apyBySymbol {
		live[strings.ToUpper(symbol)] = apy
	}

	// Iterate in a fixed order so the float sum is reproducible.
	symbols := make([]string, 0, len(weights))
	for symbol := range weights {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	weighted, totalWeight := 0.0, 0.0
	for _, symbol := range symbols {
		w := weights[symbol]
		if w <= 0 || math.IsNaN(w) {
			continue
		}
		apy, ok := live[strings.ToUpper(symbol)]
		if !ok || math.IsNaN(apy) || apy < 0 {
			apy, ok = fallback.PoolAPY(strings.ToUpper(symbol))
		}
		if !ok {
			continue
		}
		weighted += apy * w
		totalWeight += w
	}

	if totalWeight == 0 {
		return 0
	}
	return weighted / totalWeight
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func round(val float64, decimals int) float64 {
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(val*multiplier) / multiplier
}
