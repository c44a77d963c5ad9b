package domain

// FallbackAPYTable holds the APYs used when live market data is unavailable.
// Tables are versioned data: bump Version whenever a value changes so that
// responses built from fallback numbers can be traced to the table used.
type FallbackAPYTable struct {
	Version          string             `json:"version"`
	LendingSupplyAPY float64            `json:"lending_supply_apy"`
	PoolAPYs         map[string]float64 `json:"pool_apys"`
}

// DefaultFallbackAPYs is the current fallback table.
var DefaultFallbackAPYs = FallbackAPYTable{
	Version:          "2025-01",
	LendingSupplyAPY: 4.5,
	PoolAPYs: map[string]float64{
		"BTC": 16.5,
		"ETH": 22.5,
		"ARB": 31.0,
	},
}

// PoolAPY returns the fallback APY for a pool symbol and whether one exists.
func (t FallbackAPYTable) PoolAPY(symbol string) (float64, bool) {
	apy, ok := t.PoolAPYs[symbol]
	return apy, ok
}
