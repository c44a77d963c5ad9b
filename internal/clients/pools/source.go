// Package pools fetches liquidity-pool market data through an ordered chain of
// data sources and exposes it as opportunities, pool APYs and user holdings.
package pools

import (
	"context"
	"fmt"
	"strings"
)

// Market is one pool as reported by a market data source.
type Market struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Chain         string  `json:"chain"`
	APY           float64 `json:"apy"`    // percent
	TVLUSD        float64 `json:"tvlUsd"` // USD
	SharePriceUSD float64 `json:"sharePriceUsd"`
	Risk          string  `json:"risk,omitempty"`
}

// Markets is a full snapshot from one source. Version is set when the data
// comes from a versioned fallback table rather than a live source.
type Markets struct {
	Source  string   `json:"source"`
	Version string   `json:"version,omitempty"`
	Markets []Market `json:"markets"`
}

// Fallback reports whether the snapshot was served from fallback constants.
func (m Markets) Fallback() bool {
	return m.Version != ""
}

// APYBySymbol indexes the snapshot's APYs by upper-cased symbol.
func (m Markets) APYBySymbol() map[string]float64 {
	out := make(map[string]float64, len(m.Markets))
	for _, market := range m.Markets {
		out[strings.ToUpper(market.Symbol)] = market.APY
	}
	return out
}

// Source is one strategy for obtaining pool markets.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (Markets, error)
}

// FetchError is the failure of a single source.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("pool source %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
