package pools

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/yieldrouter/internal/domain"
	testingpkg "github.com/aristath/yieldrouter/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSource_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/markets", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"markets":[
			{"symbol":"btc","name":"BTC Pool","chain":"arbitrum","apy":14.2,"tvlUsd":9000000,"sharePriceUsd":1.21},
			{"symbol":"ETH","chain":"arbitrum","apy":19.9,"tvlUsd":7000000,"risk":"high"}
		]}`))
	}))
	defer server.Close()

	src := NewHTTPSource("rest", server.URL+"/", zerolog.Nop())
	markets, err := src.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "rest", markets.Source)
	assert.False(t, markets.Fallback())
	require.Len(t, markets.Markets, 2)
	assert.Equal(t, 1.21, markets.Markets[0].SharePriceUSD)
	assert.Equal(t, map[string]float64{"BTC": 14.2, "ETH": 19.9}, markets.APYBySymbol())
}

func TestHTTPSource_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusServiceUnavailable, "", "status 503"},
		{"bad json", http.StatusOK, "{", "failed to parse response"},
		{"empty list", http.StatusOK, `{"markets":[]}`, "empty market list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewHTTPSource("rest", server.URL, zerolog.Nop()).Fetch(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHTTPSource_Holdings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/0xabc/holdings", r.URL.Path)
		_, _ = w.Write([]byte(`{"holdings":[{"symbol":"btc","shares":10.5,"valueUsd":1200},{"symbol":"ARB","shares":0,"valueUsd":0}]}`))
	}))
	defer server.Close()

	holdings, err := NewHTTPSource("rest", server.URL, zerolog.Nop()).Holdings(context.Background(), "0xabc")
	require.NoError(t, err)
	require.Len(t, holdings, 2)
	assert.Equal(t, domain.PoolHolding{Symbol: "BTC", ShareBalance: 10.5, ValueUSD: 1200}, holdings[0])
}

func TestCachedSource(t *testing.T) {
	clock := testingpkg.NewClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := testingpkg.NewClientDataRepo(t, clock.Now)
	ctx := context.Background()

	healthy := true
	inner := &funcSource{name: "rest", fetch: func(context.Context) (Markets, error) {
		if !healthy {
			return Markets{}, errors.New("down")
		}
		return Markets{Source: "rest", Markets: []Market{{Symbol: "ETH", APY: 21}}}, nil
	}}
	src := NewCachedSource(inner, repo, time.Minute)
	assert.Equal(t, "rest", src.Name())

	first, err := src.Fetch(ctx)
	require.NoError(t, err)
	_, err = src.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls, "second read served from cache")

	healthy = false
	clock.Advance(time.Hour)

	stale, err := src.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, stale)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedSource_NoCacheAndDown(t *testing.T) {
	repo := testingpkg.NewClientDataRepo(t, nil)
	src := NewCachedSource(failingSource("rest", errors.New("down")), repo, 0)

	_, err := src.Fetch(context.Background())
	assert.Error(t, err)
}

func TestStaticSource(t *testing.T) {
	src := NewStaticSource(domain.DefaultFallbackAPYs, "arbitrum")
	markets, err := src.Fetch(context.Background())
	require.NoError(t, err)

	assert.True(t, markets.Fallback())
	assert.Equal(t, "fallback-table", markets.Source)
	require.Len(t, markets.Markets, 3)
	assert.Equal(t, "ARB", markets.Markets[0].Symbol, "sorted by symbol")
	assert.Equal(t, 31.0, markets.Markets[0].APY)
	assert.Equal(t, domain.DefaultFallbackAPYs.PoolAPYs, markets.APYBySymbol())

	_, err = NewStaticSource(domain.FallbackAPYTable{Version: "x"}, "arbitrum").Fetch(context.Background())
	assert.Error(t, err)
}
