package pools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/aristath/yieldrouter/internal/clientdata"
	"github.com/aristath/yieldrouter/internal/domain"
	"github.com/rs/zerolog"
)

// HTTPSource reads markets and holdings from the pool protocol's REST API.
type HTTPSource struct {
	name    string
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewHTTPSource creates a REST source named name.
func NewHTTPSource(name, baseURL string, log zerolog.Logger) *HTTPSource {
	return &HTTPSource{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log.With().Str("client", "pool-api").Str("source", name).Logger(),
	}
}

// Name implements Source.
func (s *HTTPSource) Name() string {
	return s.name
}

// Fetch implements Source via GET {base}/markets.
func (s *HTTPSource) Fetch(ctx context.Context) (Markets, error) {
	var body struct {
		Markets []Market `json:"markets"`
	}
	if err := s.getJSON(ctx, "/markets", &body); err != nil {
		return Markets{}, err
	}
	if len(body.Markets) == 0 {
		return Markets{}, errors.New("empty market list")
	}
	return Markets{Source: s.name, Markets: body.Markets}, nil
}

// Holdings returns an account's pool share balances via
// GET {base}/accounts/{account}/holdings.
func (s *HTTPSource) Holdings(ctx context.Context, account string) ([]domain.PoolHolding, error) {
	var body struct {
		Holdings []struct {
			Symbol   string  `json:"symbol"`
			Shares   float64 `json:"shares"`
			ValueUSD float64 `json:"valueUsd"`
		} `json:"holdings"`
	}
	if err := s.getJSON(ctx, "/accounts/"+url.PathEscape(account)+"/holdings", &body); err != nil {
		return nil, err
	}

	holdings := make([]domain.PoolHolding, 0, len(body.Holdings))
	for _, h := range body.Holdings {
		holdings = append(holdings, domain.PoolHolding{
			Symbol:       strings.ToUpper(h.Symbol),
			ShareBalance: h.Shares,
			ValueUSD:     h.ValueUSD,
		})
	}
	return holdings, nil
}

func (s *HTTPSource) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// CachedSource serves an inner source through the client data cache. A fresh
// entry skips the inner source; when the inner source fails a stale entry is
// served.
type CachedSource struct {
	inner Source
	repo  *clientdata.Repository
	ttl   time.Duration
}

// NewCachedSource wraps inner with the pool_markets cache table.
func NewCachedSource(inner Source, repo *clientdata.Repository, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = clientdata.TTLPoolMarkets
	}
	return &CachedSource{inner: inner, repo: repo, ttl: ttl}
}

// Name implements Source.
func (s *CachedSource) Name() string {
	return s.inner.Name()
}

// Fetch implements Source.
func (s *CachedSource) Fetch(ctx context.Context) (Markets, error) {
	markets, _, err := clientdata.GetOrFetch(ctx, s.repo, clientdata.TablePoolMarkets, s.inner.Name(), s.ttl, s.inner.Fetch)
	return markets, err
}

// StaticSource serves the versioned fallback APY table. It never fails while
// the table has entries.
type StaticSource struct {
	table domain.FallbackAPYTable
	chain string
}

// NewStaticSource creates a fallback source over table, reporting markets on chain.
func NewStaticSource(table domain.FallbackAPYTable, chain string) *StaticSource {
	return &StaticSource{table: table, chain: chain}
}

// Name implements Source.
func (s *StaticSource) Name() string {
	return "fallback-table"
}

// Fetch implements Source.
func (s *StaticSource) Fetch(ctx context.Context) (Markets, error) {
	if len(s.table.PoolAPYs) == 0 {
		return Markets{}, errors.New("fallback table is empty")
	}

	symbols := make([]string, 0, len(s.table.PoolAPYs))
	for symbol := range s.table.PoolAPYs {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	markets := make([]Market, 0, len(symbols))
	for _, symbol := range symbols {
		markets = append(markets, Market{
			Symbol: symbol,
			Name:   symbol + " Pool",
			Chain:  s.chain,
			APY:    s.table.PoolAPYs[symbol],
		})
	}

	return Markets{Source: s.Name(), Version: s.table.Version, Markets: markets}, nil
}
