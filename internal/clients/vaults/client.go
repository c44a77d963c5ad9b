// Package vaults provides the vault-aggregator API client.
package vaults

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aristath/yieldrouter/internal/clientdata"
	"github.com/aristath/yieldrouter/internal/domain"
	"github.com/rs/zerolog"
)

// allChainsKey is the cache key for the unfiltered catalog.
const allChainsKey = "all"

// Vault is one record from the aggregator's /vaults endpoint.
type Vault struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Chain    string   `json:"chain"`
	Protocol string   `json:"protocol"`
	Assets   []string `json:"assets"`
	APY      float64  `json:"apy"`
	APR      float64  `json:"apr"`
	TVLUSD   float64  `json:"tvlUsd"`
	RiskTags []string `json:"riskTags"`
}

type vaultsResponse struct {
	Data []Vault `json:"data"`
}

// Client for the vault-aggregator REST API. Catalogs are cached per chain in
// the client data cache; a nil cache disables caching.
type Client struct {
	baseURL   string
	client    *http.Client
	cacheRepo *clientdata.Repository
	ttl       time.Duration
	log       zerolog.Logger
}

// NewClient creates a new vault-aggregator client.
func NewClient(baseURL string, cacheRepo *clientdata.Repository, ttl time.Duration, log zerolog.Logger) *Client {
	if ttl <= 0 {
		ttl = clientdata.TTLVaultCatalog
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: 10 * time.Second},
		cacheRepo: cacheRepo,
		ttl:       ttl,
		log:       log.With().Str("client", "vault-aggregator").Logger(),
	}
}

// Name implements domain.OpportunitySource.
func (c *Client) Name() string {
	return string(domain.SourceVaultAggregator)
}

// Opportunities implements domain.OpportunitySource over every chain.
func (c *Client) Opportunities(ctx context.Context) ([]domain.YieldOpportunity, error) {
	vaults, _, err := c.Vaults(ctx, "")
	if err != nil {
		return nil, err
	}

	opps := make([]domain.YieldOpportunity, 0, len(vaults))
	for _, v := range vaults {
		opps = append(opps, ToOpportunity(v))
	}
	return opps, nil
}

// Vaults returns the catalog for one chain, or all chains when chain is
// empty. Fresh cache entries are served without a request; on API failure a
// stale entry is served if there is one.
func (c *Client) Vaults(ctx context.Context, chain string) ([]Vault, clientdata.Status, error) {
	key := cacheKey(chain)

	if c.cacheRepo == nil {
		vaults, err := c.fetch(ctx, chain)
		return vaults, clientdata.StatusMiss, err
	}

	vaults, status, err := clientdata.GetOrFetch(ctx, c.cacheRepo, clientdata.TableVaultCatalog, key, c.ttl,
		func(ctx context.Context) ([]Vault, error) { return c.fetch(ctx, chain) })
	if err != nil {
		return nil, status, err
	}

	c.log.Debug().
		Str("chain", key).
		Str("cache", string(status)).
		Int("vaults", len(vaults)).
		Msg("Vault catalog loaded")

	return vaults, status, nil
}

// Refresh refetches the catalog for chain (all chains when empty) and replaces
// the cached entry. On failure the existing entry, fresh or stale, is left in
// place.
func (c *Client) Refresh(ctx context.Context, chain string) error {
	vaults, err := c.fetch(ctx, chain)
	if err != nil {
		return err
	}
	if c.cacheRepo == nil {
		return nil
	}
	return c.cacheRepo.Store(clientdata.TableVaultCatalog, cacheKey(chain), vaults, c.ttl)
}

func (c *Client) fetch(ctx context.Context, chain string) ([]Vault, error) {
	endpoint := c.baseURL + "/vaults"
	if chain != "" {
		endpoint += "?" + url.Values{"chain": []string{NormalizeChain(chain)}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("url", endpoint).Msg("Fetching vaults")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result vaultsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return result.Data, nil
}

func cacheKey(chain string) string {
	if chain == "" {
		return allChainsKey
	}
	return NormalizeChain(chain)
}

// ToOpportunity maps an aggregator vault into the router's catalog shape.
func ToOpportunity(v Vault) domain.YieldOpportunity {
	token := ""
	if len(v.Assets) > 0 {
		token = strings.ToUpper(v.Assets[0])
	}

	apr := v.APR
	if apr == 0 && v.APY > 0 {
		apr = APYToAPR(v.APY)
	}

	return domain.YieldOpportunity{
		ID:           "vault:" + v.ID,
		Source:       domain.SourceVaultAggregator,
		Chain:        NormalizeChain(v.Chain),
		Protocol:     v.Protocol,
		Name:         v.Name,
		DepositToken: token,
		APY:          v.APY,
		APR:          apr,
		TVL:          v.TVLUSD,
		Risk:         RiskTier(v.RiskTags, v.TVLUSD),
		RiskFactors:  v.RiskTags,
	}
}

// APYToAPR converts a daily-compounded APY percent to its simple APR percent.
func APYToAPR(apy float64) float64 {
	return (math.Pow(1+apy/100, 1.0/365) - 1) * 365 * 100
}

// NormalizeChain lower-cases a chain name and folds common aliases.
func NormalizeChain(chain string) string {
	chain = strings.ToLower(strings.TrimSpace(chain))

	switch chain {
	case "eth", "ethereum", "mainnet":
		return "ethereum"
	case "arb", "arbitrum", "arbitrum one", "arbitrum-one":
		return "arbitrum"
	case "op", "optimism":
		return "optimism"
	case "matic", "polygon":
		return "polygon"
	case "bsc", "binance", "bnb":
		return "bsc"
	default:
		return chain
	}
}
