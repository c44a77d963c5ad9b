package lending

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Reader fetches raw lending-market data.
type Reader interface {
	AccountData(ctx context.Context, account string) (AccountData, error)
	LiquidityRate(ctx context.Context, asset string) (string, error)
}

// HTTPReader reads the lending market through its indexer REST API.
type HTTPReader struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewHTTPReader creates a REST reader.
func NewHTTPReader(baseURL string, log zerolog.Logger) *HTTPReader {
	return &HTTPReader{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log.With().Str("client", "lending-api").Logger(),
	}
}

// AccountData implements Reader via GET {base}/accounts/{account}.
func (r *HTTPReader) AccountData(ctx context.Context, account string) (AccountData, error) {
	var data AccountData
	if err := r.getJSON(ctx, "/accounts/"+url.PathEscape(account), &data); err != nil {
		return AccountData{}, err
	}
	return data, nil
}

// LiquidityRate implements Reader via GET {base}/reserves/{asset}.
func (r *HTTPReader) LiquidityRate(ctx context.Context, asset string) (string, error) {
	var reserve struct {
		LiquidityRate string `json:"liquidityRate"`
	}
	if err := r.getJSON(ctx, "/reserves/"+url.PathEscape(asset), &reserve); err != nil {
		return "", err
	}
	if reserve.LiquidityRate == "" {
		return "", fmt.Errorf("reserve %s has no liquidity rate", asset)
	}
	return reserve.LiquidityRate, nil
}

func (r *HTTPReader) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	r.log.Debug().Str("path", path).Msg("Fetching lending data")

	resp, err := r.client.Do(req)
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
