package pools

import (
	"context"
	"fmt"
	"strings"

	"github.com/aristath/yieldrouter/internal/domain"
	"github.com/rs/zerolog"
)

// Protocol is the protocol name attached to pool opportunities.
const Protocol = "perps-pool"

// HoldingsReader returns an account's raw pool balances.
type HoldingsReader interface {
	Holdings(ctx context.Context, account string) ([]domain.PoolHolding, error)
}

// Service exposes pool market data to the rest of the application. It
// implements domain.OpportunitySource, domain.PoolAPYProvider and
// domain.PoolPositionProvider.
type Service struct {
	chain    *Chain
	holdings HoldingsReader
	log      zerolog.Logger
}

// NewService creates a pool service. holdings may be nil when account
// lookups are not available.
func NewService(chain *Chain, holdings HoldingsReader, log zerolog.Logger) *Service {
	return &Service{
		chain:    chain,
		holdings: holdings,
		log:      log.With().Str("service", "pools").Logger(),
	}
}

// Markets returns the current market snapshot.
func (s *Service) Markets(ctx context.Context) (Markets, error) {
	return s.chain.Fetch(ctx)
}

// Name implements domain.OpportunitySource.
func (s *Service) Name() string {
	return string(domain.SourcePoolProtocol)
}

// Opportunities implements domain.OpportunitySource.
func (s *Service) Opportunities(ctx context.Context) ([]domain.YieldOpportunity, error) {
	markets, err := s.chain.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return ToOpportunities(markets), nil
}

// APYBySymbol implements domain.PoolAPYProvider.
func (s *Service) APYBySymbol(ctx context.Context) (map[string]float64, error) {
	markets, err := s.chain.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return markets.APYBySymbol(), nil
}

// Holdings implements domain.PoolPositionProvider. Zero balances are dropped.
func (s *Service) Holdings(ctx context.Context, account string) (domain.PoolPosition, error) {
	if s.holdings == nil {
		return domain.PoolPosition{}, fmt.Errorf("pool holdings are not available")
	}

	raw, err := s.holdings.Holdings(ctx, account)
	if err != nil {
		return domain.PoolPosition{}, fmt.Errorf("failed to load pool holdings: %w", err)
	}

	holdings := make([]domain.PoolHolding, 0, len(raw))
	for _, h := range raw {
		if h.ShareBalance <= 0 && h.ValueUSD <= 0 {
			continue
		}
		holdings = append(holdings, h)
	}

	return domain.NewPoolPosition(holdings), nil
}

// ToOpportunities converts a market snapshot into pool-protocol opportunities.
// Markets without an explicit valid risk tier are treated as medium risk.
// Fallback snapshots are tagged so that consumers can tell them apart.
func ToOpportunities(m Markets) []domain.YieldOpportunity {
	opps := make([]domain.YieldOpportunity, 0, len(m.Markets))
	for _, market := range m.Markets {
		symbol := strings.ToUpper(market.Symbol)

		risk := domain.RiskMedium
		if tier, err := domain.ParseRiskTier(market.Risk); err == nil {
			risk = tier
		}

		var factors []string
		if m.Fallback() {
			factors = []string{"fallback-apy:" + m.Version}
		}

		name := market.Name
		if name == "" {
			name = symbol + " Pool"
		}

		opps = append(opps, domain.YieldOpportunity{
			ID:           "pool:" + symbol,
			Source:       domain.SourcePoolProtocol,
			Chain:        strings.ToLower(market.Chain),
			Protocol:     Protocol,
			Name:         name,
			DepositToken: "USDC",
			APY:          market.APY,
			TVL:          market.TVLUSD,
			Risk:         risk,
			RiskFactors:  factors,
		})
	}
	return opps
}
