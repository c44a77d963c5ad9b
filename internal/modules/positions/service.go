package positions

import (
	"context"
	"fmt"

	"github.com/aristath/yieldrouter/internal/domain"
	"github.com/rs/zerolog"
)

// LendingAPYProvider returns the live lending supply APY in percent.
type LendingAPYProvider interface {
	SupplyAPY(ctx context.Context) (float64, error)
}

// Service gathers live data for an account and aggregates it.
type Service struct {
	lending    domain.LendingPositionProvider
	pools      domain.PoolPositionProvider
	poolAPYs   domain.PoolAPYProvider
	lendingAPY LendingAPYProvider
	aggregator *Aggregator
	log        zerolog.Logger
}

// NewService creates a new positions service
func NewService(
	lending domain.LendingPositionProvider,
	pools domain.PoolPositionProvider,
	poolAPYs domain.PoolAPYProvider,
	lendingAPY LendingAPYProvider,
	aggregator *Aggregator,
	log zerolog.Logger,
) *Service {
	return &Service{
		lending:    lending,
		pools:      pools,
		poolAPYs:   poolAPYs,
		lendingAPY: lendingAPY,
		aggregator: aggregator,
		log:        log.With().Str("module", "positions").Logger(),
	}
}

// Aggregator returns the aggregator used by the service.
func (s *Service) Aggregator() *Aggregator {
	return s.aggregator
}

// Unified fetches both positions for account and returns the unified view.
// Position fetch failures are errors; APY failures degrade to fallback values.
func (s *Service) Unified(ctx context.Context, account string) (domain.UnifiedUserPosition, error) {
	lending, err := s.lending.Position(ctx, account)
	if err != nil {
		return domain.UnifiedUserPosition{}, fmt.Errorf("failed to get lending position: %w", err)
	}

	pools, err := s.pools.Holdings(ctx, account)
	if err != nil {
		return domain.UnifiedUserPosition{}, fmt.Errorf("failed to get pool holdings: %w", err)
	}

	snapshot := Snapshot{Lending: lending, Pools: pools}

	if s.poolAPYs != nil {
		apys, err := s.poolAPYs.APYBySymbol(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("Pool APYs unavailable, using fallback table")
		} else {
			snapshot.PoolAPYs = apys
		}
	}

	if s.lendingAPY != nil {
		apy, err := s.lendingAPY.SupplyAPY(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("Lending APY unavailable, using fallback table")
		} else {
			snapshot.LendingAPY = &apy
		}
	}

	return s.aggregator.Aggregate(snapshot), nil
}
