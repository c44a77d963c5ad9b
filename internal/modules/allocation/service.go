package allocation

import (
	"context"
	"fmt"

	"github.com/aristath/yieldrouter/internal/domain"
	"github.com/aristath/yieldrouter/internal/events"
	"github.com/aristath/yieldrouter/internal/modules/opportunities"
	"github.com/rs/zerolog"
)

// Ranker supplies the ranked catalog for a router config.
type Ranker interface {
	Ranked(ctx context.Context, cfg opportunities.RouterConfig) ([]domain.YieldOpportunity, []opportunities.SourceStatus, error)
}

// EventEmitter publishes typed events.
type EventEmitter interface {
	EmitTyped(module string, data events.EventData)
}

// Service builds allocation plans from the live catalog.
type Service struct {
	ranker              Ranker
	events              EventEmitter
	defaultMaxPositions int
	log                 zerolog.Logger
}

// NewService creates a new allocation service
func NewService(ranker Ranker, emitter EventEmitter, defaultMaxPositions int, log zerolog.Logger) *Service {
	return &Service{
		ranker:              ranker,
		events:              emitter,
		defaultMaxPositions: defaultMaxPositions,
		log:                 log.With().Str("module", "allocation").Logger(),
	}
}

// Plan ranks the catalog for cfg and allocates amount across it.
// maxPositions <= 0 falls back to the configured default.
func (s *Service) Plan(ctx context.Context, amount float64, maxPositions int, cfg opportunities.RouterConfig) (Result, error) {
	if maxPositions <= 0 {
		maxPositions = s.defaultMaxPositions
	}

	ranked, _, err := s.ranker.Ranked(ctx, cfg)
	if err != nil {
		return Result{}, fmt.Errorf("failed to rank opportunities: %w", err)
	}

	result := Allocate(ranked, amount, maxPositions, cfg)

	s.log.Info().
		Float64("amount", amount).
		Int("candidates", len(ranked)).
		Int("positions", len(result.Positions)).
		Float64("weighted_apy", result.WeightedAPY).
		Float64("unallocated", result.UnallocatedAmount).
		Msg("Allocation computed")

	if s.events != nil {
		s.events.EmitTyped("allocation", &events.AllocationComputedData{
			Positions:       len(result.Positions),
			TotalAmount:     result.TotalAmount,
			AllocatedAmount: result.AllocatedAmount,
			WeightedAPY:     result.WeightedAPY,
			RiskScore:       result.RiskScore,
		})
	}

	return result, nil
}
