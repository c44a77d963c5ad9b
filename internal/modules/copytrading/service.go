package copytrading

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/yieldrouter/internal/domain"
	"github.com/aristath/yieldrouter/internal/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CatalogLimit caps how many strategies are offered to the opportunity catalog.
const CatalogLimit = 100

// EventEmitter publishes typed events.
type EventEmitter interface {
	EmitTyped(module string, data events.EventData)
}

// Service publishes and follows strategies. It implements
// domain.OpportunitySource for the social-copy source.
type Service struct {
	repo   *Repository
	events EventEmitter
	now    func() time.Time
	log    zerolog.Logger
}

// NewService creates a new copy-trading service. emitter may be nil.
func NewService(repo *Repository, emitter EventEmitter, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: emitter,
		now:    time.Now,
		log:    log.With().Str("module", "copytrading").Logger(),
	}
}

// Publish validates and stores a new strategy.
func (s *Service) Publish(in PublishInput) (Strategy, error) {
	if err := in.Validate(); err != nil {
		return Strategy{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	chain, risk, apy := Summarize(in.Allocations)
	now := s.now().UTC().Truncate(time.Second)

	allocs := make([]Allocation, len(in.Allocations))
	for i, a := range in.Allocations {
		a.Chain = strings.ToLower(a.Chain)
		allocs[i] = a
	}

	strategy := Strategy{
		ID:          uuid.New().String(),
		Creator:     strings.TrimSpace(in.Creator),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Chain:       chain,
		Risk:        risk,
		Allocations: allocs,
		ExpectedAPY: apy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(strategy); err != nil {
		return Strategy{}, err
	}

	if s.events != nil {
		s.events.EmitTyped("copytrading", &events.StrategyPublishedData{
			StrategyID: strategy.ID,
			Creator:    strategy.Creator,
			Name:       strategy.Name,
		})
	}

	return strategy, nil
}

// Get returns a strategy by ID.
func (s *Service) Get(id string) (Strategy, error) {
	return s.repo.GetByID(id)
}

// List returns strategies newest first.
func (s *Service) List(limit int) ([]Strategy, error) {
	return s.repo.List(limit)
}

// Follow records follower copying strategy id with amountUSD and returns the
// updated strategy.
func (s *Service) Follow(id, follower string, amountUSD float64) (Strategy, error) {
	if amountUSD <= 0 {
		return Strategy{}, fmt.Errorf("%w: follow amount must be positive", ErrInvalidInput)
	}
	if strings.TrimSpace(follower) == "" {
		return Strategy{}, fmt.Errorf("%w: follower is required", ErrInvalidInput)
	}

	follow := Follow{
		ID:         uuid.New().String(),
		StrategyID: id,
		Follower:   follower,
		AmountUSD:  amountUSD,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.RecordFollow(follow); err != nil {
		return Strategy{}, err
	}

	if s.events != nil {
		s.events.EmitTyped("copytrading", &events.StrategyFollowedData{
			StrategyID: id,
			Follower:   follower,
			AmountUSD:  amountUSD,
		})
	}

	s.log.Info().Str("strategy", id).Float64("amount_usd", amountUSD).Msg("Strategy followed")

	return s.repo.GetByID(id)
}

// Name implements domain.OpportunitySource.
func (s *Service) Name() string {
	return string(domain.SourceSocialCopy)
}

// Opportunities implements domain.OpportunitySource.
func (s *Service) Opportunities(ctx context.Context) ([]domain.YieldOpportunity, error) {
	strategies, err := s.repo.List(CatalogLimit)
	if err != nil {
		return nil, err
	}
	return ToOpportunities(strategies), nil
}
