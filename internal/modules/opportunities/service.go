// Package opportunities scores, filters and ranks yield opportunities and
// answers the recommendation queries built on top of a ranked catalog.
package opportunities

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aristath/yieldrouter/internal/domain"
	"github.com/rs/zerolog"
)

// ErrNoCatalog is returned when every configured source failed.
var ErrNoCatalog = errors.New("no opportunity source returned data")

// SourceStatus reports how one catalog source behaved during a fetch.
type SourceStatus struct {
	Name      string `json:"name"`
	Status    string `json:"status"` // ok | error
	Count     int    `json:"count"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// Service assembles the opportunity catalog from every configured source.
// The scoring itself is done by the pure functions in this package.
type Service struct {
	sources []domain.OpportunitySource
	log     zerolog.Logger
}

// NewService creates a new opportunities service over the given sources.
func NewService(sources []domain.OpportunitySource, log zerolog.Logger) *Service {
	return &Service{
		sources: sources,
		log:     log.With().Str("module", "opportunities").Logger(),
	}
}

type sourceResult struct {
	opportunities []domain.YieldOpportunity
	status        SourceStatus
}

// Catalog fetches all sources concurrently and merges their catalogs in
// source order. Invalid opportunities are dropped and duplicate IDs keep the
// first occurrence. A failing source is reported in the statuses but only
// fails the call when no source succeeded.
func (s *Service) Catalog(ctx context.Context) ([]domain.YieldOpportunity, []SourceStatus, error) {
	results := make([]sourceResult, len(s.sources))

	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src domain.OpportunitySource) {
			defer wg.Done()
			start := time.Now()
			opps, err := src.Opportunities(ctx)
			status := SourceStatus{
				Name:      src.Name(),
				Status:    "ok",
				Count:     len(opps),
				LatencyMS: time.Since(start).Milliseconds(),
			}
			if err != nil {
				status.Status = "error"
				status.Error = err.Error()
				status.Count = 0
				opps = nil
			}
			results[i] = sourceResult{opportunities: opps, status: status}
		}(i, src)
	}
	wg.Wait()

	statuses := make([]SourceStatus, 0, len(results))
	seen := make(map[string]bool)
	catalog := make([]domain.YieldOpportunity, 0)
	succeeded := 0

	for _, r := range results {
		statuses = append(statuses, r.status)
		if r.status.Status != "ok" {
			s.log.Warn().
				Str("source", r.status.Name).
				Str("error", r.status.Error).
				Msg("Opportunity source failed")
			continue
		}
		succeeded++

		for _, opp := range r.opportunities {
			if err := opp.Validate(); err != nil {
				s.log.Debug().Err(err).Str("source", r.status.Name).Msg("Dropping invalid opportunity")
				continue
			}
			if seen[opp.ID] {
				continue
			}
			seen[opp.ID] = true
			catalog = append(catalog, opp)
		}
	}

	if len(s.sources) > 0 && succeeded == 0 {
		return nil, statuses, ErrNoCatalog
	}

	s.log.Debug().
		Int("opportunities", len(catalog)).
		Int("sources", len(s.sources)).
		Msg("Catalog assembled")

	return catalog, statuses, nil
}

// Ranked returns the catalog filtered, scored and sorted for cfg.
func (s *Service) Ranked(ctx context.Context, cfg RouterConfig) ([]domain.YieldOpportunity, []SourceStatus, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid router config: %w", err)
	}

	catalog, statuses, err := s.Catalog(ctx)
	if err != nil {
		return nil, statuses, err
	}

	return Rank(catalog, cfg), statuses, nil
}
