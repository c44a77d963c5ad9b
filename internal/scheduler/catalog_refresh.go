package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/yieldrouter/internal/domain"
	"github.com/aristath/yieldrouter/internal/events"
	"github.com/aristath/yieldrouter/internal/modules/opportunities"
	"github.com/rs/zerolog"
)

// CatalogRefreshTimeout bounds one refresh run.
const CatalogRefreshTimeout = 30 * time.Second

// CacheRefresher refetches a cached catalog, keeping the old entry when the
// upstream fails.
type CacheRefresher interface {
	Refresh(ctx context.Context, chain string) error
}

// CatalogLoader assembles the opportunity catalog.
type CatalogLoader interface {
	Catalog(ctx context.Context) ([]domain.YieldOpportunity, []opportunities.SourceStatus, error)
}

// CatalogRefreshJob refreshes the vault catalog cache and reloads every
// opportunity source so that API reads are served from a warm cache.
type CatalogRefreshJob struct {
	refresher CacheRefresher
	catalog   CatalogLoader
	emitter   EventEmitter
	log       zerolog.Logger
}

// NewCatalogRefreshJob creates a new catalog refresh job. emitter may be nil.
func NewCatalogRefreshJob(refresher CacheRefresher, catalog CatalogLoader, emitter EventEmitter, log zerolog.Logger) *CatalogRefreshJob {
	return &CatalogRefreshJob{
		refresher: refresher,
		catalog:   catalog,
		emitter:   emitter,
		log:       log.With().Str("job", "catalog_refresh").Logger(),
	}
}

// Name returns the job name
func (j *CatalogRefreshJob) Name() string {
	return "catalog_refresh"
}

// Run executes the refresh.
func (j *CatalogRefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), CatalogRefreshTimeout)
	defer cancel()

	if j.refresher != nil {
		if err := j.refresher.Refresh(ctx, ""); err != nil {
			// The cached entry is kept and served stale.
			j.log.Warn().Err(err).Msg("Failed to refresh vault catalog cache")
			if j.emitter != nil {
				j.emitter.EmitTyped("scheduler", &events.ErrorEventData{
					Error:   err.Error(),
					Context: map[string]interface{}{"job": j.Name(), "source": "vault-aggregator"},
				})
			}
		}
	}

	catalog, statuses, err := j.catalog.Catalog(ctx)

	for _, status := range statuses {
		if j.emitter != nil {
			j.emitter.EmitTyped("scheduler", &events.CatalogRefreshedData{
				Source: status.Name,
				Count:  status.Count,
				Stale:  status.Status != "ok",
			})
		}
	}

	if err != nil {
		return fmt.Errorf("catalog refresh failed: %w", err)
	}

	j.log.Info().
		Int("opportunities", len(catalog)).
		Int("sources", len(statuses)).
		Msg("Catalog refreshed")

	return nil
}
