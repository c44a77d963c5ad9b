// Package di provides dependency injection for scheduler jobs.
package di

import (
	"fmt"

	"github.com/aristath/yieldrouter/internal/clientdata"
	"github.com/aristath/yieldrouter/internal/config"
	"github.com/aristath/yieldrouter/internal/database"
	"github.com/aristath/yieldrouter/internal/reliability"
	"github.com/aristath/yieldrouter/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs creates the background jobs and adds them to the scheduler.
// The scheduler is not started here.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil || container.Scheduler == nil {
		return nil, fmt.Errorf("services must be initialized first")
	}

	instances := &JobInstances{}

	instances.CatalogRefresh = scheduler.NewCatalogRefreshJob(
		container.VaultClient,
		container.OpportunitiesService,
		container.EventManager,
		log,
	)
	instances.CacheCleanup = clientdata.NewCleanupJob(container.ClientDataRepo, cfg.StaleRetention, log)
	instances.Maintenance = reliability.NewMaintenanceJob(
		[]*database.DB{container.ClientDataDB, container.StrategiesDB},
		cfg.DataDir,
		log,
	)

	if err := container.Scheduler.AddJob(cfg.CatalogRefreshSchedule, instances.CatalogRefresh); err != nil {
		return nil, fmt.Errorf("failed to register catalog refresh job: %w", err)
	}
	if err := container.Scheduler.AddJob(cfg.CacheCleanupSchedule, instances.CacheCleanup); err != nil {
		return nil, fmt.Errorf("failed to register cache cleanup job: %w", err)
	}
	if err := container.Scheduler.AddJob(cfg.MaintenanceSchedule, instances.Maintenance); err != nil {
		return nil, fmt.Errorf("failed to register maintenance job: %w", err)
	}

	return instances, nil
}
