/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all service instances and is
 * passed to the HTTP server for access to services.
 */
package di

import (
	"github.com/aristath/yieldrouter/internal/clientdata"
	"github.com/aristath/yieldrouter/internal/clients/lending"
	"github.com/aristath/yieldrouter/internal/clients/pools"
	"github.com/aristath/yieldrouter/internal/clients/vaults"
	"github.com/aristath/yieldrouter/internal/database"
	"github.com/aristath/yieldrouter/internal/events"
	"github.com/aristath/yieldrouter/internal/modules/allocation"
	"github.com/aristath/yieldrouter/internal/modules/copytrading"
	"github.com/aristath/yieldrouter/internal/modules/opportunities"
	"github.com/aristath/yieldrouter/internal/modules/positions"
	"github.com/aristath/yieldrouter/internal/reliability"
	"github.com/aristath/yieldrouter/internal/scheduler"
)

/**
 * Container holds all dependencies for the application.
 *
 * Architecture:
 * - Databases: client_data (TTL cache) and strategies (creator strategies)
 * - Clients: vault aggregator, pool market chain, lending reader
 * - Services: opportunity catalog, allocation, positions, copy trading
 * - Background: event bus/manager and the cron scheduler
 */
type Container struct {
	// Databases
	ClientDataDB *database.DB
	StrategiesDB *database.DB

	// Repositories
	ClientDataRepo *clientdata.Repository
	StrategyRepo   *copytrading.Repository

	// Clients
	VaultClient    *vaults.Client
	PoolChain      *pools.Chain
	PoolService    *pools.Service
	LendingService *lending.Service

	// Services
	CopyTradingService   *copytrading.Service
	OpportunitiesService *opportunities.Service
	AllocationService    *allocation.Service
	PositionsService     *positions.Service

	// Events and scheduling
	EventBus     *events.Bus
	EventManager *events.Manager
	Scheduler    *scheduler.Scheduler
}

// JobInstances holds references to registered jobs for manual triggering
type JobInstances struct {
	CatalogRefresh *scheduler.CatalogRefreshJob
	CacheCleanup   *clientdata.CleanupJob
	Maintenance    *reliability.MaintenanceJob
}

// Close stops the scheduler and closes every open database.
func (c *Container) Close() {
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	for _, db := range []*database.DB{c.ClientDataDB, c.StrategiesDB} {
		if db != nil {
			db.Close()
		}
	}
}
