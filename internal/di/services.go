// Package di provides dependency injection for clients and services.
package di

import (
	"fmt"

	"github.com/aristath/yieldrouter/internal/clientdata"
	"github.com/aristath/yieldrouter/internal/clients/lending"
	"github.com/aristath/yieldrouter/internal/clients/pools"
	"github.com/aristath/yieldrouter/internal/clients/vaults"
	"github.com/aristath/yieldrouter/internal/config"
	"github.com/aristath/yieldrouter/internal/domain"
	"github.com/aristath/yieldrouter/internal/events"
	"github.com/aristath/yieldrouter/internal/modules/allocation"
	"github.com/aristath/yieldrouter/internal/modules/copytrading"
	"github.com/aristath/yieldrouter/internal/modules/opportunities"
	"github.com/aristath/yieldrouter/internal/modules/positions"
	"github.com/aristath/yieldrouter/internal/scheduler"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates the repositories over the opened databases
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil || container.ClientDataDB == nil || container.StrategiesDB == nil {
		return fmt.Errorf("databases must be initialized first")
	}

	container.ClientDataRepo = clientdata.NewRepository(
		container.ClientDataDB.Conn(),
		clientdata.WithLogger(log),
	)
	container.StrategyRepo = copytrading.NewRepository(container.StrategiesDB.Conn(), log)

	return nil
}

// InitializeServices creates clients and services in dependency order
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container.ClientDataRepo == nil || container.StrategyRepo == nil {
		return fmt.Errorf("repositories must be initialized first")
	}

	// Events
	container.EventBus = events.NewBus(log)
	container.EventManager = events.NewManager(container.EventBus, log)

	// Vault aggregator
	container.VaultClient = vaults.NewClient(cfg.VaultAPIURL, container.ClientDataRepo, cfg.CatalogTTL, log)

	// Pool markets: live API, then the cached snapshot, then the versioned table
	poolAPI := pools.NewHTTPSource("pool-api", cfg.PoolAPIURL, log)
	container.PoolChain = pools.NewChain([]pools.Source{
		pools.NewCachedSource(poolAPI, container.ClientDataRepo, cfg.PoolMarketTTL),
		pools.NewStaticSource(domain.DefaultFallbackAPYs, "arbitrum"),
	}, cfg.SourceTimeout, container.EventManager, log)
	container.PoolService = pools.NewService(container.PoolChain, poolAPI, log)

	// Lending protocol
	container.LendingService = lending.NewService(
		lending.NewHTTPReader(cfg.LendingAPIURL, log),
		container.ClientDataRepo,
		lending.DefaultSupplyAsset,
		log,
	)

	// Copy trading
	container.CopyTradingService = copytrading.NewService(container.StrategyRepo, container.EventManager, log)

	// Catalog, allocation, positions
	container.OpportunitiesService = opportunities.NewService([]domain.OpportunitySource{
		container.VaultClient,
		container.PoolService,
		container.CopyTradingService,
	}, log)

	container.AllocationService = allocation.NewService(
		container.OpportunitiesService,
		container.EventManager,
		cfg.MaxPositions,
		log,
	)

	aggregator := positions.NewAggregator(
		positions.HeuristicEstimator{Fraction: positions.DefaultDepositedFraction},
		cfg.PlatformFeePercent,
		cfg.LegacyPoolWeights,
	)
	container.PositionsService = positions.NewService(
		container.LendingService,
		container.PoolService,
		container.PoolService,
		container.LendingService,
		aggregator,
		log,
	)

	container.Scheduler = scheduler.New(container.EventManager, log)

	log.Info().Msg("Services initialized")

	return nil
}
