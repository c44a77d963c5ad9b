// Package di provides dependency injection for database connections.
package di

import (
	"fmt"
	"path/filepath"

	"github.com/aristath/yieldrouter/internal/config"
	"github.com/aristath/yieldrouter/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens both databases and applies their schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// 1. client_data.db - Upstream API response cache (vaults, pool markets, lending)
	clientDataDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "client_data.db"),
		Profile: database.ProfileCache, // Maximum speed for cache data
		Name:    database.NameClientData,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize client_data database: %w", err)
	}
	container.ClientDataDB = clientDataDB

	// 2. strategies.db - Published creator strategies and their followers
	strategiesDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "strategies.db"),
		Profile: database.ProfileStandard,
		Name:    database.NameStrategies,
	})
	if err != nil {
		clientDataDB.Close()
		return nil, fmt.Errorf("failed to initialize strategies database: %w", err)
	}
	container.StrategiesDB = strategiesDB

	for _, db := range []*database.DB{clientDataDB, strategiesDB} {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to apply schema to %s: %w", db.Name(), err)
		}
	}

	log.Info().Str("data_dir", cfg.DataDir).Msg("Databases initialized and schemas applied")

	return container, nil
}
