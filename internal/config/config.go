// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	// Upstream data sources
	VaultAPIURL   string
	PoolAPIURL    string
	LendingAPIURL string

	// Cache and fetch behaviour
	CatalogTTL     time.Duration
	PoolMarketTTL  time.Duration
	SourceTimeout  time.Duration
	StaleRetention time.Duration // expired cache rows kept as fallback

	// Aggregation
	PlatformFeePercent float64
	LegacyPoolWeights  bool
	MaxPositions       int

	// Scheduled jobs
	CatalogRefreshSchedule string
	CacheCleanupSchedule   string
	MaintenanceSchedule    string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("YIELDROUTER_DATA_DIR", "./data")

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("PORT", 8001),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		VaultAPIURL:   getEnv("VAULT_API_URL", "http://localhost:9100"),
		PoolAPIURL:    getEnv("POOL_API_URL", "http://localhost:9200"),
		LendingAPIURL: getEnv("LENDING_API_URL", "http://localhost:9300"),

		CatalogTTL:     getEnvAsDuration("CATALOG_TTL", 5*time.Minute),
		PoolMarketTTL:  getEnvAsDuration("POOL_MARKET_TTL", time.Minute),
		SourceTimeout:  getEnvAsDuration("SOURCE_TIMEOUT", 5*time.Second),
		StaleRetention: getEnvAsDuration("CACHE_STALE_RETENTION", 7*24*time.Hour),

		PlatformFeePercent: getEnvAsFloat("PLATFORM_FEE_PERCENT", 10),
		LegacyPoolWeights:  getEnvAsBool("LEGACY_POOL_WEIGHTS", false),
		MaxPositions:       getEnvAsInt("MAX_POSITIONS", 5),

		CatalogRefreshSchedule: getEnv("CATALOG_REFRESH_SCHEDULE", "@every 5m"),
		CacheCleanupSchedule:   getEnv("CACHE_CLEANUP_SCHEDULE", "@daily"),
		MaintenanceSchedule:    getEnv("MAINTENANCE_SCHEDULE", "0 0 4 * * *"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the loaded values are usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.PlatformFeePercent < 0 || c.PlatformFeePercent >= 100 {
		return fmt.Errorf("PLATFORM_FEE_PERCENT must be in [0, 100), got %v", c.PlatformFeePercent)
	}
	if c.MaxPositions < 1 {
		return fmt.Errorf("MAX_POSITIONS must be at least 1, got %d", c.MaxPositions)
	}
	if c.CatalogTTL <= 0 || c.PoolMarketTTL <= 0 || c.SourceTimeout <= 0 || c.StaleRetention <= 0 {
		return fmt.Errorf("cache TTLs, CACHE_STALE_RETENTION and SOURCE_TIMEOUT must be positive")
	}

	for name, url := range map[string]string{
		"VAULT_API_URL":   c.VaultAPIURL,
		"POOL_API_URL":    c.PoolAPIURL,
		"LENDING_API_URL": c.LendingAPIURL,
	} {
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return fmt.Errorf("%s must be an http(s) URL, got %q", name, url)
		}
	}

	// Same parser the scheduler uses (seconds field optional).
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, spec := range map[string]string{
		"CATALOG_REFRESH_SCHEDULE": c.CatalogRefreshSchedule,
		"CACHE_CLEANUP_SCHEDULE":   c.CacheCleanupSchedule,
		"MAINTENANCE_SCHEDULE":     c.MaintenanceSchedule,
	} {
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, spec, err)
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
