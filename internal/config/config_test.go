package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("YIELDROUTER_DATA_DIR", filepath.Join(dir, "data"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(cfg.DataDir))
	assert.DirExists(t, cfg.DataDir)
	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.CatalogTTL)
	assert.Equal(t, time.Minute, cfg.PoolMarketTTL)
	assert.Equal(t, 5*time.Second, cfg.SourceTimeout)
	assert.Equal(t, 7*24*time.Hour, cfg.StaleRetention)
	assert.Equal(t, 10.0, cfg.PlatformFeePercent)
	assert.False(t, cfg.LegacyPoolWeights)
	assert.Equal(t, 5, cfg.MaxPositions)
	assert.Equal(t, "@every 5m", cfg.CatalogRefreshSchedule)
	assert.Equal(t, "@daily", cfg.CacheCleanupSchedule)
	assert.Equal(t, "0 0 4 * * *", cfg.MaintenanceSchedule)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("YIELDROUTER_DATA_DIR", t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("CATALOG_TTL", "90s")
	t.Setenv("PLATFORM_FEE_PERCENT", "7.5")
	t.Setenv("LEGACY_POOL_WEIGHTS", "1")
	t.Setenv("MAX_POSITIONS", "3")
	t.Setenv("VAULT_API_URL", "https://vaults.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, 90*time.Second, cfg.CatalogTTL)
	assert.Equal(t, 7.5, cfg.PlatformFeePercent)
	assert.True(t, cfg.LegacyPoolWeights)
	assert.Equal(t, 3, cfg.MaxPositions)
	assert.Equal(t, "https://vaults.example.com", cfg.VaultAPIURL)
}

func TestLoad_MalformedValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("YIELDROUTER_DATA_DIR", t.TempDir())
	t.Setenv("PORT", "eighty")
	t.Setenv("SOURCE_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.SourceTimeout)
}

func validConfig() *Config {
	return &Config{
		Port:                   8001,
		VaultAPIURL:            "http://localhost:9100",
		PoolAPIURL:             "http://localhost:9200",
		LendingAPIURL:          "http://localhost:9300",
		CatalogTTL:             time.Minute,
		PoolMarketTTL:          time.Minute,
		SourceTimeout:          time.Second,
		StaleRetention:         time.Hour,
		PlatformFeePercent:     10,
		MaxPositions:           5,
		CatalogRefreshSchedule: "@every 5m",
		CacheCleanupSchedule:   "0 0 3 * * *",
		MaintenanceSchedule:    "@weekly",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"five-field cron", func(c *Config) { c.CacheCleanupSchedule = "0 3 * * *" }, true},
		{"bad port", func(c *Config) { c.Port = 0 }, false},
		{"fee too high", func(c *Config) { c.PlatformFeePercent = 100 }, false},
		{"negative fee", func(c *Config) { c.PlatformFeePercent = -1 }, false},
		{"no positions", func(c *Config) { c.MaxPositions = 0 }, false},
		{"zero ttl", func(c *Config) { c.CatalogTTL = 0 }, false},
		{"zero stale retention", func(c *Config) { c.StaleRetention = 0 }, false},
		{"bad url", func(c *Config) { c.PoolAPIURL = "ftp://pools" }, false},
		{"bad schedule", func(c *Config) { c.CatalogRefreshSchedule = "whenever" }, false},
		{"empty schedule", func(c *Config) { c.MaintenanceSchedule = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
