package opportunities

import (
	"testing"

	"github.com/aristath/yieldrouter/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterOpportunities(t *testing.T) {
	catalog := []domain.YieldOpportunity{
		{ID: "arb-low", Source: domain.SourceVaultAggregator, Chain: "arbitrum", APY: 5, TVL: 2_000_000, Risk: domain.RiskLow},
		{ID: "base-med", Source: domain.SourcePoolProtocol, Chain: "base", APY: 12, TVL: 300_000, Risk: domain.RiskMedium},
		{ID: "eth-high", Source: domain.SourceSocialCopy, Chain: "ethereum", APY: 40, TVL: 20_000, Risk: domain.RiskHigh},
		{ID: "arb-dust", Source: domain.SourceLendingProtocol, Chain: "Arbitrum", APY: 0.5, TVL: 50_000_000, Risk: domain.RiskLow},
	}

	ids := func(list []domain.YieldOpportunity) []string {
		out := make([]string, 0, len(list))
		for _, o := range list {
			out = append(out, o.ID)
		}
		return out
	}

	tests := []struct {
		name     string
		cfg      RouterConfig
		expected []string
	}{
		{
			name:     "no filters",
			cfg:      RouterConfig{RiskTolerance: domain.RiskMedium},
			expected: []string{"arb-low", "base-med", "eth-high", "arb-dust"},
		},
		{
			name:     "chain allow-list is case insensitive",
			cfg:      RouterConfig{RiskTolerance: domain.RiskMedium, Chains: []string{"ARBITRUM"}},
			expected: []string{"arb-low", "arb-dust"},
		},
		{
			name:     "min apy",
			cfg:      RouterConfig{RiskTolerance: domain.RiskMedium, MinAPY: 5},
			expected: []string{"arb-low", "base-med", "eth-high"},
		},
		{
			name:     "max risk",
			cfg:      RouterConfig{RiskTolerance: domain.RiskMedium, MaxRisk: domain.RiskMedium},
			expected: []string{"arb-low", "base-med", "arb-dust"},
		},
		{
			name:     "min tvl",
			cfg:      RouterConfig{RiskTolerance: domain.RiskMedium, MinTVL: 1_000_000},
			expected: []string{"arb-low", "arb-dust"},
		},
		{
			name:     "exclude sources",
			cfg:      RouterConfig{RiskTolerance: domain.RiskMedium, ExcludeSources: []domain.Source{domain.SourceSocialCopy, domain.SourceLendingProtocol}},
			expected: []string{"arb-low", "base-med"},
		},
		{
			name:     "everything filtered",
			cfg:      RouterConfig{RiskTolerance: domain.RiskMedium, MinAPY: 1000},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FilterOpportunities(catalog, tt.cfg)
			require.NotNil(t, result)
			assert.Equal(t, tt.expected, ids(result))
		})
	}
}

func TestFilterOpportunities_EmptyInput(t *testing.T) {
	result := FilterOpportunities(nil, RouterConfig{RiskTolerance: domain.RiskLow})
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestPresets(t *testing.T) {
	tests := []struct {
		name      string
		tolerance domain.RiskTier
		maxRisk   domain.RiskTier
		minTVL    float64
		minAPY    float64
	}{
		{PresetConservative, domain.RiskLow, domain.RiskLow, 1_000_000, 1},
		{PresetBalanced, domain.RiskMedium, domain.RiskMedium, 100_000, 3},
		{PresetAggressive, domain.RiskHigh, domain.RiskHigh, 10_000, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Preset(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.tolerance, cfg.RiskTolerance)
			assert.Equal(t, tt.maxRisk, cfg.MaxRisk)
			assert.Equal(t, tt.minTVL, cfg.MinTVL)
			assert.Equal(t, tt.minAPY, cfg.MinAPY)
			assert.NoError(t, cfg.Validate())
		})
	}

	_, err := Preset("yolo")
	assert.Error(t, err)
}

func TestRouterConfig_Validate(t *testing.T) {
	assert.Error(t, RouterConfig{}.Validate(), "risk tolerance required")
	assert.Error(t, RouterConfig{RiskTolerance: domain.RiskLow, MaxRisk: "extreme"}.Validate())
	assert.Error(t, RouterConfig{RiskTolerance: domain.RiskLow, MinAPY: -1}.Validate())
	assert.Error(t, RouterConfig{RiskTolerance: domain.RiskLow, MaxSinglePosition: 1.5}.Validate())
	assert.Error(t, RouterConfig{RiskTolerance: domain.RiskLow, ExcludeSources: []domain.Source{"cex"}}.Validate())
	assert.NoError(t, RouterConfig{RiskTolerance: domain.RiskHigh, MaxSinglePosition: 0.4}.Validate())
}

func TestResolveConfig(t *testing.T) {
	cfg, err := ResolveConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, Presets[DefaultPreset].RiskTolerance, cfg.RiskTolerance)

	cfg, err = ResolveConfig("aggressive", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.RiskHigh, cfg.RiskTolerance)

	explicit := &RouterConfig{RiskTolerance: domain.RiskLow, MinAPY: 2}
	cfg, err = ResolveConfig("aggressive", explicit)
	require.NoError(t, err)
	assert.Equal(t, domain.RiskLow, cfg.RiskTolerance)
	assert.Equal(t, 2.0, cfg.MinAPY)

	_, err = ResolveConfig("", &RouterConfig{})
	assert.Error(t, err)

	_, err = ResolveConfig("nope", nil)
	assert.Error(t, err)
}
