package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskTier_Rank(t *testing.T) {
	assert.Equal(t, 1, RiskLow.Rank())
	assert.Equal(t, 2, RiskMedium.Rank())
	assert.Equal(t, 3, RiskHigh.Rank())
	assert.Equal(t, 2, RiskTier("unknown").Rank(), "unknown tiers rank as medium")
}

func TestParseRiskTier(t *testing.T) {
	tests := []struct {
		input    string
		expected RiskTier
		wantErr  bool
	}{
		{"low", RiskLow, false},
		{" Medium ", RiskMedium, false},
		{"HIGH", RiskHigh, false},
		{"extreme", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tier, err := ParseRiskTier(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tier)
		})
	}
}

func TestSource_Valid(t *testing.T) {
	for _, s := range AllSources {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, Source("exchange").Valid())
}

func TestYieldOpportunity_Validate(t *testing.T) {
	valid := YieldOpportunity{ID: "v1", APY: 5, TVL: 1000, Risk: RiskLow}
	assert.NoError(t, valid.Validate())

	negativeAPY := valid
	negativeAPY.APY = -1
	assert.Error(t, negativeAPY.Validate())

	negativeTVL := valid
	negativeTVL.TVL = -1
	assert.Error(t, negativeTVL.Validate())

	badTier := valid
	badTier.Risk = "extreme"
	assert.Error(t, badTier.Validate())
}

func TestHealthFactor_JSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(LendingPosition{HealthFactor: InfiniteHealthFactor})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"health_factor":"infinite"`)

	var decoded LendingPosition
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.HealthFactor.IsInfinite())

	data, err = json.Marshal(HealthFactor(1.65))
	require.NoError(t, err)
	assert.Equal(t, "1.65", string(data))

	var finite HealthFactor
	require.NoError(t, json.Unmarshal([]byte("1.65"), &finite))
	assert.InDelta(t, 1.65, finite.Float64(), 1e-12)
}

func TestHealthFactor_NullDecodesAsInfinite(t *testing.T) {
	var h HealthFactor
	require.NoError(t, json.Unmarshal([]byte("null"), &h))
	assert.True(t, h.IsInfinite())
}

func TestHealthFactor_NaNCannotBeEncoded(t *testing.T) {
	_, err := json.Marshal(HealthFactor(math.NaN()))
	assert.Error(t, err)
}

func TestHealthFactor_String(t *testing.T) {
	assert.Equal(t, "infinite", InfiniteHealthFactor.String())
	assert.Equal(t, "1.50", HealthFactor(1.5).String())
}

func TestNewPoolPosition(t *testing.T) {
	position := NewPoolPosition([]PoolHolding{
		{Symbol: "BTC", ShareBalance: 10, ValueUSD: 600},
		{Symbol: "ETH", ShareBalance: 3, ValueUSD: 400},
	})
	assert.Equal(t, 1000.0, position.TotalValueUSD)
	assert.Len(t, position.Holdings, 2)

	empty := NewPoolPosition(nil)
	assert.Equal(t, 0.0, empty.TotalValueUSD)
}

func TestFallbackAPYTable_PoolAPY(t *testing.T) {
	apy, ok := DefaultFallbackAPYs.PoolAPY("ETH")
	assert.True(t, ok)
	assert.Equal(t, 22.5, apy)

	_, ok = DefaultFallbackAPYs.PoolAPY("DOGE")
	assert.False(t, ok)
}
