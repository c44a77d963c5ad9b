package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventDataTypes(t *testing.T) {
	tests := []struct {
		data     EventData
		expected EventType
	}{
		{&CatalogRefreshedData{}, CatalogRefreshed},
		{&PoolMarketsDegradedData{}, PoolMarketsDegraded},
		{&AllocationComputedData{}, AllocationComputed},
		{&StrategyPublishedData{}, StrategyPublished},
		{&StrategyFollowedData{}, StrategyFollowed},
		{&ErrorEventData{}, ErrorOccurred},
		{&JobStatusData{Status: "started"}, JobStarted},
		{&JobStatusData{Status: "completed"}, JobCompleted},
		{&JobStatusData{Status: "failed"}, JobFailed},
	}

	for _, tt := range tests {
		t.Run(string(tt.expected), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.data.EventType())
		})
	}
}

func TestEventWithData_RoundTrip(t *testing.T) {
	original := &EventWithData{
		Type:      AllocationComputed,
		Timestamp: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Module:    "allocation",
		Data: &AllocationComputedData{
			Positions:       3,
			TotalAmount:     1000,
			AllocatedAmount: 809.375,
			WeightedAPY:     7.25,
			RiskScore:       1.5,
		},
	}

	raw, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"allocated_amount":809.375`)

	var decoded EventWithData
	require.NoError(t, json.Unmarshal(raw, &decoded))

	data, ok := decoded.Data.(*AllocationComputedData)
	require.True(t, ok)
	assert.Equal(t, 3, data.Positions)
	assert.Equal(t, "allocation", decoded.Module)
	assert.True(t, original.Timestamp.Equal(decoded.Timestamp))
}

func TestEventWithData_UnknownTypeFallsBackToGeneric(t *testing.T) {
	raw := []byte(`{"type":"SOMETHING_NEW","module":"x","timestamp":"2025-01-01T00:00:00Z","data":{"k":"v"}}`)

	var decoded EventWithData
	require.NoError(t, json.Unmarshal(raw, &decoded))

	generic, ok := decoded.Data.(*GenericEventData)
	require.True(t, ok)
	assert.Equal(t, EventType("SOMETHING_NEW"), generic.EventType())
	assert.Equal(t, "v", generic.Data["k"])
}

func TestToMap(t *testing.T) {
	m, err := toMap(&StrategyFollowedData{StrategyID: "abc", Follower: "0x1", AmountUSD: 250})
	require.NoError(t, err)
	assert.Equal(t, "abc", m["strategy_id"])
	assert.Equal(t, 250.0, m["amount_usd"])
}
