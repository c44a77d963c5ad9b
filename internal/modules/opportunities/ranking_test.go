package opportunities

import (
	"testing"

	"github.com/aristath/yieldrouter/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank_SortsByScoreDescending(t *testing.T) {
	catalog := []domain.YieldOpportunity{
		opp("small", 4, 200_000, domain.RiskLow),
		opp("best", 25, 8_000_000, domain.RiskLow),
		opp("risky", 60, 500_000, domain.RiskHigh),
	}

	ranked := Rank(catalog, RouterConfig{RiskTolerance: domain.RiskMedium})
	require.Len(t, ranked, 3)
	assert.Equal(t, "best", ranked[0].ID)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	catalog := []domain.YieldOpportunity{
		opp("a", 4, 200_000, domain.RiskLow),
		opp("b", 25, 8_000_000, domain.RiskLow),
	}

	_ = Rank(catalog, RouterConfig{RiskTolerance: domain.RiskLow})

	assert.Equal(t, "a", catalog[0].ID)
	assert.Zero(t, catalog[0].Score)
	assert.Zero(t, catalog[1].Score)
}

func TestRank_StableTies(t *testing.T) {
	catalog := []domain.YieldOpportunity{
		opp("first", 10, 1_000_000, domain.RiskLow),
		opp("second", 10, 1_000_000, domain.RiskLow),
		opp("third", 10, 1_000_000, domain.RiskLow),
	}

	ranked := Rank(catalog, RouterConfig{RiskTolerance: domain.RiskMedium})
	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{ranked[0].ID, ranked[1].ID, ranked[2].ID})
}

func TestRank_Idempotent(t *testing.T) {
	catalog := []domain.YieldOpportunity{
		opp("a", 4, 200_000, domain.RiskLow),
		opp("b", 25, 8_000_000, domain.RiskMedium),
		opp("c", 40, 40_000, domain.RiskHigh),
	}
	cfg := RouterConfig{RiskTolerance: domain.RiskHigh}

	assert.Equal(t, Rank(catalog, cfg), Rank(catalog, cfg))
}
