// Package copytrading lets creators publish allocation strategies that other
// users can follow. Published strategies re-enter the opportunity catalog as
// social-copy opportunities.
package copytrading

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aristath/yieldrouter/internal/domain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNotFound is returned when a strategy does not exist.
	ErrNotFound = errors.New("strategy not found")
	// ErrInvalidInput wraps validation failures of publish and follow requests.
	ErrInvalidInput = errors.New("invalid strategy input")
)

// Allocation is one leg of a strategy.
type Allocation struct {
	OpportunityID string          `json:"opportunity_id" validate:"required"`
	Chain         string          `json:"chain" validate:"required"`
	Percent       float64         `json:"percent" validate:"gt=0,lte=100"`
	APY           float64         `json:"apy" validate:"gte=0"`
	Risk          domain.RiskTier `json:"risk" validate:"oneof=low medium high"`
}

// Strategy is a creator's published allocation plan.
type Strategy struct {
	ID          string          `json:"id"`
	Creator     string          `json:"creator"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Chain       string          `json:"chain"` // chain holding the largest share
	Risk        domain.RiskTier `json:"risk"`
	Allocations []Allocation    `json:"allocations"`
	ExpectedAPY float64         `json:"expected_apy"` // allocation-weighted
	TVLUSD      float64         `json:"tvl_usd"`      // sum of followed amounts
	Followers   int             `json:"followers"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Follow records a user copying a strategy with an amount.
type Follow struct {
	ID         string    `json:"id"`
	StrategyID string    `json:"strategy_id"`
	Follower   string    `json:"follower"`
	AmountUSD  float64   `json:"amount_usd"`
	CreatedAt  time.Time `json:"created_at"`
}

// PublishInput is what a creator submits.
type PublishInput struct {
	Creator     string       `json:"creator" validate:"required"`
	Name        string       `json:"name" validate:"required,max=80"`
	Description string       `json:"description" validate:"max=500"`
	Allocations []Allocation `json:"allocations" validate:"required,min=1,max=20,dive"`
}

// percentTolerance absorbs float rounding when allocations add up to 100.
const percentTolerance = 1e-6

// Validate checks the allocation legs of an input.
func (in PublishInput) Validate() error {
	if strings.TrimSpace(in.Creator) == "" {
		return errors.New("creator is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("name is required")
	}
	if len(in.Allocations) == 0 {
		return errors.New("at least one allocation is required")
	}

	total := 0.0
	for _, a := range in.Allocations {
		if a.Percent <= 0 {
			return fmt.Errorf("allocation %s: percent must be positive", a.OpportunityID)
		}
		if !a.Risk.Valid() {
			return fmt.Errorf("allocation %s: invalid risk tier %q", a.OpportunityID, a.Risk)
		}
		total += a.Percent
	}
	if total > 100+percentTolerance {
		return fmt.Errorf("allocations add up to %.2f%%, more than 100%%", total)
	}
	return nil
}

// Summarize derives the strategy-level chain, risk tier and expected APY
// from its allocation legs.
func Summarize(allocs []Allocation) (chain string, risk domain.RiskTier, expectedAPY float64) {
	if len(allocs) == 0 {
		return "", domain.RiskMedium, 0
	}

	weights := make([]float64, len(allocs))
	apys := make([]float64, len(allocs))
	ranks := make([]float64, len(allocs))
	byChain := make(map[string]float64)
	for i, a := range allocs {
		weights[i] = a.Percent
		apys[i] = a.APY
		ranks[i] = float64(a.Risk.Rank())
		byChain[strings.ToLower(a.Chain)] += a.Percent
	}

	for _, a := range allocs {
		c := strings.ToLower(a.Chain)
		if chain == "" || byChain[c] > byChain[chain] {
			chain = c
		}
	}

	if total := floats.Sum(weights); total > 0 {
		expectedAPY = floats.Dot(weights, apys) / total
	}

	switch math.Round(stat.Mean(ranks, weights)) {
	case 1:
		risk = domain.RiskLow
	case 3:
		risk = domain.RiskHigh
	default:
		risk = domain.RiskMedium
	}

	return chain, risk, expectedAPY
}

// ToOpportunities turns strategies into social-copy catalog entries.
func ToOpportunities(strategies []Strategy) []domain.YieldOpportunity {
	opps := make([]domain.YieldOpportunity, 0, len(strategies))
	for _, s := range strategies {
		opps = append(opps, domain.YieldOpportunity{
			ID:           "strategy:" + s.ID,
			Source:       domain.SourceSocialCopy,
			Chain:        s.Chain,
			Protocol:     "copy-trading",
			Name:         s.Name,
			DepositToken: "USDC",
			APY:          s.ExpectedAPY,
			TVL:          s.TVLUSD,
			Risk:         s.Risk,
			RiskFactors:  []string{"creator:" + s.Creator},
		})
	}
	return opps
}
