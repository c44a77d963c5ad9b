// Package allocation splits a deposit across ranked yield opportunities.
package allocation

import (
	"math"
	"strings"

	"github.com/aristath/yieldrouter/internal/domain"
	"github.com/aristath/yieldrouter/internal/modules/opportunities"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Sizing and diversification limits.
const (
	// FirstPositionFraction is the share of the deposit given to the top pick.
	FirstPositionFraction = 0.35
	// PositionDecay shrinks each subsequent pick: k-th gets 0.35 * 0.75^k.
	PositionDecay = 0.75

	MaxChainFraction    = 0.50
	MaxHighRiskFraction = 0.30

	// DiversificationChainTarget is the number of distinct chains that earns a
	// full diversification score.
	DiversificationChainTarget = 3.0

	// DefaultRiskScore is reported when nothing was allocated.
	DefaultRiskScore = 2.0

	// dustFraction is the smallest position, relative to the deposit, that is
	// still worth opening.
	dustFraction = 1e-9
)

// Position is one opportunity in an allocation plan.
type Position struct {
	domain.YieldOpportunity
	AmountUSD float64 `json:"amount_usd"`
}

// Result is the allocation plan for a deposit.
type Result struct {
	Positions            []Position `json:"positions"`
	TotalAPY             float64    `json:"total_apy"`    // best APY among positions
	WeightedAPY          float64    `json:"weighted_apy"` // deposit-weighted
	DiversificationScore float64    `json:"diversification_score"`
	RiskScore            float64    `json:"risk_score"` // 1 low .. 3 high
	TotalAmount          float64    `json:"total_amount"`
	AllocatedAmount      float64    `json:"allocated_amount"`
	UnallocatedAmount    float64    `json:"unallocated_amount"`
	UnallocatedPercent   float64    `json:"unallocated_percent"` // fraction 0..1
}

func emptyResult(totalAmount float64) Result {
	if totalAmount < 0 || math.IsNaN(totalAmount) || math.IsInf(totalAmount, 0) {
		totalAmount = 0
	}
	r := Result{
		Positions:         []Position{},
		RiskScore:         DefaultRiskScore,
		TotalAmount:       totalAmount,
		UnallocatedAmount: totalAmount,
	}
	if totalAmount > 0 {
		r.UnallocatedPercent = 1
	}
	return r
}

// Allocate walks a ranked list greedily and sizes each accepted position on a
// decaying geometric schedule. A candidate is accepted while the selection is
// below maxPositions, its chain holds less than half of the deposit and, for
// high-risk candidates, high-risk positions hold less than 30% of it.
//
// Each size is clipped to the headroom left under those caps, to the optional
// MaxSinglePosition fraction and to the capital still unallocated, so the
// returned plan never breaches a cap and never exceeds the deposit. Candidates
// whose clipped size is zero are skipped. Whatever the schedule leaves over is
// reported as unallocated rather than redistributed.
//
// An empty list, a non-positive amount or a non-positive maxPositions yield an
// empty plan with the default risk score.
func Allocate(ranked []domain.YieldOpportunity, totalAmount float64, maxPositions int, cfg opportunities.RouterConfig) Result {
	if len(ranked) == 0 || !(totalAmount > 0) || math.IsInf(totalAmount, 0) || maxPositions <= 0 {
		return emptyResult(totalAmount)
	}

	chainCap := totalAmount * MaxChainFraction
	highCap := totalAmount * MaxHighRiskFraction
	dust := totalAmount * dustFraction

	chainAllocated := make(map[string]float64)
	highAllocated := 0.0
	allocated := 0.0
	positions := make([]Position, 0, maxPositions)

	for _, opp := range ranked {
		if len(positions) >= maxPositions {
			break
		}

		chain := strings.ToLower(opp.Chain)
		if chainAllocated[chain] >= chainCap-dust {
			continue
		}
		isHigh := opp.Risk == domain.RiskHigh
		if isHigh && highAllocated >= highCap-dust {
			continue
		}

		size := totalAmount * FirstPositionFraction * math.Pow(PositionDecay, float64(len(positions)))
		size = math.Min(size, chainCap-chainAllocated[chain])
		if isHigh {
			size = math.Min(size, highCap-highAllocated)
		}
		if cfg.MaxSinglePosition > 0 {
			size = math.Min(size, totalAmount*cfg.MaxSinglePosition)
		}
		size = math.Min(size, totalAmount-allocated)
		if size <= dust {
			continue
		}

		opp.AllocationPercent = size / totalAmount
		positions = append(positions, Position{YieldOpportunity: opp, AmountUSD: size})

		chainAllocated[chain] += size
		if isHigh {
			highAllocated += size
		}
		allocated += size
	}

	if len(positions) == 0 {
		return emptyResult(totalAmount)
	}

	return summarize(positions, totalAmount, allocated)
}

func summarize(positions []Position, totalAmount, allocated float64) Result {
	apys := make([]float64, len(positions))
	pcts := make([]float64, len(positions))
	tiers := make([]float64, len(positions))
	chains := make(map[string]bool)

	for i, p := range positions {
		apys[i] = p.APY
		pcts[i] = p.AllocationPercent
		tiers[i] = float64(p.Risk.Rank())
		chains[strings.ToLower(p.Chain)] = true
	}

	unallocated := math.Max(totalAmount-allocated, 0)

	return Result{
		Positions:            positions,
		TotalAPY:             floats.Max(apys),
		WeightedAPY:          floats.Dot(apys, pcts),
		DiversificationScore: math.Min(float64(len(chains))/DiversificationChainTarget, 1) * 100,
		RiskScore:            stat.Mean(tiers, nil),
		TotalAmount:          totalAmount,
		AllocatedAmount:      allocated,
		UnallocatedAmount:    unallocated,
		UnallocatedPercent:   unallocated / totalAmount,
	}
}
