package opportunities

import (
	"fmt"
	"strings"

	"github.com/aristath/yieldrouter/internal/domain"
)

// RouterConfig is the filter and risk policy applied to a catalog.
// All filters are conjunctive. RiskTolerance is always required.
type RouterConfig struct {
	Chains            []string        `json:"chains,omitempty"`          // allow-list; empty means every chain
	MinAPY            float64         `json:"min_apy"`                   // percent
	MaxRisk           domain.RiskTier `json:"max_risk"`                  // empty means high
	MinTVL            float64         `json:"min_tvl"`                   // USD
	ExcludeSources    []domain.Source `json:"exclude_sources,omitempty"` // sources to drop
	RiskTolerance     domain.RiskTier `json:"risk_tolerance"`
	MaxSinglePosition float64         `json:"max_single_position,omitempty"` // fraction 0..1, 0 means uncapped
}

// Validate checks that the config can be applied.
func (c RouterConfig) Validate() error {
	if !c.RiskTolerance.Valid() {
		return fmt.Errorf("risk tolerance is required (low, medium or high), got %q", c.RiskTolerance)
	}
	if c.MaxRisk != "" && !c.MaxRisk.Valid() {
		return fmt.Errorf("invalid max risk %q", c.MaxRisk)
	}
	if c.MinAPY < 0 {
		return fmt.Errorf("min apy must not be negative")
	}
	if c.MinTVL < 0 {
		return fmt.Errorf("min tvl must not be negative")
	}
	if c.MaxSinglePosition < 0 || c.MaxSinglePosition > 1 {
		return fmt.Errorf("max single position must be a fraction between 0 and 1")
	}
	for _, s := range c.ExcludeSources {
		if !s.Valid() {
			return fmt.Errorf("unknown source %q", s)
		}
	}
	return nil
}

// maxRisk returns the effective risk ceiling.
func (c RouterConfig) maxRisk() domain.RiskTier {
	if c.MaxRisk == "" {
		return domain.RiskHigh
	}
	return c.MaxRisk
}

// Preset names.
const (
	PresetConservative = "conservative"
	PresetBalanced     = "balanced"
	PresetAggressive   = "aggressive"
)

// Presets are the named configurations offered to users.
var Presets = map[string]RouterConfig{
	PresetConservative: {
		RiskTolerance: domain.RiskLow,
		MaxRisk:       domain.RiskLow,
		MinTVL:        1_000_000,
		MinAPY:        1,
	},
	PresetBalanced: {
		RiskTolerance: domain.RiskMedium,
		MaxRisk:       domain.RiskMedium,
		MinTVL:        100_000,
		MinAPY:        3,
	},
	PresetAggressive: {
		RiskTolerance: domain.RiskHigh,
		MaxRisk:       domain.RiskHigh,
		MinTVL:        10_000,
		MinAPY:        5,
	},
}

// Preset looks up a named preset. The returned config is a copy.
func Preset(name string) (RouterConfig, error) {
	cfg, ok := Presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return RouterConfig{}, fmt.Errorf("unknown preset %q", name)
	}
	return cfg, nil
}

// DefaultPreset is used when a request names neither a preset nor a config.
const DefaultPreset = PresetBalanced

// ResolveConfig picks the effective config for a request. An explicit config
// wins over a preset name; with neither, DefaultPreset applies.
func ResolveConfig(preset string, cfg *RouterConfig) (RouterConfig, error) {
	var resolved RouterConfig
	switch {
	case cfg != nil:
		resolved = *cfg
	case preset != "":
		p, err := Preset(preset)
		if err != nil {
			return RouterConfig{}, err
		}
		resolved = p
	default:
		resolved = Presets[DefaultPreset]
	}

	if err := resolved.Validate(); err != nil {
		return RouterConfig{}, err
	}
	return resolved, nil
}
