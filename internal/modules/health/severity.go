package health

import "github.com/aristath/yieldrouter/internal/domain"

// Severity is the display band for a health factor.
type Severity string

const (
	SeveritySafe        Severity = "Safe"
	SeverityGood        Severity = "Good"
	SeverityCaution     Severity = "Caution"
	SeverityAtRisk      Severity = "At Risk"
	SeverityLiquidation Severity = "Liquidation"
)

// Classify maps a health factor onto its band. Bands include their lower
// bound: 2.0 is Good, 1.5 is Good, 1.2 is Caution, 1.0 is At Risk.
func Classify(hf domain.HealthFactor) Severity {
	switch v := hf.Float64(); {
	case hf.IsInfinite() || v > 2.0:
		return SeveritySafe
	case v >= 1.5:
		return SeverityGood
	case v >= 1.2:
		return SeverityCaution
	case v >= 1.0:
		return SeverityAtRisk
	default:
		return SeverityLiquidation
	}
}
