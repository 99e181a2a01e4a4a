package utils

import (
	"backend/models"
)

// CompatibilityBand classifies one nutrient total against a renal-diet
// threshold.
type CompatibilityBand string

const (
	BandOK       CompatibilityBand = "ok"
	BandWarning  CompatibilityBand = "warning"
	BandExceeded CompatibilityBand = "exceeded"
)

// MealThresholds are hard per-meal limits in mg. The warning threshold
// is always half the hard limit.
type MealThresholds struct {
	Sodium     float64 `json:"sodium"`
	Potassium  float64 `json:"potassium"`
	Phosphorus float64 `json:"phosphorus"`
}

// DefaultMealThresholds returns the clinical defaults used when no
// patient-specific medical profile overrides them.
func DefaultMealThresholds() MealThresholds {
	return MealThresholds{Sodium: 375, Potassium: 500, Phosphorus: 250}
}

// ThresholdsForProfile merges a medical profile over the defaults.
// A zero limit in the profile means "no override".
func ThresholdsForProfile(p *models.MedicalProfile) MealThresholds {
	th := DefaultMealThresholds()
	if p == nil {
		return th
	}
	if p.SodiumLimit > 0 {
		th.Sodium = p.SodiumLimit
	}
	if p.PotassiumLimit > 0 {
		th.Potassium = p.PotassiumLimit
	}
	if p.PhosphorusLimit > 0 {
		th.Phosphorus = p.PhosphorusLimit
	}
	return th
}

// NutrientReading is one classified nutrient, shaped for the API / UI.
type NutrientReading struct {
	Value     float64           `json:"value"`
	WarningAt float64           `json:"warning_at"`
	Limit     float64           `json:"limit"`
	Band      CompatibilityBand `json:"band"`
}

// ClassifyValue bands a single value: ok below half the limit, warning
// from half up to (excluding) the limit, exceeded at the limit and up.
func ClassifyValue(value, limit float64) CompatibilityBand {
	if limit <= 0 {
		return BandOK
	}
	warnAt := limit / 2
	switch {
	case value < warnAt:
		return BandOK
	case value < limit:
		return BandWarning
	default:
		return BandExceeded
	}
}

// ClassifyTotals maps aggregate totals to per-nutrient bands. Pure:
// no state, no I/O, classifies whatever totals it is handed regardless
// of their source tag.
func ClassifyTotals(t models.NutrientTotals, th MealThresholds) map[string]NutrientReading {
	reading := func(v, limit float64) NutrientReading {
		return NutrientReading{
			Value:     v,
			WarningAt: limit / 2,
			Limit:     limit,
			Band:      ClassifyValue(v, limit),
		}
	}
	return map[string]NutrientReading{
		"sodium":     reading(t.Sodium, th.Sodium),
		"potassium":  reading(t.Potassium, th.Potassium),
		"phosphorus": reading(t.Phosphorus, th.Phosphorus),
	}
}

// WorstBand reduces a classification to its most severe band, used to
// decide whether an alert should fire.
func WorstBand(readings map[string]NutrientReading) CompatibilityBand {
	worst := BandOK
	for _, r := range readings {
		if r.Band == BandExceeded {
			return BandExceeded
		}
		if r.Band == BandWarning {
			worst = BandWarning
		}
	}
	return worst
}
