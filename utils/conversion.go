package utils

import (
	"math"

	"backend/models"
)

// SafeQuantity coerces a serving quantity to a usable value. NaN, Inf
// and negative input fall back to 1 so a bad keystroke never blocks or
// poisons a computation. Zero is a valid quantity.
func SafeQuantity(q float64) float64 {
	if math.IsNaN(q) || math.IsInf(q, 0) || q < 0 {
		return 1
	}
	return q
}

// SafeNutrient sanitizes a per-100 nutrient value before it enters an
// aggregate: anything non-finite or negative contributes zero.
func SafeNutrient(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// ConversionFactor converts a (unit, quantity) serving into the
// dimensionless multiplier against the food's per-100 reference.
//
// The matching equivalence is picked by the food's basis (ml for
// volume-based foods, g otherwise). When that side is missing the other
// equivalence is used instead; real catalogs carry mislabeled units
// and a close factor beats none. When the unit has no equivalence at
// all the quantity itself is the factor: "1 portion ≈ one 100 g/ml
// reference". The function is total; it never errors.
func ConversionFactor(unit models.UnitDefinition, food models.FoodRecord, quantity float64) float64 {
	qty := SafeQuantity(quantity)

	equiv := unit.GramsEquivalent
	alt := unit.MillilitresEquivalent
	if food.VolumeBased {
		equiv, alt = unit.MillilitresEquivalent, unit.GramsEquivalent
	}
	if equiv == nil {
		equiv = alt
	}
	if equiv == nil || *equiv <= 0 {
		return qty
	}
	return (*equiv * qty) / 100
}

// Contribution scales a food's per-100 profile by the serving factor,
// sanitizing every field so one malformed record cannot corrupt a sum.
func Contribution(food models.FoodRecord, unit models.UnitDefinition, quantity float64) models.NutrientTotals {
	f := ConversionFactor(unit, food, quantity)
	return models.NutrientTotals{
		Energy:     SafeNutrient(food.Energy) * f,
		Protein:    SafeNutrient(food.Protein) * f,
		Carbs:      SafeNutrient(food.Carbs) * f,
		Fat:        SafeNutrient(food.Fat) * f,
		Sodium:     SafeNutrient(food.Sodium) * f,
		Potassium:  SafeNutrient(food.Potassium) * f,
		Phosphorus: SafeNutrient(food.Phosphorus) * f,
		Calcium:    SafeNutrient(food.Calcium) * f,
		Source:     models.SourceCatalog,
	}
}
