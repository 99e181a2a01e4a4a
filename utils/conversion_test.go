package utils

import (
	"math"
	"testing"

	"backend/models"

	"github.com/stretchr/testify/assert"
)

func fptr(v float64) *float64 { return &v }

func TestConversionFactorMassBased(t *testing.T) {
	unit := models.UnitDefinition{Name: "porción", GramsEquivalent: fptr(150)}
	food := models.FoodRecord{Name: "arroz", VolumeBased: false}

	assert.InDelta(t, 3.0, ConversionFactor(unit, food, 2), 1e-9)
}

func TestConversionFactorVolumeBased(t *testing.T) {
	unit := models.UnitDefinition{Name: "taza", VolumeBased: true, MillilitresEquivalent: fptr(250)}
	food := models.FoodRecord{Name: "leche", VolumeBased: true}

	assert.InDelta(t, 1.25, ConversionFactor(unit, food, 0.5), 1e-9)
}

func TestConversionFactorCrossEquivalentFallback(t *testing.T) {
	// volume-based food but the unit only carries a grams equivalence
	unit := models.UnitDefinition{Name: "cajita", GramsEquivalent: fptr(30)}
	food := models.FoodRecord{Name: "sopa", VolumeBased: true}

	assert.InDelta(t, 0.6, ConversionFactor(unit, food, 2), 1e-9)
}

func TestConversionFactorDegenerateUnit(t *testing.T) {
	// neither equivalence set: the quantity itself is the factor
	unit := models.UnitDefinition{Name: "plato normal"}
	food := models.FoodRecord{Name: "cazuela"}

	assert.InDelta(t, 3.0, ConversionFactor(unit, food, 3), 1e-9)
}

func TestSafeQuantity(t *testing.T) {
	assert.Equal(t, 1.0, SafeQuantity(-2))
	assert.Equal(t, 1.0, SafeQuantity(math.NaN()))
	assert.Equal(t, 1.0, SafeQuantity(math.Inf(1)))
	assert.Equal(t, 0.0, SafeQuantity(0))
	assert.Equal(t, 2.5, SafeQuantity(2.5))
}

func TestSafeNutrient(t *testing.T) {
	assert.Equal(t, 0.0, SafeNutrient(-1))
	assert.Equal(t, 0.0, SafeNutrient(math.NaN()))
	assert.Equal(t, 42.0, SafeNutrient(42))
}

func TestContributionScalesAndTags(t *testing.T) {
	unit := models.UnitDefinition{Name: "rebanada", GramsEquivalent: fptr(30)}
	food := models.FoodRecord{Name: "pan", Sodium: 400, Energy: 250}

	c := Contribution(food, unit, 1)
	assert.InDelta(t, 120.0, c.Sodium, 1e-9)
	assert.InDelta(t, 75.0, c.Energy, 1e-9)
	assert.Equal(t, models.SourceCatalog, c.Source)
}

func TestContributionSanitizesBadNutrients(t *testing.T) {
	unit := models.UnitDefinition{Name: "taza", MillilitresEquivalent: fptr(200)}
	food := models.FoodRecord{Name: "jugo", VolumeBased: true, Sodium: math.NaN(), Potassium: -50, Energy: 50}

	c := Contribution(food, unit, 1)
	assert.Equal(t, 0.0, c.Sodium)
	assert.Equal(t, 0.0, c.Potassium)
	assert.InDelta(t, 100.0, c.Energy, 1e-9)
}
