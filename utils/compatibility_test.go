package utils

import (
	"testing"

	"backend/models"

	"github.com/stretchr/testify/assert"
)

func TestClassifyValueBoundaries(t *testing.T) {
	// default sodium limit 375, warning at 187.5
	assert.Equal(t, BandOK, ClassifyValue(187.49, 375))
	assert.Equal(t, BandWarning, ClassifyValue(187.5, 375))
	assert.Equal(t, BandWarning, ClassifyValue(374.99, 375))
	assert.Equal(t, BandExceeded, ClassifyValue(375, 375))
}

func TestClassifyValueZeroLimit(t *testing.T) {
	assert.Equal(t, BandOK, ClassifyValue(9999, 0))
}

func TestClassifyTotals(t *testing.T) {
	totals := models.NutrientTotals{Sodium: 400, Potassium: 100, Phosphorus: 130}
	readings := ClassifyTotals(totals, DefaultMealThresholds())

	assert.Equal(t, BandExceeded, readings["sodium"].Band)
	assert.Equal(t, BandOK, readings["potassium"].Band)
	assert.Equal(t, BandWarning, readings["phosphorus"].Band)
	assert.Equal(t, 187.5, readings["sodium"].WarningAt)
}

func TestThresholdsForProfile(t *testing.T) {
	th := ThresholdsForProfile(nil)
	assert.Equal(t, DefaultMealThresholds(), th)

	profile := &models.MedicalProfile{SodiumLimit: 300}
	th = ThresholdsForProfile(profile)
	assert.Equal(t, 300.0, th.Sodium)
	assert.Equal(t, 500.0, th.Potassium) // unset override keeps the default
}

func TestWorstBand(t *testing.T) {
	readings := map[string]NutrientReading{
		"sodium":    {Band: BandOK},
		"potassium": {Band: BandWarning},
	}
	assert.Equal(t, BandWarning, WorstBand(readings))

	readings["phosphorus"] = NutrientReading{Band: BandExceeded}
	assert.Equal(t, BandExceeded, WorstBand(readings))
}
