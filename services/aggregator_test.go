package services

import (
	"testing"

	"backend/models"
	"backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sliceUnit = models.UnitDefinition{ID: 1, Name: "rebanada", GramsEquivalent: fptr(30)}
	cupUnit   = models.UnitDefinition{ID: 2, Name: "taza", VolumeBased: true, MillilitresEquivalent: fptr(200)}
	plainUnit = models.UnitDefinition{ID: 4, Name: "plato normal"}

	bread = models.FoodRecord{ID: "f-bread", Name: "pan", Sodium: 400, Potassium: 120, Phosphorus: 90, Energy: 250}
	milk  = models.FoodRecord{ID: "f-milk", Name: "leche", VolumeBased: true, Sodium: 40, Potassium: 150, Phosphorus: 90, Energy: 60}
	rice  = models.FoodRecord{ID: "f-rice", Name: "arroz", Sodium: 5, Potassium: 35, Phosphorus: 40, Energy: 130}
)

func TestApplySelectionReplaceDoesNotDoubleCount(t *testing.T) {
	agg := NewAggregator()

	// unrelated selection that must stay untouched
	require.NoError(t, agg.ApplySelection("rice", rice, Serving{Unit: sliceUnit, Quantity: 1}))
	baseline := agg.CurrentTotals()

	require.NoError(t, agg.ApplySelection("milk", bread, Serving{Unit: sliceUnit, Quantity: 2}))
	require.NoError(t, agg.ApplySelection("milk", milk, Serving{Unit: cupUnit, Quantity: 1}))

	want := baseline
	c := utils.Contribution(milk, cupUnit, 1)
	want.Add(c)

	got := agg.CurrentTotals()
	assert.InDelta(t, want.Sodium, got.Sodium, 1e-9)
	assert.InDelta(t, want.Potassium, got.Potassium, 1e-9)
	assert.InDelta(t, want.Phosphorus, got.Phosphorus, 1e-9)
	assert.InDelta(t, want.Energy, got.Energy, 1e-9)
}

func TestRemoveSelection(t *testing.T) {
	agg := NewAggregator()
	require.NoError(t, agg.ApplySelection("bread", bread, Serving{Unit: sliceUnit, Quantity: 1}))
	require.NoError(t, agg.ApplySelection("milk", milk, Serving{Unit: cupUnit, Quantity: 1}))

	require.NoError(t, agg.RemoveSelection("milk"))

	want := utils.Contribution(bread, sliceUnit, 1)
	got := agg.CurrentTotals()
	assert.InDelta(t, want.Sodium, got.Sodium, 1e-9)
	assert.Len(t, agg.Selections(), 1)

	// removing an unknown term is a no-op
	require.NoError(t, agg.RemoveSelection("ghost"))
}

func TestInitializeCoverageExactlyHalfStaysCatalog(t *testing.T) {
	catalog := &fakeCatalog{foods: []models.FoodRecord{bread, rice}}
	resolver := NewFoodResolver(catalog)
	agg := NewAggregator()

	ai := &models.NutrientTotals{Sodium: 900}
	unresolved := agg.InitializeFromDetection([]string{"pan", "arroz", "sopa", "cazuela"}, ai, resolver, plainUnit)

	assert.Equal(t, models.SourceCatalog, agg.Mode())
	assert.ElementsMatch(t, []string{"sopa", "cazuela"}, unresolved)

	// 2 of 4 resolved at exactly 50%: partial catalog sum, not the AI estimate
	want := utils.Contribution(bread, plainUnit, 1)
	wr := utils.Contribution(rice, plainUnit, 1)
	want.Add(wr)
	assert.InDelta(t, want.Sodium, agg.CurrentTotals().Sodium, 1e-9)
}

func TestInitializeLowCoverageFallsBackToAIEstimate(t *testing.T) {
	catalog := &fakeCatalog{foods: []models.FoodRecord{bread}}
	resolver := NewFoodResolver(catalog)
	agg := NewAggregator()

	ai := &models.NutrientTotals{Sodium: 300, Potassium: 200, Phosphorus: 80}
	agg.InitializeFromDetection([]string{"pan", "sopa", "cazuela", "pastel"}, ai, resolver, plainUnit)

	assert.Equal(t, models.SourceAIEstimate, agg.Mode())
	got := agg.CurrentTotals()
	assert.Equal(t, models.SourceAIEstimate, got.Source)
	assert.Equal(t, 300.0, got.Sodium)
	assert.Equal(t, 200.0, got.Potassium)
}

func TestInitializeLowCoverageWithoutAITotalsStaysCatalog(t *testing.T) {
	catalog := &fakeCatalog{foods: []models.FoodRecord{bread}}
	resolver := NewFoodResolver(catalog)
	agg := NewAggregator()

	agg.InitializeFromDetection([]string{"pan", "sopa", "cazuela", "pastel"}, nil, resolver, plainUnit)

	assert.Equal(t, models.SourceCatalog, agg.Mode())
	want := utils.Contribution(bread, plainUnit, 1)
	assert.InDelta(t, want.Sodium, agg.CurrentTotals().Sodium, 1e-9)
}

func TestFirstUserSelectionReplacesAIBaseline(t *testing.T) {
	catalog := &fakeCatalog{foods: []models.FoodRecord{}}
	resolver := NewFoodResolver(catalog)
	agg := NewAggregator()

	ai := &models.NutrientTotals{Sodium: 500, Potassium: 300}
	agg.InitializeFromDetection([]string{"sopa", "pastel"}, ai, resolver, plainUnit)
	require.Equal(t, models.SourceAIEstimate, agg.Mode())

	require.NoError(t, agg.ApplySelection("sopa", milk, Serving{Unit: cupUnit, Quantity: 1}))

	// the whole-dish estimate is gone, only the catalog contribution remains
	want := utils.Contribution(milk, cupUnit, 1)
	got := agg.CurrentTotals()
	assert.Equal(t, models.SourceCatalog, got.Source)
	assert.InDelta(t, want.Sodium, got.Sodium, 1e-9)
	assert.InDelta(t, want.Potassium, got.Potassium, 1e-9)
}

func TestStaleResolutionIsDiscarded(t *testing.T) {
	agg := NewAggregator()

	token := agg.BeginResolution("milk")

	// a newer selection lands while the lookup is in flight
	require.NoError(t, agg.ApplySelection("milk", milk, Serving{Unit: cupUnit, Quantity: 1}))

	applied, err := agg.ApplyResolution("milk", token, bread, Serving{Unit: sliceUnit, Quantity: 2})
	require.NoError(t, err)
	assert.False(t, applied)

	// totals still reflect the winning selection only
	want := utils.Contribution(milk, cupUnit, 1)
	assert.InDelta(t, want.Sodium, agg.CurrentTotals().Sodium, 1e-9)
}

func TestOlderLookupCannotOverwriteNewerSelection(t *testing.T) {
	agg := NewAggregator()

	// request 1 takes its token before fetching food details
	t1 := agg.BeginResolution("milk")

	// request 2 starts and finishes while request 1 is still fetching
	t2 := agg.BeginResolution("milk")
	applied, err := agg.ApplyResolution("milk", t2, milk, Serving{Unit: cupUnit, Quantity: 1})
	require.NoError(t, err)
	require.True(t, applied)

	// request 1's lookup completes late and must be discarded
	applied, err = agg.ApplyResolution("milk", t1, bread, Serving{Unit: sliceUnit, Quantity: 2})
	require.NoError(t, err)
	assert.False(t, applied)

	want := utils.Contribution(milk, cupUnit, 1)
	assert.InDelta(t, want.Sodium, agg.CurrentTotals().Sodium, 1e-9)
}

func TestInitializeDuplicateTermsCountPerOccurrence(t *testing.T) {
	// "leche" appears twice and resolves: that is 2 of 4 occurrences,
	// exactly half, so the AI estimate must not take over
	catalog := &fakeCatalog{foods: []models.FoodRecord{milk}}
	resolver := NewFoodResolver(catalog)
	agg := NewAggregator()

	ai := &models.NutrientTotals{Sodium: 900}
	unresolved := agg.InitializeFromDetection([]string{"leche", "leche", "sopa", "pastel"}, ai, resolver, plainUnit)

	assert.Equal(t, models.SourceCatalog, agg.Mode())
	assert.ElementsMatch(t, []string{"sopa", "pastel"}, unresolved)
	assert.Len(t, agg.Selections(), 1)
}

func TestFreshResolutionIsApplied(t *testing.T) {
	agg := NewAggregator()

	token := agg.BeginResolution("bread")
	applied, err := agg.ApplyResolution("bread", token, bread, Serving{Unit: sliceUnit, Quantity: 1})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Len(t, agg.Selections(), 1)
}

func TestReadOnlyRejectsMutations(t *testing.T) {
	agg := NewAggregator()
	require.NoError(t, agg.ApplySelection("bread", bread, Serving{Unit: sliceUnit, Quantity: 1}))
	before := agg.CurrentTotals()

	agg.SetReadOnly(true)

	assert.ErrorIs(t, agg.ApplySelection("milk", milk, Serving{Unit: cupUnit, Quantity: 1}), ErrReadOnly)
	assert.ErrorIs(t, agg.RemoveSelection("bread"), ErrReadOnly)
	assert.Equal(t, before, agg.CurrentTotals())
}

func TestEndToEndDetectionScenario(t *testing.T) {
	// bread resolves, milk does not: coverage 1/2 = 50%, catalog mode,
	// milk contributes zero until the user picks something
	catalog := &fakeCatalog{foods: []models.FoodRecord{{ID: "f-bread", Name: "bread", Sodium: 400}}}
	resolver := NewFoodResolver(catalog)
	agg := NewAggregator()

	ai := &models.NutrientTotals{Sodium: 300, Potassium: 200, Phosphorus: 80}
	slice := models.UnitDefinition{ID: 9, Name: "slice", GramsEquivalent: fptr(30)}
	unresolved := agg.InitializeFromDetection([]string{"bread", "milk"}, ai, resolver, slice)

	assert.Equal(t, models.SourceCatalog, agg.Mode())
	assert.Equal(t, []string{"milk"}, unresolved)
	assert.InDelta(t, 120.0, agg.CurrentTotals().Sodium, 1e-9)
}
