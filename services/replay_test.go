package services

import (
	"encoding/json"
	"testing"

	"backend/models"
	"backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestSnapshotKeyRelationship(t *testing.T) {
	agg := NewAggregator()
	require.NoError(t, agg.ApplySelection("bread", bread, Serving{Unit: sliceUnit, Quantity: 2}))
	require.NoError(t, agg.ApplySelection("milk", milk, Serving{Unit: cupUnit, Quantity: 0.5}))

	replay := NewReplayService(nil, &fakeCatalog{})
	snap := replay.Snapshot(agg)

	assert.Equal(t, "pan", snap.SeleccionesEspecificas["bread"])
	assert.Equal(t, "leche", snap.SeleccionesEspecificas["milk"])

	// the second map is keyed by the first map's values
	for _, foodName := range snap.SeleccionesEspecificas {
		assert.Contains(t, snap.FoodsWithUnits, foodName)
	}
	assert.Equal(t, "2 rebanada", snap.FoodsWithUnits["pan"])
	assert.Equal(t, "0.5 taza", snap.FoodsWithUnits["leche"])
}

func TestReplayRecomputationMatchesLiveTotals(t *testing.T) {
	live := NewAggregator()
	require.NoError(t, live.ApplySelection("bread", bread, Serving{Unit: sliceUnit, Quantity: 2}))
	require.NoError(t, live.ApplySelection("milk", bread, Serving{Unit: sliceUnit, Quantity: 1}))
	// user changes their mind, replacement must survive the round trip
	require.NoError(t, live.ApplySelection("milk", milk, Serving{Unit: cupUnit, Quantity: 0.5}))
	require.NoError(t, live.ApplySelection("rice", rice, Serving{Unit: plainUnit, Quantity: 1}))

	// rebuild from the selections alone, the way Restore replays
	// persisted rows
	replayed := NewAggregator()
	for term, sel := range live.Selections() {
		require.NoError(t, replayed.ApplySelection(term, sel.Food, sel.Serving))
	}
	replayed.SetReadOnly(true)

	a, b := live.CurrentTotals(), replayed.CurrentTotals()
	assert.InDelta(t, a.Sodium, b.Sodium, 1e-6)
	assert.InDelta(t, a.Potassium, b.Potassium, 1e-6)
	assert.InDelta(t, a.Phosphorus, b.Phosphorus, 1e-6)
	assert.InDelta(t, a.Energy, b.Energy, 1e-6)
	assert.Equal(t, a.Source, b.Source)

	// read-only replay keeps classification available but rejects edits
	assert.ErrorIs(t, replayed.ApplySelection("bread", rice, Serving{Unit: plainUnit, Quantity: 1}), ErrReadOnly)
}

func TestRebuildKeepsAIEstimateAnalysis(t *testing.T) {
	// completed analysis with no selection rows: the whole-dish
	// estimate must come back with its tag, not an empty catalog sum
	ai, _ := json.Marshal(models.NutrientTotals{Sodium: 300, Potassium: 200, Phosphorus: 80})
	terms, _ := json.Marshal([]string{"sopa", "pastel"})
	analysis := &models.MealAnalysis{
		ID:            "a-ai",
		AITotals:      datatypes.JSON(ai),
		DetectedTerms: datatypes.JSON(terms),
		Completed:     true,
	}

	replay := NewReplayService(nil, &fakeCatalog{})
	agg, err := replay.rebuild(analysis, nil)
	require.NoError(t, err)

	got := agg.CurrentTotals()
	assert.Equal(t, models.SourceAIEstimate, got.Source)
	assert.Equal(t, 300.0, got.Sodium)
	assert.Equal(t, 200.0, got.Potassium)
	assert.ElementsMatch(t, []string{"sopa", "pastel"}, agg.UnresolvedTerms())
	assert.ErrorIs(t, agg.ApplySelection("sopa", rice, Serving{Unit: plainUnit, Quantity: 1}), ErrReadOnly)
}

func TestRebuildFlagsUnselectedTerms(t *testing.T) {
	terms, _ := json.Marshal([]string{"bread", "milk"})
	analysis := &models.MealAnalysis{ID: "a-cat", DetectedTerms: datatypes.JSON(terms), Completed: true}
	rows := []models.AnalysisSelection{{
		AnalysisID:     "a-cat",
		OriginalTerm:   "bread",
		SelectedFoodID: bread.ID,
		UnitID:         sliceUnit.ID,
		Quantity:       1,
	}}
	catalog := &fakeCatalog{
		foods: []models.FoodRecord{bread},
		units: []models.UnitDefinition{sliceUnit},
	}

	replay := NewReplayService(nil, catalog)
	agg, err := replay.rebuild(analysis, rows)
	require.NoError(t, err)

	// the never-selected term is surfaced, not hidden
	assert.Equal(t, []string{"milk"}, agg.UnresolvedTerms())

	want := utils.Contribution(bread, sliceUnit, 1)
	got := agg.CurrentTotals()
	assert.Equal(t, models.SourceCatalog, got.Source)
	assert.InDelta(t, want.Sodium, got.Sodium, 1e-9)
}

func TestSnapshotEmptyAggregator(t *testing.T) {
	replay := NewReplayService(nil, &fakeCatalog{})
	snap := replay.Snapshot(NewAggregator())
	assert.Empty(t, snap.SeleccionesEspecificas)
	assert.Empty(t, snap.FoodsWithUnits)
}
