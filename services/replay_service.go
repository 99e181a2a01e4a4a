package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SelectionSnapshot is the durable shape of a user's overrides. The two
// maps are parallel: the second is keyed by the VALUES of the first
// (chosen food display name), not by the detected term.
type SelectionSnapshot struct {
	SeleccionesEspecificas map[string]string `json:"seleccionesEspecificas"`
	FoodsWithUnits         map[string]string `json:"foodsWithUnits"`
}

type ReplayService struct {
	db      *gorm.DB
	catalog Catalog
}

func NewReplayService(db *gorm.DB, catalog Catalog) *ReplayService {
	return &ReplayService{db: db, catalog: catalog}
}

// Snapshot serializes the aggregator's active selections.
func (r *ReplayService) Snapshot(agg *Aggregator) SelectionSnapshot {
	snap := SelectionSnapshot{
		SeleccionesEspecificas: make(map[string]string),
		FoodsWithUnits:         make(map[string]string),
	}
	for term, sel := range agg.Selections() {
		snap.SeleccionesEspecificas[term] = sel.Food.Name
		snap.FoodsWithUnits[sel.Food.Name] = formatServing(sel.Serving)
	}
	return snap
}

func formatServing(s Serving) string {
	qty := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", s.Quantity), "0"), ".")
	return qty + " " + s.Unit.Name
}

// Persist writes the snapshot and per-term selection rows. Best effort:
// failures are logged, never propagated, and the in-memory aggregator
// stays authoritative.
func (r *ReplayService) Persist(analysisID string, personID uint, agg *Aggregator) {
	snap := r.Snapshot(agg)
	raw, err := json.Marshal(snap)
	if err != nil {
		log.Printf("snapshot marshal failed for analysis %s: %v", analysisID, err)
		return
	}

	if err := r.db.Model(&models.MealAnalysis{}).
		Where("id = ?", analysisID).
		Update("selections", datatypes.JSON(raw)).Error; err != nil {
		log.Printf("snapshot write failed for analysis %s: %v", analysisID, err)
	}

	for term, sel := range agg.Selections() {
		row := models.AnalysisSelection{
			AnalysisID:       analysisID,
			OriginalTerm:     term,
			PersonID:         personID,
			SelectedFoodID:   sel.Food.ID,
			SelectedFoodName: sel.Food.Name,
			UnitID:           sel.Serving.Unit.ID,
			UnitName:         sel.Serving.Unit.Name,
			Quantity:         sel.Serving.Quantity,
		}
		var existing models.AnalysisSelection
		err := r.db.Where("analysis_id = ? AND original_term = ?", analysisID, term).
			First(&existing).Error
		if err == nil {
			row.ID = existing.ID
			err = r.db.Save(&row).Error
		} else {
			err = r.db.Create(&row).Error
		}
		if err != nil {
			log.Printf("selection write failed for analysis %s term %q: %v", analysisID, term, err)
		}
	}
}

// Restore rebuilds a read-only aggregator from the persisted analysis.
// Totals are recomputed from current catalog data rather than trusted
// from a cached sum, so unit or nutrient fixes made after the analysis
// closed still apply.
func (r *ReplayService) Restore(analysisID string) (*Aggregator, SelectionSnapshot, error) {
	var analysis models.MealAnalysis
	if err := r.db.First(&analysis, "id = ?", analysisID).Error; err != nil {
		return nil, SelectionSnapshot{}, err
	}
	var rows []models.AnalysisSelection
	if err := r.db.Where("analysis_id = ?", analysisID).
		Order("id asc").Find(&rows).Error; err != nil {
		return nil, SelectionSnapshot{}, err
	}

	agg, err := r.rebuild(&analysis, rows)
	if err != nil {
		return nil, SelectionSnapshot{}, err
	}
	return agg, r.Snapshot(agg), nil
}

// rebuild reconstructs aggregator state from the persisted record:
// catalog mode replayed from the selection rows, or the stored
// whole-dish estimate when the analysis never left AI-estimate mode.
// Detection terms without a row stay flagged as unresolved.
func (r *ReplayService) rebuild(analysis *models.MealAnalysis, rows []models.AnalysisSelection) (*Aggregator, error) {
	agg := NewAggregator()
	for _, row := range rows {
		food, err := r.catalog.GetByID(row.SelectedFoodID)
		if err != nil {
			// catalog entry gone: keep the row visible but contribute zero
			log.Printf("replay: food %s missing for analysis %s: %v", row.SelectedFoodID, analysis.ID, err)
			continue
		}
		unit, err := r.catalog.GetUnit(row.UnitID)
		if err != nil {
			log.Printf("replay: unit %d missing for analysis %s: %v", row.UnitID, analysis.ID, err)
			continue
		}
		if err := agg.ApplySelection(row.OriginalTerm, *food, Serving{Unit: *unit, Quantity: row.Quantity}); err != nil {
			return nil, err
		}
	}

	// No rows means no user override ever happened: an analysis that
	// opened in AI-estimate mode must reopen with the same estimate and
	// tag, not an empty catalog sum.
	if len(rows) == 0 && len(analysis.AITotals) > 0 {
		var totals models.NutrientTotals
		if err := json.Unmarshal(analysis.AITotals, &totals); err != nil {
			log.Printf("replay: bad ai totals for analysis %s: %v", analysis.ID, err)
		} else {
			agg.UseAIEstimate(totals)
		}
	}

	var detected []string
	if len(analysis.DetectedTerms) > 0 {
		if err := json.Unmarshal(analysis.DetectedTerms, &detected); err != nil {
			log.Printf("replay: bad detected terms for analysis %s: %v", analysis.ID, err)
		}
	}
	selected := agg.Selections()
	var unresolved []string
	seen := make(map[string]struct{})
	for _, term := range detected {
		if _, ok := selected[term]; ok {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		unresolved = append(unresolved, term)
	}
	agg.MarkUnresolved(unresolved)

	agg.SetReadOnly(true)
	return agg, nil
}
