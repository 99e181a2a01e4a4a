package models

import (
    "time"

    "gorm.io/datatypes"
)

// MealAnalysis is one photographed-meal analysis session. DetectedTerms
// and AITotals are stored verbatim from the image-analysis result;
// Selections is the latest SelectionSnapshot (two parallel maps), kept
// only for display; reopening an analysis always recomputes totals
// from the AnalysisSelection rows instead of trusting a cached sum.
type MealAnalysis struct {
    ID       string `gorm:"type:uuid;primaryKey" json:"id"`
    UserID   uint   `gorm:"index;not null" json:"user_id"`
    ImageURL string `json:"image_url"`
    DishName string `json:"dish_name,omitempty"`

    DetectedTerms datatypes.JSON `json:"detected_terms"`          // []string
    AITotals      datatypes.JSON `json:"ai_totals,omitempty"`     // NutrientTotals | null
    Selections    datatypes.JSON `json:"selections,omitempty"`    // SelectionSnapshot

    Completed bool      `json:"completed"`
    CreatedAt time.Time `json:"created_at"`
    UpdatedAt time.Time `json:"-"`
}

// AnalysisSelection is the durable form of one user override: for this
// analysis, the detected term OriginalTerm was resolved to the catalog
// food SelectedFoodID eaten as Quantity × unit. There is at most one
// row per (analysis, original term); re-picking updates it in place.
type AnalysisSelection struct {
    ID         uint   `gorm:"primaryKey" json:"id"`
    AnalysisID string `gorm:"type:uuid;index:idx_analysis_term,unique;not null" json:"analysis_id"`
    PersonID   uint   `gorm:"index" json:"person_id"`

    OriginalTerm     string  `gorm:"index:idx_analysis_term,unique;not null" json:"original_term"`
    SelectedFoodID   string  `gorm:"type:uuid;not null" json:"selected_food_id"`
    SelectedFoodName string  `json:"selected_food_name"`
    UnitID           uint    `json:"unit_id"`
    UnitName         string  `json:"unit_name"`
    Quantity         float64 `json:"quantity"`

    CreatedAt time.Time `json:"created_at"`
    UpdatedAt time.Time `json:"-"`
}
