package models

// Source of truth for a NutrientTotals value. The two modes are
// mutually exclusive; the tag travels with the totals so a UI can
// signal how trustworthy the numbers are.
const (
    SourceCatalog    = "catalog"
    SourceAIEstimate = "ai_estimate"
)

// NutrientTotals is a summed nutrient profile in absolute units
// (kcal and mg/g, not per-100).
type NutrientTotals struct {
    Energy     float64 `json:"energy"`
    Protein    float64 `json:"protein"`
    Carbs      float64 `json:"carbs"`
    Fat        float64 `json:"fat"`
    Sodium     float64 `json:"sodium"`
    Potassium  float64 `json:"potassium"`
    Phosphorus float64 `json:"phosphorus"`
    Calcium    float64 `json:"calcium,omitempty"`

    Source string `json:"source"` // SourceCatalog | SourceAIEstimate
}

// Add accumulates o into t field by field. Source is left untouched.
func (t *NutrientTotals) Add(o NutrientTotals) {
    t.Energy += o.Energy
    t.Protein += o.Protein
    t.Carbs += o.Carbs
    t.Fat += o.Fat
    t.Sodium += o.Sodium
    t.Potassium += o.Potassium
    t.Phosphorus += o.Phosphorus
    t.Calcium += o.Calcium
}

// Sub removes o from t field by field.
func (t *NutrientTotals) Sub(o NutrientTotals) {
    t.Energy -= o.Energy
    t.Protein -= o.Protein
    t.Carbs -= o.Carbs
    t.Fat -= o.Fat
    t.Sodium -= o.Sodium
    t.Potassium -= o.Potassium
    t.Phosphorus -= o.Phosphorus
    t.Calcium -= o.Calcium
}
