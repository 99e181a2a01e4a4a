package models

// UnitDefinition is a named serving unit. Exactly one equivalence is
// normally meaningful; a unit with neither is treated as "already per
// 100 reference" by the converter rather than rejected.
type UnitDefinition struct {
    ID           uint     `gorm:"primaryKey" json:"id"`
    Name         string   `gorm:"uniqueIndex;not null" json:"name"`
    Abbreviation string   `gorm:"size:20" json:"abbreviation"`
    VolumeBased  bool     `json:"volume_based"`
    GramsEquivalent       *float64 `json:"grams_equivalent,omitempty"`
    MillilitresEquivalent *float64 `json:"millilitres_equivalent,omitempty"`
}
