package models

import (
    "time"

    "gorm.io/gorm"
)

// ConsumptionRecord logs a confirmed selection as actually eaten, with
// the converted nutrient contribution snapshotted at log time so daily
// summaries do not depend on later catalog edits.
type ConsumptionRecord struct {
    gorm.Model
    UserID     uint   `gorm:"index;not null"`
    AnalysisID string `gorm:"type:uuid;index"`
    FoodID     string `gorm:"type:uuid;not null"`
    FoodName   string
    UnitID     uint
    UnitName   string
    Quantity   float64
    ConsumedAt time.Time `gorm:"index"`

    Sodium     float64 // mg, already converted
    Potassium  float64
    Phosphorus float64
    Energy     float64
}
