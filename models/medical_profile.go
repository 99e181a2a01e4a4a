package models

import (
    "gorm.io/gorm"
)

// MedicalProfile holds per-patient clinical data plus the per-meal
// nutrient limits that override the engine defaults when set (> 0).
type MedicalProfile struct {
    gorm.Model
    UserID   uint    `gorm:"uniqueIndex;not null"`
    HeightCm float64 // e.g. 172
    WeightKg float64 // e.g. 68
    CKDStage int     // 1..5, 0 when unknown

    // Per-meal limits in mg. Zero means "use engine default".
    SodiumLimit     float64
    PotassiumLimit  float64
    PhosphorusLimit float64
}
