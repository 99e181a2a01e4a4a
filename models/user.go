package models

import (
    "time"

    "gorm.io/gorm"
)

type User struct {
    gorm.Model
    Email          string `gorm:"uniqueIndex;not null"`
    Password       string `gorm:"not null"`
    FullName       string
    Role           string `gorm:"size:20;default:'patient'"` // "patient" | "caregiver"
    CaregiverEmail string
    MFAEnabled     bool
    MFACode        string
    ResetToken     string
    ResetTokenExp  time.Time
}
