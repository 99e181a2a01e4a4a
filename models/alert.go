package models

import "time"

type Alert struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index"`
	Type      string    `gorm:"size:30"` // "threshold_exceeded" | "warning" | "info"
	Nutrient  string    `gorm:"size:20"` // which nutrient tripped, if any
	Message   string    `gorm:"type:text"`
	CreatedAt time.Time
}
