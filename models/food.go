package models

import "time"

type FoodCategory struct {
    ID   uint   `gorm:"primaryKey" json:"id"`
    Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// FoodRecord is one catalog entry. Every nutrient value is expressed
// per 100 g (mass-based foods) or per 100 ml (volume-based foods);
// VolumeBased picks the reference basis.
type FoodRecord struct {
    ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
    Name       string    `gorm:"uniqueIndex;not null" json:"name"`
    CategoryID *uint     `gorm:"index" json:"category_id,omitempty"`
    VolumeBased bool     `json:"volume_based"`

    Energy     float64 `json:"energy"`  // kcal
    Protein    float64 `json:"protein"` // g
    Carbs      float64 `json:"carbs"`   // g
    Fat        float64 `json:"fat"`     // g
    Sodium     float64 `json:"sodium"`     // mg
    Potassium  float64 `json:"potassium"`  // mg
    Phosphorus float64 `json:"phosphorus"` // mg
    Calcium    float64 `json:"calcium,omitempty"` // mg, optional minor nutrient

    Active    bool `gorm:"default:true" json:"active"`
    CreatedAt time.Time `json:"-"`
    UpdatedAt time.Time `json:"-"`
}
