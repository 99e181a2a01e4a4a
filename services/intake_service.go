package services

import (
	"log"
	"time"

	"backend/models"
	"backend/utils"

	"gorm.io/gorm"
)

// Daily renal-diet bands, mg per day. The lower bound is the warning
// level, the upper the hard limit.
type dailyBand struct {
	Warn  float64
	Limit float64
}

var dailyBands = map[string]dailyBand{
	"sodium":     {Warn: 1300, Limit: 1700},
	"potassium":  {Warn: 1800, Limit: 2000},
	"phosphorus": {Warn: 800, Limit: 1000},
}

type IntakeService struct {
	db *gorm.DB
}

func NewIntakeService(db *gorm.DB) *IntakeService {
	return &IntakeService{db: db}
}

// LogAnalysis turns every active selection of a completed analysis into
// a consumption row with a nutrient snapshot taken at completion time.
func (s *IntakeService) LogAnalysis(userID uint, analysisID string, agg *Aggregator) {
	now := time.Now()
	for _, sel := range agg.Selections() {
		c := utils.Contribution(sel.Food, sel.Serving.Unit, sel.Serving.Quantity)
		rec := models.ConsumptionRecord{
			UserID:     userID,
			AnalysisID: analysisID,
			FoodID:     sel.Food.ID,
			FoodName:   sel.Food.Name,
			UnitID:     sel.Serving.Unit.ID,
			UnitName:   sel.Serving.Unit.Name,
			Quantity:   utils.SafeQuantity(sel.Serving.Quantity),
			ConsumedAt: now,
			Sodium:     c.Sodium,
			Potassium:  c.Potassium,
			Phosphorus: c.Phosphorus,
			Energy:     c.Energy,
		}
		if err := s.db.Create(&rec).Error; err != nil {
			log.Printf("intake log failed for analysis %s food %q: %v", analysisID, rec.FoodName, err)
		}
	}
}

// LogConsumption records a single manually-entered food.
func (s *IntakeService) LogConsumption(userID uint, food models.FoodRecord, serving Serving, at time.Time) error {
	c := utils.Contribution(food, serving.Unit, serving.Quantity)
	rec := models.ConsumptionRecord{
		UserID:     userID,
		FoodID:     food.ID,
		FoodName:   food.Name,
		UnitID:     serving.Unit.ID,
		UnitName:   serving.Unit.Name,
		Quantity:   utils.SafeQuantity(serving.Quantity),
		ConsumedAt: at,
		Sodium:     c.Sodium,
		Potassium:  c.Potassium,
		Phosphorus: c.Phosphorus,
		Energy:     c.Energy,
	}
	return s.db.Create(&rec).Error
}

// DailySummary sums the day's consumption and classifies each critical
// nutrient against the daily renal bands.
func (s *IntakeService) DailySummary(userID uint, day time.Time) (map[string]interface{}, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	var recs []models.ConsumptionRecord
	if err := s.db.Where("user_id = ? AND consumed_at >= ? AND consumed_at < ?", userID, start, end).
		Find(&recs).Error; err != nil {
		return nil, err
	}

	var sodium, potassium, phosphorus, energy float64
	for _, r := range recs {
		sodium += r.Sodium
		potassium += r.Potassium
		phosphorus += r.Phosphorus
		energy += r.Energy
	}

	entry := func(name string, consumed float64) map[string]interface{} {
		b := dailyBands[name]
		band := utils.BandOK
		switch {
		case consumed >= b.Limit:
			band = utils.BandExceeded
		case consumed >= b.Warn:
			band = utils.BandWarning
		}
		return map[string]interface{}{
			"consumed": consumed,
			"warn_at":  b.Warn,
			"limit":    b.Limit,
			"band":     band,
		}
	}

	return map[string]interface{}{
		"date":       start.Format("2006-01-02"),
		"meals":      len(recs),
		"energy":     energy,
		"sodium":     entry("sodium", sodium),
		"potassium":  entry("potassium", potassium),
		"phosphorus": entry("phosphorus", phosphorus),
	}, nil
}
