package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"backend/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	err := godotenv.Load()
	if err != nil {
		log.Fatalf("Error loading .env file")
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.MedicalProfile{},
		&models.FoodCategory{},
		&models.FoodRecord{},
		&models.UnitDefinition{},
		&models.MealAnalysis{},
		&models.AnalysisSelection{},
		&models.ConsumptionRecord{},
		&models.Alert{},
		&models.UserDevice{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	SeedUnits(DB)
}

func ptr(v float64) *float64 { return &v }

// SeedUnits inserts the household measurement units used by the mobile
// app. Idempotent: existing unit names are left untouched.
func SeedUnits(db *gorm.DB) {
	units := []models.UnitDefinition{
		{Name: "taza", Abbreviation: "tz", VolumeBased: true, MillilitresEquivalent: ptr(200)},
		{Name: "vaso", Abbreviation: "vs", VolumeBased: true, MillilitresEquivalent: ptr(180)},
		{Name: "plato hondo", Abbreviation: "ph", VolumeBased: true, MillilitresEquivalent: ptr(250)},
		{Name: "plato normal", Abbreviation: "pn", VolumeBased: false},
		{Name: "cucharada", Abbreviation: "cda", VolumeBased: true, MillilitresEquivalent: ptr(10)},
		{Name: "cucharadita", Abbreviation: "cdta", VolumeBased: true, MillilitresEquivalent: ptr(5)},
		{Name: "cajita de fósforos", Abbreviation: "cf", VolumeBased: false, GramsEquivalent: ptr(30)},
		{Name: "marraqueta", Abbreviation: "mq", VolumeBased: false, GramsEquivalent: ptr(50)},
	}
	for _, u := range units {
		var existing models.UnitDefinition
		if err := db.Where("name = ?", u.Name).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&u).Error; err != nil {
				log.Printf("unit seed failed for %q: %v", u.Name, err)
			}
		}
	}
}
