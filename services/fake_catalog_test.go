package services

import (
	"errors"
	"strings"

	"backend/models"
)

// fakeCatalog is an in-memory Catalog for tests.
type fakeCatalog struct {
	foods    []models.FoodRecord
	units    []models.UnitDefinition
	failFor  map[string]bool // queries that should error
	searches []string        // recorded queries
}

func (f *fakeCatalog) Search(query string, categoryID *uint) ([]models.FoodRecord, error) {
	f.searches = append(f.searches, query)
	if f.failFor[query] {
		return nil, errors.New("catalog unavailable")
	}
	q := strings.ToLower(query)
	var out []models.FoodRecord
	for _, food := range f.foods {
		if !strings.Contains(strings.ToLower(food.Name), q) {
			continue
		}
		if categoryID != nil && (food.CategoryID == nil || *food.CategoryID != *categoryID) {
			continue
		}
		out = append(out, food)
	}
	return out, nil
}

func (f *fakeCatalog) GetByID(id string) (*models.FoodRecord, error) {
	for _, food := range f.foods {
		if food.ID == id {
			fc := food
			return &fc, nil
		}
	}
	return nil, errors.New("food not found")
}

func (f *fakeCatalog) GetByName(name string) (*models.FoodRecord, error) {
	for _, food := range f.foods {
		if food.Name == name {
			fc := food
			return &fc, nil
		}
	}
	return nil, errors.New("food not found")
}

func (f *fakeCatalog) ListUnits() ([]models.UnitDefinition, error) {
	return f.units, nil
}

func (f *fakeCatalog) GetUnit(id uint) (*models.UnitDefinition, error) {
	for _, u := range f.units {
		if u.ID == id {
			uc := u
			return &uc, nil
		}
	}
	return nil, errors.New("unit not found")
}

func (f *fakeCatalog) GetUnitByName(name string) (*models.UnitDefinition, error) {
	for _, u := range f.units {
		if u.Name == name {
			uc := u
			return &uc, nil
		}
	}
	return nil, errors.New("unit not found")
}

func (f *fakeCatalog) ListCategories() ([]models.FoodCategory, error) {
	return nil, nil
}

func fptr(v float64) *float64 { return &v }
