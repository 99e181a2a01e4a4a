package services

import (
	"errors"
	"strings"

	"backend/models"

	"gorm.io/gorm"
)

// Catalog is the food lookup surface the resolver and aggregator depend on.
// The gorm-backed implementation below is the production one; tests swap in
// an in-memory fake.
type Catalog interface {
	Search(query string, categoryID *uint) ([]models.FoodRecord, error)
	GetByID(id string) (*models.FoodRecord, error)
	GetByName(name string) (*models.FoodRecord, error)
	ListUnits() ([]models.UnitDefinition, error)
	GetUnit(id uint) (*models.UnitDefinition, error)
	GetUnitByName(name string) (*models.UnitDefinition, error)
	ListCategories() ([]models.FoodCategory, error)
}

type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// Search matches active foods by case-insensitive substring, optionally
// narrowed to a category.
func (c *CatalogService) Search(query string, categoryID *uint) ([]models.FoodRecord, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}
	tx := c.db.Where("active = ?", true).Where("name ILIKE ?", "%"+q+"%")
	if categoryID != nil {
		tx = tx.Where("category_id = ?", *categoryID)
	}
	var foods []models.FoodRecord
	if err := tx.Order("name asc").Limit(25).Find(&foods).Error; err != nil {
		return nil, err
	}
	return foods, nil
}

func (c *CatalogService) GetByID(id string) (*models.FoodRecord, error) {
	var food models.FoodRecord
	if err := c.db.First(&food, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("food not found")
		}
		return nil, err
	}
	return &food, nil
}

func (c *CatalogService) GetByName(name string) (*models.FoodRecord, error) {
	var food models.FoodRecord
	if err := c.db.First(&food, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("food not found")
		}
		return nil, err
	}
	return &food, nil
}

func (c *CatalogService) ListUnits() ([]models.UnitDefinition, error) {
	var units []models.UnitDefinition
	if err := c.db.Order("id asc").Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

func (c *CatalogService) GetUnit(id uint) (*models.UnitDefinition, error) {
	var unit models.UnitDefinition
	if err := c.db.First(&unit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("unit not found")
		}
		return nil, err
	}
	return &unit, nil
}

func (c *CatalogService) GetUnitByName(name string) (*models.UnitDefinition, error) {
	var unit models.UnitDefinition
	if err := c.db.First(&unit, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("unit not found")
		}
		return nil, err
	}
	return &unit, nil
}

func (c *CatalogService) ListCategories() ([]models.FoodCategory, error) {
	var cats []models.FoodCategory
	if err := c.db.Order("name asc").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}
