package controllers

import (
	"net/http"
	"strconv"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type FoodController struct {
	catalog services.Catalog
}

func NewFoodController(catalog services.Catalog) *FoodController {
	return &FoodController{catalog: catalog}
}

// GET /foods/search?q=bread&category_id=2
func (fc *FoodController) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	var categoryID *uint
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
			return
		}
		v := uint(id)
		categoryID = &v
	}

	foods, err := fc.catalog.Search(q, categoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": foods})
}

// GET /foods/:id
func (fc *FoodController) GetByID(c *gin.Context) {
	food, err := fc.catalog.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, food)
}

// GET /foods/units
func (fc *FoodController) ListUnits(c *gin.Context) {
	units, err := fc.catalog.ListUnits()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"units": units})
}

// GET /foods/categories
func (fc *FoodController) ListCategories(c *gin.Context) {
	cats, err := fc.catalog.ListCategories()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}
