package controllers

import (
	"net/http"
	"time"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type IntakeController struct {
	svc     *services.IntakeService
	catalog services.Catalog
}

func NewIntakeController(svc *services.IntakeService, catalog services.Catalog) *IntakeController {
	return &IntakeController{svc: svc, catalog: catalog}
}

type LogConsumptionInput struct {
	FoodID   string  `json:"food_id" binding:"required"`
	UnitID   uint    `json:"unit_id" binding:"required"`
	Quantity float64 `json:"quantity"`
	AteAt    string  `json:"ate_at"` // RFC3339, defaults to now
}

// POST /intake
func (ic *IntakeController) Log(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input LogConsumptionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	food, err := ic.catalog.GetByID(input.FoodID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	unit, err := ic.catalog.GetUnit(input.UnitID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	at := time.Now()
	if input.AteAt != "" {
		parsed, err := time.Parse(time.RFC3339, input.AteAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ate_at must be RFC3339"})
			return
		}
		at = parsed
	}

	serving := services.Serving{Unit: *unit, Quantity: input.Quantity}
	if err := ic.svc.LogConsumption(user.ID, *food, serving, at); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "logged"})
}

// GET /intake/daily?date=2026-08-31
func (ic *IntakeController) Daily(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	day := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	summary, err := ic.svc.DailySummary(user.ID, day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}
