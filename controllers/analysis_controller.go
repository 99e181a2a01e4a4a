package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type AnalysisController struct {
	svc    *services.AnalysisService
	intake *services.IntakeService
}

func NewAnalysisController(svc *services.AnalysisService, intake *services.IntakeService) *AnalysisController {
	return &AnalysisController{svc: svc, intake: intake}
}

type CreateAnalysisInput struct {
	Image    string          `json:"image" binding:"required"` // data URI
	AITotals json.RawMessage `json:"ai_totals"`
	DishName string          `json:"dish_name"`
}

type SelectionInput struct {
	Term     string  `json:"term" binding:"required"`
	FoodID   string  `json:"food_id" binding:"required"`
	UnitID   uint    `json:"unit_id" binding:"required"`
	Quantity float64 `json:"quantity"`
}

// POST /analyses
func (ac *AnalysisController) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input CreateAnalysisInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := ac.svc.CreateFromImage(user, input.Image, input.AITotals, input.DishName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GET /analyses/:id
func (ac *AnalysisController) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := ac.svc.Get(c.Param("id"), user.ID)
	if err != nil {
		ac.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GET /analyses
func (ac *AnalysisController) History(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := ac.svc.History(user.ID, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": list})
}

// PUT /analyses/:id/selections
func (ac *AnalysisController) ApplySelection(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input SelectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := ac.svc.ApplySelection(c.Param("id"), user, input.Term, input.FoodID, input.UnitID, input.Quantity)
	if err != nil {
		ac.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DELETE /analyses/:id/selections/:term
func (ac *AnalysisController) RemoveSelection(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := ac.svc.RemoveSelection(c.Param("id"), user, c.Param("term"))
	if err != nil {
		ac.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /analyses/:id/complete
func (ac *AnalysisController) Complete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := ac.svc.Complete(c.Param("id"), user, ac.intake)
	if err != nil {
		ac.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (ac *AnalysisController) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAnalysisNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
	case errors.Is(err, services.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "not your analysis"})
	case errors.Is(err, services.ErrReadOnly):
		c.JSON(http.StatusConflict, gin.H{"error": "analysis is completed and read-only"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
