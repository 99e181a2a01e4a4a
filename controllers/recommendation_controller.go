package controllers

import (
	"backend/services"

	"github.com/gin-gonic/gin"
)

func GetRecommendations(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	recSvc := services.NewRecService()
	recs, err := recSvc.GetRecs(user.ID)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"recommendations": recs})
}
