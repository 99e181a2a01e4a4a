package controllers

import (
	"net/http"

	"backend/models"
	"backend/services"

	"github.com/gin-gonic/gin"
)

// currentUser loads the authenticated user set by the auth middleware.
// Writes the error response itself when the lookup fails.
func currentUser(c *gin.Context) (*models.User, bool) {
	email := c.GetString("email")
	user, err := services.FindUserByEmail(email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return nil, false
	}
	return user, true
}
