package routes

import (
	"log"

	"backend/config"
	"backend/controllers"
	"backend/middlewares"
	"backend/services"

	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	catalog := services.NewCatalogService(config.DB)
	replay := services.NewReplayService(config.DB, catalog)
	vision := services.NewVisionService()
	analysisSvc := services.NewAnalysisService(config.DB, catalog, vision, replay)
	intakeSvc := services.NewIntakeService(config.DB)

	hub := services.NewRealtimeHub()
	push, err := services.NewPushService(config.DB)
	if err != nil {
		log.Fatalf("push service init failed: %v", err)
	}
	services.InitAlertDeps(config.DB, hub, push)

	foodCtl := controllers.NewFoodController(catalog)
	analysisCtl := controllers.NewAnalysisController(analysisSvc, intakeSvc)
	intakeCtl := controllers.NewIntakeController(intakeSvc, catalog)
	deviceCtl := controllers.NewDeviceController(push)
	rtCtl := controllers.NewRealtimeController(hub)

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/verify-mfa", controllers.VerifyMFA)
		auth.POST("/forgot-password", controllers.ForgotPassword)
		auth.POST("/reset-password", controllers.ResetPassword)
	}

	// Protected user routes
	user := r.Group("/user")
	user.Use(middlewares.AuthMiddleware())
	{
		user.GET("/profile", controllers.GetProfile)
		user.PUT("/profile", controllers.UpdateProfile)
		user.POST("/devices", deviceCtl.Register)
		user.POST("/notifications/toggle", controllers.ToggleNotifications)
		user.GET("/alerts", controllers.ListAlerts)
		user.GET("/recommendations", controllers.GetRecommendations)
		user.GET("/ws/alerts", rtCtl.AlertsWS)
	}

	// Food catalog
	foods := r.Group("/foods")
	foods.Use(middlewares.AuthMiddleware())
	{
		foods.GET("/search", foodCtl.Search)
		foods.GET("/units", foodCtl.ListUnits)
		foods.GET("/categories", foodCtl.ListCategories)
		foods.GET("/:id", foodCtl.GetByID)
	}

	// Meal analyses
	analyses := r.Group("/analyses")
	analyses.Use(middlewares.AuthMiddleware())
	{
		analyses.POST("", analysisCtl.Create)
		analyses.GET("", analysisCtl.History)
		analyses.GET("/:id", analysisCtl.Get)
		analyses.PUT("/:id/selections", analysisCtl.ApplySelection)
		analyses.DELETE("/:id/selections/:term", analysisCtl.RemoveSelection)
		analyses.POST("/:id/complete", analysisCtl.Complete)
	}

	// Daily intake
	intake := r.Group("/intake")
	intake.Use(middlewares.AuthMiddleware())
	{
		intake.POST("", intakeCtl.Log)
		intake.GET("/daily", intakeCtl.Daily)
	}

	return r
}
