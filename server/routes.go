// Package server exposes scraping and analysis over HTTP.
package server

import (
	"github.com/gin-gonic/gin"

	"car-evaluator/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// tests pin gin.TestMode before building the router
	if !cfg.Debug && gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/scrape", handler.Scrape)
		api.POST("/analyze", handler.Analyze)
	}

	return router
}
