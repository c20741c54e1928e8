package http

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"go.ngs.io/coriolis/internal/usecase"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(profileUC *usecase.ProfileUseCase) *gin.Engine {

	router := gin.Default()

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()

	// Default to allow all origins if not specified.
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}

	router.Use(cors.New(corsConfig))

	handler := NewHandler(profileUC)

	// API v1 routes.
	v1 := router.Group("/v1")
	coriolis := v1.Group("/coriolis")
	coriolis.GET("/profile", handler.GetProfile)
	coriolis.GET("/plot", handler.GetPlot)
	coriolis.GET("/value", handler.GetValue)

	v1.GET("/presets", handler.GetPresets)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	return router
}
