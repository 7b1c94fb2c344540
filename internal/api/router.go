// Package api provides HTTP routing and server configuration for CropCert.
// It wires together handlers, middleware, and the registry to create the
// application's API endpoints.
package api

import (
	"net/http"

	"github.com/cropcert/cropcert/internal/api/handlers"
	"github.com/cropcert/cropcert/internal/api/middleware"
	"github.com/cropcert/cropcert/internal/config"
	"github.com/cropcert/cropcert/internal/database"
	"github.com/cropcert/cropcert/internal/registry"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *database.Database, reg *registry.Registry, logger *zap.Logger) *gin.Engine {
	// Set Gin mode
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.CORSMiddleware(cfg))

	// Initialize handlers
	certHandler := handlers.NewCertificationHandler(reg, registry.WallClock{}, logger)
	authorityHandler := handlers.NewAuthorityHandler(reg, logger)
	registryHandler := handlers.NewRegistryHandler(reg, logger)

	// Health check
	router.GET("/healthz", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Prometheus metrics
	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// Public routes (read-only registry state)
	public := router.Group("/api/v1")
	{
		public.GET("/certifications", certHandler.ListCertifications)
		public.GET("/certifications/:id", certHandler.GetCertification)
		public.GET("/certifications/:id/audit", certHandler.GetCertAudit)
		public.GET("/authority", authorityHandler.GetAuthority)
		public.GET("/registry/counter", registryHandler.GetCounter)
		public.GET("/registry/status", registryHandler.GetStatus)
	}

	// Protected routes (require authentication)
	protected := router.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware(cfg))
	{
		// Certifications
		protected.POST("/certifications", certHandler.IssueCertification)
		protected.PUT("/certifications/:id/approve", certHandler.ApproveCertification)
		protected.PUT("/certifications/:id/revoke", certHandler.RevokeCertification)

		// Authority binding
		protected.POST("/authority", authorityHandler.SetAuthority)
	}

	return router
}
