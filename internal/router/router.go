package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rasoihub/backend/internal/api"
	"github.com/rasoihub/backend/internal/middleware"
	"github.com/rasoihub/backend/internal/models"
)

// Deps collects everything the router wires together.
type Deps struct {
	AuthHandler    *api.AuthHandler
	LibraryHandler *api.LibraryHandler
	ImportHandler  *api.ImportHandler
	TokenValidator middleware.TokenValidator
	// ImportLimiter is optional; when nil imports run unthrottled.
	ImportLimiter  *middleware.RateLimiter
	AllowedOrigins []string
	Logger         *zap.Logger
	HealthCheck    func(c *gin.Context) error
}

// SetupRouter configures the application routes
func SetupRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.CORS(deps.AllowedOrigins))

	router.GET("/healthz", func(c *gin.Context) {
		if deps.HealthCheck != nil {
			if err := deps.HealthCheck(c); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	deps.AuthHandler.RegisterRoutes(v1)

	// Browse endpoints require a valid token but no particular role.
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.TokenValidator))
	{
		deps.LibraryHandler.RegisterRoutes(protected)
		deps.ImportHandler.RegisterRoutes(protected)
	}

	// The import itself is restricted to managers and admins and rate
	// limited per restaurant.
	importGroup := v1.Group("")
	importGroup.Use(middleware.AuthMiddleware(deps.TokenValidator))
	importGroup.Use(middleware.RequireRole(models.RoleManager, models.RoleAdmin))
	if deps.ImportLimiter != nil {
		importGroup.Use(deps.ImportLimiter.RateLimitMiddleware())
	}
	deps.ImportHandler.RegisterImportRoute(importGroup)

	return router
}
