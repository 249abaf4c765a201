package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rasoihub/backend/config"
	"github.com/rasoihub/backend/internal/api"
	"github.com/rasoihub/backend/internal/database"
	"github.com/rasoihub/backend/internal/middleware"
	"github.com/rasoihub/backend/internal/router"
	"github.com/rasoihub/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	engine *gin.Engine
	http   *http.Server
	logger *zap.Logger
}

// New wires services, handlers and routes into a ready-to-start server.
// redisClient and s3Config may be nil; the features backed by them degrade.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, s3Config *config.S3Config, logger *zap.Logger) *Server {
	authService := service.NewAuthService(db, cfg.JWTSecret)
	libraryService := service.NewLibraryService(db, redisClient, logger)
	importService := service.NewImportService(db, logger)
	imageService := service.NewImageService(db, s3Config, logger)

	var importLimiter *middleware.RateLimiter
	if redisClient != nil {
		importLimiter = middleware.NewDishImportRateLimiter(redisClient)
	}

	engine := router.SetupRouter(router.Deps{
		AuthHandler:    api.NewAuthHandler(authService),
		LibraryHandler: api.NewLibraryHandler(libraryService),
		ImportHandler:  api.NewImportHandler(importService, imageService),
		TokenValidator: authService,
		ImportLimiter:  importLimiter,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
		HealthCheck: func(c *gin.Context) error {
			return database.HealthCheck(c.Request.Context(), db)
		},
	})

	return &Server{
		engine: engine,
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: engine,
		},
		logger: logger,
	}
}

// Start blocks serving requests until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
