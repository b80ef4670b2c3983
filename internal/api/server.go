// Package api exposes the growth assessment engine over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/child-growth-server/internal/domain"
	"github.com/child-growth-server/internal/middleware"
	"github.com/child-growth-server/internal/service"
)

// Server represents the HTTP server
type Server struct {
	config   *domain.Config
	logger   *logrus.Logger
	assessor *service.Assessor
	provider domain.ReferenceProvider
	router   *gin.Engine
	server   *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(config *domain.Config, logger *logrus.Logger, assessor *service.Assessor, provider domain.ReferenceProvider) *Server {
	// Set Gin mode based on environment
	if config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RateLimit(config.RateLimit))

	server := &Server{
		config:   config,
		logger:   logger,
		assessor: assessor,
		provider: provider,
		router:   router,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// Start starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.config.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Router exposes the gin engine for handler tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)

	// API v1 routes: one endpoint per assessment flow
	v1 := s.router.Group("/api/v1/growth")
	{
		v1.POST("/weight-for-age", s.handleWeightForAge)
		v1.POST("/weight-for-height", s.handleWeightForHeight)
		v1.POST("/length-height-for-age", s.handleLengthHeightForAge)
		v1.POST("/bmi-for-age", s.handleBMIForAge)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	hits, misses := s.assessor.CacheStats()
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"timestamp":         time.Now().UTC(),
		"reference_version": s.provider.Version(),
		"cache": gin.H{
			"hits":   hits,
			"misses": misses,
		},
	})
}
