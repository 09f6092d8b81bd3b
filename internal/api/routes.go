package api

import (
	authpkg "vigil/internal/api/auth"
	v1 "vigil/internal/api/v1"
	"vigil/internal/metrics"

	"github.com/gin-gonic/gin"
)

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	baseHandler := NewHandler(s.engine, s.storage)
	authMiddleware := authpkg.NewMiddleware(s.authHandler.TokenManager())

	// Prometheus exposition, outside the /api group and unauthenticated
	// (scraped by the monitoring stack). Request-duration observation
	// only applies to the API group below.
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	apiGroup := s.router.Group("/api")
	apiGroup.Use(metrics.Middleware())

	// Base endpoints (no authentication required)
	apiGroup.GET("/ping", baseHandler.Ping)
	apiGroup.GET("/health", baseHandler.Health)

	// Authentication endpoints
	authGroup := apiGroup.Group("/auth")
	{
		authGroup.POST("/login", s.authHandler.Login)
		authGroup.GET("/me", authMiddleware.RequireAuth(), s.authHandler.Me)
	}

	// API v1 routes (protected with authentication)
	v1Group := apiGroup.Group("/v1")
	v1Group.Use(authMiddleware.RequireAuth())

	v1.SetupRoutes(v1Group, v1.Deps{
		Storage:   s.storage,
		Alerts:    s.alerts,
		Summaries: s.summaries,
		Audit:     s.audit,
		Auth:      authMiddleware,
	})
}
