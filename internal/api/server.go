package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"vigil/internal/alerting"
	authpkg "vigil/internal/api/auth"
	"vigil/internal/auditlog"
	"vigil/internal/config"
	"vigil/internal/core"
	"vigil/internal/storage"
	"vigil/internal/summary"
)

// Server represents the HTTP API server.
type Server struct {
	config      config.ServerConfig
	engine      *core.Engine
	storage     *storage.Storage
	alerts      *alerting.Engine
	summaries   *summary.Service
	audit       *auditlog.Recorder
	router      *gin.Engine
	server      *http.Server
	authHandler *authpkg.Handler
}

// Deps carries the collaborators injected into the API server.
type Deps struct {
	Engine    *core.Engine
	Storage   *storage.Storage
	Alerts    *alerting.Engine
	Summaries *summary.Service
	Audit     *auditlog.Recorder
}

// NewServer creates a new HTTP API server instance.
//
// All dependencies are explicit; the server owns only the router and
// the http.Server lifecycle.
func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config:      cfg,
		engine:      deps.Engine,
		storage:     deps.Storage,
		alerts:      deps.Alerts,
		summaries:   deps.Summaries,
		audit:       deps.Audit,
		router:      gin.New(),
		authHandler: authpkg.NewHandler(deps.Storage, deps.Audit, []byte(cfg.JWT.Secret), cfg.JWT.TTL),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Router exposes the configured router, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the HTTP server and begins listening for requests.
func (s *Server) Start() error {
	log.Info().Str("addr", s.config.Addr).Msg("Starting HTTP server")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// setupMiddleware configures middleware for the Gin router.
func (s *Server) setupMiddleware() {
	// Request ID first so every later log line can carry it
	s.router.Use(RequestID())
	s.router.Use(Recovery())
	s.router.Use(Logger())
}
