// Package api provides the HTTP surface for the Vigil monitoring
// dashboard, implemented with the Gin framework.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vigil/internal/core"
	"vigil/internal/storage"
)

// Handler manages public endpoints.
type Handler struct {
	engine    *core.Engine
	storage   *storage.Storage
	startTime time.Time
}

// NewHandler initializes a new public API handler.
func NewHandler(engine *core.Engine, st *storage.Storage) *Handler {
	return &Handler{
		engine:    engine,
		storage:   st,
		startTime: time.Now(),
	}
}

// Ping handles GET /api/ping
//
// A lightweight endpoint for basic connectivity verification.
func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Health handles GET /api/health
//
// Reports liveness plus dependency status. The store is the only
// critical dependency: when it is unreachable the endpoint returns 503
// so load balancers and probes take the instance out of rotation. The
// sampling engine not running degrades the report but keeps it 200,
// since the read path still works.
func (h *Handler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	dbStatus, dbResponseTime := h.checkDatabaseHealth(ctx)
	samplerStatus := h.checkSamplerHealth()

	overallStatus := "healthy"
	httpStatus := http.StatusOK
	switch {
	case dbStatus != "healthy":
		overallStatus = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	case samplerStatus != "healthy":
		overallStatus = "degraded"
	}

	c.JSON(httpStatus, gin.H{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startTime).String(),
		"components": gin.H{
			"database": gin.H{
				"status":           dbStatus,
				"response_time_ms": dbResponseTime,
			},
			"sampler": gin.H{
				"status": samplerStatus,
			},
		},
	})
}

// checkDatabaseHealth pings the underlying SQL database and measures
// response time.
func (h *Handler) checkDatabaseHealth(ctx context.Context) (string, int64) {
	if h.storage == nil {
		return "unhealthy", 0
	}

	start := time.Now()
	sqlDB, err := h.storage.DB().DB()
	if err != nil {
		return "unhealthy", time.Since(start).Milliseconds()
	}

	err = sqlDB.PingContext(ctx)
	responseTime := time.Since(start).Milliseconds()
	if err != nil {
		return "unhealthy", responseTime
	}
	return "healthy", responseTime
}

// checkSamplerHealth reports whether the sampling engine is running.
func (h *Handler) checkSamplerHealth() string {
	if h.engine == nil || !h.engine.IsRunning() {
		return "unhealthy"
	}
	return "healthy"
}
