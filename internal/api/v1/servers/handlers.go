// Package servers implements HTTP handlers for server management.
//
// Servers follow a create-once, update-forever lifecycle: there is no
// delete endpoint by design. Status mutations belong to the health
// sampler; the only write operations here are registration, metric
// ingestion from external collectors, and restart-intent recording.
package servers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vigil/internal/api/auth"
	"vigil/internal/api/types"
	"vigil/internal/auditlog"
	"vigil/internal/storage"
)

// Handler manages server-related HTTP endpoints.
type Handler struct {
	storage *storage.Storage
	audit   *auditlog.Recorder
}

// NewHandler creates a new server handler instance.
func NewHandler(st *storage.Storage, audit *auditlog.Recorder) *Handler {
	return &Handler{storage: st, audit: audit}
}

// List handles GET /api/v1/servers
//
// Returns a paginated list of servers ordered by id, each joined with
// its most recent metric sample.
//
// Query parameters:
//   - page (default: 1, min: 1)
//   - page_size (default: 50, max: 500)
//
// Returns:
//   - 200 OK with the paginated server list
//   - 400 Bad Request for invalid pagination parameters
//   - 503 Service Unavailable on storage failure
func (h *Handler) List(c *gin.Context) {
	var pagination types.PaginationRequest
	if err := c.ShouldBindQuery(&pagination); err != nil {
		types.AbortWithError(c, types.ValidationError(err.Error()))
		return
	}

	var total int64
	if err := h.storage.DB().Model(&storage.Server{}).Count(&total).Error; err != nil {
		types.AbortWithError(c, types.DependencyError("failed to count servers", err))
		return
	}

	offset := (pagination.Page - 1) * pagination.PageSize
	var servers []storage.Server
	if err := h.storage.DB().
		Order("id").
		Limit(pagination.PageSize).
		Offset(offset).
		Find(&servers).Error; err != nil {
		types.AbortWithError(c, types.DependencyError("failed to retrieve servers", err))
		return
	}

	responses := make([]ServerResponse, 0, len(servers))
	for _, server := range servers {
		responses = append(responses, toResponse(server, h.latestSample(server.ID)))
	}

	totalPages := int((total + int64(pagination.PageSize) - 1) / int64(pagination.PageSize))
	c.JSON(http.StatusOK, types.SuccessResponseWithPagination(responses, &types.PaginationResponse{
		Page:       pagination.Page,
		PageSize:   pagination.PageSize,
		Total:      total,
		TotalPages: totalPages,
	}))
}

// Get handles GET /api/v1/servers/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}

	var server storage.Server
	if err := h.storage.DB().First(&server, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			types.AbortWithError(c, types.NotFoundError("server"))
			return
		}
		types.AbortWithError(c, types.DependencyError("failed to load server", err))
		return
	}

	c.JSON(http.StatusOK, types.SuccessResponse(toResponse(server, h.latestSample(server.ID))))
}

// Create handles POST /api/v1/servers
//
// Registers a new monitored server. Requires role admin.
//
// Returns:
//   - 201 Created with the new server
//   - 400 Bad Request for invalid payloads
//   - 409-equivalent validation error for duplicate hostnames
func (h *Handler) Create(c *gin.Context) {
	var req ServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		types.AbortWithError(c, types.ValidationError(err.Error()))
		return
	}

	server := storage.Server{
		Hostname:  req.Hostname,
		Address:   req.Address,
		Status:    req.Status,
		CPUCores:  req.CPUCores,
		MemoryMB:  req.MemoryMB,
		StorageGB: req.StorageGB,
	}
	if err := storage.ValidateServer(&server); err != nil {
		types.AbortWithError(c, types.ValidationError(err.Error()))
		return
	}

	if err := h.storage.DB().Create(&server).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			types.AbortWithError(c, types.ValidationError("hostname already registered"))
			return
		}
		types.AbortWithError(c, types.DependencyError("failed to create server", err))
		return
	}

	actorID := auth.ActorID(c)
	h.audit.Record(&actorID, c.ClientIP(), "server.create", server.Hostname)
	c.JSON(http.StatusCreated, types.SuccessResponse(toResponse(server, nil)))
}

// RequestRestart handles POST /api/v1/servers/:id/restart
//
// Records restart intent only: timestamp and requesting user. Actuation
// is delegated to external operational tooling.
//
// Returns:
//   - 200 OK once the intent is recorded
//   - 404 Not Found for an unknown server id
func (h *Handler) RequestRestart(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}

	actorID := auth.ActorID(c)
	now := time.Now()

	result := h.storage.DB().
		Model(&storage.Server{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_restart_at":      now,
			"restart_requested_by": actorID,
			"updated_at":           now,
		})
	if result.Error != nil {
		types.AbortWithError(c, types.DependencyError("failed to record restart request", result.Error))
		return
	}
	if result.RowsAffected == 0 {
		types.AbortWithError(c, types.NotFoundError("server"))
		return
	}

	h.audit.Record(&actorID, c.ClientIP(), "server.restart_request", c.Param("id"))
	c.JSON(http.StatusOK, types.SuccessResponse(gin.H{
		"restart_requested_at": now,
	}))
}

// CreateMetric handles POST /api/v1/servers/:id/metrics
//
// Accepts a resource snapshot from an external collector and appends it
// to the metric history. Samples are immutable once stored.
//
// Returns:
//   - 201 Created with the stored sample id
//   - 400 Bad Request when usage percentages leave [0,100]
//   - 404 Not Found for an unknown server id
func (h *Handler) CreateMetric(c *gin.Context) {
	id, ok := serverID(c)
	if !ok {
		return
	}

	var req MetricSampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		types.AbortWithError(c, types.ValidationError(err.Error()))
		return
	}

	var exists int64
	if err := h.storage.DB().Model(&storage.Server{}).Where("id = ?", id).Count(&exists).Error; err != nil {
		types.AbortWithError(c, types.DependencyError("failed to check server", err))
		return
	}
	if exists == 0 {
		types.AbortWithError(c, types.NotFoundError("server"))
		return
	}

	sample := storage.MetricSample{
		ServerID:           id,
		CPUUsagePercent:    req.CPUUsagePercent,
		MemoryUsagePercent: req.MemoryUsagePercent,
		DiskUsagePercent:   req.DiskUsagePercent,
		NetworkRxBytes:     req.NetworkRxBytes,
		NetworkTxBytes:     req.NetworkTxBytes,
		DiskReadBytes:      req.DiskReadBytes,
		DiskWriteBytes:     req.DiskWriteBytes,
		Load1:              req.Load1,
		Load5:              req.Load5,
		Load15:             req.Load15,
	}
	if req.CollectedAt != nil {
		sample.CollectedAt = *req.CollectedAt
	}
	if err := storage.ValidateMetricSample(&sample); err != nil {
		types.AbortWithError(c, types.ValidationError(err.Error()))
		return
	}

	if err := h.storage.DB().Create(&sample).Error; err != nil {
		types.AbortWithError(c, types.DependencyError("failed to store metric sample", err))
		return
	}

	c.JSON(http.StatusCreated, types.SuccessResponse(gin.H{"id": sample.ID}))
}

// latestSample returns the newest metric sample for a server, or nil
// when none exists or the lookup fails (the join is best-effort).
func (h *Handler) latestSample(serverID int64) *storage.MetricSample {
	var sample storage.MetricSample
	err := h.storage.DB().
		Where("server_id = ?", serverID).
		Order("collected_at DESC").
		First(&sample).Error
	if err != nil {
		return nil
	}
	return &sample
}

// serverID parses the :id path parameter, aborting with 400 on garbage.
func serverID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		types.AbortWithError(c, types.ValidationError("server id must be a positive integer"))
		return 0, false
	}
	return id, true
}
