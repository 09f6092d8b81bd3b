// Package alerts implements HTTP handlers for the alert lifecycle.
//
// All state transitions delegate to the alerting engine; handlers only
// parse input, translate errors to HTTP status codes, and write audit
// records for successful mutations.
package alerts

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vigil/internal/alerting"
	"vigil/internal/api/auth"
	"vigil/internal/api/types"
	"vigil/internal/auditlog"
	"vigil/internal/storage"
)

// Handler manages alert-related HTTP endpoints.
type Handler struct {
	alerts *alerting.Engine
	audit  *auditlog.Recorder
}

// NewHandler creates a new alert handler instance.
func NewHandler(alerts *alerting.Engine, audit *auditlog.Recorder) *Handler {
	return &Handler{alerts: alerts, audit: audit}
}

// List handles GET /api/v1/alerts
//
// Returns open (unacknowledged) alerts ordered newest first.
//
// Query parameters:
//   - severity (optional: critical, warning, info)
//   - limit (default: 50, max: 500)
//
// Returns:
//   - 200 OK with the alert list
//   - 400 Bad Request for an unknown severity or invalid limit
//   - 503 Service Unavailable on storage failure
func (h *Handler) List(c *gin.Context) {
	severity := c.Query("severity")
	if severity != "" && !storage.IsValidSeverity(severity) {
		types.AbortWithError(c, types.ValidationError("unknown severity filter: "+severity))
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			types.AbortWithError(c, types.ValidationError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	open, err := h.alerts.ListOpen(severity, limit)
	if err != nil {
		types.AbortWithError(c, types.DependencyError("failed to list alerts", err))
		return
	}

	responses := make([]AlertResponse, 0, len(open))
	for _, a := range open {
		responses = append(responses, toResponse(a))
	}
	c.JSON(http.StatusOK, types.SuccessResponse(responses))
}

// Get handles GET /api/v1/alerts/:id
//
// Returns:
//   - 200 OK with the alert
//   - 404 Not Found for an unknown id
func (h *Handler) Get(c *gin.Context) {
	id, ok := alertID(c)
	if !ok {
		return
	}

	alert, err := h.alerts.Get(id)
	if err != nil {
		if errors.Is(err, alerting.ErrNotFound) {
			types.AbortWithError(c, types.NotFoundError("alert"))
			return
		}
		types.AbortWithError(c, types.DependencyError("failed to load alert", err))
		return
	}
	c.JSON(http.StatusOK, types.SuccessResponse(toResponse(*alert)))
}

// Acknowledge handles POST /api/v1/alerts/:id/acknowledge
//
// Requires role operator or above (enforced in routing). The operation
// is idempotent: acknowledging an already-acknowledged alert succeeds
// without changing state.
//
// Returns:
//   - 200 OK on success or idempotent success
//   - 404 Not Found for an unknown id
func (h *Handler) Acknowledge(c *gin.Context) {
	id, ok := alertID(c)
	if !ok {
		return
	}

	actorID := auth.ActorID(c)
	if err := h.alerts.Acknowledge(id, actorID); err != nil {
		if errors.Is(err, alerting.ErrNotFound) {
			types.AbortWithError(c, types.NotFoundError("alert"))
			return
		}
		types.AbortWithError(c, types.DependencyError("failed to acknowledge alert", err))
		return
	}

	h.audit.Record(&actorID, c.ClientIP(), "alert.acknowledge", c.Param("id"))
	c.JSON(http.StatusOK, types.SuccessResponse(gin.H{"acknowledged": true}))
}

// Resolve handles POST /api/v1/alerts/:id/resolve
//
// Allowed from open or acknowledged state; resolution implies
// acknowledgment for aggregate purposes. Idempotent like Acknowledge.
func (h *Handler) Resolve(c *gin.Context) {
	id, ok := alertID(c)
	if !ok {
		return
	}

	actorID := auth.ActorID(c)
	if err := h.alerts.Resolve(id, actorID); err != nil {
		if errors.Is(err, alerting.ErrNotFound) {
			types.AbortWithError(c, types.NotFoundError("alert"))
			return
		}
		types.AbortWithError(c, types.DependencyError("failed to resolve alert", err))
		return
	}

	h.audit.Record(&actorID, c.ClientIP(), "alert.resolve", c.Param("id"))
	c.JSON(http.StatusOK, types.SuccessResponse(gin.H{"resolved": true}))
}

// alertID parses the :id path parameter, aborting with 400 on garbage.
func alertID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		types.AbortWithError(c, types.ValidationError("alert id must be a positive integer"))
		return 0, false
	}
	return id, true
}
