// Package dashboard implements the aggregated dashboard summary endpoint.
package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vigil/internal/api/types"
	"vigil/internal/summary"
)

// Handler serves the dashboard summary.
type Handler struct {
	summaries *summary.Service
}

// NewHandler creates a new dashboard handler instance.
func NewHandler(summaries *summary.Service) *Handler {
	return &Handler{summaries: summaries}
}

// Summary handles GET /api/v1/dashboard/summary
//
// Returns the cached summary when fresh, otherwise recomputes it from
// the store. The generated_at field tells the caller how stale the
// view is; staleness within the cache TTL is expected and by contract.
//
// Returns:
//   - 200 OK with the summary
//   - 503 Service Unavailable when the store cannot be queried
func (h *Handler) Summary(c *gin.Context) {
	s, err := h.summaries.GetSummary()
	if err != nil {
		types.AbortWithError(c, types.DependencyError("failed to compute dashboard summary", err))
		return
	}
	c.JSON(http.StatusOK, types.SuccessResponse(s))
}
