package v1

import (
	"github.com/gin-gonic/gin"

	"vigil/internal/alerting"
	"vigil/internal/api/auth"
	"vigil/internal/api/v1/alerts"
	"vigil/internal/api/v1/dashboard"
	"vigil/internal/api/v1/servers"
	"vigil/internal/auditlog"
	"vigil/internal/storage"
	"vigil/internal/summary"
)

// Deps carries the collaborators the v1 handlers need.
type Deps struct {
	Storage   *storage.Storage
	Alerts    *alerting.Engine
	Summaries *summary.Service
	Audit     *auditlog.Recorder
	Auth      *auth.Middleware
}

// SetupRoutes configures API v1 routes.
//
// The whole group runs behind bearer authentication; mutating endpoints
// additionally require role operator or above (viewer is read-only),
// and server registration requires admin.
func SetupRoutes(routerGroup *gin.RouterGroup, deps Deps) {
	alertsHandler := alerts.NewHandler(deps.Alerts, deps.Audit)
	serversHandler := servers.NewHandler(deps.Storage, deps.Audit)
	dashboardHandler := dashboard.NewHandler(deps.Summaries)

	operatorOnly := deps.Auth.RequireRole(storage.RoleOperator)
	adminOnly := deps.Auth.RequireRole(storage.RoleAdmin)

	// Dashboard
	routerGroup.GET("/dashboard/summary", dashboardHandler.Summary)

	// Alert lifecycle
	alertsGroup := routerGroup.Group("/alerts")
	{
		alertsGroup.GET("", alertsHandler.List)
		alertsGroup.GET("/:id", alertsHandler.Get)
		alertsGroup.POST("/:id/acknowledge", operatorOnly, alertsHandler.Acknowledge)
		alertsGroup.POST("/:id/resolve", operatorOnly, alertsHandler.Resolve)
	}

	// Server management
	serversGroup := routerGroup.Group("/servers")
	{
		serversGroup.GET("", serversHandler.List)
		serversGroup.POST("", adminOnly, serversHandler.Create)
		serversGroup.GET("/:id", serversHandler.Get)
		serversGroup.POST("/:id/restart", operatorOnly, serversHandler.RequestRestart)
		serversGroup.POST("/:id/metrics", operatorOnly, serversHandler.CreateMetric)
	}
}
