// Package storage defines the data models for the Vigil monitoring dashboard.
//
// All models carry GORM struct tags for automatic migration and query
// generation. Status, severity, and role enumerations are modelled as
// string constants so the stored values stay human-readable.
package storage

import (
	"time"
)

// Server status values.
//
// Servers are created once and updated forever; they are never deleted
// in normal operation. Status and LastCheckedAt are mutated exclusively
// by the health sampler; LastRestartAt/RestartRequestedBy only by
// restart-request handling.
const (
	ServerStatusOnline      = "online"
	ServerStatusOffline     = "offline"
	ServerStatusMaintenance = "maintenance"
	ServerStatusDegraded    = "degraded"
)

// Alert severity values. Severity is immutable after creation.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// User roles, ordered by privilege: viewer < operator < admin.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

// Server represents a monitored host.
type Server struct {
	// ID is the unique identifier for the server
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	// Hostname is a human-readable identifier, unique across all servers
	Hostname string `gorm:"size:255;not null;uniqueIndex" json:"hostname"`

	// Address is the network address used by reachability probes (host:port)
	Address string `gorm:"size:255;not null" json:"address"`

	// Status is the current health status: online, offline, maintenance, degraded
	Status string `gorm:"size:20;not null;default:online" json:"status"`

	// Capacity attributes are informational only
	CPUCores  int   `gorm:"not null;default:0" json:"cpu_cores"`
	MemoryMB  int64 `gorm:"not null;default:0" json:"memory_mb"`
	StorageGB int64 `gorm:"not null;default:0" json:"storage_gb"`

	// LastCheckedAt is the timestamp of the most recent health probe.
	// NULL means the server has never been probed.
	LastCheckedAt *time.Time `json:"last_checked_at"`

	// LastRestartAt records the most recent restart request. Recording
	// the intent is all this field does; actuation is external.
	LastRestartAt *time.Time `json:"last_restart_at"`

	// RestartRequestedBy references the user who requested the restart
	RestartRequestedBy *int64 `json:"restart_requested_by"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// Container represents a workload running on a server.
type Container struct {
	// ID is the unique identifier for the container
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	// ServerID references the host the container runs on
	ServerID int64 `gorm:"not null;uniqueIndex:idx_containers_server_name" json:"server_id"`

	// Name is the container name, unique per server
	Name string `gorm:"size:255;not null;uniqueIndex:idx_containers_server_name" json:"name"`

	// Image is the container image reference
	Image string `gorm:"size:512" json:"image"`

	// Status is the runtime status reported by the external collector
	Status string `gorm:"size:20;not null;default:running" json:"status"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// MetricSample is an immutable, append-only resource snapshot for a server.
//
// Samples are created by the health sampler or an external collector and
// are never updated; deletion only happens through retention pruning.
type MetricSample struct {
	// ID is the unique identifier for the sample
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	// ServerID references the sampled server
	ServerID int64 `gorm:"not null;index" json:"server_id"`

	// Usage percentages, bounded to [0,100]
	CPUUsagePercent    float64 `gorm:"not null" json:"cpu_usage_percent"`
	MemoryUsagePercent float64 `gorm:"not null" json:"memory_usage_percent"`
	DiskUsagePercent   float64 `gorm:"not null" json:"disk_usage_percent"`

	// Cumulative I/O counters
	NetworkRxBytes int64 `gorm:"not null;default:0" json:"network_rx_bytes"`
	NetworkTxBytes int64 `gorm:"not null;default:0" json:"network_tx_bytes"`
	DiskReadBytes  int64 `gorm:"not null;default:0" json:"disk_read_bytes"`
	DiskWriteBytes int64 `gorm:"not null;default:0" json:"disk_write_bytes"`

	// Load averages
	Load1  float64 `gorm:"not null;default:0" json:"load_1"`
	Load5  float64 `gorm:"not null;default:0" json:"load_5"`
	Load15 float64 `gorm:"not null;default:0" json:"load_15"`

	// CollectedAt is the sample timestamp
	CollectedAt time.Time `gorm:"not null;index" json:"collected_at"`
}

// Alert represents a detected abnormal condition.
//
// Lifecycle: open (initial) → acknowledged → resolved. Acknowledgment is
// performed by exactly one actor and is not reversible. Invariants
// enforced by ValidateAlert and the alerting engine:
//   - AcknowledgedAt is set if and only if Acknowledged is true
//   - ResolvedAt is set if and only if Resolved is true
//   - Severity never changes after creation
type Alert struct {
	// ID is the unique identifier for the alert
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	// UUID is a stable external identifier safe to expose to clients
	UUID string `gorm:"size:36;not null;uniqueIndex" json:"uuid"`

	// Severity is one of critical, warning, info
	Severity string `gorm:"size:20;not null;index" json:"severity"`

	// Source identifies the producer, e.g. "health-sampler"
	Source string `gorm:"size:100;not null;index" json:"source"`

	// Message is the human-readable alert text
	Message string `gorm:"size:1000;not null" json:"message"`

	// Details is a structured JSON payload with producer-specific context
	Details string `gorm:"type:text" json:"details"`

	// ServerID optionally links the alert to a server
	ServerID *int64 `gorm:"index" json:"server_id"`

	// ContainerID optionally links the alert to a container
	ContainerID *int64 `gorm:"index" json:"container_id"`

	// Acknowledgment state
	Acknowledged   bool       `gorm:"not null;default:false;index" json:"acknowledged"`
	AcknowledgedBy *int64     `json:"acknowledged_by"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`

	// Resolution state
	Resolved   bool       `gorm:"not null;default:false" json:"resolved"`
	ResolvedBy *int64     `json:"resolved_by"`
	ResolvedAt *time.Time `json:"resolved_at"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// User represents an authenticated dashboard user.
type User struct {
	// ID is the unique identifier for the user
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	// Username is unique across all users
	Username string `gorm:"size:100;not null;uniqueIndex" json:"username"`

	// PasswordHash is the bcrypt hash of the user's password
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	// FullName is an optional display name
	FullName string `gorm:"size:255" json:"full_name"`

	// Role is one of admin, operator, viewer
	Role string `gorm:"size:20;not null;default:viewer" json:"role"`

	// Active disables login without deleting the account
	Active bool `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// AuditLog is a write-only record of a user-visible action.
type AuditLog struct {
	// ID is the unique identifier for the record
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	// UserID references the acting user, when known
	UserID *int64 `gorm:"index" json:"user_id"`

	// IP is the remote address of the request, when applicable
	IP string `gorm:"size:64" json:"ip"`

	// Action is a short machine-readable action name, e.g. "alert.acknowledge"
	Action string `gorm:"size:100;not null;index" json:"action"`

	// Detail carries free-form context for the action
	Detail string `gorm:"size:1000" json:"detail"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

// RoleAtLeast reports whether role meets the required privilege level.
func RoleAtLeast(role, required string) bool {
	rank := map[string]int{
		RoleViewer:   1,
		RoleOperator: 2,
		RoleAdmin:    3,
	}
	r, ok := rank[role]
	if !ok {
		return false
	}
	return r >= rank[required]
}

// IsValidSeverity reports whether s is a known alert severity.
func IsValidSeverity(s string) bool {
	switch s {
	case SeverityCritical, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

// IsValidServerStatus reports whether s is a known server status.
func IsValidServerStatus(s string) bool {
	switch s {
	case ServerStatusOnline, ServerStatusOffline, ServerStatusMaintenance, ServerStatusDegraded:
		return true
	}
	return false
}
