// Package alerts defines API request/response types for alert endpoints.
package alerts

import (
	"encoding/json"
	"time"

	"vigil/internal/storage"
)

// AlertResponse represents an alert entity in API responses.
type AlertResponse struct {
	ID             int64           `json:"id"`
	UUID           string          `json:"uuid"`
	Severity       string          `json:"severity"`
	Source         string          `json:"source"`
	Message        string          `json:"message"`
	Details        json.RawMessage `json:"details,omitempty"`
	ServerID       *int64          `json:"server_id,omitempty"`
	ContainerID    *int64          `json:"container_id,omitempty"`
	Acknowledged   bool            `json:"acknowledged"`
	AcknowledgedBy *int64          `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time      `json:"acknowledged_at,omitempty"`
	Resolved       bool            `json:"resolved"`
	ResolvedBy     *int64          `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// toResponse maps a stored alert to its API representation.
func toResponse(a storage.Alert) AlertResponse {
	resp := AlertResponse{
		ID:             a.ID,
		UUID:           a.UUID,
		Severity:       a.Severity,
		Source:         a.Source,
		Message:        a.Message,
		ServerID:       a.ServerID,
		ContainerID:    a.ContainerID,
		Acknowledged:   a.Acknowledged,
		AcknowledgedBy: a.AcknowledgedBy,
		AcknowledgedAt: a.AcknowledgedAt,
		Resolved:       a.Resolved,
		ResolvedBy:     a.ResolvedBy,
		ResolvedAt:     a.ResolvedAt,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
	if json.Valid([]byte(a.Details)) {
		resp.Details = json.RawMessage(a.Details)
	}
	return resp
}
