// Package servers defines API request/response types for server endpoints.
package servers

import (
	"time"

	"vigil/internal/storage"
)

// ServerRequest represents the request payload for registering a server.
type ServerRequest struct {
	Hostname  string `json:"hostname" binding:"required,min=1,max=255"`
	Address   string `json:"address" binding:"required,hostname_port"`
	Status    string `json:"status" binding:"omitempty,oneof=online offline maintenance degraded"`
	CPUCores  int    `json:"cpu_cores" binding:"omitempty,min=0"`
	MemoryMB  int64  `json:"memory_mb" binding:"omitempty,min=0"`
	StorageGB int64  `json:"storage_gb" binding:"omitempty,min=0"`
}

// MetricSampleRequest represents a resource snapshot submitted by an
// external collector.
type MetricSampleRequest struct {
	CPUUsagePercent    float64    `json:"cpu_usage_percent" binding:"min=0,max=100"`
	MemoryUsagePercent float64    `json:"memory_usage_percent" binding:"min=0,max=100"`
	DiskUsagePercent   float64    `json:"disk_usage_percent" binding:"min=0,max=100"`
	NetworkRxBytes     int64      `json:"network_rx_bytes" binding:"omitempty,min=0"`
	NetworkTxBytes     int64      `json:"network_tx_bytes" binding:"omitempty,min=0"`
	DiskReadBytes      int64      `json:"disk_read_bytes" binding:"omitempty,min=0"`
	DiskWriteBytes     int64      `json:"disk_write_bytes" binding:"omitempty,min=0"`
	Load1              float64    `json:"load_1" binding:"omitempty,min=0"`
	Load5              float64    `json:"load_5" binding:"omitempty,min=0"`
	Load15             float64    `json:"load_15" binding:"omitempty,min=0"`
	CollectedAt        *time.Time `json:"collected_at,omitempty"`
}

// MetricSampleResponse represents a stored metric sample.
type MetricSampleResponse struct {
	ID                 int64     `json:"id"`
	CPUUsagePercent    float64   `json:"cpu_usage_percent"`
	MemoryUsagePercent float64   `json:"memory_usage_percent"`
	DiskUsagePercent   float64   `json:"disk_usage_percent"`
	NetworkRxBytes     int64     `json:"network_rx_bytes"`
	NetworkTxBytes     int64     `json:"network_tx_bytes"`
	DiskReadBytes      int64     `json:"disk_read_bytes"`
	DiskWriteBytes     int64     `json:"disk_write_bytes"`
	Load1              float64   `json:"load_1"`
	Load5              float64   `json:"load_5"`
	Load15             float64   `json:"load_15"`
	CollectedAt        time.Time `json:"collected_at"`
}

// ServerResponse represents a server joined with its most recent sample.
type ServerResponse struct {
	ID            int64                 `json:"id"`
	Hostname      string                `json:"hostname"`
	Address       string                `json:"address"`
	Status        string                `json:"status"`
	CPUCores      int                   `json:"cpu_cores"`
	MemoryMB      int64                 `json:"memory_mb"`
	StorageGB     int64                 `json:"storage_gb"`
	LastCheckedAt *time.Time            `json:"last_checked_at"`
	LastRestartAt *time.Time            `json:"last_restart_at"`
	LatestSample  *MetricSampleResponse `json:"latest_sample,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// toResponse maps a stored server and its optional latest sample to the
// API representation.
func toResponse(s storage.Server, sample *storage.MetricSample) ServerResponse {
	resp := ServerResponse{
		ID:            s.ID,
		Hostname:      s.Hostname,
		Address:       s.Address,
		Status:        s.Status,
		CPUCores:      s.CPUCores,
		MemoryMB:      s.MemoryMB,
		StorageGB:     s.StorageGB,
		LastCheckedAt: s.LastCheckedAt,
		LastRestartAt: s.LastRestartAt,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if sample != nil {
		resp.LatestSample = &MetricSampleResponse{
			ID:                 sample.ID,
			CPUUsagePercent:    sample.CPUUsagePercent,
			MemoryUsagePercent: sample.MemoryUsagePercent,
			DiskUsagePercent:   sample.DiskUsagePercent,
			NetworkRxBytes:     sample.NetworkRxBytes,
			NetworkTxBytes:     sample.NetworkTxBytes,
			DiskReadBytes:      sample.DiskReadBytes,
			DiskWriteBytes:     sample.DiskWriteBytes,
			Load1:              sample.Load1,
			Load5:              sample.Load5,
			Load15:             sample.Load15,
			CollectedAt:        sample.CollectedAt,
		}
	}
	return resp
}
