// Package storage provides validation functions for database entities.
package storage

import (
	"fmt"
	"net"
	"time"
)

// ValidateServer validates a Server entity before database operations.
func ValidateServer(server *Server) error {
	if server.Hostname == "" {
		return fmt.Errorf("server hostname cannot be empty")
	}
	if len(server.Hostname) > 255 {
		return fmt.Errorf("server hostname too long (max 255 chars)")
	}

	if server.Address == "" {
		return fmt.Errorf("server address cannot be empty")
	}
	if _, _, err := net.SplitHostPort(server.Address); err != nil {
		return fmt.Errorf("server address must be host:port: %w", err)
	}

	if server.Status == "" {
		server.Status = ServerStatusOnline
	}
	if !IsValidServerStatus(server.Status) {
		return fmt.Errorf("unknown server status: %s", server.Status)
	}

	if server.CPUCores < 0 {
		return fmt.Errorf("server cpu_cores cannot be negative")
	}
	if server.MemoryMB < 0 {
		return fmt.Errorf("server memory_mb cannot be negative")
	}
	if server.StorageGB < 0 {
		return fmt.Errorf("server storage_gb cannot be negative")
	}

	if server.CreatedAt.IsZero() {
		server.CreatedAt = time.Now()
	}
	server.UpdatedAt = time.Now()

	return nil
}

// ValidateMetricSample validates a MetricSample before insertion.
//
// Usage percentages must stay within [0,100]; counters and load
// averages must be non-negative.
func ValidateMetricSample(sample *MetricSample) error {
	if sample.ServerID <= 0 {
		return fmt.Errorf("metric sample requires a server reference")
	}

	for name, pct := range map[string]float64{
		"cpu_usage_percent":    sample.CPUUsagePercent,
		"memory_usage_percent": sample.MemoryUsagePercent,
		"disk_usage_percent":   sample.DiskUsagePercent,
	} {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("%s out of range [0,100]: %g", name, pct)
		}
	}

	for name, v := range map[string]int64{
		"network_rx_bytes": sample.NetworkRxBytes,
		"network_tx_bytes": sample.NetworkTxBytes,
		"disk_read_bytes":  sample.DiskReadBytes,
		"disk_write_bytes": sample.DiskWriteBytes,
	} {
		if v < 0 {
			return fmt.Errorf("%s cannot be negative", name)
		}
	}

	if sample.Load1 < 0 || sample.Load5 < 0 || sample.Load15 < 0 {
		return fmt.Errorf("load averages cannot be negative")
	}

	if sample.CollectedAt.IsZero() {
		sample.CollectedAt = time.Now()
	}

	return nil
}

// ValidateAlert validates an Alert entity before database operations.
//
// Beyond field checks it enforces the pairing invariants:
// AcknowledgedAt set iff Acknowledged, ResolvedAt set iff Resolved.
func ValidateAlert(alert *Alert) error {
	if !IsValidSeverity(alert.Severity) {
		return fmt.Errorf("unknown alert severity: %s", alert.Severity)
	}

	if alert.Source == "" {
		return fmt.Errorf("alert source cannot be empty")
	}
	if len(alert.Source) > 100 {
		return fmt.Errorf("alert source too long (max 100 chars)")
	}

	if alert.Message == "" {
		return fmt.Errorf("alert message cannot be empty")
	}
	if len(alert.Message) > 1000 {
		return fmt.Errorf("alert message too long (max 1000 chars)")
	}

	if alert.Acknowledged != (alert.AcknowledgedAt != nil) {
		return fmt.Errorf("acknowledged flag and acknowledged_at must be set together")
	}
	if alert.Resolved != (alert.ResolvedAt != nil) {
		return fmt.Errorf("resolved flag and resolved_at must be set together")
	}
	if alert.Resolved && !alert.Acknowledged {
		return fmt.Errorf("a resolved alert must also be acknowledged")
	}

	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}
	alert.UpdatedAt = time.Now()

	return nil
}

// ValidateUser validates a User entity before database operations.
func ValidateUser(user *User) error {
	if user.Username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if len(user.Username) > 100 {
		return fmt.Errorf("username too long (max 100 chars)")
	}

	if user.PasswordHash == "" {
		return fmt.Errorf("user password hash cannot be empty")
	}

	switch user.Role {
	case RoleAdmin, RoleOperator, RoleViewer:
	default:
		return fmt.Errorf("unknown user role: %s", user.Role)
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = time.Now()

	return nil
}
