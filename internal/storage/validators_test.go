package storage

import (
	"strings"
	"testing"
	"time"
)

func TestValidateServer(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		server  Server
		wantErr bool
	}{
		{
			name:   "valid server",
			server: Server{Hostname: "web-01", Address: "10.0.0.1:22", Status: ServerStatusOnline},
		},
		{
			name:   "empty status defaults to online",
			server: Server{Hostname: "web-01", Address: "10.0.0.1:22"},
		},
		{
			name:    "missing hostname",
			server:  Server{Address: "10.0.0.1:22"},
			wantErr: true,
		},
		{
			name:    "hostname too long",
			server:  Server{Hostname: strings.Repeat("a", 256), Address: "10.0.0.1:22"},
			wantErr: true,
		},
		{
			name:    "missing address",
			server:  Server{Hostname: "web-01"},
			wantErr: true,
		},
		{
			name:    "address without port",
			server:  Server{Hostname: "web-01", Address: "10.0.0.1"},
			wantErr: true,
		},
		{
			name:    "unknown status",
			server:  Server{Hostname: "web-01", Address: "10.0.0.1:22", Status: "rebooting"},
			wantErr: true,
		},
		{
			name:    "negative cpu cores",
			server:  Server{Hostname: "web-01", Address: "10.0.0.1:22", CPUCores: -1},
			wantErr: true,
		},
		{
			name:    "negative memory",
			server:  Server{Hostname: "web-01", Address: "10.0.0.1:22", MemoryMB: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateServer(&tt.server)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateServer() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil {
				return
			}
			if tt.server.Status == "" {
				t.Error("ValidateServer() did not default the status")
			}
			if tt.server.UpdatedAt.Before(now) {
				t.Error("ValidateServer() did not refresh updated_at")
			}
		})
	}
}

func TestValidateMetricSample(t *testing.T) {
	tests := []struct {
		name    string
		sample  MetricSample
		wantErr bool
	}{
		{
			name:   "valid sample",
			sample: MetricSample{ServerID: 1, CPUUsagePercent: 55.5, MemoryUsagePercent: 80, DiskUsagePercent: 12},
		},
		{
			name:   "boundary percentages",
			sample: MetricSample{ServerID: 1, CPUUsagePercent: 0, MemoryUsagePercent: 100, DiskUsagePercent: 100},
		},
		{
			name:    "missing server reference",
			sample:  MetricSample{CPUUsagePercent: 10},
			wantErr: true,
		},
		{
			name:    "cpu above 100",
			sample:  MetricSample{ServerID: 1, CPUUsagePercent: 100.1},
			wantErr: true,
		},
		{
			name:    "negative memory percent",
			sample:  MetricSample{ServerID: 1, MemoryUsagePercent: -0.5},
			wantErr: true,
		},
		{
			name:    "negative network counter",
			sample:  MetricSample{ServerID: 1, NetworkRxBytes: -1},
			wantErr: true,
		},
		{
			name:    "negative load average",
			sample:  MetricSample{ServerID: 1, Load5: -0.1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMetricSample(&tt.sample)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMetricSample() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err == nil && tt.sample.CollectedAt.IsZero() {
				t.Error("ValidateMetricSample() did not default collected_at")
			}
		})
	}
}

func TestValidateAlert(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		alert   Alert
		wantErr bool
	}{
		{
			name:  "valid open alert",
			alert: Alert{Severity: SeverityCritical, Source: "health-sampler", Message: "unreachable"},
		},
		{
			name: "valid acknowledged alert",
			alert: Alert{
				Severity: SeverityWarning, Source: "s", Message: "m",
				Acknowledged: true, AcknowledgedAt: &now,
			},
		},
		{
			name: "valid resolved alert",
			alert: Alert{
				Severity: SeverityInfo, Source: "s", Message: "m",
				Acknowledged: true, AcknowledgedAt: &now,
				Resolved: true, ResolvedAt: &now,
			},
		},
		{
			name:    "unknown severity",
			alert:   Alert{Severity: "fatal", Source: "s", Message: "m"},
			wantErr: true,
		},
		{
			name:    "missing source",
			alert:   Alert{Severity: SeverityInfo, Message: "m"},
			wantErr: true,
		},
		{
			name:    "missing message",
			alert:   Alert{Severity: SeverityInfo, Source: "s"},
			wantErr: true,
		},
		{
			name:    "message too long",
			alert:   Alert{Severity: SeverityInfo, Source: "s", Message: strings.Repeat("x", 1001)},
			wantErr: true,
		},
		{
			name:    "acknowledged flag without timestamp",
			alert:   Alert{Severity: SeverityInfo, Source: "s", Message: "m", Acknowledged: true},
			wantErr: true,
		},
		{
			name:    "timestamp without acknowledged flag",
			alert:   Alert{Severity: SeverityInfo, Source: "s", Message: "m", AcknowledgedAt: &now},
			wantErr: true,
		},
		{
			name: "resolved without acknowledgment",
			alert: Alert{
				Severity: SeverityInfo, Source: "s", Message: "m",
				Resolved: true, ResolvedAt: &now,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAlert(&tt.alert)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAlert() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateUser(t *testing.T) {
	tests := []struct {
		name    string
		user    User
		wantErr bool
	}{
		{
			name: "valid user",
			user: User{Username: "alice", PasswordHash: "$2a$10$hash", Role: RoleViewer},
		},
		{
			name:    "missing username",
			user:    User{PasswordHash: "$2a$10$hash", Role: RoleViewer},
			wantErr: true,
		},
		{
			name:    "missing password hash",
			user:    User{Username: "alice", Role: RoleViewer},
			wantErr: true,
		},
		{
			name:    "unknown role",
			user:    User{Username: "alice", PasswordHash: "$2a$10$hash", Role: "superuser"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUser(&tt.user)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUser() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     string
		required string
		want     bool
	}{
		{RoleAdmin, RoleViewer, true},
		{RoleAdmin, RoleAdmin, true},
		{RoleOperator, RoleViewer, true},
		{RoleOperator, RoleOperator, true},
		{RoleOperator, RoleAdmin, false},
		{RoleViewer, RoleOperator, false},
		{"", RoleViewer, false},
		{"superuser", RoleViewer, false},
	}

	for _, tt := range tests {
		if got := RoleAtLeast(tt.role, tt.required); got != tt.want {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.required, got, tt.want)
		}
	}
}
