// Package summary computes the cached dashboard summary.
//
// The summary is derived state: counts of servers and containers,
// per-severity active alert counts, and trailing resource averages,
// all recomputable from the store at any time. A short-TTL in-process
// cache memoizes it; the cache is advisory only and is invalidated by
// expiry, never explicitly on write. Two callers recomputing
// concurrently is a harmless race (at-least-once recomputation).
package summary

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"vigil/internal/alerting"
	"vigil/internal/storage"
)

const cacheKey = "dashboard_summary"

// trailingWindow bounds the metric samples that feed resource averages.
const trailingWindow = 15 * time.Minute

// Summary is the aggregated dashboard view.
type Summary struct {
	ServerCount    int64            `json:"server_count"`
	ServersByState map[string]int64 `json:"servers_by_status"`
	ContainerCount int64            `json:"container_count"`
	AlertCounts    map[string]int64 `json:"active_alerts_by_severity"`
	AvgCPUPercent  float64          `json:"avg_cpu_percent"`
	AvgMemPercent  float64          `json:"avg_memory_percent"`
	AvgDiskPercent float64          `json:"avg_disk_percent"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

// Service serves dashboard summaries with a TTL cache in front of the
// store.
type Service struct {
	storage *storage.Storage
	alerts  *alerting.Engine
	cache   *gocache.Cache
	ttl     time.Duration
}

// NewService creates a summary service with the given cache TTL.
func NewService(st *storage.Storage, alerts *alerting.Engine, ttl time.Duration) *Service {
	return &Service{
		storage: st,
		alerts:  alerts,
		cache:   gocache.New(ttl, 2*ttl),
		ttl:     ttl,
	}
}

// GetSummary returns the cached summary when present and unexpired,
// otherwise recomputes from the store and refreshes the cache.
func (s *Service) GetSummary() (*Summary, error) {
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(*Summary), nil
	}

	fresh, err := s.compute()
	if err != nil {
		return nil, err
	}

	s.cache.Set(cacheKey, fresh, gocache.DefaultExpiration)
	return fresh, nil
}

// Invalidate drops the cached summary. Only used by tests; production
// code relies on TTL expiry alone.
func (s *Service) Invalidate() {
	s.cache.Delete(cacheKey)
}

// compute builds a fresh summary from store state.
func (s *Service) compute() (*Summary, error) {
	db := s.storage.DB()
	out := &Summary{
		ServersByState: make(map[string]int64),
		GeneratedAt:    time.Now(),
	}

	if err := db.Model(&storage.Server{}).Count(&out.ServerCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count servers: %w", err)
	}

	type statusRow struct {
		Status string
		Count  int64
	}
	var statuses []statusRow
	if err := db.Model(&storage.Server{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&statuses).Error; err != nil {
		return nil, fmt.Errorf("failed to group servers by status: %w", err)
	}
	for _, r := range statuses {
		out.ServersByState[r.Status] = r.Count
	}

	if err := db.Model(&storage.Container{}).Count(&out.ContainerCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count containers: %w", err)
	}

	counts, err := s.alerts.ActiveCounts()
	if err != nil {
		return nil, err
	}
	out.AlertCounts = counts

	type avgRow struct {
		CPU  *float64
		Mem  *float64
		Disk *float64
	}
	var avg avgRow
	since := time.Now().Add(-trailingWindow)
	if err := db.Model(&storage.MetricSample{}).
		Select("AVG(cpu_usage_percent) AS cpu, AVG(memory_usage_percent) AS mem, AVG(disk_usage_percent) AS disk").
		Where("collected_at >= ?", since).
		Scan(&avg).Error; err != nil {
		return nil, fmt.Errorf("failed to average metric samples: %w", err)
	}
	if avg.CPU != nil {
		out.AvgCPUPercent = *avg.CPU
	}
	if avg.Mem != nil {
		out.AvgMemPercent = *avg.Mem
	}
	if avg.Disk != nil {
		out.AvgDiskPercent = *avg.Disk
	}

	return out, nil
}
