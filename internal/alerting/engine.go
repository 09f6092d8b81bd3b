// Package alerting implements the alert lifecycle engine.
//
// The engine is the authoritative state machine for alerts:
//
//	open (initial) → acknowledged → resolved
//
// It owns alert creation with deduplication, the acknowledgment and
// resolution transitions, and the aggregate counts that feed the
// dashboard summary. "Active" has exactly one meaning here: an alert
// whose acknowledged flag is false.
package alerting

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"vigil/internal/metrics"
	"vigil/internal/storage"
)

// ErrNotFound is returned when a transition references an unknown alert.
var ErrNotFound = errors.New("alert not found")

// Engine manages alert state against an injected storage handle.
type Engine struct {
	storage *storage.Storage
}

// NewEngine creates a new alert lifecycle engine.
func NewEngine(st *storage.Storage) *Engine {
	return &Engine{storage: st}
}

// RaiseInput describes a condition to raise an alert for.
type RaiseInput struct {
	Severity    string
	Source      string
	Message     string
	Details     string
	ServerID    *int64
	ContainerID *int64
}

// Raise creates an alert for the given condition, deduplicating against
// open state.
//
// Deduplication contract: when an open, unacknowledged alert already
// exists for the same (server, container, source, severity) tuple, that
// row's message, details, and updated_at are refreshed instead of
// inserting a new row. This bounds alert volume under sustained
// failure. A nil server or container reference matches only rows where
// that reference is also nil, so alerts scoped to different resources
// never merge.
//
// Raise executes against the supplied tx so callers can pair it with
// related writes (the health sampler pairs it with the status flip in
// one transaction). It returns the alert and whether a new row was
// created.
func (e *Engine) Raise(tx *gorm.DB, input RaiseInput) (*storage.Alert, bool, error) {
	if !storage.IsValidSeverity(input.Severity) {
		return nil, false, fmt.Errorf("unknown alert severity: %s", input.Severity)
	}

	// Look for an open, unacknowledged alert with the same dedup key.
	query := tx.Where("source = ? AND severity = ? AND acknowledged = ? AND resolved = ?",
		input.Source, input.Severity, false, false)
	if input.ServerID != nil {
		query = query.Where("server_id = ?", *input.ServerID)
	} else {
		query = query.Where("server_id IS NULL")
	}
	if input.ContainerID != nil {
		query = query.Where("container_id = ?", *input.ContainerID)
	} else {
		query = query.Where("container_id IS NULL")
	}

	var existing storage.Alert
	err := query.Order("id DESC").First(&existing).Error
	switch {
	case err == nil:
		// Refresh the open alert in place.
		updates := map[string]interface{}{
			"message":    input.Message,
			"details":    input.Details,
			"updated_at": time.Now(),
		}
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			return nil, false, fmt.Errorf("failed to refresh open alert: %w", err)
		}
		log.Debug().Int64("alert_id", existing.ID).Str("source", input.Source).Msg("Refreshed open alert")
		return &existing, false, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		alert := &storage.Alert{
			UUID:        uuid.NewString(),
			Severity:    input.Severity,
			Source:      input.Source,
			Message:     input.Message,
			Details:     input.Details,
			ServerID:    input.ServerID,
			ContainerID: input.ContainerID,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		if err := storage.ValidateAlert(alert); err != nil {
			return nil, false, err
		}
		if err := tx.Create(alert).Error; err != nil {
			return nil, false, fmt.Errorf("failed to create alert: %w", err)
		}
		log.Info().
			Int64("alert_id", alert.ID).
			Str("severity", alert.Severity).
			Str("source", alert.Source).
			Msg("Alert created")
		return alert, true, nil

	default:
		return nil, false, fmt.Errorf("failed to query open alerts: %w", err)
	}
}

// Acknowledge transitions an alert to the acknowledged state.
//
// The transition is idempotent: acknowledging an already-acknowledged
// alert is a no-op success. Unknown ids yield ErrNotFound.
func (e *Engine) Acknowledge(id int64, actorID int64) error {
	return e.storage.DB().Transaction(func(tx *gorm.DB) error {
		var alert storage.Alert
		if err := tx.First(&alert, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load alert: %w", err)
		}

		if alert.Acknowledged {
			return nil
		}

		now := time.Now()
		updates := map[string]interface{}{
			"acknowledged":    true,
			"acknowledged_by": actorID,
			"acknowledged_at": now,
			"updated_at":      now,
		}
		if err := tx.Model(&alert).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to acknowledge alert: %w", err)
		}

		log.Info().Int64("alert_id", id).Int64("actor_id", actorID).Msg("Alert acknowledged")
		return nil
	})
}

// Resolve transitions an alert to the resolved state.
//
// Resolution is allowed from both open and acknowledged; for aggregate
// purposes resolution implies acknowledgment, so an unacknowledged
// alert gains the acknowledgment fields in the same update. Resolving
// an already-resolved alert is a no-op success.
func (e *Engine) Resolve(id int64, actorID int64) error {
	return e.storage.DB().Transaction(func(tx *gorm.DB) error {
		var alert storage.Alert
		if err := tx.First(&alert, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load alert: %w", err)
		}

		if alert.Resolved {
			return nil
		}

		now := time.Now()
		updates := map[string]interface{}{
			"resolved":    true,
			"resolved_by": actorID,
			"resolved_at": now,
			"updated_at":  now,
		}
		if !alert.Acknowledged {
			updates["acknowledged"] = true
			updates["acknowledged_by"] = actorID
			updates["acknowledged_at"] = now
		}
		if err := tx.Model(&alert).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to resolve alert: %w", err)
		}

		log.Info().Int64("alert_id", id).Int64("actor_id", actorID).Msg("Alert resolved")
		return nil
	})
}

// ActiveCounts returns the number of active alerts per severity.
//
// An alert is active while acknowledged is false; every severity is
// present in the result, zero-valued when no alerts exist for it.
func (e *Engine) ActiveCounts() (map[string]int64, error) {
	type row struct {
		Severity string
		Count    int64
	}

	var rows []row
	if err := e.storage.DB().
		Model(&storage.Alert{}).
		Select("severity, COUNT(*) AS count").
		Where("acknowledged = ?", false).
		Group("severity").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count active alerts: %w", err)
	}

	counts := map[string]int64{
		storage.SeverityCritical: 0,
		storage.SeverityWarning:  0,
		storage.SeverityInfo:     0,
	}
	for _, r := range rows {
		counts[r.Severity] = r.Count
	}

	metrics.SetActiveAlerts(counts)
	return counts, nil
}

// ListOpen returns open alerts, newest first.
//
// severity filters to a single severity when non-empty; limit caps the
// result size (default 50, max 500).
func (e *Engine) ListOpen(severity string, limit int) ([]storage.Alert, error) {
	if severity != "" && !storage.IsValidSeverity(severity) {
		return nil, fmt.Errorf("unknown alert severity: %s", severity)
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	query := e.storage.DB().
		Where("acknowledged = ?", false).
		Order("created_at DESC").
		Limit(limit)
	if severity != "" {
		query = query.Where("severity = ?", severity)
	}

	var alerts []storage.Alert
	if err := query.Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list open alerts: %w", err)
	}
	return alerts, nil
}

// Get returns the alert with the given id, or ErrNotFound.
func (e *Engine) Get(id int64) (*storage.Alert, error) {
	var alert storage.Alert
	if err := e.storage.DB().First(&alert, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load alert: %w", err)
	}
	return &alert, nil
}
