package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"vigil/internal/alerting"
	"vigil/internal/metrics"
	"vigil/internal/storage"
)

// AlertSource identifies the sampler as an alert producer.
const AlertSource = "health-sampler"

// SamplePass performs one full iteration over all monitored servers.
//
// For each server not under maintenance it probes reachability, records
// the outcome to last_checked unconditionally, and applies status
// transitions:
//   - previously non-offline, now unhealthy → offline plus a critical
//     alert, applied together in a single transaction
//   - previously offline, now healthy → online; recovery produces no
//     alert
//
// Failures of individual servers are isolated: a probe or store error
// for one server never aborts the pass for the remaining servers. An
// error is returned only when the server list itself cannot be loaded.
func (e *Engine) SamplePass(ctx context.Context) error {
	var servers []storage.Server
	if err := e.storage.DB().
		Where("status <> ?", storage.ServerStatusMaintenance).
		Order("id").
		Find(&servers).Error; err != nil {
		return fmt.Errorf("failed to load servers: %w", err)
	}

	for i := range servers {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := e.sampleServer(ctx, &servers[i]); err != nil {
			log.Error().
				Err(err).
				Int64("server_id", servers[i].ID).
				Str("hostname", servers[i].Hostname).
				Msg("Failed to record sample for server")
		}
	}

	// Refresh the active-alerts gauge after the pass; count errors are
	// advisory here.
	if _, err := e.alerts.ActiveCounts(); err != nil {
		log.Warn().Err(err).Msg("Failed to refresh active alert counts")
	}

	return nil
}

// sampleServer probes one server and persists the outcome.
//
// The status update and its paired alert creation are applied as a
// single transactional unit so a failed alert insert never leaves the
// status flip half-visible.
func (e *Engine) sampleServer(ctx context.Context, server *storage.Server) error {
	probeCtx, cancel := context.WithTimeout(ctx, e.cfg.ProbeTimeout)
	probeErr := e.prober.Probe(probeCtx, server.Address)
	cancel()

	healthy := probeErr == nil
	now := time.Now()

	if !healthy {
		metrics.IncProbeFailure()
		log.Debug().
			Str("hostname", server.Hostname).
			Str("address", server.Address).
			Err(probeErr).
			Msg("Probe reported unhealthy")
	}

	return e.storage.DB().Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"last_checked_at": now,
			"updated_at":      now,
		}

		switch {
		case !healthy && server.Status != storage.ServerStatusOffline:
			updates["status"] = storage.ServerStatusOffline

			details, _ := json.Marshal(map[string]string{
				"hostname": server.Hostname,
				"address":  server.Address,
				"error":    probeErr.Error(),
			})
			serverID := server.ID
			if _, _, err := e.alerts.Raise(tx, alerting.RaiseInput{
				Severity: storage.SeverityCritical,
				Source:   AlertSource,
				Message:  fmt.Sprintf("Server %s is unreachable", server.Hostname),
				Details:  string(details),
				ServerID: &serverID,
			}); err != nil {
				return err
			}

			log.Warn().
				Str("hostname", server.Hostname).
				Str("address", server.Address).
				Msg("Server transitioned to offline")

		case healthy && server.Status == storage.ServerStatusOffline:
			// Recovery flips the status back; notification is left to
			// the external monitoring stack.
			updates["status"] = storage.ServerStatusOnline
			log.Info().
				Str("hostname", server.Hostname).
				Msg("Server recovered, back online")
		}

		if err := tx.Model(&storage.Server{}).
			Where("id = ?", server.ID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update server status: %w", err)
		}

		// Keep the in-memory copy coherent for the caller.
		if s, ok := updates["status"]; ok {
			server.Status = s.(string)
		}
		server.LastCheckedAt = &now
		return nil
	})
}
