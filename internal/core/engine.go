// Package core provides the health sampling engine for Vigil.
//
// The engine owns the single periodic job in the system: the sampling
// pass that probes every monitored server, flips server status on
// transitions, and raises alerts through the alert lifecycle engine.
package core

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"vigil/internal/alerting"
	"vigil/internal/config"
	"vigil/internal/metrics"
	"vigil/internal/probe"
	"vigil/internal/storage"
)

// Engine drives the periodic health sampling pass.
//
// All collaborators are injected at construction; the engine holds no
// process-wide state. Start spawns the ticker loop, Stop cancels it and
// waits for the in-flight pass to finish.
type Engine struct {
	cfg     config.SamplerConfig
	storage *storage.Storage
	alerts  *alerting.Engine
	prober  probe.Prober

	running bool
	mu      sync.RWMutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewEngine creates a new sampling engine.
//
// Parameters:
//   - cfg: Sampler configuration (interval, probe timeout, jitter)
//   - storage: Storage instance for data persistence
//   - alerts: Alert lifecycle engine used to raise failure alerts
//   - prober: Reachability prober for server health checks
func NewEngine(cfg config.SamplerConfig, st *storage.Storage, alerts *alerting.Engine, prober probe.Prober) *Engine {
	return &Engine{
		cfg:     cfg,
		storage: st,
		alerts:  alerts,
		prober:  prober,
	}
}

// Start starts the sampling loop.
//
// The first pass runs immediately; subsequent passes run every
// configured interval, each delayed by a random jitter fraction so
// restarts of multiple instances do not synchronize their store load.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return fmt.Errorf("engine is already running")
	}

	engineCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	e.wg.Add(1)
	go e.run(engineCtx)

	e.running = true
	log.Info().
		Dur("interval", e.cfg.Interval).
		Dur("probe_timeout", e.cfg.ProbeTimeout).
		Msg("Sampling engine started")

	return nil
}

// IsRunning returns whether the engine is currently running.
func (e *Engine) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// Stop stops the sampling loop and waits for the current pass to finish.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}

	log.Info().Msg("Stopping sampling engine")

	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()

	e.running = false
	log.Info().Msg("Sampling engine stopped")
}

// run executes sampling passes until the context is cancelled.
func (e *Engine) run(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	e.executePass(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !e.sleepJitter(ctx) {
				return
			}
			e.executePass(ctx)
		}
	}
}

// sleepJitter delays the pass by a random fraction of the interval.
// It returns false when the context was cancelled during the delay.
func (e *Engine) sleepJitter(ctx context.Context) bool {
	if e.cfg.JitterFraction <= 0 {
		return true
	}

	jitter := time.Duration(rand.Float64() * e.cfg.JitterFraction * float64(e.cfg.Interval))
	select {
	case <-ctx.Done():
		return false
	case <-time.After(jitter):
		return true
	}
}

// executePass runs one sampling pass and records its outcome.
//
// A failed pass (store unreachable) is logged once and simply
// re-attempted at the next tick; there is no backoff beyond the fixed
// interval.
func (e *Engine) executePass(ctx context.Context) {
	start := time.Now()
	if err := e.SamplePass(ctx); err != nil {
		metrics.IncSamplingPass(false)
		log.Error().Err(err).Msg("Sampling pass failed")
		return
	}
	metrics.IncSamplingPass(true)
	log.Debug().Dur("elapsed", time.Since(start)).Msg("Sampling pass completed")
}
