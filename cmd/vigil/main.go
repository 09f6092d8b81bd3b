// Package main provides the entry point for the Vigil monitoring
// dashboard.
//
// Vigil is a lightweight infrastructure-monitoring backend: it keeps an
// inventory of servers and containers, probes server health on a fixed
// interval, maintains deduplicated alert state, and serves an
// aggregated dashboard over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vigil/internal/alerting"
	"vigil/internal/api"
	"vigil/internal/auditlog"
	"vigil/internal/config"
	"vigil/internal/core"
	"vigil/internal/probe"
	"vigil/internal/storage"
	"vigil/internal/summary"
)

// Version information set during build time
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// main wires the process together.
//
// The startup sequence is as follows:
//  1. Load configuration
//  2. Initialize logger
//  3. Open storage and seed the default admin account
//  4. Start the sampling engine
//  5. Start the HTTP API server
//  6. Wait for a shutdown signal and stop components in reverse order
func main() {
	cfg := loadConfig()
	setupLogger(cfg.Log)

	log.Info().
		Str("version", Version).
		Str("commit", GitCommit).
		Str("build_time", BuildTime).
		Msg("Starting Vigil")

	// Storage first; every other component depends on it.
	st, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer st.Close()

	// First-run bootstrap: create an admin account when none exists.
	if username, password, err := st.EnsureDefaultAdmin(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure default admin account")
	} else if username != "" {
		log.Info().
			Str("username", username).
			Str("password", password).
			Msg("Default admin account created; change the password after first login")
	}

	audit := auditlog.NewRecorder(st)
	alerts := alerting.NewEngine(st)
	prober := probe.NewTCPProber(cfg.Sampler.ProbeTimeout)
	engine := core.NewEngine(cfg.Sampler, st, alerts, prober)
	summaries := summary.NewService(st, alerts, cfg.Cache.SummaryTTL)

	// Root context cancelled by SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := engine.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start sampling engine")
	}

	server := api.NewServer(cfg.Server, api.Deps{
		Engine:    engine,
		Storage:   st,
		Alerts:    alerts,
		Summaries: summaries,
		Audit:     audit,
	})

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	audit.Event("system.start", "vigil started")

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Error().Err(err).Msg("HTTP server error")
		}
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received, starting graceful shutdown")
	}

	// Stop accepting requests first, then stop the sampler.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	engine.Stop()

	log.Info().Msg("Server stopped gracefully")
}

// loadConfig loads application configuration and terminates the program
// immediately if configuration cannot be loaded.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().
			Err(err).
			Msg("Failed to load configuration")
	}
	return cfg
}

// setupLogger configures the global zerolog logger.
func setupLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
