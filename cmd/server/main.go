// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"slices"
	"syscall"
	"time"

	"github.com/tomtom215/salesboard/internal/analytics"
	"github.com/tomtom215/salesboard/internal/api"
	"github.com/tomtom215/salesboard/internal/cache"
	"github.com/tomtom215/salesboard/internal/config"
	"github.com/tomtom215/salesboard/internal/dataset"
	"github.com/tomtom215/salesboard/internal/logging"
	"github.com/tomtom215/salesboard/internal/metrics"
	"github.com/tomtom215/salesboard/internal/supervisor"
	"github.com/tomtom215/salesboard/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().
		Str("version", version).
		Str("dataset", cfg.Dataset.Path).
		Str("engine", cfg.Analytics.Engine).
		Bool("cache", cfg.Cache.Enabled).
		Msg("Starting Salesboard")

	if cfg.IsProduction() && slices.Contains(cfg.Security.CORSOrigins, "*") {
		logging.Warn().Msg("CORS allows any origin in production; set CORS_ORIGINS")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	engine, err := analytics.NewEngine(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize analytics engine")
	}

	store, err := cache.NewStore(ctx, &cfg.Cache)
	if err != nil {
		// The service works without a response cache.
		logging.Warn().Err(err).Str("backend", cfg.Cache.Backend).Msg("Response cache unavailable, continuing without it")
		store = nil
	}

	svc := analytics.NewService(&cfg.Dataset, dataset.NewLoader(), engine, store)
	defer func() {
		if err := svc.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing analytics service")
		}
	}()

	if ds, err := svc.Dataset(ctx); err != nil {
		logging.Warn().Err(err).Msg("Initial dataset load failed, serving 503 until the source is fixed")
	} else {
		logging.Info().
			Int("records", len(ds.Records)).
			Str("fingerprint", ds.Fingerprint).
			Msg("Initial dataset loaded")
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if cfg.Dataset.WatchEnabled {
		watcher, err := services.NewDatasetWatcherService(svc, cfg.Dataset.WatchSchedule)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create dataset watcher")
		}
		tree.AddDataService(watcher)
		logging.Info().Str("schedule", cfg.Dataset.WatchSchedule).Msg("Dataset watcher added to supervisor tree")
	}

	router := api.NewRouter(api.NewHandler(svc, cfg, version), cfg)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, s := range unstopped {
		logging.Warn().Str("service", s.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}
