// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

// Package main is the entry point for the MediaMatrix server application.
//
// MediaMatrix aggregates personal media recommendations across five content
// categories (anime, health, movies, music, products). It records each
// user's search and interaction history in a per-category event log, derives
// the latest-search signal per category, and fans that signal out to public
// catalog APIs (TMDB, Jikan, Spotify or iTunes) to produce recommendation
// strips that update live over WebSocket.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Event log store: Open BadgerDB with the in-process change feed
//  3. Providers: Build per-category catalog adapters behind circuit breakers
//  4. Aggregator: Wire the latest-search resolver to the provider adapters
//  5. Identity: JWT account service sharing the Badger database
//  6. WebSocket hub: Live recommendation pushes to connected clients
//  7. HTTP server: REST API under /api/v1 plus /metrics
//
// All long-running components run under a suture supervisor tree with
// data, messaging, and API layers for failure isolation.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (MEDIAMATRIX_ prefix)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// Required settings:
//   - MEDIAMATRIX_SECURITY_JWT_SECRET: 32+ character secret for token signing
//   - MEDIAMATRIX_TMDB_API_KEY: TMDB API key for the movie category
//   - MEDIAMATRIX_MUSIC_SPOTIFY_CLIENT_ID / _CLIENT_SECRET when
//     music.provider is "spotify" (the default); set
//     MEDIAMATRIX_MUSIC_PROVIDER=itunes to run without music credentials
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Disconnects WebSocket clients
//   - Waits for in-flight requests to complete (10s timeout)
//   - Closes the event log store
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/mediamatrix/internal/aggregator"
	"github.com/tomtom215/mediamatrix/internal/api"
	"github.com/tomtom215/mediamatrix/internal/config"
	"github.com/tomtom215/mediamatrix/internal/identity"
	"github.com/tomtom215/mediamatrix/internal/logging"
	"github.com/tomtom215/mediamatrix/internal/providers"
	"github.com/tomtom215/mediamatrix/internal/recorder"
	internalsignal "github.com/tomtom215/mediamatrix/internal/signal"
	"github.com/tomtom215/mediamatrix/internal/store"
	"github.com/tomtom215/mediamatrix/internal/supervisor"
	"github.com/tomtom215/mediamatrix/internal/supervisor/services"
	ws "github.com/tomtom215/mediamatrix/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting MediaMatrix with supervisor tree")
	logging.Info().
		Str("store_path", cfg.Store.Path).
		Str("music_provider", cfg.Music.Provider).
		Bool("trending_fallback", cfg.Aggregator.TrendingFallback).
		Msg("Configuration loaded")

	// Open the event log store
	eventStore, err := store.Open(store.Config{
		Path:       cfg.Store.Path,
		SyncWrites: cfg.Store.SyncWrites,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open event log store")
	}
	defer func() {
		if err := eventStore.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event log store")
		}
	}()
	logging.Info().Msg("Event log store opened")

	// Build per-category catalog adapters behind circuit breakers
	adapters := providers.Build(cfg)
	logging.Info().Int("adapters", len(adapters)).Msg("Provider adapters built")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create structured logger for supervisor using our slog adapter.
	// This bridges zerolog to slog for sutureslog compatibility.
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Core pipeline wiring
	resolver := internalsignal.NewResolver(eventStore)
	agg := aggregator.New(resolver, adapters, cfg.Aggregator)
	rec := recorder.New(eventStore)
	ident := identity.New(eventStore.DB(), eventStore, &cfg.Security)
	wsHub := ws.NewHub(agg)

	router := api.NewRouter(cfg, eventStore, rec, agg, ident, wsHub)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Data layer services
	tree.AddDataService(services.NewStoreGCService(eventStore.DB(), 5*time.Minute))

	// Messaging layer services
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
