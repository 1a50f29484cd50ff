// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/mediamatrix/internal/aggregator"
	"github.com/tomtom215/mediamatrix/internal/config"
	"github.com/tomtom215/mediamatrix/internal/identity"
	"github.com/tomtom215/mediamatrix/internal/middleware"
	"github.com/tomtom215/mediamatrix/internal/recorder"
	"github.com/tomtom215/mediamatrix/internal/store"
	"github.com/tomtom215/mediamatrix/internal/websocket"
)

// Router wires the HTTP handlers to their dependencies.
type Router struct {
	cfg        *config.Config
	store      store.EventStore
	recorder   *recorder.Recorder
	aggregator *aggregator.Aggregator
	identity   *identity.Service
	hub        *websocket.Hub
}

// NewRouter creates the API router.
func NewRouter(
	cfg *config.Config,
	eventStore store.EventStore,
	rec *recorder.Recorder,
	agg *aggregator.Aggregator,
	ident *identity.Service,
	hub *websocket.Hub,
) *Router {
	return &Router{
		cfg:        cfg,
		store:      eventStore,
		recorder:   rec,
		aggregator: agg,
		identity:   ident,
		hub:        hub,
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler shape.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   router.cfg.Security.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	rateLimit := httprate.LimitByIP(
		router.cfg.Security.RateLimitReqs,
		router.cfg.Security.RateLimitWindow,
	)
	// Stricter window for credential endpoints.
	rateLimitAuth := httprate.LimitByIP(10, 5*time.Minute)

	// Health endpoints: permissive limiting for monitoring probes.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, time.Minute))
		r.Get("/", router.Health)
		r.Get("/live", router.HealthLive)
		r.Get("/ready", router.HealthReady)
	})

	// Authentication endpoints: strict limiting against brute force.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(rateLimitAuth)
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Post("/register", router.Register)
		r.Post("/login", router.Login)
	})

	// Data endpoints: all require authentication.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit)
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(router.Authenticate)

		r.Post("/history/{category}", router.RecordHistory)
		r.Get("/history/{category}", router.GetHistory)
		r.Get("/recommendations", router.Recommendations)
		r.Get("/recommendations/{category}", router.RecommendationsCategory)
	})

	// WebSocket: authenticated, but outside the metrics wrapper because the
	// hijacked connection never writes a status code.
	r.Group(func(r chi.Router) {
		r.Use(rateLimit)
		r.Use(router.Authenticate)
		r.Get("/api/v1/ws", router.WebSocket)
	})

	// Observability.
	r.Handle("/metrics", promhttp.Handler())

	return r
}
