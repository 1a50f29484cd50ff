// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

// Package metrics defines the Prometheus collectors for the recommendation
// pipeline: store throughput, provider request outcomes, circuit breaker
// state, aggregation latency and WebSocket connections.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Event log store

	StoreAppends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediamatrix_store_appends_total",
			Help: "Total number of events appended to category logs",
		},
		[]string{"category"},
	)

	StoreSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediamatrix_store_subscriptions",
			Help: "Current number of active change-feed subscriptions",
		},
	)

	RecorderDrops = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediamatrix_recorder_drops_total",
			Help: "History writes dropped by the recorder",
		},
		[]string{"reason"}, // "invalid_subject", "store_error"
	)

	// Provider adapters

	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediamatrix_provider_requests_total",
			Help: "Provider API requests by provider, operation and outcome",
		},
		[]string{"provider", "operation", "outcome"}, // outcome: "ok", "error"
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediamatrix_provider_request_duration_seconds",
			Help:    "Provider API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "operation"},
	)

	TokenExchanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediamatrix_token_exchanges_total",
			Help: "OAuth client-credentials token exchanges by outcome",
		},
		[]string{"provider", "outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mediamatrix_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"provider"},
	)

	// Aggregator

	AggregationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediamatrix_aggregation_runs_total",
			Help: "Aggregation passes by trigger",
		},
		[]string{"trigger"}, // "refresh", "watch"
	)

	AggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mediamatrix_aggregation_duration_seconds",
			Help:    "Duration of full refresh-all aggregation passes",
			Buckets: prometheus.DefBuckets,
		},
	)

	// HTTP / WebSocket

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediamatrix_http_requests_total",
			Help: "HTTP requests by method, route and status class",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediamatrix_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediamatrix_websocket_clients",
			Help: "Currently connected WebSocket clients",
		},
	)
)

// RecordProviderRequest records one provider call's outcome and latency.
func RecordProviderRequest(provider, operation string, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ProviderRequests.WithLabelValues(provider, operation, outcome).Inc()
	ProviderRequestDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}
