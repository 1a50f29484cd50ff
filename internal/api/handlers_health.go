// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/mediamatrix/internal/models"
	"github.com/tomtom215/mediamatrix/internal/store"
)

// healthCheckOwner is a reserved probe key; no real account can own it
// because registration requires an email shape.
const healthCheckOwner = "healthcheck"

// HealthLive handles GET /api/v1/health/live. Liveness means the process
// is serving requests; it never inspects dependencies.
func (router *Router) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady handles GET /api/v1/health/ready. Readiness requires the
// event log store to answer a read.
func (router *Router) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if err := router.storeHealthy(r); err != nil {
		rw.ServiceUnavailable("event log store unavailable")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}

// Health handles GET /api/v1/health with a component breakdown.
func (router *Router) Health(w http.ResponseWriter, r *http.Request) {
	storeStatus := "up"
	status := "healthy"
	if err := router.storeHealthy(r); err != nil {
		storeStatus = "down"
		status = "degraded"
	}

	NewResponseWriter(w, r).Success(map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"components": map[string]string{
			"store": storeStatus,
		},
	})
}

// storeHealthy probes the store with a read against a reserved owner key.
// ErrNotFound is a healthy answer; only transport-level failures count.
func (router *Router) storeHealthy(r *http.Request) error {
	_, err := router.store.Read(r.Context(), models.CategoryMovie, healthCheckOwner)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}
