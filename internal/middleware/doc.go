// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

// Package middleware provides HTTP middleware shared by the API router:
// request ID propagation and Prometheus request instrumentation. Middleware
// uses the func(http.HandlerFunc) http.HandlerFunc shape; the router adapts
// it to Chi with a small bridge.
package middleware
