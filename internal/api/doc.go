// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

// Package api provides the HTTP surface: Chi routing, the standardized
// response envelope, request validation, and the handlers for auth,
// history recording and recommendation aggregation.
package api
