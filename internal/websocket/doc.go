// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

// Package websocket streams live recommendation updates to connected
// clients.
//
// Each connection belongs to one authenticated owner. On connect, the hub
// pushes a full refresh-all pass, then re-pushes a category's Result
// whenever that category's latest-search signal changes. A slow client has
// stale frames dropped rather than blocking the watch pipeline.
package websocket
