// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package services

import (
	"context"
)

// Hub interface matches *websocket.Hub's shutdown surface.
//
// This interface allows the WebSocketHubService to work with the hub
// without importing the websocket package, avoiding circular dependencies.
type Hub interface {
	Shutdown()
}

// WebSocketHubService keeps the WebSocket hub under supervision.
//
// The hub itself is reactive (clients connect through the HTTP layer), so
// this service only has to hold the hub open until shutdown, then
// disconnect every client before the HTTP server's listener goes away.
type WebSocketHubService struct {
	hub  Hub
	name string
}

// NewWebSocketHubService creates a new WebSocket hub service wrapper.
func NewWebSocketHubService(hub Hub) *WebSocketHubService {
	return &WebSocketHubService{
		hub:  hub,
		name: "websocket-hub",
	}
}

// Serve implements suture.Service. It blocks until the context is canceled,
// then tears down every connected client.
func (w *WebSocketHubService) Serve(ctx context.Context) error {
	<-ctx.Done()
	w.hub.Shutdown()
	return ctx.Err()
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (w *WebSocketHubService) String() string {
	return w.name
}
