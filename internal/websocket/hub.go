// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package websocket

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/mediamatrix/internal/aggregator"
	"github.com/tomtom215/mediamatrix/internal/logging"
	"github.com/tomtom215/mediamatrix/internal/metrics"
)

// Message types pushed to clients.
const (
	MessageTypeRecommendations = "recommendations"
	MessageTypeError           = "error"
)

// Message is the frame pushed to WebSocket clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub tracks active clients and connects each one to the aggregator's
// watch pipeline.
type Hub struct {
	agg      *aggregator.Aggregator
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*Client]struct{}
	closed  bool
}

// NewHub creates the WebSocket hub. Origin checking is delegated to the
// router's CORS policy; the upgrader accepts what reaches it.
func NewHub(agg *aggregator.Aggregator) *Hub {
	return &Hub{
		agg: agg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*Client]struct{}),
	}
}

// ServeWS upgrades the request and binds the connection to the owner's
// watch pipeline until either side disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, ownerKey string) {
	if ownerKey == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		logger := logging.Ctx(r.Context())
		logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := newClient(h, conn, ownerKey)
	if !h.add(client) {
		client.close()
		return
	}

	connCtx, cancelConn := context.WithCancel(context.Background())
	client.onClose = cancelConn

	watchCancel, err := h.agg.Watch(connCtx, ownerKey, func(result aggregator.Result) {
		client.push(Message{Type: MessageTypeRecommendations, Data: result})
	})
	if err != nil {
		logging.Error().Err(err).Str("owner", ownerKey).Msg("websocket watch setup failed")
		h.remove(client)
		client.close()
		cancelConn()
		return
	}
	client.watchCancel = watchCancel

	logging.Info().Str("owner", ownerKey).Msg("websocket client connected")

	go client.writePump()
	go client.readPump()

	// Initial state: one full refresh-all pass so the client renders
	// without waiting for the first mutation.
	go func() {
		for _, result := range h.agg.Run(connCtx, ownerKey) {
			if connCtx.Err() != nil {
				return
			}
			client.push(Message{Type: MessageTypeRecommendations, Data: result})
		}
	}()
}

// Shutdown disconnects every client. New connections are rejected.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	for _, client := range clients {
		client.teardown()
		metrics.WebSocketClients.Dec()
	}
	logging.Info().Int("clients", len(clients)).Msg("websocket hub shut down")
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[client] = struct{}{}
	metrics.WebSocketClients.Inc()
	return true
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	_, present := h.clients[client]
	delete(h.clients, client)
	h.mu.Unlock()

	if present {
		metrics.WebSocketClients.Dec()
		logging.Info().Str("owner", client.ownerKey).Msg("websocket client disconnected")
	}
}
