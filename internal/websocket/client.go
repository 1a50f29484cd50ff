// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/mediamatrix/internal/logging"
	"github.com/tomtom215/mediamatrix/internal/store"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Client is one WebSocket connection bound to an owner's watch pipeline.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	ownerKey string
	send     chan Message

	watchCancel store.CancelFunc
	onClose     func()

	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, ownerKey string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		ownerKey: ownerKey,
		send:     make(chan Message, 32),
	}
}

// push queues a message, dropping the frame when the client is too slow to
// drain its buffer. The client re-converges on the next update or refresh.
func (c *Client) push(msg Message) {
	select {
	case c.send <- msg:
	default:
		logging.Debug().Str("owner", c.ownerKey).Msg("websocket client slow, dropping frame")
	}
}

// readPump consumes (and discards) client frames to process control
// messages and detect disconnects. The push channel is one-way; clients
// talk to the REST API, not the socket.
func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.teardown()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logging.Debug().Err(err).Str("owner", c.ownerKey).Msg("websocket read error")
			}
			return
		}
	}
}

// writePump drains the send channel to the connection and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// teardown stops the watch pipeline and closes the connection. Safe to call
// from multiple goroutines; only the first call acts.
func (c *Client) teardown() {
	c.closeOnce.Do(func() {
		if c.watchCancel != nil {
			c.watchCancel()
		}
		if c.onClose != nil {
			c.onClose()
		}
		_ = c.conn.Close()
	})
}

// close closes just the underlying connection, which unblocks readPump and
// routes shutdown through its deferred teardown.
func (c *Client) close() {
	_ = c.conn.Close()
}
