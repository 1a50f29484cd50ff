// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type mockHub struct {
	shutdowns atomic.Int32
}

func (m *mockHub) Shutdown() {
	m.shutdowns.Add(1)
}

func TestWebSocketHubServiceShutsDownOnCancel(t *testing.T) {
	hub := &mockHub{}
	svc := NewWebSocketHubService(hub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	// Serve must block while the context is live.
	select {
	case err := <-done:
		t.Fatalf("service returned early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	if n := hub.shutdowns.Load(); n != 0 {
		t.Fatalf("hub shut down before cancel (%d times)", n)
	}

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("got %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
	}

	if n := hub.shutdowns.Load(); n != 1 {
		t.Errorf("got %d shutdowns, want 1", n)
	}
}

func TestWebSocketHubServiceString(t *testing.T) {
	svc := NewWebSocketHubService(&mockHub{})
	if svc.String() != "websocket-hub" {
		t.Errorf("got %q", svc.String())
	}
}
