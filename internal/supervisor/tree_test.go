// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/mediamatrix/internal/logging"
)

// blockingService runs until its context is canceled.
type blockingService struct {
	started chan struct{}
	name    string
}

func newBlockingService(name string) *blockingService {
	return &blockingService{started: make(chan struct{}, 1), name: name}
}

func (s *blockingService) Serve(ctx context.Context) error {
	select {
	case s.started <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *blockingService) String() string { return s.name }

func TestDefaultTreeConfig(t *testing.T) {
	cfg := DefaultTreeConfig()
	if cfg.FailureThreshold != 5.0 {
		t.Errorf("got threshold %v, want 5", cfg.FailureThreshold)
	}
	if cfg.FailureDecay != 30.0 {
		t.Errorf("got decay %v, want 30", cfg.FailureDecay)
	}
	if cfg.FailureBackoff != 15*time.Second {
		t.Errorf("got backoff %v, want 15s", cfg.FailureBackoff)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("got shutdown timeout %v, want 10s", cfg.ShutdownTimeout)
	}
}

func TestNewSupervisorTreeAppliesDefaults(t *testing.T) {
	tree, err := NewSupervisorTree(logging.NewSlogLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("new tree: %v", err)
	}
	if tree.config.FailureThreshold != 5.0 {
		t.Errorf("got threshold %v, want default", tree.config.FailureThreshold)
	}
	if tree.config.ShutdownTimeout != 10*time.Second {
		t.Errorf("got shutdown timeout %v, want default", tree.config.ShutdownTimeout)
	}
	if tree.Root() == nil {
		t.Error("root supervisor is nil")
	}
}

func TestTreeRunsServicesAcrossLayers(t *testing.T) {
	tree, err := NewSupervisorTree(logging.NewSlogLogger(), DefaultTreeConfig())
	if err != nil {
		t.Fatalf("new tree: %v", err)
	}

	data := newBlockingService("data-svc")
	messaging := newBlockingService("messaging-svc")
	api := newBlockingService("api-svc")
	tree.AddDataService(data)
	tree.AddMessagingService(messaging)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	for _, svc := range []*blockingService{data, messaging, api} {
		select {
		case <-svc.started:
		case <-time.After(5 * time.Second):
			t.Fatalf("%s never started", svc.name)
		}
	}

	cancel()

	select {
	case <-errCh:
	case <-time.After(15 * time.Second):
		t.Fatal("supervisor did not stop")
	}
}
