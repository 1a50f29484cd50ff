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

	badger "github.com/dgraph-io/badger/v4"
)

type mockGC struct {
	calls atomic.Int32
	errs  []error
}

func (m *mockGC) RunValueLogGC(float64) error {
	n := int(m.calls.Add(1)) - 1
	if n < len(m.errs) {
		return m.errs[n]
	}
	return badger.ErrNoRewrite
}

func TestStoreGCServiceRunsUntilNoRewrite(t *testing.T) {
	// Two successful rewrites, then nothing left: one tick drives three calls.
	gc := &mockGC{errs: []error{nil, nil, badger.ErrNoRewrite}}
	svc := NewStoreGCService(gc, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for gc.calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
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

	if n := gc.calls.Load(); n < 3 {
		t.Errorf("got %d GC calls, want at least 3", n)
	}
}

func TestStoreGCServiceStopsBeforeFirstTick(t *testing.T) {
	gc := &mockGC{}
	svc := NewStoreGCService(gc, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("got %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
	}
	if n := gc.calls.Load(); n != 0 {
		t.Errorf("got %d GC calls before first tick", n)
	}
}

func TestStoreGCServiceDefaultsInterval(t *testing.T) {
	svc := NewStoreGCService(&mockGC{}, 0)
	if svc.interval != defaultGCInterval {
		t.Errorf("got interval %v, want %v", svc.interval, defaultGCInterval)
	}
	if svc.String() != "store-gc" {
		t.Errorf("got %q", svc.String())
	}
}
