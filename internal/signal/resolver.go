// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

// Package signal derives the "latest search" signal per category.
//
// The signal is the subject of the last event in a category log; it is
// recomputed on every read or snapshot, never cached or stored. An empty or
// missing log yields an absent signal, which is a normal state distinct
// from an error.
package signal

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/mediamatrix/internal/models"
	"github.com/tomtom215/mediamatrix/internal/store"
)

// Resolver computes latest-search signals from the event log store.
type Resolver struct {
	store store.EventStore
}

// NewResolver creates a Resolver backed by the given store.
func NewResolver(s store.EventStore) *Resolver {
	return &Resolver{store: s}
}

// ResolveLatest returns the subject of the last event in the (category,
// owner) log. ok is false when the log is empty or does not exist; that is
// "no recommendation seed", not an error.
func (r *Resolver) ResolveLatest(ctx context.Context, category models.Category, ownerKey string) (subject string, ok bool, err error) {
	log, err := r.store.Read(ctx, category, ownerKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("resolve latest %s: %w", category, err)
	}
	subject, ok = log.Latest()
	return subject, ok, nil
}

// WatchLatest invokes onSignal with the recomputed tail subject on every
// store snapshot, in snapshot delivery order. The callback fires even when
// the tail subject is unchanged by a mutation, so consumers must be
// idempotent to duplicate signals. Cancelling the handle stops delivery and
// releases the store subscription.
func (r *Resolver) WatchLatest(ctx context.Context, category models.Category, ownerKey string, onSignal func(subject string, ok bool)) (store.CancelFunc, error) {
	return r.store.Subscribe(ctx, category, ownerKey, func(log *models.CategoryLog) {
		subject, ok := log.Latest()
		onSignal(subject, ok)
	})
}
