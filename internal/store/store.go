// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package store

import (
	"context"
	"errors"

	"github.com/tomtom215/mediamatrix/internal/models"
)

// Sentinel errors for store operations.
var (
	// ErrNotAuthenticated is returned when an operation is attempted
	// without an owner key. Callers treat this as a skipped write, not
	// a fatal condition.
	ErrNotAuthenticated = errors.New("no authenticated identity")

	// ErrNotFound is returned by Read when no log document exists for the
	// (category, owner) pair. Resolvers treat this as an empty log.
	ErrNotFound = errors.New("category log not found")

	// ErrWriteConflict is returned when a concurrent append caused the
	// transaction to conflict. The caller may retry.
	ErrWriteConflict = errors.New("write conflict")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("store is closed")

	// ErrInvalidCategory is returned for categories outside the fixed set.
	ErrInvalidCategory = errors.New("invalid category")
)

// CancelFunc stops a subscription and releases its resources. Safe to call
// more than once.
type CancelFunc func()

// EventStore is the contract for the per-(category, owner) event log.
//
// Append is a true order-preserving append: duplicates are permitted and
// events are immutable once written. Subscribe delivers a full CategoryLog
// snapshot on every mutation, including mutations from other sessions,
// until the returned CancelFunc is called.
type EventStore interface {
	Append(ctx context.Context, category models.Category, ownerKey string, event models.SearchEvent) error
	Read(ctx context.Context, category models.Category, ownerKey string) (*models.CategoryLog, error)
	Subscribe(ctx context.Context, category models.Category, ownerKey string, onChange func(*models.CategoryLog)) (CancelFunc, error)

	// Provision creates empty logs for all categories for the owner.
	// Called once at account-creation time; idempotent.
	Provision(ctx context.Context, ownerKey string) error

	Close() error
}
