// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

// Package recorder writes interaction events into the event log store.
//
// Recording is fire-and-forget from the caller's perspective: a failed
// history write must never block or fail the primary user action (opening a
// player, navigating to a detail view). Failures are logged and counted,
// never propagated.
package recorder

import (
	"context"
	"strings"
	"time"

	"github.com/tomtom215/mediamatrix/internal/logging"
	"github.com/tomtom215/mediamatrix/internal/metrics"
	"github.com/tomtom215/mediamatrix/internal/models"
	"github.com/tomtom215/mediamatrix/internal/store"
)

// Recorder appends search/interaction events for an owner.
type Recorder struct {
	store store.EventStore

	// now is swappable for deterministic tests.
	now func() time.Time
}

// New creates a Recorder backed by the given store.
func New(s store.EventStore) *Recorder {
	return &Recorder{store: s, now: time.Now}
}

// Record appends one interaction event to the (category, owner) log.
//
// Empty or whitespace-only subjects are silently dropped. Store failures
// (including ErrNotAuthenticated when ownerKey is empty) are logged as
// diagnostics and swallowed; the method never returns an error.
//
// NOTE: swallowing failed history writes preserves the original app's
// behavior and is flagged as a silent-data-loss risk; see DESIGN.md.
func (r *Recorder) Record(ctx context.Context, ownerKey string, category models.Category, subject string, action models.Action) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		metrics.RecorderDrops.WithLabelValues("invalid_subject").Inc()
		logging.Debug().
			Str("category", string(category)).
			Msg("dropping interaction with empty subject")
		return
	}

	event := models.NewSearchEvent(subject, action, r.now())
	if err := r.store.Append(ctx, category, ownerKey, event); err != nil {
		metrics.RecorderDrops.WithLabelValues("store_error").Inc()
		logger := logging.Ctx(ctx)
		logger.Error().Err(err).
			Str("category", string(category)).
			Str("subject", subject).
			Msg("history write failed")
		return
	}

	logger := logging.Ctx(ctx)
	logger.Debug().
		Str("category", string(category)).
		Str("subject", subject).
		Str("action", string(action)).
		Msg("history recorded")
}
