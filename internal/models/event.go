// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package models

import (
	"strings"
	"time"
)

// Action tags the provenance of a search event.
type Action string

const (
	// ActionSearched marks a direct search from a category screen.
	ActionSearched Action = "searched"

	// ActionPlayed marks a play/open interaction.
	ActionPlayed Action = "played"

	// ActionSearchedThroughSimilar marks a navigation through a
	// similar-items strip rather than a typed search.
	ActionSearchedThroughSimilar Action = "searched through similar"
)

// ParseAction converts a wire string into an Action. Legacy records carry
// per-category phrasings such as "searched through similar movies"; anything
// prefixed with "searched through similar" maps to ActionSearchedThroughSimilar.
func ParseAction(s string) (Action, bool) {
	switch {
	case s == string(ActionSearched):
		return ActionSearched, true
	case s == string(ActionPlayed):
		return ActionPlayed, true
	case strings.HasPrefix(s, string(ActionSearchedThroughSimilar)):
		return ActionSearchedThroughSimilar, true
	}
	return "", false
}

// TimeOfSearchLayout is the minute-resolution timestamp layout used on the
// wire ("2026-08-30 12:34"). Timestamps are client-supplied and monotonic
// only by insertion order, never clock-accurate.
const TimeOfSearchLayout = "2006-01-02 15:04"

// SearchEvent is a single immutable interaction record. Events are never
// edited or deleted once appended; field names are fixed for compatibility
// with existing records.
type SearchEvent struct {
	// Subject is the searched/played term or title. Never empty after
	// validation by the recorder.
	Subject string `json:"dataSearched"`

	// OccurredAt is the minute-resolution timestamp string.
	OccurredAt string `json:"timeOfSearch"`

	// Action tags how the subject was reached.
	Action Action `json:"action"`
}

// NewSearchEvent builds a SearchEvent stamped at minute resolution.
func NewSearchEvent(subject string, action Action, at time.Time) SearchEvent {
	return SearchEvent{
		Subject:    subject,
		OccurredAt: at.UTC().Format(TimeOfSearchLayout),
		Action:     action,
	}
}

// CategoryLog is the per-(category, owner) append-only event document.
// It is created empty at account-creation time for every category and
// mutated only by appends; deletion is an account-management concern
// outside this subsystem.
type CategoryLog struct {
	// Category is one partition key component.
	Category Category `json:"-"`

	// OwnerKey is the normalized (lower-cased) identity key; the other
	// partition key component.
	OwnerKey string `json:"-"`

	// Events is the insertion-ordered, unbounded event sequence.
	// Duplicates are permitted; events are not deduplicated by content.
	Events []SearchEvent `json:"searchedData"`

	// CreatedAt is the ISO-8601 provisioning timestamp.
	CreatedAt string `json:"createdAt"`
}

// Latest returns the subject of the last event, or ok=false when the log
// is empty. This is the derived "latest signal"; it is never stored.
func (l *CategoryLog) Latest() (subject string, ok bool) {
	if l == nil || len(l.Events) == 0 {
		return "", false
	}
	return l.Events[len(l.Events)-1].Subject, true
}
