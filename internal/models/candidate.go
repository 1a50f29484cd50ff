// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package models

// Candidate is a normalized, provider-agnostic recommendation item ready
// for display. Each provider adapter maps its raw payload into this shape;
// nothing downstream of an adapter inspects provider-specific fields.
type Candidate struct {
	// ID is the provider's identifier for the item, as a string.
	ID string `json:"id"`

	// Title is the display title.
	Title string `json:"title"`

	// ImageURL is an absolute image URL, or empty when the provider had
	// none and no placeholder applies.
	ImageURL string `json:"imageUrl,omitempty"`

	// Subtitle carries secondary display text (artist, cast, synopsis).
	Subtitle string `json:"subtitle,omitempty"`

	// SourceCategory is the category whose adapter produced the item.
	SourceCategory Category `json:"sourceCategory"`

	// ActionRef is an opaque provider-specific reference (playable URL or
	// detail-navigation key). The aggregator never interprets it.
	ActionRef string `json:"actionRef,omitempty"`
}
