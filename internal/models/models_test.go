// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package models

import (
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input   string
		want    Category
		wantErr bool
	}{
		{"Movie", CategoryMovie, false},
		{"movie", CategoryMovie, false},
		{"MUSIC", CategoryMusic, false},
		{"anime", CategoryAnime, false},
		{"Health", CategoryHealth, false},
		{"product", CategoryProduct, false},
		{"Movies", "", true},
		{"", "", true},
		{"podcast", "", true},
	}

	for _, tt := range tests {
		got, err := ParseCategory(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseCategory(%q): expected error, got %q", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCategory(%q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCollectionNamesAreStable(t *testing.T) {
	// These names are on disk in existing deployments; changing one is a
	// data migration, not a rename.
	want := map[Category]string{
		CategoryAnime:   "AnimeSearches",
		CategoryHealth:  "HealthSearches",
		CategoryMovie:   "MovieSearches",
		CategoryMusic:   "MusicSearches",
		CategoryProduct: "ProductSearches",
	}
	for category, collection := range want {
		if got := category.Collection(); got != collection {
			t.Errorf("%s.Collection() = %q, want %q", category, got, collection)
		}
	}
}

func TestCategoryValid(t *testing.T) {
	for _, category := range Categories {
		if !category.Valid() {
			t.Errorf("%s should be valid", category)
		}
	}
	if Category("Podcast").Valid() {
		t.Error("Podcast should not be valid")
	}
	if Category("").Valid() {
		t.Error("empty category should not be valid")
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		input string
		want  Action
		ok    bool
	}{
		{"searched", ActionSearched, true},
		{"played", ActionPlayed, true},
		{"searched through similar", ActionSearchedThroughSimilar, true},
		// Legacy records carry per-category phrasings.
		{"searched through similar movies", ActionSearchedThroughSimilar, true},
		{"searched through similar animes", ActionSearchedThroughSimilar, true},
		{"clicked", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseAction(tt.input)
		if ok != tt.ok {
			t.Errorf("ParseAction(%q): ok=%v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ParseAction(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNewSearchEventStampsMinuteResolution(t *testing.T) {
	at := time.Date(2026, 8, 30, 9, 41, 59, 999, time.UTC)
	event := NewSearchEvent("interstellar", ActionSearched, at)

	if event.OccurredAt != "2026-08-30 09:41" {
		t.Errorf("got %q, want seconds truncated away", event.OccurredAt)
	}
	if event.Subject != "interstellar" {
		t.Errorf("got subject %q", event.Subject)
	}
}

func TestCategoryLogLatest(t *testing.T) {
	var nilLog *CategoryLog
	if _, ok := nilLog.Latest(); ok {
		t.Error("nil log must have no signal")
	}

	empty := &CategoryLog{Events: []SearchEvent{}}
	if _, ok := empty.Latest(); ok {
		t.Error("empty log must have no signal")
	}

	log := &CategoryLog{Events: []SearchEvent{
		NewSearchEvent("first", ActionSearched, time.Now()),
		NewSearchEvent("second", ActionPlayed, time.Now()),
	}}
	subject, ok := log.Latest()
	if !ok || subject != "second" {
		t.Errorf("got (%q, %v), want tail subject", subject, ok)
	}
}
