// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

// Package models defines the core domain types shared across the pipeline:
// categories, search events, category logs and normalized candidates.
package models

import (
	"fmt"
	"strings"
)

// Category is one of the five fixed content domains that partitions both
// search history and provider routing.
type Category string

const (
	CategoryAnime   Category = "Anime"
	CategoryHealth  Category = "Health"
	CategoryMovie   Category = "Movie"
	CategoryMusic   Category = "Music"
	CategoryProduct Category = "Product"
)

// Categories lists all categories in a stable order. The order carries no
// semantic meaning; aggregation treats categories as independent and unordered.
var Categories = []Category{
	CategoryAnime,
	CategoryHealth,
	CategoryMovie,
	CategoryMusic,
	CategoryProduct,
}

// ParseCategory converts a string into a Category, accepting the canonical
// name case-insensitively.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Collection returns the store collection name for the category. These names
// are fixed for compatibility with records written by earlier releases
// (e.g. "MovieSearches").
func (c Category) Collection() string {
	return string(c) + "Searches"
}

// Valid reports whether the category is one of the five known domains.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }
