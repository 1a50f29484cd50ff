// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

// Package providers implements the external catalog adapters.
//
// Each adapter translates a subject string into a normalized list of
// Candidates for one category:
//
//   - TMDB (Movie): search-by-title, then similar-by-id using the top match
//   - Jikan (Anime): direct title search, client-side rate limiting
//   - Spotify (Music): OAuth2 client-credentials token, lazy refresh on 401
//   - iTunes (Music): alternate no-auth catalog, selected by configuration
//
// Adapters are pure mapping layers: raw payload in, []Candidate out. They
// return sentinel errors (ErrProviderUnavailable, ErrMalformedResponse,
// ErrTokenExpired); the aggregator converts any adapter error into an empty
// result for that category. All outbound calls run behind a sony/gobreaker
// circuit breaker (see breaker.go).
package providers
