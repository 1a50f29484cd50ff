// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package providers

import (
	"github.com/tomtom215/mediamatrix/internal/config"
	"github.com/tomtom215/mediamatrix/internal/logging"
	"github.com/tomtom215/mediamatrix/internal/models"
)

// Build constructs the adapter registry from configuration, wrapping every
// adapter in a circuit breaker.
//
// Not every category has a provider; Health and Product have no external
// catalog and are simply absent from the map. The aggregator emits empty
// results for unmapped categories.
func Build(cfg *config.Config) map[models.Category]Adapter {
	registry := make(map[models.Category]Adapter, 3)

	registry[models.CategoryMovie] = WithBreaker("tmdb", NewTMDBAdapter(&cfg.TMDB))
	registry[models.CategoryAnime] = WithBreaker("jikan", NewJikanAdapter(&cfg.Jikan))

	switch cfg.Music.Provider {
	case "itunes":
		registry[models.CategoryMusic] = WithBreaker("itunes", NewITunesAdapter(&cfg.Music.ITunes))
	default:
		registry[models.CategoryMusic] = WithBreaker("spotify", NewSpotifyAdapter(&cfg.Music.Spotify))
	}

	logging.Info().
		Str("music_provider", cfg.Music.Provider).
		Int("adapters", len(registry)).
		Msg("provider registry built")
	return registry
}
