// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package config

import (
	"strings"
	"testing"
)

// validTestConfig returns defaults patched to pass validation.
func validTestConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = strings.Repeat("s", 32)
	cfg.TMDB.APIKey = "tmdb-key"
	cfg.Music.Provider = "itunes"
	return cfg
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8462 {
		t.Errorf("got port %d, want 8462", cfg.Server.Port)
	}
	if cfg.Music.Provider != "spotify" {
		t.Errorf("got music provider %q, want spotify", cfg.Music.Provider)
	}
	if cfg.Aggregator.TrendingFallback {
		t.Error("trending fallback must default off")
	}
	if !cfg.Store.SyncWrites {
		t.Error("sync writes must default on")
	}
	if cfg.Jikan.RequestsPerSecond <= 0 {
		t.Error("jikan rate must be positive")
	}
}

func TestValidateAcceptsPatchedDefaults(t *testing.T) {
	if err := validTestConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing tmdb key", func(c *Config) { c.TMDB.APIKey = "" }},
		{"short jwt secret", func(c *Config) { c.Security.JWTSecret = "short" }},
		{"spotify without credentials", func(c *Config) { c.Music.Provider = "spotify" }},
		{"unknown music provider", func(c *Config) { c.Music.Provider = "pandora" }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad tmdb url", func(c *Config) { c.TMDB.BaseURL = "not a url" }},
		{"zero jikan rate", func(c *Config) { c.Jikan.RequestsPerSecond = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateAllowsSpotifyWithCredentials(t *testing.T) {
	cfg := validTestConfig()
	cfg.Music.Provider = "spotify"
	cfg.Music.Spotify.ClientID = "id"
	cfg.Music.Spotify.ClientSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("spotify with credentials rejected: %v", err)
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"TMDB_API_KEY", "tmdb.api_key"},
		{"JWT_SECRET", "security.jwt_secret"},
		{"LOG_LEVEL", "logging.level"},
		{"SERVER_PORT", "server.port"},
		{"STORE_PATH", "store.path"},
		{"SECURITY_SESSION_TIMEOUT", "security.session_timeout"},
		{"MUSIC_PROVIDER", "music.provider"},
		{"MUSIC_SPOTIFY_CLIENT_ID", "music.spotify.client_id"},
		{"MUSIC_ITUNES_BASE_URL", "music.itunes.base_url"},
		{"JIKAN_REQUESTS_PER_SECOND", "jikan.requests_per_second"},
		{"AGGREGATOR_TRENDING_FALLBACK", "aggregator.trending_fallback"},
		// Unrelated process environment must not leak in.
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		if got := envTransform(tt.env); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}
