// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

// Package config loads and validates the MediaMatrix configuration using
// Koanf v2 with layered sources: built-in defaults, an optional YAML file,
// and environment variables (highest priority).
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the server.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Store      StoreConfig      `koanf:"store"`
	Security   SecurityConfig   `koanf:"security"`
	TMDB       TMDBConfig       `koanf:"tmdb"`
	Jikan      JikanConfig      `koanf:"jikan"`
	Music      MusicConfig      `koanf:"music"`
	Aggregator AggregatorConfig `koanf:"aggregator"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout"`
}

// StoreConfig holds event log store settings.
type StoreConfig struct {
	Path       string `koanf:"path" validate:"required"`
	SyncWrites bool   `koanf:"sync_writes"`
}

// SecurityConfig holds authentication and rate limiting settings.
type SecurityConfig struct {
	// JWTSecret signs session tokens. Required; 32+ characters.
	JWTSecret string `koanf:"jwt_secret"`

	// SessionTimeout is the JWT expiry.
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// RateLimitReqs requests per RateLimitWindow per client IP.
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// CORSOrigins for browser clients.
	CORSOrigins []string `koanf:"cors_origins"`
}

// TMDBConfig holds the movie catalog API settings.
type TMDBConfig struct {
	// APIKey is sent as the api_key query parameter.
	APIKey string `koanf:"api_key"`

	BaseURL string `koanf:"base_url" validate:"required,url"`

	// ImageBaseURL prefixes relative poster paths.
	ImageBaseURL string `koanf:"image_base_url" validate:"required,url"`

	Timeout time.Duration `koanf:"timeout"`
}

// JikanConfig holds the anime catalog API settings. Jikan requires no auth
// but is rate-sensitive; RequestsPerSecond spaces outbound calls.
type JikanConfig struct {
	BaseURL           string        `koanf:"base_url" validate:"required,url"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gt=0"`
}

// MusicConfig selects and configures the music catalog provider. The
// pipeline tolerates either shape behind the adapter interface.
type MusicConfig struct {
	// Provider is "spotify" (OAuth2 client credentials) or "itunes" (no auth).
	Provider string `koanf:"provider" validate:"oneof=spotify itunes"`

	Spotify SpotifyConfig `koanf:"spotify"`
	ITunes  ITunesConfig  `koanf:"itunes"`
}

// SpotifyConfig holds the OAuth2 client-credentials music catalog settings.
type SpotifyConfig struct {
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	TokenURL     string        `koanf:"token_url" validate:"required,url"`
	BaseURL      string        `koanf:"base_url" validate:"required,url"`
	Timeout      time.Duration `koanf:"timeout"`
}

// ITunesConfig holds the alternate no-auth music catalog settings.
type ITunesConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout"`
}

// AggregatorConfig holds aggregation behavior settings.
type AggregatorConfig struct {
	// TrendingFallback fetches trending items when a category has no
	// latest-search signal. Off by default: the latest-search strips show
	// an empty state instead.
	TrendingFallback bool `koanf:"trending_fallback"`

	// CategoryTimeout bounds a single category's resolve+fetch pass.
	CategoryTimeout time.Duration `koanf:"category_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults, applied before the config
// file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8462,
			Timeout: 30 * time.Second,
		},
		Store: StoreConfig{
			Path:       "/data/mediamatrix",
			SyncWrites: true,
		},
		Security: SecurityConfig{
			JWTSecret:       "",
			SessionTimeout:  24 * time.Hour,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		TMDB: TMDBConfig{
			APIKey:       "",
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p/w500",
			Timeout:      15 * time.Second,
		},
		Jikan: JikanConfig{
			BaseURL:           "https://api.jikan.moe/v4",
			Timeout:           15 * time.Second,
			RequestsPerSecond: 1,
		},
		Music: MusicConfig{
			Provider: "spotify",
			Spotify: SpotifyConfig{
				TokenURL: "https://accounts.spotify.com/api/token",
				BaseURL:  "https://api.spotify.com/v1",
				Timeout:  15 * time.Second,
			},
			ITunes: ITunesConfig{
				BaseURL: "https://itunes.apple.com",
				Timeout: 15 * time.Second,
			},
		},
		Aggregator: AggregatorConfig{
			TrendingFallback: false,
			CategoryTimeout:  20 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	if err := validateStruct(c); err != nil {
		return err
	}
	if c.Security.JWTSecret != "" && len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("security.jwt_secret must be at least 32 characters")
	}
	if c.Music.Provider == "spotify" {
		if c.Music.Spotify.ClientID == "" || c.Music.Spotify.ClientSecret == "" {
			return fmt.Errorf("music.provider is spotify but spotify.client_id/client_secret are not set")
		}
	}
	if c.TMDB.APIKey == "" {
		return fmt.Errorf("tmdb.api_key is required")
	}
	return nil
}
