// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/mediamatrix/config.yaml",
	"/etc/mediamatrix/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load loads configuration with layered sources (highest priority wins):
// environment variables > config file > built-in defaults.
//
// Environment variables map to config paths by prefix, e.g.
// TMDB_API_KEY -> tmdb.api_key, MUSIC_SPOTIFY_CLIENT_ID ->
// music.spotify.client_id, STORE_PATH -> store.path.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("", ".", envTransform)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sectionPrefixes maps env var prefixes to config sections. Two-level
// sections (music.spotify) are matched before their parent.
var sectionPrefixes = []struct {
	env  string
	path string
}{
	{"music_spotify_", "music.spotify."},
	{"music_itunes_", "music.itunes."},
	{"server_", "server."},
	{"store_", "store."},
	{"security_", "security."},
	{"tmdb_", "tmdb."},
	{"jikan_", "jikan."},
	{"music_", "music."},
	{"aggregator_", "aggregator."},
	{"logging_", "logging."},
}

// envTransform converts an environment variable name to a koanf path.
// Unrecognized variables are dropped so unrelated process environment
// cannot leak into the configuration.
func envTransform(key string) string {
	lower := strings.ToLower(key)

	// Short forms kept for operator convenience.
	switch lower {
	case "jwt_secret":
		return "security.jwt_secret"
	case "tmdb_api_key":
		return "tmdb.api_key"
	case "log_level":
		return "logging.level"
	case "log_format":
		return "logging.format"
	}

	for _, p := range sectionPrefixes {
		if strings.HasPrefix(lower, p.env) {
			return p.path + strings.TrimPrefix(lower, p.env)
		}
	}
	return ""
}

// validateStruct runs go-playground/validator over the config tree.
func validateStruct(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			first := errs[0]
			return fmt.Errorf("invalid config field %s (%s)", first.Namespace(), first.Tag())
		}
		return err
	}
	return nil
}
