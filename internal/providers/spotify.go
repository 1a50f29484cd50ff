// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/mediamatrix/internal/config"
	"github.com/tomtom215/mediamatrix/internal/logging"
	"github.com/tomtom215/mediamatrix/internal/models"
)

const spotifyMaxCandidates = 10

// SpotifyAdapter fetches music candidates from the Spotify Web API using an
// OAuth2 client-credentials token.
//
// Tokens are acquired lazily and cached in a tokenSource. A request rejected
// with 401 invalidates the cached token and retries exactly once with a
// fresh one; a second rejection surfaces the error.
type SpotifyAdapter struct {
	baseURL    string
	httpClient *http.Client
	tokens     *tokenSource
}

var _ Adapter = (*SpotifyAdapter)(nil)

// NewSpotifyAdapter creates the music catalog adapter.
func NewSpotifyAdapter(cfg *config.SpotifyConfig) *SpotifyAdapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	return &SpotifyAdapter{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: client,
		tokens:     newTokenSource(cfg.ClientID, cfg.ClientSecret, cfg.TokenURL, client),
	}
}

// Category implements Adapter.
func (a *SpotifyAdapter) Category() models.Category { return models.CategoryMusic }

type spotifyTrack struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

type spotifyAlbum struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

type spotifyNewReleasesResponse struct {
	Albums struct {
		Items []spotifyAlbum `json:"items"`
	} `json:"albums"`
}

// FetchSimilar searches tracks matching the subject.
func (a *SpotifyAdapter) FetchSimilar(ctx context.Context, subject string) ([]models.Candidate, error) {
	subject = strings.TrimSpace(subject)
	searchURL := fmt.Sprintf("%s/search?q=%s&type=track&limit=%d",
		a.baseURL, url.QueryEscape(subject), spotifyMaxCandidates)

	var search spotifySearchResponse
	if err := a.getAuthed(ctx, "search", searchURL, &search); err != nil {
		return nil, fmt.Errorf("spotify search %q: %w", subject, err)
	}
	return a.normalizeTracks(search.Tracks.Items, subject), nil
}

// FetchTrending returns the new-releases chart.
func (a *SpotifyAdapter) FetchTrending(ctx context.Context) ([]models.Candidate, error) {
	releasesURL := fmt.Sprintf("%s/browse/new-releases?limit=%d", a.baseURL, spotifyMaxCandidates)

	var releases spotifyNewReleasesResponse
	if err := a.getAuthed(ctx, "trending", releasesURL, &releases); err != nil {
		return nil, fmt.Errorf("spotify new releases: %w", err)
	}
	return a.normalizeAlbums(releases.Albums.Items), nil
}

// getAuthed issues an authenticated GET, refreshing the token and retrying
// once if the cached token was rejected.
func (a *SpotifyAdapter) getAuthed(ctx context.Context, operation, fetchURL string, v interface{}) error {
	token, err := a.tokens.Token(ctx)
	if err != nil {
		return err
	}

	err = getJSON(ctx, a.httpClient, "spotify", operation, fetchURL, bearerHeader(token), v)
	if !errors.Is(err, ErrTokenExpired) {
		return err
	}

	logging.Debug().Str("operation", operation).Msg("spotify: cached token rejected, refreshing")
	a.tokens.Invalidate(token)

	token, err = a.tokens.Token(ctx)
	if err != nil {
		return err
	}
	return getJSON(ctx, a.httpClient, "spotify", operation, fetchURL, bearerHeader(token), v)
}

func bearerHeader(token string) http.Header {
	return http.Header{"Authorization": {"Bearer " + token}}
}

// fallbackActionRef points at the public search page when the API omits an
// external URL for an item.
func fallbackActionRef(query string) string {
	return "https://open.spotify.com/search/" + url.PathEscape(query)
}

func (a *SpotifyAdapter) normalizeTracks(tracks []spotifyTrack, subject string) []models.Candidate {
	candidates := make([]models.Candidate, 0, spotifyMaxCandidates)
	for _, track := range tracks {
		if len(candidates) >= spotifyMaxCandidates {
			break
		}

		imageURL := PlaceholderImageURL
		if len(track.Album.Images) > 0 && track.Album.Images[0].URL != "" {
			imageURL = track.Album.Images[0].URL
		}
		actionRef := track.ExternalURLs.Spotify
		if actionRef == "" {
			actionRef = fallbackActionRef(subject)
		}

		candidates = append(candidates, models.Candidate{
			ID:             track.ID,
			Title:          track.Name,
			ImageURL:       imageURL,
			Subtitle:       joinArtists(track.Artists),
			SourceCategory: models.CategoryMusic,
			ActionRef:      actionRef,
		})
	}
	return candidates
}

func (a *SpotifyAdapter) normalizeAlbums(albums []spotifyAlbum) []models.Candidate {
	candidates := make([]models.Candidate, 0, spotifyMaxCandidates)
	for _, album := range albums {
		if len(candidates) >= spotifyMaxCandidates {
			break
		}

		imageURL := PlaceholderImageURL
		if len(album.Images) > 0 && album.Images[0].URL != "" {
			imageURL = album.Images[0].URL
		}
		actionRef := album.ExternalURLs.Spotify
		if actionRef == "" {
			actionRef = fallbackActionRef(album.Name)
		}

		candidates = append(candidates, models.Candidate{
			ID:             album.ID,
			Title:          album.Name,
			ImageURL:       imageURL,
			Subtitle:       joinArtists(album.Artists),
			SourceCategory: models.CategoryMusic,
			ActionRef:      actionRef,
		})
	}
	return candidates
}

func joinArtists(artists []struct {
	Name string `json:"name"`
}) string {
	names := make([]string, 0, len(artists))
	for _, artist := range artists {
		names = append(names, artist.Name)
	}
	return strings.Join(names, ", ")
}
