// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/mediamatrix/internal/config"
	"github.com/tomtom215/mediamatrix/internal/models"
)

const itunesMaxCandidates = 10

// ITunesAdapter fetches music candidates from the iTunes Search API.
//
// The alternate music provider: no credentials, no token lifecycle. iTunes
// has no trending surface, so FetchTrending returns an empty list and the
// aggregator renders the empty state for a fresh account.
type ITunesAdapter struct {
	baseURL    string
	httpClient *http.Client
}

var _ Adapter = (*ITunesAdapter)(nil)

// NewITunesAdapter creates the no-auth music catalog adapter.
func NewITunesAdapter(cfg *config.ITunesConfig) *ITunesAdapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ITunesAdapter{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Category implements Adapter.
func (a *ITunesAdapter) Category() models.Category { return models.CategoryMusic }

type itunesTrack struct {
	TrackID       int    `json:"trackId"`
	TrackName     string `json:"trackName"`
	ArtistName    string `json:"artistName"`
	ArtworkURL100 string `json:"artworkUrl100"`
	TrackViewURL  string `json:"trackViewUrl"`
}

type itunesSearchResponse struct {
	Results []itunesTrack `json:"results"`
}

// FetchSimilar searches the song catalog for the subject.
func (a *ITunesAdapter) FetchSimilar(ctx context.Context, subject string) ([]models.Candidate, error) {
	searchURL := fmt.Sprintf("%s/search?term=%s&media=music&limit=%d",
		a.baseURL, url.QueryEscape(strings.TrimSpace(subject)), itunesMaxCandidates)

	var search itunesSearchResponse
	if err := getJSON(ctx, a.httpClient, "itunes", "search", searchURL, nil, &search); err != nil {
		return nil, fmt.Errorf("itunes search %q: %w", subject, err)
	}
	return normalizeITunes(search.Results), nil
}

// FetchTrending is a no-op; the iTunes Search API has no chart endpoint.
func (a *ITunesAdapter) FetchTrending(_ context.Context) ([]models.Candidate, error) {
	return []models.Candidate{}, nil
}

func normalizeITunes(tracks []itunesTrack) []models.Candidate {
	candidates := make([]models.Candidate, 0, itunesMaxCandidates)
	for _, track := range tracks {
		if len(candidates) >= itunesMaxCandidates {
			break
		}

		imageURL := track.ArtworkURL100
		if imageURL == "" {
			imageURL = PlaceholderImageURL
		}

		candidates = append(candidates, models.Candidate{
			ID:             strconv.Itoa(track.TrackID),
			Title:          track.TrackName,
			ImageURL:       imageURL,
			Subtitle:       track.ArtistName,
			SourceCategory: models.CategoryMusic,
			ActionRef:      track.TrackViewURL,
		})
	}
	return candidates
}
