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
	"github.com/tomtom215/mediamatrix/internal/logging"
	"github.com/tomtom215/mediamatrix/internal/models"
)

// tmdbMaxCandidates caps normalized result lists, matching what the
// presentation strips render.
const tmdbMaxCandidates = 10

// tmdbCastLimit is how many cast names enrich a trending candidate.
const tmdbCastLimit = 3

// TMDBAdapter fetches movie candidates from the TMDB REST API.
//
// FetchSimilar is a two-hop lookup: search-by-title, then similar-by-id
// using the top match's identifier. FetchTrending uses the weekly trending
// chart, enriched with top cast names from the credits endpoint. Relative
// poster paths are normalized to absolute URLs.
type TMDBAdapter struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	httpClient   *http.Client
}

var _ Adapter = (*TMDBAdapter)(nil)

// NewTMDBAdapter creates the movie catalog adapter.
func NewTMDBAdapter(cfg *config.TMDBConfig) *TMDBAdapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &TMDBAdapter{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		imageBaseURL: strings.TrimSuffix(cfg.ImageBaseURL, "/"),
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// Category implements Adapter.
func (a *TMDBAdapter) Category() models.Category { return models.CategoryMovie }

type tmdbMovie struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	PosterPath string `json:"poster_path"`
	Overview   string `json:"overview"`
}

type tmdbListResponse struct {
	Results []tmdbMovie `json:"results"`
}

type tmdbCreditsResponse struct {
	Cast []struct {
		Name string `json:"name"`
	} `json:"cast"`
}

// FetchSimilar resolves the subject to its top search match, then returns
// titles similar to that match. An unmatched subject yields an empty list,
// not an error.
func (a *TMDBAdapter) FetchSimilar(ctx context.Context, subject string) ([]models.Candidate, error) {
	searchURL := fmt.Sprintf("%s/search/movie?query=%s&api_key=%s",
		a.baseURL, url.QueryEscape(strings.TrimSpace(subject)), url.QueryEscape(a.apiKey))

	var search tmdbListResponse
	if err := getJSON(ctx, a.httpClient, "tmdb", "search", searchURL, nil, &search); err != nil {
		return nil, fmt.Errorf("tmdb search %q: %w", subject, err)
	}
	if len(search.Results) == 0 {
		logging.Debug().Str("subject", subject).Msg("tmdb: no search match")
		return []models.Candidate{}, nil
	}

	topID := search.Results[0].ID
	similarURL := fmt.Sprintf("%s/movie/%d/similar?api_key=%s", a.baseURL, topID, url.QueryEscape(a.apiKey))

	var similar tmdbListResponse
	if err := getJSON(ctx, a.httpClient, "tmdb", "similar", similarURL, nil, &similar); err != nil {
		return nil, fmt.Errorf("tmdb similar %d: %w", topID, err)
	}

	return a.normalize(similar.Results, nil), nil
}

// FetchTrending returns this week's trending movies with top cast names.
// Credits failures degrade to a missing subtitle, never a failed fetch.
func (a *TMDBAdapter) FetchTrending(ctx context.Context) ([]models.Candidate, error) {
	trendingURL := fmt.Sprintf("%s/trending/movie/week?api_key=%s", a.baseURL, url.QueryEscape(a.apiKey))

	var trending tmdbListResponse
	if err := getJSON(ctx, a.httpClient, "tmdb", "trending", trendingURL, nil, &trending); err != nil {
		return nil, fmt.Errorf("tmdb trending: %w", err)
	}

	casts := make(map[int]string, len(trending.Results))
	for i, movie := range trending.Results {
		if i >= tmdbMaxCandidates {
			break
		}
		cast, err := a.fetchCast(ctx, movie.ID)
		if err != nil {
			logging.Debug().Err(err).Int("movie_id", movie.ID).Msg("tmdb: credits lookup failed")
			continue
		}
		casts[movie.ID] = cast
	}

	return a.normalize(trending.Results, casts), nil
}

// fetchCast returns the top cast names for a movie, comma-joined.
func (a *TMDBAdapter) fetchCast(ctx context.Context, movieID int) (string, error) {
	creditsURL := fmt.Sprintf("%s/movie/%d/credits?api_key=%s", a.baseURL, movieID, url.QueryEscape(a.apiKey))

	var credits tmdbCreditsResponse
	if err := getJSON(ctx, a.httpClient, "tmdb", "credits", creditsURL, nil, &credits); err != nil {
		return "", err
	}

	names := make([]string, 0, tmdbCastLimit)
	for i, member := range credits.Cast {
		if i >= tmdbCastLimit {
			break
		}
		names = append(names, member.Name)
	}
	return strings.Join(names, ", "), nil
}

// normalize maps raw TMDB movies into Candidates.
func (a *TMDBAdapter) normalize(movies []tmdbMovie, casts map[int]string) []models.Candidate {
	candidates := make([]models.Candidate, 0, tmdbMaxCandidates)
	for _, movie := range movies {
		if len(candidates) >= tmdbMaxCandidates {
			break
		}

		imageURL := PlaceholderImageURL
		if movie.PosterPath != "" {
			imageURL = a.imageBaseURL + movie.PosterPath
		}

		subtitle := ""
		if casts != nil {
			subtitle = casts[movie.ID]
		}

		candidates = append(candidates, models.Candidate{
			ID:             strconv.Itoa(movie.ID),
			Title:          movie.Title,
			ImageURL:       imageURL,
			Subtitle:       subtitle,
			SourceCategory: models.CategoryMovie,
			ActionRef:      fmt.Sprintf("https://www.themoviedb.org/movie/%d", movie.ID),
		})
	}
	return candidates
}
