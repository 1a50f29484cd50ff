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

	"golang.org/x/time/rate"

	"github.com/tomtom215/mediamatrix/internal/config"
	"github.com/tomtom215/mediamatrix/internal/models"
)

const jikanMaxCandidates = 10

// jikanNoSynopsis substitutes for anime entries without a synopsis.
const jikanNoSynopsis = "No description available."

// JikanAdapter fetches anime candidates from the Jikan REST API.
//
// Jikan needs no auth but is rate-sensitive; a client-side limiter spaces
// requests. There is no retry or backoff: a rejected or failed call
// surfaces as an error and the aggregator renders an empty strip.
type JikanAdapter struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ Adapter = (*JikanAdapter)(nil)

// NewJikanAdapter creates the anime catalog adapter.
func NewJikanAdapter(cfg *config.JikanConfig) *JikanAdapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &JikanAdapter{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Category implements Adapter.
func (a *JikanAdapter) Category() models.Category { return models.CategoryAnime }

type jikanAnime struct {
	MalID    int    `json:"mal_id"`
	Title    string `json:"title"`
	Synopsis string `json:"synopsis"`
	URL      string `json:"url"`
	Images   struct {
		JPG struct {
			ImageURL string `json:"image_url"`
		} `json:"jpg"`
	} `json:"images"`
}

type jikanListResponse struct {
	Data []jikanAnime `json:"data"`
}

// FetchSimilar queries the title-search endpoint directly with the subject
// (single hop, safe-for-work filter on).
func (a *JikanAdapter) FetchSimilar(ctx context.Context, subject string) ([]models.Candidate, error) {
	searchURL := fmt.Sprintf("%s/anime?q=%s&sfw&limit=%d",
		a.baseURL, url.QueryEscape(strings.TrimSpace(subject)), jikanMaxCandidates)
	return a.fetch(ctx, "search", searchURL)
}

// FetchTrending returns the top-ranked anime chart.
func (a *JikanAdapter) FetchTrending(ctx context.Context) ([]models.Candidate, error) {
	return a.fetch(ctx, "trending", a.baseURL+"/top/anime")
}

func (a *JikanAdapter) fetch(ctx context.Context, operation, fetchURL string) ([]models.Candidate, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("jikan %s: %w", operation, err)
	}

	var list jikanListResponse
	if err := getJSON(ctx, a.httpClient, "jikan", operation, fetchURL, nil, &list); err != nil {
		return nil, fmt.Errorf("jikan %s: %w", operation, err)
	}
	return normalizeJikan(list.Data), nil
}

// normalizeJikan maps raw Jikan entries into Candidates, substituting
// explicit placeholders for missing image and synopsis fields.
func normalizeJikan(entries []jikanAnime) []models.Candidate {
	candidates := make([]models.Candidate, 0, jikanMaxCandidates)
	for _, anime := range entries {
		if len(candidates) >= jikanMaxCandidates {
			break
		}

		imageURL := anime.Images.JPG.ImageURL
		if imageURL == "" {
			imageURL = PlaceholderImageURL
		}
		subtitle := anime.Synopsis
		if subtitle == "" {
			subtitle = jikanNoSynopsis
		}

		candidates = append(candidates, models.Candidate{
			ID:             strconv.Itoa(anime.MalID),
			Title:          anime.Title,
			ImageURL:       imageURL,
			Subtitle:       subtitle,
			SourceCategory: models.CategoryAnime,
			ActionRef:      anime.URL,
		})
	}
	return candidates
}
