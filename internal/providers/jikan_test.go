// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/mediamatrix/internal/config"
	"github.com/tomtom215/mediamatrix/internal/models"
)

func newJikanTestAdapter(serverURL string) *JikanAdapter {
	return NewJikanAdapter(&config.JikanConfig{
		BaseURL:           serverURL,
		Timeout:           5 * time.Second,
		RequestsPerSecond: 1000, // no throttling in tests
	})
}

func TestJikanFetchSimilar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/anime") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "Cowboy Bebop" {
			t.Errorf("query: expected %q, got %q", "Cowboy Bebop", got)
		}
		if _, ok := r.URL.Query()["sfw"]; !ok {
			t.Error("expected sfw flag on search request")
		}
		_, _ = w.Write([]byte(`{"data":[
			{"mal_id":1,"title":"Cowboy Bebop","synopsis":"Space bounty hunters.","url":"https://myanimelist.net/anime/1","images":{"jpg":{"image_url":"https://cdn.example/1.jpg"}}},
			{"mal_id":5,"title":"No Art","synopsis":"","url":"https://myanimelist.net/anime/5","images":{"jpg":{"image_url":""}}}
		]}`))
	}))
	defer server.Close()

	adapter := newJikanTestAdapter(server.URL)
	candidates, err := adapter.FetchSimilar(context.Background(), "Cowboy Bebop")
	checkNoError(t, err)
	checkSliceLen(t, "candidates", len(candidates), 2)

	checkStringEqual(t, "id", candidates[0].ID, "1")
	checkStringEqual(t, "title", candidates[0].Title, "Cowboy Bebop")
	checkStringEqual(t, "subtitle", candidates[0].Subtitle, "Space bounty hunters.")
	checkStringEqual(t, "actionRef", candidates[0].ActionRef, "https://myanimelist.net/anime/1")
	checkTrue(t, "source category is Anime", candidates[0].SourceCategory == models.CategoryAnime)

	// Missing image and synopsis fall back to placeholders.
	checkStringEqual(t, "placeholder imageUrl", candidates[1].ImageURL, PlaceholderImageURL)
	checkStringEqual(t, "placeholder synopsis", candidates[1].Subtitle, jikanNoSynopsis)
}

func TestJikanFetchTrending(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/top/anime" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":[{"mal_id":9,"title":"FMA","synopsis":"Alchemy.","url":"https://myanimelist.net/anime/9","images":{"jpg":{"image_url":"https://cdn.example/9.jpg"}}}]}`))
	}))
	defer server.Close()

	adapter := newJikanTestAdapter(server.URL)
	candidates, err := adapter.FetchTrending(context.Background())
	checkNoError(t, err)
	checkSliceLen(t, "candidates", len(candidates), 1)
	checkStringEqual(t, "title", candidates[0].Title, "FMA")
}

func TestJikanMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"pagination":{}}`))
	}))
	defer server.Close()

	adapter := newJikanTestAdapter(server.URL)
	candidates, err := adapter.FetchSimilar(context.Background(), "anything")
	checkNoError(t, err)
	checkSliceLen(t, "candidates", len(candidates), 0)
}

func TestJikanRateLimiterHonorsCancellation(t *testing.T) {
	adapter := NewJikanAdapter(&config.JikanConfig{
		BaseURL:           "http://unused",
		RequestsPerSecond: 0.001, // first token available far in the future
	})
	// Burn the initial burst token.
	adapter.limiter.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := adapter.FetchSimilar(ctx, "anything")
	checkError(t, err)
}

func TestJikanNormalizeCapsResults(t *testing.T) {
	entries := make([]jikanAnime, 30)
	for i := range entries {
		entries[i] = jikanAnime{MalID: i + 1, Title: "Anime"}
	}
	candidates := normalizeJikan(entries)
	checkIntEqual(t, "capped candidates", len(candidates), jikanMaxCandidates)
}
