// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mediamatrix/internal/metrics"
	"github.com/tomtom215/mediamatrix/internal/models"
)

// Sentinel errors for provider failures. The aggregator treats all of them
// as "empty result for this category"; they exist so diagnostics and tests
// can distinguish the cause.
var (
	// ErrProviderUnavailable covers network failures and non-2xx responses.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrMalformedResponse covers undecodable payloads. Handled identically
	// to ErrProviderUnavailable by callers.
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrTokenExpired is returned on a 401-equivalent failure from a
	// token-authenticated provider. Triggers exactly one refresh-and-retry.
	ErrTokenExpired = errors.New("provider token expired")
)

// PlaceholderImageURL substitutes for items the provider returned without
// artwork. Kept identical to the value existing clients already render.
const PlaceholderImageURL = "https://via.placeholder.com/100x150.png?text=No+Image"

// Adapter is the common contract for external catalog providers.
//
// FetchSimilar seeds a lookup with the latest-search subject. FetchTrending
// serves categories that have no signal yet; adapters without a trending
// surface return an empty list. Both return a normalized, provider-agnostic
// candidate list and never panic on malformed payloads.
type Adapter interface {
	Category() models.Category
	FetchSimilar(ctx context.Context, subject string) ([]models.Candidate, error)
	FetchTrending(ctx context.Context) ([]models.Candidate, error)
}

// maxErrorBodySize limits how much of an error response is read back for
// diagnostics.
const maxErrorBodySize = 8 * 1024

// getJSON issues a GET, records metrics, and decodes the response into v.
// A non-2xx status maps to ErrProviderUnavailable (ErrTokenExpired for 401);
// an undecodable body maps to ErrMalformedResponse.
func getJSON(ctx context.Context, client *http.Client, provider, operation, url string, header http.Header, v interface{}) error {
	start := time.Now()
	err := doGetJSON(ctx, client, url, header, v)
	metrics.RecordProviderRequest(provider, operation, time.Since(start), err)
	return err
}

func doGetJSON(ctx context.Context, client *http.Client, url string, header http.Header, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, vals := range header {
		for _, val := range vals {
			req.Header.Add(k, val)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: status 401", ErrTokenExpired)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return fmt.Errorf("%w: status %d: %s", ErrProviderUnavailable, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
