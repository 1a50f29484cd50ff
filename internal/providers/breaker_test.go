// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/mediamatrix/internal/models"
)

// stubAdapter is a scriptable Adapter for breaker tests.
type stubAdapter struct {
	category models.Category
	fn       func() ([]models.Candidate, error)
}

func (s *stubAdapter) Category() models.Category { return s.category }

func (s *stubAdapter) FetchSimilar(_ context.Context, _ string) ([]models.Candidate, error) {
	return s.fn()
}

func (s *stubAdapter) FetchTrending(_ context.Context) ([]models.Candidate, error) {
	return s.fn()
}

func TestBreakerPassesThroughSuccess(t *testing.T) {
	want := []models.Candidate{{ID: "1", Title: "ok", SourceCategory: models.CategoryMovie}}
	breaker := WithBreaker("test-success", &stubAdapter{
		category: models.CategoryMovie,
		fn:       func() ([]models.Candidate, error) { return want, nil },
	})

	got, err := breaker.FetchSimilar(context.Background(), "subject")
	checkNoError(t, err)
	checkSliceLen(t, "candidates", len(got), 1)
	checkStringEqual(t, "id", got[0].ID, "1")
	checkTrue(t, "category passthrough", breaker.Category() == models.CategoryMovie)
}

func TestBreakerPassesThroughFailure(t *testing.T) {
	breaker := WithBreaker("test-failure", &stubAdapter{
		category: models.CategoryMovie,
		fn:       func() ([]models.Candidate, error) { return nil, ErrMalformedResponse },
	})

	_, err := breaker.FetchTrending(context.Background())
	checkError(t, err)
	checkTrue(t, "inner error preserved", errors.Is(err, ErrMalformedResponse))
}

func TestBreakerOpensAfterFailureRate(t *testing.T) {
	breaker := WithBreaker("test-trip", &stubAdapter{
		category: models.CategoryMovie,
		fn:       func() ([]models.Candidate, error) { return nil, ErrProviderUnavailable },
	})

	// Drive the breaker past its minimum request count at 100% failure.
	for i := 0; i < 10; i++ {
		_, _ = breaker.FetchSimilar(context.Background(), "subject")
	}

	// With the circuit open, calls fail fast as ErrProviderUnavailable and
	// never reach the inner adapter.
	reached := false
	breaker.inner = &stubAdapter{
		category: models.CategoryMovie,
		fn: func() ([]models.Candidate, error) {
			reached = true
			return nil, nil
		},
	}
	_, err := breaker.FetchSimilar(context.Background(), "subject")
	checkError(t, err)
	checkTrue(t, "error is ErrProviderUnavailable", errors.Is(err, ErrProviderUnavailable))
	checkTrue(t, "inner adapter not reached while open", !reached)
}

func TestBreakerStaysClosedBelowMinimumRequests(t *testing.T) {
	calls := 0
	breaker := WithBreaker("test-below-min", &stubAdapter{
		category: models.CategoryAnime,
		fn: func() ([]models.Candidate, error) {
			calls++
			return nil, ErrProviderUnavailable
		},
	})

	// Nine failures are under the ten-request significance threshold.
	for i := 0; i < 9; i++ {
		_, _ = breaker.FetchSimilar(context.Background(), "subject")
	}
	checkIntEqual(t, "inner calls", calls, 9)

	// The next call still reaches the adapter.
	_, _ = breaker.FetchSimilar(context.Background(), "subject")
	checkIntEqual(t, "inner calls after tenth", calls, 10)
}
