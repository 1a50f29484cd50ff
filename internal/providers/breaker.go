// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/mediamatrix/internal/logging"
	"github.com/tomtom215/mediamatrix/internal/metrics"
	"github.com/tomtom215/mediamatrix/internal/models"
)

// BreakerAdapter wraps an Adapter with a circuit breaker so a flapping or
// down provider stops consuming outbound capacity.
//
// The breaker uses real time for its interval and timeout windows; that
// timing governs recovery, not data integrity. While open, calls fail fast
// with ErrProviderUnavailable and the aggregator renders an empty strip for
// the category, exactly as it would for a live failure.
//
// Breaker settings: max 3 requests in half-open, 1 minute closed-state
// measurement window, 2 minute open-state timeout, trips at a 60% failure
// rate over at least 10 requests.
type BreakerAdapter struct {
	inner Adapter
	cb    *gobreaker.CircuitBreaker[[]models.Candidate]
	name  string
}

var _ Adapter = (*BreakerAdapter)(nil)

// WithBreaker wraps an adapter with circuit breaker protection. The name
// labels the breaker in logs and metrics.
func WithBreaker(name string, inner Adapter) *BreakerAdapter {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]models.Candidate](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Str("provider", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("circuit breaker opening")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("provider", name).
				Str("from", breakerStateString(from)).
				Str("to", breakerStateString(to)).
				Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateFloat(to))
		},
	})

	return &BreakerAdapter{inner: inner, cb: cb, name: name}
}

// Category implements Adapter.
func (b *BreakerAdapter) Category() models.Category { return b.inner.Category() }

// FetchSimilar implements Adapter with breaker protection.
func (b *BreakerAdapter) FetchSimilar(ctx context.Context, subject string) ([]models.Candidate, error) {
	return b.execute(func() ([]models.Candidate, error) {
		return b.inner.FetchSimilar(ctx, subject)
	})
}

// FetchTrending implements Adapter with breaker protection.
func (b *BreakerAdapter) FetchTrending(ctx context.Context) ([]models.Candidate, error) {
	return b.execute(func() ([]models.Candidate, error) {
		return b.inner.FetchTrending(ctx)
	})
}

func (b *BreakerAdapter) execute(fn func() ([]models.Candidate, error)) ([]models.Candidate, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logging.Warn().Str("provider", b.name).Err(err).Msg("circuit breaker rejected request")
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		return nil, err
	}
	return result, nil
}

func breakerStateFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func breakerStateString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
