// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

// Package aggregator fans a user's latest-search signals out to the
// provider adapters and merges the results.
//
// Failure isolation is the core contract: one category's provider failure
// produces an empty Result for that category only and never cancels or
// delays siblings. A caller cannot distinguish "provider down" from
// "provider returned nothing"; the distinction lives in logs and metrics.
package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/mediamatrix/internal/config"
	"github.com/tomtom215/mediamatrix/internal/logging"
	"github.com/tomtom215/mediamatrix/internal/metrics"
	"github.com/tomtom215/mediamatrix/internal/models"
	"github.com/tomtom215/mediamatrix/internal/providers"
	"github.com/tomtom215/mediamatrix/internal/signal"
	"github.com/tomtom215/mediamatrix/internal/store"
)

// Result is one category's aggregation outcome. SubjectPresent reports
// whether a latest-search seed existed; Candidates is never nil.
type Result struct {
	Category       models.Category    `json:"category"`
	Subject        string             `json:"subject,omitempty"`
	SubjectPresent bool               `json:"subjectPresent"`
	Candidates     []models.Candidate `json:"candidates"`
}

// Aggregator merges latest-search signals with provider fetches.
type Aggregator struct {
	resolver *signal.Resolver
	adapters map[models.Category]providers.Adapter

	trendingFallback bool
	categoryTimeout  time.Duration
}

// New creates an Aggregator over the given resolver and adapter registry.
func New(resolver *signal.Resolver, adapters map[models.Category]providers.Adapter, cfg config.AggregatorConfig) *Aggregator {
	timeout := cfg.CategoryTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Aggregator{
		resolver:         resolver,
		adapters:         adapters,
		trendingFallback: cfg.TrendingFallback,
		categoryTimeout:  timeout,
	}
}

// Run performs a refresh-all pass: every category resolves its signal and
// fetches candidates concurrently. Run returns only once all categories
// have completed or failed. The map always contains every category.
func (a *Aggregator) Run(ctx context.Context, ownerKey string) map[models.Category]Result {
	start := time.Now()
	metrics.AggregationRuns.WithLabelValues("refresh").Inc()

	var mu sync.Mutex
	results := make(map[models.Category]Result, len(models.Categories))

	var wg sync.WaitGroup
	for _, category := range models.Categories {
		wg.Add(1)
		go func(category models.Category) {
			defer wg.Done()
			result := a.RunCategory(ctx, ownerKey, category)
			mu.Lock()
			results[category] = result
			mu.Unlock()
		}(category)
	}
	wg.Wait()

	metrics.AggregationDuration.Observe(time.Since(start).Seconds())
	return results
}

// RunCategory resolves one category's signal and fetches its candidates.
// Any failure along the way degrades to an empty Result for the category.
func (a *Aggregator) RunCategory(ctx context.Context, ownerKey string, category models.Category) Result {
	ctx, cancel := context.WithTimeout(ctx, a.categoryTimeout)
	defer cancel()

	subject, ok, err := a.resolver.ResolveLatest(ctx, category, ownerKey)
	if err != nil {
		logging.Error().Err(err).
			Str("category", category.String()).
			Msg("aggregator: signal resolution failed")
		return emptyResult(category)
	}
	return a.fetch(ctx, category, subject, ok)
}

// Watch re-runs a category whenever its latest-search signal changes,
// delivering each Result through onUpdate as soon as it completes. Results
// arrive on subscription goroutines; after the returned CancelFunc runs, no
// further callbacks fire. The caller decides what to do with each Result,
// so an abandoned pass costs nothing beyond the fetch itself.
func (a *Aggregator) Watch(ctx context.Context, ownerKey string, onUpdate func(Result)) (store.CancelFunc, error) {
	watchCtx, cancelCtx := context.WithCancel(ctx)

	cancels := make([]store.CancelFunc, 0, len(models.Categories))
	cancelAll := func() {
		cancelCtx()
		for _, cancel := range cancels {
			cancel()
		}
	}

	for _, category := range models.Categories {
		category := category
		cancel, err := a.resolver.WatchLatest(watchCtx, category, ownerKey, func(subject string, ok bool) {
			metrics.AggregationRuns.WithLabelValues("watch").Inc()
			result := a.fetch(watchCtx, category, subject, ok)
			if watchCtx.Err() != nil {
				return
			}
			onUpdate(result)
		})
		if err != nil {
			cancelAll()
			return nil, err
		}
		cancels = append(cancels, cancel)
	}

	return cancelAll, nil
}

// fetch turns a resolved signal into candidates for the category. Absent
// subject falls back to trending when enabled and the provider supports
// it; adapter errors degrade to an empty list.
func (a *Aggregator) fetch(ctx context.Context, category models.Category, subject string, subjectPresent bool) Result {
	result := Result{
		Category:       category,
		Subject:        subject,
		SubjectPresent: subjectPresent,
		Candidates:     []models.Candidate{},
	}

	adapter, hasAdapter := a.adapters[category]
	if !hasAdapter {
		return result
	}

	var (
		candidates []models.Candidate
		err        error
	)
	switch {
	case subjectPresent:
		candidates, err = adapter.FetchSimilar(ctx, subject)
	case a.trendingFallback:
		candidates, err = adapter.FetchTrending(ctx)
	default:
		return result
	}

	if err != nil {
		logging.Warn().Err(err).
			Str("category", category.String()).
			Bool("subject_present", subjectPresent).
			Msg("aggregator: provider fetch failed, emitting empty result")
		return result
	}
	if candidates != nil {
		result.Candidates = candidates
	}
	return result
}

func emptyResult(category models.Category) Result {
	return Result{Category: category, Candidates: []models.Candidate{}}
}
