// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package services

import (
	"context"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/mediamatrix/internal/logging"
)

const (
	defaultGCInterval     = 5 * time.Minute
	defaultGCDiscardRatio = 0.5
)

// ValueLogGC interface matches *badger.DB's garbage collection method.
type ValueLogGC interface {
	RunValueLogGC(discardRatio float64) error
}

// StoreGCService runs periodic Badger value-log garbage collection.
//
// Badger never reclaims value-log space on its own; an owner must call
// RunValueLogGC periodically. badger.ErrNoRewrite means there was nothing
// worth compacting and is not a failure.
type StoreGCService struct {
	db           ValueLogGC
	interval     time.Duration
	discardRatio float64
	name         string
}

// NewStoreGCService creates a new value-log GC service wrapper.
func NewStoreGCService(db ValueLogGC, interval time.Duration) *StoreGCService {
	if interval <= 0 {
		interval = defaultGCInterval
	}
	return &StoreGCService{
		db:           db,
		interval:     interval,
		discardRatio: defaultGCDiscardRatio,
		name:         "store-gc",
	}
}

// Serve implements suture.Service. It runs one GC pass per interval until
// the context is canceled.
func (s *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// One GC call rewrites at most one value-log file; loop until
			// Badger reports nothing left to rewrite.
			for {
				err := s.db.RunValueLogGC(s.discardRatio)
				if err == nil {
					continue
				}
				if !errors.Is(err, badger.ErrNoRewrite) {
					logging.Warn().Err(err).Msg("value log gc failed")
				}
				break
			}
		}
	}
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *StoreGCService) String() string {
	return s.name
}
