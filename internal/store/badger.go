// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/mediamatrix/internal/logging"
	"github.com/tomtom215/mediamatrix/internal/metrics"
	"github.com/tomtom215/mediamatrix/internal/models"
)

// Config holds event log store configuration.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string

	// InMemory runs Badger without disk persistence. Intended for tests.
	InMemory bool

	// SyncWrites fsyncs every append. Durable but slower.
	// Default: true in the production config.
	SyncWrites bool
}

// keyPrefix namespaces log documents inside the shared Badger instance.
const keyPrefix = "log/"

// BadgerStore implements EventStore on BadgerDB with an in-process
// Watermill change feed.
type BadgerStore struct {
	db   *badger.DB
	feed *gochannel.GoChannel

	mu     sync.RWMutex
	closed bool
}

var _ EventStore = (*BadgerStore)(nil)

// Open creates (or opens) the event log store at the configured path.
func Open(cfg Config) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Path)
	opts.SyncWrites = cfg.SyncWrites
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}

	// Badger's own logger is noisy; everything relevant is logged here.
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	feed := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, newWatermillLogger())

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("event log store opened")

	return &BadgerStore{db: db, feed: feed}, nil
}

// NormalizeOwnerKey lower-cases an identity key before it is used as a
// partition key component. Case consistency with records written by earlier
// releases depends on this.
func NormalizeOwnerKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func logKey(category models.Category, ownerKey string) []byte {
	return []byte(keyPrefix + category.Collection() + "/" + ownerKey)
}

func logTopic(category models.Category, ownerKey string) string {
	return "log." + category.Collection() + "." + ownerKey
}

// Append atomically appends one event to the (category, owner) log. The
// document is created on first append if provisioning never ran for the
// owner. After commit the full snapshot is published to the change feed.
func (s *BadgerStore) Append(ctx context.Context, category models.Category, ownerKey string, event models.SearchEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	ownerKey = NormalizeOwnerKey(ownerKey)
	if ownerKey == "" {
		return ErrNotAuthenticated
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrClosed
	}
	s.mu.RUnlock()

	key := logKey(category, ownerKey)
	var snapshot []byte

	err := s.db.Update(func(txn *badger.Txn) error {
		doc := models.CategoryLog{
			Events:    []models.SearchEvent{},
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		}

		item, err := txn.Get(key)
		switch {
		case err == nil:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			}); err != nil {
				return fmt.Errorf("decode log document: %w", err)
			}
		case errors.Is(err, badger.ErrKeyNotFound):
			// First append provisions the document.
		default:
			return fmt.Errorf("read log document: %w", err)
		}

		doc.Events = append(doc.Events, event)

		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode log document: %w", err)
		}
		snapshot = data
		return txn.Set(key, data)
	})
	if err != nil {
		if errors.Is(err, badger.ErrConflict) {
			return fmt.Errorf("append %s/%s: %w", category, ownerKey, ErrWriteConflict)
		}
		return fmt.Errorf("append %s/%s: %w", category, ownerKey, err)
	}

	metrics.StoreAppends.WithLabelValues(string(category)).Inc()
	s.publish(category, ownerKey, snapshot)
	return nil
}

// Read returns the full log document, or ErrNotFound when the owner has no
// document for the category.
func (s *BadgerStore) Read(ctx context.Context, category models.Category, ownerKey string) (*models.CategoryLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	ownerKey = NormalizeOwnerKey(ownerKey)
	if ownerKey == "" {
		return nil, ErrNotAuthenticated
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrClosed
	}
	s.mu.RUnlock()

	var doc models.CategoryLog
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(logKey(category, ownerKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("read log document: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s/%s: %w", category, ownerKey, err)
	}

	doc.Category = category
	doc.OwnerKey = ownerKey
	return &doc, nil
}

// Subscribe registers onChange for every snapshot of the (category, owner)
// log, in commit order. The callback is never invoked after the returned
// CancelFunc runs.
func (s *BadgerStore) Subscribe(ctx context.Context, category models.Category, ownerKey string, onChange func(*models.CategoryLog)) (CancelFunc, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	ownerKey = NormalizeOwnerKey(ownerKey)
	if ownerKey == "" {
		return nil, ErrNotAuthenticated
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrClosed
	}
	s.mu.RUnlock()

	subCtx, cancel := context.WithCancel(ctx)
	msgs, err := s.feed.Subscribe(subCtx, logTopic(category, ownerKey))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe %s/%s: %w", category, ownerKey, err)
	}

	metrics.StoreSubscriptions.Inc()
	go func() {
		defer metrics.StoreSubscriptions.Dec()
		for msg := range msgs {
			var doc models.CategoryLog
			if err := json.Unmarshal(msg.Payload, &doc); err != nil {
				logging.Error().Err(err).
					Str("category", string(category)).
					Msg("discarding undecodable log snapshot")
				msg.Ack()
				continue
			}
			msg.Ack()

			if subCtx.Err() != nil {
				return
			}
			doc.Category = category
			doc.OwnerKey = ownerKey
			onChange(&doc)
		}
	}()

	return func() { cancel() }, nil
}

// Provision creates empty log documents for every category for the owner.
// Existing documents are left untouched, so re-provisioning is harmless.
func (s *BadgerStore) Provision(ctx context.Context, ownerKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ownerKey = NormalizeOwnerKey(ownerKey)
	if ownerKey == "" {
		return ErrNotAuthenticated
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrClosed
	}
	s.mu.RUnlock()

	createdAt := time.Now().UTC().Format(time.RFC3339)
	return s.db.Update(func(txn *badger.Txn) error {
		for _, category := range models.Categories {
			key := logKey(category, ownerKey)
			if _, err := txn.Get(key); err == nil {
				continue
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("provision %s: %w", category, err)
			}

			doc := models.CategoryLog{
				Events:    []models.SearchEvent{},
				CreatedAt: createdAt,
			}
			data, err := json.Marshal(doc)
			if err != nil {
				return fmt.Errorf("encode empty log: %w", err)
			}
			if err := txn.Set(key, data); err != nil {
				return fmt.Errorf("provision %s: %w", category, err)
			}
		}
		return nil
	})
}

// Close shuts down the change feed and the underlying database.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if err := s.feed.Close(); err != nil {
		logging.Error().Err(err).Msg("closing change feed")
	}
	return s.db.Close()
}

// DB exposes the underlying Badger instance for components that share the
// store's database (identity accounts).
func (s *BadgerStore) DB() *badger.DB {
	return s.db
}

// publish pushes a committed snapshot to the change feed. Publish failures
// are logged and dropped; the append itself already succeeded.
func (s *BadgerStore) publish(category models.Category, ownerKey string, snapshot []byte) {
	msg := message.NewMessage(watermill.NewUUID(), snapshot)
	msg.Metadata.Set("category", string(category))
	msg.Metadata.Set("owner", ownerKey)
	if err := s.feed.Publish(logTopic(category, ownerKey), msg); err != nil {
		logging.Error().Err(err).
			Str("category", string(category)).
			Msg("publishing log snapshot")
	}
}
