// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

// Package store implements the append-only event log store.
//
// One document exists per (category, ownerKey) pair, holding the ordered
// sequence of search events for that partition. Documents are persisted in
// BadgerDB; appends are atomic read-modify-write operations inside a Badger
// transaction, which is the sole concurrency-safety mechanism for racing
// appends from multiple sessions.
//
// Every committed append publishes the full updated CategoryLog snapshot to
// an in-process Watermill Pub/Sub topic, which backs Subscribe. Subscribers
// receive a snapshot per mutation, in commit order, until cancelled.
package store
