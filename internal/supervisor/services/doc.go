// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

/*
Package services provides suture.Service wrappers for MediaMatrix components.

This package adapts existing application components to the suture v4
supervision model, translating their lifecycle patterns (ListenAndServe,
Shutdown, periodic maintenance) into suture's context-aware Serve pattern.

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Available services:

  - HTTPServerService wraps *http.Server with graceful shutdown.
  - WebSocketHubService keeps the hub registered for supervised teardown.
  - StoreGCService runs periodic Badger value-log garbage collection.
*/
package services
