// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mediamatrix/internal/aggregator"
	"github.com/tomtom215/mediamatrix/internal/config"
	"github.com/tomtom215/mediamatrix/internal/models"
	"github.com/tomtom215/mediamatrix/internal/providers"
	"github.com/tomtom215/mediamatrix/internal/signal"
	"github.com/tomtom215/mediamatrix/internal/store"
)

type echoAdapter struct {
	category models.Category
}

func (a *echoAdapter) Category() models.Category { return a.category }

func (a *echoAdapter) FetchSimilar(_ context.Context, subject string) ([]models.Candidate, error) {
	return []models.Candidate{{
		ID:             "echo-1",
		Title:          "similar to " + subject,
		SourceCategory: a.category,
	}}, nil
}

func (a *echoAdapter) FetchTrending(context.Context) ([]models.Candidate, error) {
	return []models.Candidate{}, nil
}

type hubFixture struct {
	hub   *Hub
	store *store.BadgerStore
	url   string
}

func newHubFixture(t *testing.T, ownerKey string) *hubFixture {
	t.Helper()

	eventStore, err := store.Open(store.Config{InMemory: true})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := eventStore.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})

	adapters := map[models.Category]providers.Adapter{
		models.CategoryMovie: &echoAdapter{category: models.CategoryMovie},
	}
	agg := aggregator.New(signal.NewResolver(eventStore), adapters, config.AggregatorConfig{
		CategoryTimeout: 5 * time.Second,
	})

	hub := NewHub(agg)
	t.Cleanup(hub.Shutdown)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, ownerKey)
	}))
	t.Cleanup(server.Close)

	return &hubFixture{
		hub:   hub,
		store: eventStore,
		url:   "ws" + strings.TrimPrefix(server.URL, "http"),
	}
}

func dial(t *testing.T, url string) *gorilla.Conn {
	t.Helper()
	conn, resp, err := gorilla.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readResult reads frames until one matches the predicate or the deadline
// passes.
func readResult(t *testing.T, conn *gorilla.Conn, match func(aggregator.Result) bool) aggregator.Result {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	if err := conn.SetReadDeadline(deadline); err != nil {
		t.Fatalf("set deadline: %v", err)
	}

	for time.Now().Before(deadline) {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read frame: %v", err)
		}
		if msg.Type != MessageTypeRecommendations {
			continue
		}

		raw, err := json.Marshal(msg.Data)
		if err != nil {
			t.Fatalf("remarshal data: %v", err)
		}
		var result aggregator.Result
		if err := json.Unmarshal(raw, &result); err != nil {
			t.Fatalf("decode result: %v", err)
		}
		if match(result) {
			return result
		}
	}
	t.Fatal("no matching frame before deadline")
	return aggregator.Result{}
}

func TestConnectPushesInitialState(t *testing.T) {
	fixture := newHubFixture(t, "user@example.com")
	conn := dial(t, fixture.url)

	// The initial refresh-all pass covers every category, including those
	// with no adapter.
	seen := make(map[models.Category]bool)
	for len(seen) < len(models.Categories) {
		result := readResult(t, conn, func(aggregator.Result) bool { return true })
		seen[result.Category] = true
	}
}

func TestAppendTriggersLivePush(t *testing.T) {
	fixture := newHubFixture(t, "user@example.com")
	conn := dial(t, fixture.url)

	// Drain the initial pass so the watch is known to be established.
	for seen := 0; seen < len(models.Categories); seen++ {
		readResult(t, conn, func(aggregator.Result) bool { return true })
	}

	event := models.NewSearchEvent("dune", models.ActionSearched, time.Now())
	if err := fixture.store.Append(context.Background(), models.CategoryMovie, "user@example.com", event); err != nil {
		t.Fatalf("append: %v", err)
	}

	result := readResult(t, conn, func(r aggregator.Result) bool {
		return r.Category == models.CategoryMovie && r.SubjectPresent
	})
	if result.Subject != "dune" {
		t.Errorf("got subject %q, want %q", result.Subject, "dune")
	}
	if len(result.Candidates) != 1 || result.Candidates[0].Title != "similar to dune" {
		t.Errorf("got candidates %+v", result.Candidates)
	}
}

func TestClientCountTracksConnections(t *testing.T) {
	fixture := newHubFixture(t, "user@example.com")

	if n := fixture.hub.ClientCount(); n != 0 {
		t.Fatalf("got %d clients before connect", n)
	}

	conn := dial(t, fixture.url)

	waitFor(t, func() bool { return fixture.hub.ClientCount() == 1 })

	_ = conn.Close()
	waitFor(t, func() bool { return fixture.hub.ClientCount() == 0 })
}

func TestShutdownDisconnectsClients(t *testing.T) {
	fixture := newHubFixture(t, "user@example.com")
	conn := dial(t, fixture.url)
	waitFor(t, func() bool { return fixture.hub.ClientCount() == 1 })

	fixture.hub.Shutdown()

	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("set deadline: %v", err)
	}
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	if n := fixture.hub.ClientCount(); n != 0 {
		t.Errorf("got %d clients after shutdown", n)
	}

	// New connections are rejected after shutdown.
	c, resp, err := gorilla.DefaultDialer.Dial(fixture.url, nil)
	if resp != nil {
		_ = resp.Body.Close()
	}
	if err == nil {
		// The upgrade may succeed before the hub rejects the client; the
		// connection must then close immediately.
		_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
		if _, _, readErr := c.ReadMessage(); readErr == nil {
			t.Error("connection stayed open after hub shutdown")
		}
		_ = c.Close()
	}
}

func TestUnauthenticatedUpgradeRejected(t *testing.T) {
	fixture := newHubFixture(t, "")

	conn, resp, err := gorilla.DefaultDialer.Dial(fixture.url, nil)
	if err == nil {
		_ = conn.Close()
		t.Fatal("dial succeeded without an owner key")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("got response %+v, want 401", resp)
	}
	_ = resp.Body.Close()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
