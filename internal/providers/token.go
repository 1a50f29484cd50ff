// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package providers

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/mediamatrix/internal/logging"
	"github.com/tomtom215/mediamatrix/internal/metrics"
)

// tokenExpirySkew renews tokens slightly before the advertised expiry so an
// almost-expired token is never handed to a request.
const tokenExpirySkew = 30 * time.Second

// tokenSource caches an OAuth2 client-credentials bearer token and refreshes
// it on demand.
//
// Concurrent callers that find the cache empty or stale collapse into a
// single upstream exchange via singleflight; everyone receives the same
// token. Invalidate drops a token observed to be rejected (401) so the next
// Token call exchanges again.
type tokenSource struct {
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client

	group singleflight.Group

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

func newTokenSource(clientID, clientSecret, tokenURL string, client *http.Client) *tokenSource {
	return &tokenSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     tokenURL,
		httpClient:   client,
	}
}

// Token returns a cached bearer token, exchanging credentials upstream only
// when the cache is empty or stale.
func (ts *tokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.RLock()
	token, ok := ts.token, time.Now().Before(ts.expiresAt)
	ts.mu.RUnlock()
	if ok && token != "" {
		return token, nil
	}

	// All concurrent refreshers share one exchange.
	result, err, _ := ts.group.Do("token", func() (interface{}, error) {
		ts.mu.RLock()
		cached, fresh := ts.token, time.Now().Before(ts.expiresAt)
		ts.mu.RUnlock()
		if fresh && cached != "" {
			return cached, nil
		}
		return ts.exchange(ctx)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// Invalidate drops the cached token if it matches the one a caller saw
// rejected. A token already replaced by a newer exchange is left alone.
func (ts *tokenSource) Invalidate(rejected string) {
	ts.mu.Lock()
	if ts.token == rejected {
		ts.token = ""
		ts.expiresAt = time.Time{}
	}
	ts.mu.Unlock()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// exchange performs the client-credentials grant: POST with Basic auth over
// the id:secret pair, form-encoded grant_type body.
func (ts *tokenSource) exchange(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(ts.clientID + ":" + ts.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		metrics.TokenExchanges.WithLabelValues("spotify", "failure").Inc()
		return "", fmt.Errorf("%w: token exchange: %v", ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		metrics.TokenExchanges.WithLabelValues("spotify", "failure").Inc()
		return "", fmt.Errorf("%w: token exchange status %d: %s", ErrProviderUnavailable, resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		metrics.TokenExchanges.WithLabelValues("spotify", "failure").Inc()
		return "", fmt.Errorf("%w: token exchange: %v", ErrMalformedResponse, err)
	}
	if tr.AccessToken == "" {
		metrics.TokenExchanges.WithLabelValues("spotify", "failure").Inc()
		return "", fmt.Errorf("%w: token exchange returned empty access_token", ErrMalformedResponse)
	}

	expiresIn := time.Duration(tr.ExpiresIn) * time.Second
	if expiresIn <= tokenExpirySkew {
		expiresIn = time.Minute
	}

	ts.mu.Lock()
	ts.token = tr.AccessToken
	ts.expiresAt = time.Now().Add(expiresIn - tokenExpirySkew)
	ts.mu.Unlock()

	metrics.TokenExchanges.WithLabelValues("spotify", "success").Inc()
	logging.Debug().Dur("expires_in", expiresIn).Msg("spotify: token exchanged")
	return tr.AccessToken, nil
}
