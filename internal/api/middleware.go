// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/tomtom215/mediamatrix/internal/logging"
)

type ownerKeyContextKey struct{}

// OwnerKeyFromContext returns the authenticated owner key, or "" for an
// unauthenticated request.
func OwnerKeyFromContext(ctx context.Context) string {
	if key, ok := ctx.Value(ownerKeyContextKey{}).(string); ok {
		return key
	}
	return ""
}

func contextWithOwnerKey(ctx context.Context, ownerKey string) context.Context {
	return context.WithValue(ctx, ownerKeyContextKey{}, ownerKey)
}

// Authenticate verifies the bearer token and injects the owner key into the
// request context. The token may arrive in the Authorization header or, for
// the WebSocket endpoint where browsers cannot set headers, in the "token"
// query parameter.
func (router *Router) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			NewResponseWriter(w, r).Unauthorized("missing credentials")
			return
		}

		ownerKey, err := router.identity.VerifyToken(token)
		if err != nil {
			logger := logging.Ctx(r.Context())
			logger.Debug().Err(err).Msg("token verification failed")
			NewResponseWriter(w, r).Unauthorized("invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(contextWithOwnerKey(r.Context(), ownerKey)))
	})
}

func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return token
		}
		return ""
	}
	return r.URL.Query().Get("token")
}
