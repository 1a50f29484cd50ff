// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/mediamatrix/internal/identity"
	"github.com/tomtom215/mediamatrix/internal/logging"
	"github.com/tomtom215/mediamatrix/internal/models"
	"github.com/tomtom215/mediamatrix/internal/store"
)

// Register handles POST /api/v1/auth/register.
func (router *Router) Register(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req registerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := router.identity.Register(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, identity.ErrAccountExists):
		rw.Conflict("an account with this email already exists")
		return
	case errors.Is(err, identity.ErrWeakPassword), errors.Is(err, identity.ErrInvalidCredentials):
		rw.BadRequest(err.Error())
		return
	case err != nil:
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("registration failed")
		rw.InternalError("registration failed")
		return
	}

	token, err := router.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("post-registration login failed")
		rw.InternalError("registration succeeded but login failed")
		return
	}

	rw.Created(map[string]string{
		"token":    token,
		"ownerKey": identity.NormalizeKey(req.Email),
	})
}

// Login handles POST /api/v1/auth/login.
func (router *Router) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	token, err := router.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			rw.Unauthorized("invalid email or password")
			return
		}
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("login failed")
		rw.InternalError("login failed")
		return
	}

	rw.Success(map[string]string{
		"token":    token,
		"ownerKey": identity.NormalizeKey(req.Email),
	})
}

// RecordHistory handles POST /api/v1/history/{category}.
//
// Recording is fire-and-forget: the 202 acknowledges receipt, not
// durability. A store failure is logged server-side and never surfaces, so
// the client's primary action is never blocked by history bookkeeping.
func (router *Router) RecordHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	category, ok := categoryParam(w, r)
	if !ok {
		return
	}

	var req recordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	action := models.ActionSearched
	if req.Action != "" {
		parsed, ok := models.ParseAction(req.Action)
		if !ok {
			rw.BadRequest("unknown action")
			return
		}
		action = parsed
	}

	ownerKey := OwnerKeyFromContext(r.Context())
	router.recorder.Record(r.Context(), ownerKey, category, req.Subject, action)

	rw.Accepted(map[string]string{"status": "recorded"})
}

// GetHistory handles GET /api/v1/history/{category}.
func (router *Router) GetHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	category, ok := categoryParam(w, r)
	if !ok {
		return
	}

	ownerKey := OwnerKeyFromContext(r.Context())
	log, err := router.store.Read(r.Context(), category, ownerKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rw.Success(models.CategoryLog{
				Category: category,
				OwnerKey: ownerKey,
				Events:   []models.SearchEvent{},
			})
			return
		}
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).
			Str("category", category.String()).
			Msg("history read failed")
		rw.InternalError("failed to read history")
		return
	}

	rw.Success(log)
}

// Recommendations handles GET /api/v1/recommendations: the refresh-all
// contract behind pull-to-refresh. Always 200; provider failures are
// already folded into empty per-category results.
func (router *Router) Recommendations(w http.ResponseWriter, r *http.Request) {
	ownerKey := OwnerKeyFromContext(r.Context())
	results := router.aggregator.Run(r.Context(), ownerKey)
	NewResponseWriter(w, r).Success(results)
}

// RecommendationsCategory handles GET /api/v1/recommendations/{category}.
func (router *Router) RecommendationsCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryParam(w, r)
	if !ok {
		return
	}

	ownerKey := OwnerKeyFromContext(r.Context())
	result := router.aggregator.RunCategory(r.Context(), ownerKey, category)
	NewResponseWriter(w, r).Success(result)
}

// WebSocket handles GET /api/v1/ws: upgrades the connection and streams
// per-category aggregation results as the owner's watches fire.
func (router *Router) WebSocket(w http.ResponseWriter, r *http.Request) {
	ownerKey := OwnerKeyFromContext(r.Context())
	router.hub.ServeWS(w, r, ownerKey)
}

// categoryParam parses the {category} URL parameter, writing a 404 for
// anything outside the fixed category set.
func categoryParam(w http.ResponseWriter, r *http.Request) (models.Category, bool) {
	raw := chi.URLParam(r, "category")
	category, err := models.ParseCategory(raw)
	if err != nil {
		NewResponseWriter(w, r).NotFound("unknown category")
		return "", false
	}
	return category, true
}
