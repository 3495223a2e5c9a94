// Venued - Venue Booking Dashboard and Offer Automation
// Copyright 2026 Venued Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venued/venued

package api

import (
	"net/http"
	"time"

	"github.com/venued/venued/internal/logging"
	"github.com/venued/venued/internal/recommend"
	"github.com/venued/venued/internal/validation"
)

// Recommend returns venue recommendations for an event prompt.
//
// The recommendation manager never fails: provider outages surface as the
// static fallback set with source "fallback", so this endpoint returns 200
// for any valid request. With no provider configured the fallback set is
// returned directly.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR",
			"Request body must be JSON with a prompt field", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	if h.recommender == nil {
		logging.Ctx(r.Context()).Warn().Msg("recommendation provider not configured, serving fallback data")
		respondSuccess(w, r, http.StatusOK, &recommend.Result{
			Recommendations: recommend.FallbackRecommendations(),
			Source:          recommend.SourceFallback,
		})
		return
	}

	result := h.recommender.GetRecommendations(r.Context(), req.Prompt)

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   result,
		Metadata: Metadata{
			Timestamp:  time.Now(),
			DurationMS: result.Performance.DurationMs,
			Cached:     result.Cached,
			RequestID:  logging.RequestIDFromContext(r.Context()),
		},
	})
}

// RecommendCacheStats exposes recommendation cache counters and entry ages.
func (h *Handler) RecommendCacheStats(w http.ResponseWriter, r *http.Request) {
	if h.recommender == nil {
		respondSuccess(w, r, http.StatusOK, recommend.CacheStats{})
		return
	}
	respondSuccess(w, r, http.StatusOK, h.recommender.GetCacheStats())
}

// RecommendCacheClean evicts expired recommendation cache entries.
func (h *Handler) RecommendCacheClean(w http.ResponseWriter, r *http.Request) {
	evicted := 0
	if h.recommender != nil {
		evicted = h.recommender.CleanCache()
	}
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"evicted": evicted,
	})
}
