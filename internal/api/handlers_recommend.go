// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/clusterrec/internal/models"
	"github.com/tomtom215/clusterrec/internal/store"
	"github.com/tomtom215/clusterrec/internal/supervisor/services"
)

// UserRecommendationsRequest holds validated parameters.
type UserRecommendationsRequest struct {
	UserID int64 `validate:"min=0"`
	Limit  int   `validate:"min=0,max=1000"`
}

// GetUserRecommendations handles GET /api/v1/recommendations/{userID}.
func (h *Handler) GetUserRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "userID must be an integer", nil)
		return
	}
	limit, err := parseIntQuery(r, "limit", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	req := UserRecommendationsRequest{UserID: userID, Limit: limit}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	recs, err := h.deps.Recommendations.UserRecommendations(ctx, h.deps.ModuleSource, req.UserID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("No recommendations for user %d", req.UserID), nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to read recommendations", err)
		return
	}

	respondSuccess(w, http.StatusOK, models.NewUserRecommendationsResponse(recs, req.Limit), start)
}

// GenerationStatus handles GET /api/v1/recommendations/status.
func (h *Handler) GenerationStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var resp models.GenerationStatusResponse

	if h.deps.Generation != nil {
		if st, ok := h.deps.Generation.Status(); ok {
			resp.Engine = &st
		}
	}

	run, err := h.deps.Runs.LatestRun(r.Context(), h.deps.ModuleSource)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to read latest run", err)
		return
	default:
		resp.LatestRun = run
	}

	respondSuccess(w, http.StatusOK, resp, start)
}

// TriggerGeneration handles POST /api/v1/recommendations/generate.
func (h *Handler) TriggerGeneration(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	if h.deps.Generation == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Generation is not enabled", nil)
		return
	}

	result := h.deps.Generation.Trigger()
	switch result {
	case services.TriggerAccepted, services.TriggerCoalesced:
		respondSuccess(w, http.StatusAccepted, models.TriggerResponse{Result: string(result)}, start)
	case services.TriggerBusy:
		respondError(w, http.StatusConflict, "GENERATION_IN_PROGRESS", "A generation run is already in progress", nil)
	default:
		respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Generation was triggered too recently", nil)
	}
}
