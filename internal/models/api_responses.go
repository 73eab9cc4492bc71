// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package models

import (
	"time"

	"github.com/tomtom215/clusterrec/internal/recommend"
	"github.com/tomtom215/clusterrec/internal/store"
)

// APIResponse is the envelope of every API response.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata describes how a response was produced.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is a structured error body.
//
// Codes in use:
//   - VALIDATION_ERROR: invalid path or query parameter
//   - NOT_FOUND: no stored recommendations for the user
//   - STORE_ERROR: result store read failure
//   - GENERATION_IN_PROGRESS: a run is already executing
//   - RATE_LIMIT_EXCEEDED: trigger or request rate exceeded
//   - SERVICE_UNAVAILABLE: component not configured in this mode
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RecommendedItem is one ranked item.
type RecommendedItem struct {
	ContentID int64 `json:"content_id"`
	Rank      int   `json:"rank"`
}

// UserRecommendationsResponse is the body of GET /recommendations/{userID}.
type UserRecommendationsResponse struct {
	UserID       int64             `json:"user_id"`
	ModuleSource string            `json:"module_source"`
	RunID        string            `json:"run_id"`
	GeneratedAt  time.Time         `json:"generated_at"`
	Items        []RecommendedItem `json:"items"`
}

// NewUserRecommendationsResponse keeps at most limit items. A non-positive
// limit keeps all of them.
func NewUserRecommendationsResponse(u *store.UserRecommendations, limit int) UserRecommendationsResponse {
	items := u.Items
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	out := make([]RecommendedItem, len(items))
	for i, r := range items {
		out[i] = RecommendedItem{ContentID: r.ContentID, Rank: r.Rank}
	}
	return UserRecommendationsResponse{
		UserID:       u.UserID,
		ModuleSource: u.ModuleSource,
		RunID:        u.RunID,
		GeneratedAt:  u.GeneratedAt,
		Items:        out,
	}
}

// GenerationStatusResponse is the body of GET /recommendations/status.
type GenerationStatusResponse struct {
	Engine    *recommend.RunStatus `json:"engine,omitempty"`
	LatestRun *store.RunRecord     `json:"latest_run"`
}

// TriggerResponse is the body of POST /recommendations/generate.
type TriggerResponse struct {
	Result string `json:"result"`
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status        string     `json:"status"`
	Version       string     `json:"version"`
	Database      bool       `json:"database_connected"`
	ProviderState string     `json:"provider_state,omitempty"`
	LastRunAt     *time.Time `json:"last_run_at,omitempty"`
	Uptime        float64    `json:"uptime_seconds"`
}
