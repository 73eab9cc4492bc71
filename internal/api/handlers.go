// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package api

import (
	"context"
	"time"

	"github.com/tomtom215/clusterrec/internal/recommend"
	"github.com/tomtom215/clusterrec/internal/store"
	"github.com/tomtom215/clusterrec/internal/supervisor/services"
)

// RecommendationReader serves one user's stored list.
type RecommendationReader interface {
	UserRecommendations(ctx context.Context, moduleSource string, userID int64) (*store.UserRecommendations, error)
}

// RunReader returns the run currently served.
type RunReader interface {
	LatestRun(ctx context.Context, moduleSource string) (*store.RunRecord, error)
}

// GenerationController starts runs and reports engine status.
type GenerationController interface {
	Trigger() services.TriggerResult
	Status() (recommend.RunStatus, bool)
}

// Pinger checks a backing database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandlerDeps collects handler dependencies. Generation and Database may
// be nil.
type HandlerDeps struct {
	Recommendations RecommendationReader
	Runs            RunReader
	Generation      GenerationController
	Database        Pinger
	// ProviderState reports the input circuit breaker state.
	ProviderState func() string
	ModuleSource  string
	Version       string
}

// Handler implements the API endpoints.
type Handler struct {
	deps      HandlerDeps
	startTime time.Time
}

// NewHandler creates a handler.
func NewHandler(deps HandlerDeps) *Handler {
	if deps.ModuleSource == "" {
		deps.ModuleSource = recommend.ModuleSourceContentBased
	}
	if deps.Version == "" {
		deps.Version = "dev"
	}
	return &Handler{deps: deps, startTime: time.Now()}
}
