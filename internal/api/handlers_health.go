// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/clusterrec/internal/models"
)

// Health handles GET /api/v1/health. The service is degraded when the
// database does not answer or the input circuit breaker is open.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	health := models.HealthStatus{
		Status:  "healthy",
		Version: h.deps.Version,
		Uptime:  time.Since(h.startTime).Seconds(),
	}

	if h.deps.Database != nil {
		health.Database = h.deps.Database.Ping(ctx) == nil
		if !health.Database {
			health.Status = "degraded"
		}
	}
	if h.deps.ProviderState != nil {
		health.ProviderState = h.deps.ProviderState()
		if health.ProviderState == "open" {
			health.Status = "degraded"
		}
	}
	if h.deps.Runs != nil {
		if run, err := h.deps.Runs.LatestRun(ctx, h.deps.ModuleSource); err == nil {
			at := run.GeneratedAt
			health.LastRunAt = &at
		}
	}

	respondSuccess(w, http.StatusOK, health, start)
}
