// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

/*
Package api serves stored recommendations and generation control over HTTP
using the chi router.

# Endpoints

	GET  /api/v1/health                          liveness plus dependency state
	GET  /api/v1/recommendations/status          engine status and latest stored run
	POST /api/v1/recommendations/generate        request a run (202, 409 or 429)
	GET  /api/v1/recommendations/{userID}?limit= ranked list for one user
	GET  /metrics                                Prometheus exposition

All JSON responses use models.APIResponse. Reads go through the LRU result
cache and fall back to the badger store.
*/
package api
