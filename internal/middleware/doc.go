// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

// Package middleware provides HTTP middleware shared by the API router:
// request correlation ids and Prometheus request metrics.
package middleware
