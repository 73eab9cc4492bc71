// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

/*
Package models defines the JSON shapes returned by the HTTP API.

Every response uses the same envelope:

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "2026-01-02T03:04:05Z"}
	}

Errors carry a machine-readable code:

	{
	  "status": "error",
	  "data": null,
	  "error": {"code": "NOT_FOUND", "message": "No recommendations for user 7"},
	  "metadata": {"timestamp": "2026-01-02T03:04:05Z"}
	}
*/
package models
