// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

/*
Package services provides suture.Service wrappers for clusterrec components.

Each wrapper implements suture.Service and fmt.Stringer:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

Generation (GenerationService):
  - Runs the recommendation engine on start, on an interval and on demand
  - Writes each finished run to its sinks (DuckDB, BadgerDB, read cache, events)
  - Manual triggers are coalesced and throttled

Maintenance (MaintenanceService):
  - Runs periodic storage upkeep such as badger value log GC and DuckDB
    checkpoints

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
*/
package services
