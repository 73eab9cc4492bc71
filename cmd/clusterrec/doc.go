// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

// Command clusterrec generates clustered content-based recommendations.
//
// # Modes
//
//	clusterrec [serve]   run the supervisor tree: scheduled generation plus the HTTP API
//	clusterrec generate  run once, write every output and exit
//
// Both modes accept -config to point at a YAML file. Without it the file
// named by CONFIG_PATH or the first of config.yaml, config.yml and
// /etc/clusterrec/config.yaml is used if present.
//
// # Startup Order
//
//  1. Configuration (koanf: defaults, YAML, environment)
//  2. Logging (zerolog)
//  3. DuckDB, then optional CSV/Parquet imports into the input tables
//  4. Engine with HDBSCAN clustering and a brute-force neighbor index
//  5. BadgerDB result store, LRU read cache, event publisher
//  6. serve only: supervisor tree with generation, maintenance and HTTP services
//
// # Build Tags
//
//	go build -tags nats ./cmd/clusterrec   # NATS JetStream events backend
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. A run in progress is
// cancelled, the HTTP server drains for server.timeout and stores are
// closed in reverse order of opening.
package main
