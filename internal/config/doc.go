// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

/*
Package config loads clusterrec configuration.

Configuration is layered with koanf, highest priority last:

 1. Defaults compiled into defaultConfig
 2. An optional YAML file (CONFIG_PATH, config.yaml, /etc/clusterrec/config.yaml)
 3. Environment variables listed in envMappings

Example config.yaml:

	recommend:
	  total_recommendations: 50
	  fallback_pool_size: 2000
	  clustering:
	    min_cluster_size: 5
	    min_samples: 3
	generation:
	  interval: 6h
	  run_on_start: true
	database:
	  path: /data/clusterrec.duckdb
	  import:
	    catalog: /data/catalog.parquet

Unknown environment variables are ignored.
*/
package config
