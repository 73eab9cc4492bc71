// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

/*
Package database stores the recommender's input and output tables in DuckDB.

Tables:

	catalog          (content_id BIGINT, embedding DOUBLE[])
	interactions     (user_id BIGINT, content_id BIGINT, rating INTEGER)
	users            (user_id BIGINT PRIMARY KEY)
	recommendations  (user_id, content_id, recommendation_rank, module_source, run_id, generated_at)

*DB implements recommend.DataProvider. Catalog rows are returned in
insertion order, which fixes each item's catalog index and therefore the
tie-breaking order used during generation.

Input tables can be filled from CSV or Parquet files with ImportFile. A
CSV catalog stores each embedding as a list literal such as "[0.1, 0.2]".

Generated recommendations are written with ReplaceRecommendations, which
swaps every row of the table's module source in a single transaction so
readers never observe a partial run.

ResilientProvider wraps any recommend.DataProvider with a circuit breaker
so that repeated load failures fail fast instead of stacking up retries.
*/
package database
