// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

// Package recommend implements the clustering-based content recommender.
//
// For every user the engine:
//
//  1. Builds a UserProfile: good (rating 4-5) and negative (rating 1-2) items,
//     the mean embedding of the good items, cosine similarity of that vector
//     against the whole catalog, and a cluster label per good item.
//  2. Generates candidates: users with few good items are served straight
//     from the similarity-ordered fallback pool; everyone else gets
//     nearest-neighbor retrieval around each cluster centroid, with slots
//     proportional to cluster size, backfilled from the fallback pool.
//  3. Aggregates: bounded top-K selection, stable ranking, provenance label.
//
// Clustering and nearest-neighbor search are consumed through the Clusterer
// and NeighborIndex interfaces; the default implementations (HDBSCAN over a
// precomputed cosine distance matrix and an exact brute-force index) live in
// the algorithms subpackage.
//
// # Determinism
//
// Output depends only on the catalog, the interaction log and Config. Batch
// size and worker count change how work is scheduled, never what is produced.
//
// # Thread Safety
//
// Engine is safe for concurrent use. Generate serializes runs; Status may be
// read at any time.
package recommend
