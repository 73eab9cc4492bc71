// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

// Package algorithms provides the default Clusterer and NeighborIndex
// implementations for the recommend engine.
//
//   - HDBSCAN: hierarchical density clustering over a precomputed distance
//     matrix with excess-of-mass or leaf cluster selection.
//   - BruteForceIndex: exact cosine k-nearest-neighbor search by linear scan.
//
// # Determinism
//
// Neither implementation uses randomness. Ties are broken by point or row
// index so identical inputs always yield identical outputs.
//
// # Thread Safety
//
// HDBSCAN is stateless. BruteForceIndex takes an exclusive lock in Build and
// a shared lock in Query.
package algorithms
