// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package recommend

import "context"

// Clusterer partitions points given their pairwise distances.
//
// Implementations must be deterministic: identical distances and parameters
// produce identical labels. Label NoiseCluster (-1) marks unassigned points.
type Clusterer interface {
	// Name returns the algorithm identifier used in logs.
	Name() string

	// Cluster returns one label per row of the square distance matrix.
	Cluster(ctx context.Context, distances [][]float64, params ClusteringConfig) ([]int, error)
}

// Neighbor is one nearest-neighbor result.
type Neighbor struct {
	// Index is the row in the vectors passed to Build.
	Index int
	// Distance is the cosine distance to the query vector.
	Distance float64
}

// NeighborIndex answers cosine k-nearest-neighbor queries over a fixed set
// of vectors. Query must be safe for concurrent use once Build returns.
type NeighborIndex interface {
	// Name returns the index identifier used in logs.
	Name() string

	// Build indexes vectors, replacing any previous contents.
	Build(ctx context.Context, vectors [][]float64) error

	// Query returns up to k neighbors of vector in increasing distance order.
	// k larger than Len is clamped.
	Query(ctx context.Context, vector []float64, k int) ([]Neighbor, error)

	// Len returns the number of indexed vectors.
	Len() int
}

// DataProvider loads the inputs of a generation run.
// It is typically implemented by the database layer.
type DataProvider interface {
	// GetCatalog returns every content item in a stable order.
	GetCatalog(ctx context.Context) ([]ContentItem, error)

	// GetInteractions returns the full interaction log.
	GetInteractions(ctx context.Context) ([]Interaction, error)

	// GetUsers returns the ids in the users table.
	GetUsers(ctx context.Context) ([]int64, error)
}
