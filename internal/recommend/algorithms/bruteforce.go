// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package algorithms

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/clusterrec/internal/recommend"
)

// BruteForceIndex is an exact cosine nearest-neighbor index. Every query
// scans all vectors, so cost is linear in the index size.
type BruteForceIndex struct {
	mu          sync.RWMutex
	vectors     [][]float64
	norms       []float64
	dim         int
	version     int
	lastBuiltAt time.Time
}

// NewBruteForceIndex creates an empty index.
func NewBruteForceIndex() *BruteForceIndex {
	return &BruteForceIndex{}
}

// Name returns the index identifier.
func (b *BruteForceIndex) Name() string {
	return "brute_force"
}

// Build replaces the indexed vectors. The slices are retained, not copied.
func (b *BruteForceIndex) Build(ctx context.Context, vectors [][]float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	norms := make([]float64, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("vector %d has dimension %d, expected %d", i, len(v), dim)
		}
		norms[i] = recommend.Norm(v)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.vectors = vectors
	b.norms = norms
	b.dim = dim
	b.version++
	b.lastBuiltAt = time.Now()
	return nil
}

// Len returns the number of indexed vectors.
func (b *BruteForceIndex) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.vectors)
}

// Version returns how many times Build has succeeded.
func (b *BruteForceIndex) Version() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// Query returns the k nearest vectors by cosine distance, nearest first.
// Equal distances are ordered by row.
func (b *BruteForceIndex) Query(ctx context.Context, vector []float64, k int) ([]recommend.Neighbor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if k > len(b.vectors) {
		k = len(b.vectors)
	}
	if k <= 0 {
		return []recommend.Neighbor{}, nil
	}
	if len(vector) != b.dim {
		return nil, fmt.Errorf("query has dimension %d, index has %d", len(vector), b.dim)
	}

	top := recommend.NewTopK(k, func(x, y recommend.Neighbor) bool {
		if x.Distance != y.Distance {
			return x.Distance > y.Distance
		}
		return x.Index > y.Index
	})

	qn := recommend.Norm(vector)
	for i, v := range b.vectors {
		var sim float64
		if qn != 0 && b.norms[i] != 0 {
			sim = recommend.Dot(vector, v) / (qn * b.norms[i])
		}
		d := 1 - sim
		if d < 0 {
			d = 0
		}
		top.Push(recommend.Neighbor{Index: i, Distance: d})
	}
	return top.Sorted(), nil
}
