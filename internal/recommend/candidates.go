// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package recommend

import (
	"context"
	"fmt"
)

// CandidateGenerator produces the raw candidate list of a user.
// It only reads shared state and is safe for concurrent use.
type CandidateGenerator struct {
	catalog *Catalog
	index   NeighborIndex
	cfg     *Config
}

// NewCandidateGenerator creates a generator. index must already be built
// over catalog.Matrix().
func NewCandidateGenerator(catalog *Catalog, index NeighborIndex, cfg *Config) *CandidateGenerator {
	return &CandidateGenerator{catalog: catalog, index: index, cfg: cfg}
}

// CandidateStats describes how a candidate list was assembled.
type CandidateStats struct {
	FewInterest bool
	Clusters    int
	Supplement  int
}

type poolEntry struct {
	row   int
	score float64
}

// FallbackPool returns up to FallbackPoolSize catalog rows ordered by
// descending similarity, ties by ascending row.
func (g *CandidateGenerator) FallbackPool(profile *UserProfile) []int {
	top := NewTopK(g.cfg.FallbackPoolSize, func(a, b poolEntry) bool {
		if a.score != b.score {
			return a.score < b.score
		}
		return a.row > b.row
	})
	for row, score := range profile.SimilarityScores {
		top.Push(poolEntry{row: row, score: score})
	}

	sorted := top.Sorted()
	rows := make([]int, len(sorted))
	for i, e := range sorted {
		rows[i] = e.row
	}
	return rows
}

// Generate returns the candidate list of profile, capped at
// TotalRecommendations.
func (g *CandidateGenerator) Generate(ctx context.Context, profile *UserProfile) ([]Candidate, CandidateStats, error) {
	var stats CandidateStats
	limit := g.cfg.TotalRecommendations
	pool := g.FallbackPool(profile)

	if len(profile.GoodItems) < g.cfg.MinGoodItemsForClustering {
		stats.FewInterest = true
		candidates := make([]Candidate, 0, limit)
		candidates = g.fromPool(profile, pool, candidates, nil, SourceFallback)
		return candidates, stats, nil
	}

	candidates, err := g.fromClusters(ctx, profile, &stats)
	if err != nil {
		return nil, stats, err
	}

	if len(candidates) < limit {
		added := make(map[int64]struct{}, len(candidates))
		for _, c := range candidates {
			added[c.ContentID] = struct{}{}
		}
		before := len(candidates)
		candidates = g.fromPool(profile, pool, candidates, added, SourceSupplement)
		stats.Supplement = len(candidates) - before
	}

	return candidates, stats, nil
}

// fromClusters walks allocations in order and stops every cluster once the
// global cap is reached.
func (g *CandidateGenerator) fromClusters(ctx context.Context, profile *UserProfile, stats *CandidateStats) ([]Candidate, error) {
	limit := g.cfg.TotalRecommendations
	candidates := make([]Candidate, 0, limit)

	for _, alloc := range AllocateSlots(profile, limit) {
		if len(candidates) >= limit {
			break
		}
		stats.Clusters++

		vectors := make([][]float64, len(alloc.Members))
		for i, row := range alloc.Members {
			vectors[i] = g.catalog.Vector(row)
		}
		centroid := MeanVector(vectors, g.catalog.Dim())

		k := alloc.Slots
		if n := g.catalog.Len(); k > n {
			k = n
		}
		neighbors, err := g.index.Query(ctx, centroid, k)
		if err != nil {
			return nil, fmt.Errorf("query neighbors of cluster %d: %w", alloc.Label, err)
		}

		for _, nb := range neighbors {
			id := g.catalog.ContentID(nb.Index)
			if profile.Seen(id) {
				continue
			}
			candidates = append(candidates, Candidate{
				UserID:    profile.UserID,
				ContentID: id,
				Score:     1 - nb.Distance,
				Source:    SourceCluster,
				Cluster:   alloc.Label,
			})
			if len(candidates) >= limit {
				break
			}
		}
	}
	return candidates, nil
}

// fromPool appends unseen pool items until the cap. When added is non-nil,
// ids already present are skipped and recorded.
func (g *CandidateGenerator) fromPool(profile *UserProfile, pool []int, candidates []Candidate, added map[int64]struct{}, source CandidateSource) []Candidate {
	limit := g.cfg.TotalRecommendations
	for _, row := range pool {
		if len(candidates) >= limit {
			break
		}
		id := g.catalog.ContentID(row)
		if profile.Seen(id) {
			continue
		}
		if added != nil {
			if _, dup := added[id]; dup {
				continue
			}
			added[id] = struct{}{}
		}
		candidates = append(candidates, Candidate{
			UserID:    profile.UserID,
			ContentID: id,
			Score:     profile.SimilarityScores[row],
			Source:    source,
			Cluster:   NoiseCluster,
		})
	}
	return candidates
}
