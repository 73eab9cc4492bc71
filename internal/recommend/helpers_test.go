// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package recommend

import (
	"context"
	"math"
	"sort"
	"testing"
)

// scanIndex is an exact cosine index for tests inside this package.
type scanIndex struct {
	vectors [][]float64
	queries int
}

func (s *scanIndex) Name() string { return "scan" }

func (s *scanIndex) Build(_ context.Context, vectors [][]float64) error {
	s.vectors = vectors
	return nil
}

func (s *scanIndex) Len() int { return len(s.vectors) }

func (s *scanIndex) Query(_ context.Context, vector []float64, k int) ([]Neighbor, error) {
	s.queries++
	out := make([]Neighbor, len(s.vectors))
	for i, v := range s.vectors {
		out[i] = Neighbor{Index: i, Distance: CosineDistance(vector, v)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if k > len(out) {
		k = len(out)
	}
	return out[:k], nil
}

// fixedClusterer returns preset labels, or an error.
type fixedClusterer struct {
	labels []int
	err    error
	calls  int
	sizes  []int
}

func (f *fixedClusterer) Name() string { return "fixed" }

func (f *fixedClusterer) Cluster(_ context.Context, distances [][]float64, _ ClusteringConfig) ([]int, error) {
	f.calls++
	f.sizes = append(f.sizes, len(distances))
	if f.err != nil {
		return nil, f.err
	}
	return f.labels, nil
}

// staticProvider serves fixed inputs.
type staticProvider struct {
	items        []ContentItem
	interactions []Interaction
	users        []int64
	err          error
}

func (p *staticProvider) GetCatalog(context.Context) ([]ContentItem, error) {
	return p.items, p.err
}

func (p *staticProvider) GetInteractions(context.Context) ([]Interaction, error) {
	return p.interactions, nil
}

func (p *staticProvider) GetUsers(context.Context) ([]int64, error) {
	return p.users, nil
}

func unit(angle float64) []float64 {
	return []float64{math.Cos(angle), math.Sin(angle)}
}

// exampleCatalog is the four item catalog used throughout the tests.
func exampleCatalog() []ContentItem {
	return []ContentItem{
		{ContentID: 101, Embedding: []float64{1, 0}},
		{ContentID: 102, Embedding: []float64{0, 1}},
		{ContentID: 103, Embedding: []float64{1, 1}},
		{ContentID: 104, Embedding: []float64{-1, 0}},
	}
}

func exampleInteractions() []Interaction {
	return []Interaction{
		{UserID: 1, ContentID: 101, Rating: 5},
		{UserID: 1, ContentID: 102, Rating: 5},
		{UserID: 1, ContentID: 103, Rating: 1},
	}
}

func mustCatalog(t *testing.T, items []ContentItem) *Catalog {
	t.Helper()
	c, err := NewCatalog(items)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	return c
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
