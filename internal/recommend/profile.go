// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package recommend

import (
	"context"
	"fmt"
	"sort"
)

// ProfileBuilder turns a user's interactions into a UserProfile.
// It holds no per-user state and is safe for concurrent use.
type ProfileBuilder struct {
	catalog   *Catalog
	clusterer Clusterer
	cfg       *Config
}

// NewProfileBuilder creates a builder over catalog.
func NewProfileBuilder(catalog *Catalog, clusterer Clusterer, cfg *Config) *ProfileBuilder {
	return &ProfileBuilder{catalog: catalog, clusterer: clusterer, cfg: cfg}
}

// Build computes the profile of userID from that user's interactions.
// Interactions with content ids missing from the catalog are ignored.
func (b *ProfileBuilder) Build(ctx context.Context, userID int64, interactions []Interaction) (*UserProfile, error) {
	profile := &UserProfile{
		UserID:               userID,
		PreviousInteractions: make(map[int64]struct{}),
	}

	goodRows := make(map[int]struct{})
	for _, in := range interactions {
		row, ok := b.catalog.IndexOf(in.ContentID)
		if !ok {
			continue
		}
		switch {
		case in.IsGood():
			goodRows[row] = struct{}{}
			profile.PreviousInteractions[in.ContentID] = struct{}{}
		case in.IsNegative():
			profile.PreviousInteractions[in.ContentID] = struct{}{}
		}
	}

	rows := make([]int, 0, len(goodRows))
	for row := range goodRows {
		rows = append(rows, row)
	}
	sort.Ints(rows)

	vectors := make([][]float64, len(rows))
	profile.GoodItems = make([]GoodItem, len(rows))
	for i, row := range rows {
		vectors[i] = b.catalog.Vector(row)
		profile.GoodItems[i] = GoodItem{ContentID: b.catalog.ContentID(row), CatalogIndex: row}
	}

	profile.PositiveVector = MeanVector(vectors, b.catalog.Dim())
	profile.SimilarityScores = b.catalog.Similarities(profile.PositiveVector)

	labels, clustered, err := b.clusterLabels(ctx, vectors)
	if err != nil {
		return nil, fmt.Errorf("cluster good items of user %d: %w", userID, err)
	}
	for i := range profile.GoodItems {
		profile.GoodItems[i].Cluster = labels[i]
	}
	profile.Clustered = clustered

	return profile, nil
}

// clusterLabels assigns singleton labels below the clustering threshold and
// delegates to the Clusterer otherwise.
func (b *ProfileBuilder) clusterLabels(ctx context.Context, vectors [][]float64) ([]int, bool, error) {
	if len(vectors) < b.cfg.MinGoodItemsForClustering {
		labels := make([]int, len(vectors))
		for i := range labels {
			labels[i] = i
		}
		return labels, false, nil
	}

	if b.clusterer == nil {
		return nil, false, fmt.Errorf("clusterer: %w", ErrNotConfigured)
	}

	labels, err := b.clusterer.Cluster(ctx, CosineDistanceMatrix(vectors), b.cfg.Clustering)
	if err != nil {
		return nil, false, err
	}
	if len(labels) != len(vectors) {
		return nil, false, fmt.Errorf("%s returned %d labels for %d points", b.clusterer.Name(), len(labels), len(vectors))
	}
	return labels, true, nil
}
