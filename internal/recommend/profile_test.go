// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package recommend

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestProfileBuilder_ExampleProfile(t *testing.T) {
	t.Parallel()

	b := NewProfileBuilder(mustCatalog(t, exampleCatalog()), nil, DefaultConfig())
	p, err := b.Build(context.Background(), 1, exampleInteractions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	wantGood := []GoodItem{
		{ContentID: 101, CatalogIndex: 0, Cluster: 0},
		{ContentID: 102, CatalogIndex: 1, Cluster: 1},
	}
	if !reflect.DeepEqual(p.GoodItems, wantGood) {
		t.Errorf("GoodItems = %+v, want %+v", p.GoodItems, wantGood)
	}
	if !reflect.DeepEqual(p.PositiveVector, []float64{0.5, 0.5}) {
		t.Errorf("PositiveVector = %v", p.PositiveVector)
	}
	for _, id := range []int64{101, 102, 103} {
		if !p.Seen(id) {
			t.Errorf("content %d should be a previous interaction", id)
		}
	}
	if p.Seen(104) || len(p.PreviousInteractions) != 3 {
		t.Errorf("PreviousInteractions = %v", p.PreviousInteractions)
	}
	if p.Clustered {
		t.Error("two good items must not be clustered")
	}
	if len(p.SimilarityScores) != 4 || !approx(p.SimilarityScores[2], 1) {
		t.Errorf("SimilarityScores = %v", p.SimilarityScores)
	}
}

func TestProfileBuilder_RatingPartition(t *testing.T) {
	t.Parallel()

	b := NewProfileBuilder(mustCatalog(t, exampleCatalog()), nil, DefaultConfig())
	p, err := b.Build(context.Background(), 9, []Interaction{
		{UserID: 9, ContentID: 101, Rating: 3},
		{UserID: 9, ContentID: 102, Rating: 4},
		{UserID: 9, ContentID: 102, Rating: 5},
		{UserID: 9, ContentID: 104, Rating: 2},
		{UserID: 9, ContentID: 555, Rating: 5},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if p.Seen(101) {
		t.Error("rating 3 must not enter previous interactions")
	}
	if p.Seen(555) {
		t.Error("unknown content must be dropped")
	}
	if !p.Seen(104) || !p.Seen(102) {
		t.Errorf("PreviousInteractions = %v", p.PreviousInteractions)
	}
	if len(p.GoodItems) != 1 || p.GoodItems[0].ContentID != 102 {
		t.Errorf("GoodItems = %+v, want distinct 102 only", p.GoodItems)
	}
}

func TestProfileBuilder_Degenerate(t *testing.T) {
	t.Parallel()

	b := NewProfileBuilder(mustCatalog(t, exampleCatalog()), nil, DefaultConfig())
	p, err := b.Build(context.Background(), 2, []Interaction{{UserID: 2, ContentID: 104, Rating: 1}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !p.Degenerate() {
		t.Error("profile without good items should be degenerate")
	}
	if !reflect.DeepEqual(p.PositiveVector, []float64{0, 0}) {
		t.Errorf("PositiveVector = %v, want zero", p.PositiveVector)
	}
	for i, s := range p.SimilarityScores {
		if s != 0 {
			t.Errorf("SimilarityScores[%d] = %v, want 0", i, s)
		}
	}
}

func clusterCatalog() []ContentItem {
	items := make([]ContentItem, 8)
	for i := range items {
		items[i] = ContentItem{ContentID: int64(i + 1), Embedding: unit(float64(i) * 0.3)}
	}
	return items
}

func goodRatings(user int64, ids ...int64) []Interaction {
	out := make([]Interaction, len(ids))
	for i, id := range ids {
		out[i] = Interaction{UserID: user, ContentID: id, Rating: 5}
	}
	return out
}

func TestProfileBuilder_Clustering(t *testing.T) {
	t.Parallel()

	clusterer := &fixedClusterer{labels: []int{0, 0, 1, 1, -1, 0}}
	b := NewProfileBuilder(mustCatalog(t, clusterCatalog()), clusterer, DefaultConfig())

	p, err := b.Build(context.Background(), 1, goodRatings(1, 6, 1, 2, 3, 4, 5))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if clusterer.calls != 1 || clusterer.sizes[0] != 6 {
		t.Errorf("clusterer calls = %d sizes = %v", clusterer.calls, clusterer.sizes)
	}
	if !p.Clustered {
		t.Error("profile should be clustered")
	}
	if !reflect.DeepEqual(p.ClusterLabels(), []int{0, 0, 1, 1, -1, 0}) {
		t.Errorf("labels = %v", p.ClusterLabels())
	}
	if p.GoodItems[0].ContentID != 1 || p.GoodItems[5].ContentID != 6 {
		t.Errorf("good items not in catalog order: %+v", p.GoodItems)
	}
}

func TestProfileBuilder_ClustererFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	tests := []struct {
		name      string
		clusterer Clusterer
		wantErr   error
	}{
		{"missing", nil, ErrNotConfigured},
		{"error", &fixedClusterer{err: boom}, boom},
		{"wrong label count", &fixedClusterer{labels: []int{0}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := NewProfileBuilder(mustCatalog(t, clusterCatalog()), tt.clusterer, DefaultConfig())
			_, err := b.Build(context.Background(), 1, goodRatings(1, 1, 2, 3, 4, 5))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
