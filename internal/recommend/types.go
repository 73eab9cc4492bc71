// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package recommend

import (
	"time"
)

const (
	// ModuleSourceContentBased labels rows produced by this engine.
	ModuleSourceContentBased = "content_based"

	// ModuleSourceVGCF labels rows produced by the graph-embedding recommender.
	// The engine never emits it; readers use it to union both sources.
	ModuleSourceVGCF = "VGCF"

	// NoiseCluster is the label for good items that belong to no dense cluster.
	NoiseCluster = -1
)

// Rating thresholds.
const (
	MinRating         = 1
	MaxRating         = 5
	GoodRatingMin     = 4
	NegativeRatingMax = 2
)

// ContentItem is one catalog row.
type ContentItem struct {
	ContentID int64     `json:"content_id"`
	Embedding []float64 `json:"embedding" validate:"required,finite"`
}

// Interaction is a single rating event.
type Interaction struct {
	UserID    int64 `json:"user_id"`
	ContentID int64 `json:"content_id"`
	Rating    int   `json:"rating" validate:"min=1,max=5"`
}

// IsGood reports whether the rating counts as positive interest.
func (i Interaction) IsGood() bool {
	return i.Rating >= GoodRatingMin && i.Rating <= MaxRating
}

// IsNegative reports whether the rating counts as negative interest.
func (i Interaction) IsNegative() bool {
	return i.Rating >= MinRating && i.Rating <= NegativeRatingMax
}

// GoodItem is a positively rated catalog item with its cluster label.
type GoodItem struct {
	ContentID    int64 `json:"content_id"`
	CatalogIndex int   `json:"catalog_index"`
	Cluster      int   `json:"cluster"`
}

// UserProfile is the per-run interest profile of one user.
type UserProfile struct {
	UserID int64

	// GoodItems are distinct catalog items rated 4-5, in catalog order.
	GoodItems []GoodItem

	// PreviousInteractions holds every content id rated 1-2 or 4-5.
	// Rating 3 items are deliberately absent.
	PreviousInteractions map[int64]struct{}

	// PositiveVector is the mean embedding of GoodItems, zero when empty.
	PositiveVector []float64

	// SimilarityScores[i] is the cosine similarity between PositiveVector
	// and catalog row i.
	SimilarityScores []float64

	// Clustered is true when the Clusterer produced the labels; false means
	// each good item carries its own singleton label.
	Clustered bool
}

// Seen reports whether contentID must not be recommended.
func (p *UserProfile) Seen(contentID int64) bool {
	_, ok := p.PreviousInteractions[contentID]
	return ok
}

// Degenerate reports whether the profile has no positive signal.
func (p *UserProfile) Degenerate() bool {
	return len(p.GoodItems) == 0
}

// ClusterLabels returns the label of each good item.
func (p *UserProfile) ClusterLabels() []int {
	labels := make([]int, len(p.GoodItems))
	for i, g := range p.GoodItems {
		labels[i] = g.Cluster
	}
	return labels
}

// CandidateSource records which stage produced a candidate.
type CandidateSource int

const (
	// SourceFallback is a few-interest candidate taken from the fallback pool.
	SourceFallback CandidateSource = iota
	// SourceCluster is a nearest neighbor of a cluster centroid.
	SourceCluster
	// SourceSupplement backfills a clustered user from the fallback pool.
	SourceSupplement
)

// String returns the source name used in logs and metrics.
func (s CandidateSource) String() string {
	switch s {
	case SourceFallback:
		return "fallback"
	case SourceCluster:
		return "cluster"
	case SourceSupplement:
		return "supplement"
	default:
		return "unknown"
	}
}

// Candidate is a transient scored item for one user.
type Candidate struct {
	UserID    int64
	ContentID int64
	Score     float64
	Source    CandidateSource
	// Cluster is the originating cluster label, NoiseCluster for pool items.
	Cluster int
}

// Recommendation is one ranked output row.
type Recommendation struct {
	UserID       int64  `json:"user_id"`
	ContentID    int64  `json:"content_id"`
	Rank         int    `json:"recommendation_rank"`
	ModuleSource string `json:"module_source"`
}

// RecommendationTable is the immutable output of a generation run.
type RecommendationTable struct {
	RunID        string           `json:"run_id"`
	ModuleSource string           `json:"module_source"`
	GeneratedAt  time.Time        `json:"generated_at"`
	Rows         []Recommendation `json:"rows"`
}

// ByUser groups rows per user, preserving rank order.
func (t *RecommendationTable) ByUser() map[int64][]Recommendation {
	out := make(map[int64][]Recommendation)
	for _, r := range t.Rows {
		out[r.UserID] = append(out[r.UserID], r)
	}
	return out
}

// UserCount returns the number of distinct users with at least one row.
func (t *RecommendationTable) UserCount() int {
	seen := make(map[int64]struct{})
	for _, r := range t.Rows {
		seen[r.UserID] = struct{}{}
	}
	return len(seen)
}
