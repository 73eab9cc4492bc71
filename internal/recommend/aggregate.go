// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package recommend

// Aggregator selects and ranks the final rows of a user.
type Aggregator struct {
	limit        int
	dedupe       bool
	moduleSource string
}

// NewAggregator creates an aggregator from cfg.
func NewAggregator(cfg *Config) *Aggregator {
	return &Aggregator{
		limit:        cfg.TotalRecommendations,
		dedupe:       cfg.DedupeByContentID,
		moduleSource: cfg.ModuleSource,
	}
}

type rankedCandidate struct {
	Candidate
	seq int
}

// rankedWorse orders by score, then by insertion order with later
// candidates ranking below earlier ones.
func rankedWorse(a, b rankedCandidate) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.seq > b.seq
}

// Aggregate returns at most limit rows ranked 1..n by descending score.
// Equal scores keep their candidate order.
func (a *Aggregator) Aggregate(userID int64, candidates []Candidate) []Recommendation {
	if a.dedupe {
		candidates = dedupeByContentID(candidates)
	}

	top := NewTopK(a.limit, rankedWorse)
	for i, c := range candidates {
		top.Push(rankedCandidate{Candidate: c, seq: i})
	}

	sorted := top.Sorted()
	rows := make([]Recommendation, len(sorted))
	for i, c := range sorted {
		rows[i] = Recommendation{
			UserID:       userID,
			ContentID:    c.ContentID,
			Rank:         i + 1,
			ModuleSource: a.moduleSource,
		}
	}
	return rows
}

// dedupeByContentID keeps the highest scoring occurrence of each content id,
// the earliest on ties, at the position of its first occurrence.
func dedupeByContentID(candidates []Candidate) []Candidate {
	pos := make(map[int64]int, len(candidates))
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if i, ok := pos[c.ContentID]; ok {
			if c.Score > out[i].Score {
				out[i] = c
			}
			continue
		}
		pos[c.ContentID] = len(out)
		out = append(out, c)
	}
	return out
}
