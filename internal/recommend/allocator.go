// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package recommend

import (
	"math"
	"sort"
)

// ClusterAllocation is the share of the output budget given to one cluster.
type ClusterAllocation struct {
	Label      int
	Proportion float64
	Slots      int
	// Members are catalog rows of the cluster's good items.
	Members []int
}

// AllocateSlots splits total across the non-noise clusters of profile.
//
// Proportions are taken over all good items, noise included, so noise
// shrinks the other clusters' share without receiving slots itself. Each
// cluster gets max(1, round(total*p)) slots with halves rounded to even.
// Allocations are ordered by descending membership, then ascending label.
func AllocateSlots(profile *UserProfile, total int) []ClusterAllocation {
	n := len(profile.GoodItems)
	if n == 0 {
		return nil
	}

	members := make(map[int][]int)
	for _, g := range profile.GoodItems {
		members[g.Cluster] = append(members[g.Cluster], g.CatalogIndex)
	}

	allocs := make([]ClusterAllocation, 0, len(members))
	for label, rows := range members {
		if label == NoiseCluster {
			continue
		}
		p := float64(len(rows)) / float64(n)
		slots := int(math.RoundToEven(float64(total) * p))
		if slots < 1 {
			slots = 1
		}
		allocs = append(allocs, ClusterAllocation{
			Label:      label,
			Proportion: p,
			Slots:      slots,
			Members:    rows,
		})
	}

	sort.Slice(allocs, func(i, j int) bool {
		if len(allocs[i].Members) != len(allocs[j].Members) {
			return len(allocs[i].Members) > len(allocs[j].Members)
		}
		return allocs[i].Label < allocs[j].Label
	})
	return allocs
}
