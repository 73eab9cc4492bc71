// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package algorithms

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/tomtom215/clusterrec/internal/recommend"
)

// minSplitDistance bounds lambda = 1/distance for coincident points.
const minSplitDistance = 1e-12

// HDBSCAN clusters points from a precomputed distance matrix.
//
// The pipeline is the classic one: core distances from the MinSamples-th
// nearest point (the point itself counts), mutual reachability distances,
// a Prim minimum spanning tree, single linkage, a condensed tree pruned at
// MinClusterSize, and flat cluster extraction. The root is never selected,
// so a dataset without a split is all noise.
type HDBSCAN struct{}

// NewHDBSCAN creates the clusterer.
func NewHDBSCAN() *HDBSCAN {
	return &HDBSCAN{}
}

// Name returns the algorithm identifier.
func (h *HDBSCAN) Name() string {
	return "hdbscan"
}

// linkageNode is one merge of the single linkage hierarchy.
type linkageNode struct {
	left, right int
	distance    float64
	size        int
}

// condensedEdge is one row of the condensed tree.
type condensedEdge struct {
	parent, child int
	lambda        float64
	size          int
}

// Cluster returns a label per row of distances; -1 marks noise.
func (h *HDBSCAN) Cluster(ctx context.Context, distances [][]float64, params recommend.ClusteringConfig) ([]int, error) {
	n := len(distances)
	for i, row := range distances {
		if len(row) != n {
			return nil, fmt.Errorf("distance matrix row %d has %d columns, expected %d", i, len(row), n)
		}
	}
	if params.MinClusterSize < 2 {
		return nil, fmt.Errorf("min_cluster_size must be at least 2, got %d", params.MinClusterSize)
	}
	if params.MinSamples < 1 {
		return nil, fmt.Errorf("min_samples must be positive, got %d", params.MinSamples)
	}

	labels := make([]int, n)
	for i := range labels {
		labels[i] = recommend.NoiseCluster
	}
	if n < 2 {
		return labels, nil
	}

	core := coreDistances(distances, params.MinSamples)
	mst, err := primMST(ctx, distances, core)
	if err != nil {
		return nil, err
	}
	hierarchy := singleLinkage(mst, n)
	tree := condenseTree(hierarchy, n, params.MinClusterSize)

	var selected []int
	switch params.SelectionMethod {
	case recommend.SelectionLeaf:
		selected = selectLeaves(tree, n)
	case recommend.SelectionEOM, "":
		selected = selectEOM(tree, n)
	default:
		return nil, fmt.Errorf("unknown selection method %q", params.SelectionMethod)
	}

	return labelPoints(tree, n, selected, labels), nil
}

// coreDistances returns, per point, the distance to its minSamples-th
// nearest point counting itself.
func coreDistances(distances [][]float64, minSamples int) []float64 {
	n := len(distances)
	k := minSamples
	if k > n {
		k = n
	}
	core := make([]float64, n)
	row := make([]float64, n)
	for i := range distances {
		copy(row, distances[i])
		row[i] = 0
		sort.Float64s(row)
		core[i] = row[k-1]
	}
	return core
}

type mstEdge struct {
	a, b   int
	weight float64
}

// primMST builds the minimum spanning tree of the mutual reachability graph
// without materializing it. Ties pick the lowest point index.
func primMST(ctx context.Context, distances [][]float64, core []float64) ([]mstEdge, error) {
	n := len(distances)
	inTree := make([]bool, n)
	best := make([]float64, n)
	source := make([]int, n)
	for i := range best {
		best[i] = math.Inf(1)
	}

	edges := make([]mstEdge, 0, n-1)
	current := 0
	inTree[current] = true
	for step := 1; step < n; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next := -1
		nextDist := math.Inf(1)
		for j := 0; j < n; j++ {
			if inTree[j] {
				continue
			}
			mr := math.Max(distances[current][j], math.Max(core[current], core[j]))
			if mr < best[j] {
				best[j] = mr
				source[j] = current
			}
			if next == -1 || best[j] < nextDist {
				next = j
				nextDist = best[j]
			}
		}
		edges = append(edges, mstEdge{a: source[next], b: next, weight: nextDist})
		inTree[next] = true
		current = next
	}
	return edges, nil
}

// singleLinkage converts MST edges into a merge hierarchy. Node ids below n
// are points; merge i creates node n+i.
func singleLinkage(edges []mstEdge, n int) []linkageNode {
	sorted := make([]mstEdge, len(edges))
	copy(sorted, edges)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].weight < sorted[j].weight })

	parent := make([]int, 2*n-1)
	size := make([]int, 2*n-1)
	for i := range parent {
		parent[i] = i
		if i < n {
			size[i] = 1
		}
	}
	find := func(x int) int {
		root := x
		for parent[root] != root {
			root = parent[root]
		}
		for parent[x] != root {
			parent[x], x = root, parent[x]
		}
		return root
	}

	hierarchy := make([]linkageNode, 0, n-1)
	next := n
	for _, e := range sorted {
		ra, rb := find(e.a), find(e.b)
		merged := size[ra] + size[rb]
		hierarchy = append(hierarchy, linkageNode{left: ra, right: rb, distance: e.weight, size: merged})
		parent[ra] = next
		parent[rb] = next
		size[next] = merged
		next++
	}
	return hierarchy
}

// bfsHierarchy lists the subtree of root in breadth-first order, left child
// before right.
func bfsHierarchy(hierarchy []linkageNode, n, root int) []int {
	order := []int{root}
	for head := 0; head < len(order); head++ {
		node := order[head]
		if node >= n {
			m := hierarchy[node-n]
			order = append(order, m.left, m.right)
		}
	}
	return order
}

// condenseTree walks the hierarchy from the root, keeping a split only when
// both sides have at least minClusterSize points. Condensed cluster ids
// start at n for the root.
func condenseTree(hierarchy []linkageNode, n, minClusterSize int) []condensedEdge {
	root := 2*n - 2
	relabel := make([]int, 2*n-1)
	relabel[root] = n
	nextLabel := n + 1
	ignore := make([]bool, 2*n-1)

	sizeOf := func(node int) int {
		if node < n {
			return 1
		}
		return hierarchy[node-n].size
	}

	var tree []condensedEdge
	fallOut := func(parent, subtree int, lambda float64) {
		for _, sub := range bfsHierarchy(hierarchy, n, subtree) {
			if sub < n {
				tree = append(tree, condensedEdge{parent: parent, child: sub, lambda: lambda, size: 1})
			}
			ignore[sub] = true
		}
	}

	for _, node := range bfsHierarchy(hierarchy, n, root) {
		if node < n || ignore[node] {
			continue
		}
		m := hierarchy[node-n]
		lambda := 1 / math.Max(m.distance, minSplitDistance)
		leftSize, rightSize := sizeOf(m.left), sizeOf(m.right)
		parent := relabel[node]

		switch {
		case leftSize >= minClusterSize && rightSize >= minClusterSize:
			relabel[m.left] = nextLabel
			nextLabel++
			tree = append(tree, condensedEdge{parent: parent, child: relabel[m.left], lambda: lambda, size: leftSize})
			relabel[m.right] = nextLabel
			nextLabel++
			tree = append(tree, condensedEdge{parent: parent, child: relabel[m.right], lambda: lambda, size: rightSize})
		case leftSize < minClusterSize && rightSize < minClusterSize:
			fallOut(parent, m.left, lambda)
			fallOut(parent, m.right, lambda)
		case leftSize < minClusterSize:
			relabel[m.right] = parent
			fallOut(parent, m.left, lambda)
		default:
			relabel[m.left] = parent
			fallOut(parent, m.right, lambda)
		}
	}
	return tree
}

// stabilities returns the excess of mass of every condensed cluster.
func stabilities(tree []condensedEdge, n int) map[int]float64 {
	birth := map[int]float64{n: 0}
	for _, e := range tree {
		if e.child >= n {
			birth[e.child] = e.lambda
		}
	}
	stability := make(map[int]float64, len(birth))
	for c := range birth {
		stability[c] = 0
	}
	for _, e := range tree {
		stability[e.parent] += (e.lambda - birth[e.parent]) * float64(e.size)
	}
	return stability
}

// clusterChildren maps each condensed cluster to its child clusters.
func clusterChildren(tree []condensedEdge, n int) map[int][]int {
	children := make(map[int][]int)
	for _, e := range tree {
		if e.child >= n {
			children[e.parent] = append(children[e.parent], e.child)
		}
	}
	return children
}

// selectEOM picks the clusters maximizing total stability, bottom up.
func selectEOM(tree []condensedEdge, n int) []int {
	stability := stabilities(tree, n)
	children := clusterChildren(tree, n)

	nodes := make([]int, 0, len(stability))
	for c := range stability {
		if c != n {
			nodes = append(nodes, c)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(nodes)))

	isCluster := make(map[int]bool, len(nodes))
	for _, c := range nodes {
		isCluster[c] = true
	}
	for _, node := range nodes {
		var subtree float64
		for _, child := range children[node] {
			subtree += stability[child]
		}
		if subtree > stability[node] {
			isCluster[node] = false
			stability[node] = subtree
			continue
		}
		queue := append([]int(nil), children[node]...)
		for len(queue) > 0 {
			sub := queue[0]
			queue = queue[1:]
			isCluster[sub] = false
			queue = append(queue, children[sub]...)
		}
	}

	var selected []int
	for _, c := range nodes {
		if isCluster[c] {
			selected = append(selected, c)
		}
	}
	sort.Ints(selected)
	return selected
}

// selectLeaves picks every non-root cluster without child clusters.
func selectLeaves(tree []condensedEdge, n int) []int {
	children := clusterChildren(tree, n)
	var selected []int
	for _, e := range tree {
		if e.child >= n && len(children[e.child]) == 0 {
			selected = append(selected, e.child)
		}
	}
	sort.Ints(selected)
	return selected
}

// labelPoints gives each point the label of its nearest selected ancestor.
// Selected clusters are numbered 0.. in ascending condensed id order.
func labelPoints(tree []condensedEdge, n int, selected []int, labels []int) []int {
	labelOf := make(map[int]int, len(selected))
	for i, c := range selected {
		labelOf[c] = i
	}

	parentOf := make(map[int]int, len(tree))
	for _, e := range tree {
		parentOf[e.child] = e.parent
	}

	for point := 0; point < n; point++ {
		node, ok := parentOf[point]
		for ok {
			if label, sel := labelOf[node]; sel {
				labels[point] = label
				break
			}
			node, ok = parentOf[node]
		}
	}
	return labels
}
