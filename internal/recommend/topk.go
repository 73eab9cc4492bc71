// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package recommend

import "sort"

// TopK retains the k best elements pushed into it.
//
// worse(a, b) must be a strict total order reporting whether a ranks below b.
// Internally TopK is a min-heap on that order, so the root is always the
// element that would be evicted next. Push is O(log k); memory is O(k).
// Not safe for concurrent use.
type TopK[T any] struct {
	heap  []T
	k     int
	worse func(a, b T) bool
}

// NewTopK creates a bounded selector. k <= 0 retains nothing.
func NewTopK[T any](k int, worse func(a, b T) bool) *TopK[T] {
	if k < 0 {
		k = 0
	}
	return &TopK[T]{heap: make([]T, 0, k), k: k, worse: worse}
}

// Push offers x. It is kept when fewer than k elements are held or when it
// ranks above the current worst.
func (t *TopK[T]) Push(x T) {
	if t.k == 0 {
		return
	}
	if len(t.heap) < t.k {
		t.heap = append(t.heap, x)
		t.bubbleUp(len(t.heap) - 1)
		return
	}
	if t.worse(t.heap[0], x) {
		t.heap[0] = x
		t.bubbleDown(0)
	}
}

// Len returns the number of retained elements.
func (t *TopK[T]) Len() int { return len(t.heap) }

// Sorted returns the retained elements best first.
func (t *TopK[T]) Sorted() []T {
	out := make([]T, len(t.heap))
	copy(out, t.heap)
	sort.Slice(out, func(i, j int) bool { return t.worse(out[j], out[i]) })
	return out
}

func (t *TopK[T]) bubbleUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !t.worse(t.heap[i], t.heap[parent]) {
			return
		}
		t.heap[i], t.heap[parent] = t.heap[parent], t.heap[i]
		i = parent
	}
}

func (t *TopK[T]) bubbleDown(i int) {
	n := len(t.heap)
	for {
		smallest := i
		left, right := 2*i+1, 2*i+2
		if left < n && t.worse(t.heap[left], t.heap[smallest]) {
			smallest = left
		}
		if right < n && t.worse(t.heap[right], t.heap[smallest]) {
			smallest = right
		}
		if smallest == i {
			return
		}
		t.heap[i], t.heap[smallest] = t.heap[smallest], t.heap[i]
		i = smallest
	}
}
