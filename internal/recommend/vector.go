// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package recommend

import "math"

// Norm returns the Euclidean length of v.
func Norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Dot returns the inner product of a and b, which must have equal length.
func Dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// CosineSimilarity returns the cosine of the angle between a and b.
// A zero vector is treated as orthogonal to everything.
func CosineSimilarity(a, b []float64) float64 {
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}

// CosineDistance returns 1 - cosine similarity, clipped to [0, 2].
func CosineDistance(a, b []float64) float64 {
	return clipDistance(1 - CosineSimilarity(a, b))
}

func clipDistance(d float64) float64 {
	if d < 0 {
		return 0
	}
	if d > 2 {
		return 2
	}
	return d
}

// CosineDistanceMatrix returns the symmetric pairwise cosine distance matrix
// of vectors with an exact zero diagonal.
func CosineDistanceMatrix(vectors [][]float64) [][]float64 {
	n := len(vectors)
	norms := make([]float64, n)
	for i, v := range vectors {
		norms[i] = Norm(v)
	}

	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var sim float64
			if norms[i] != 0 && norms[j] != 0 {
				sim = Dot(vectors[i], vectors[j]) / (norms[i] * norms[j])
			}
			d := clipDistance(1 - sim)
			out[i][j] = d
			out[j][i] = d
		}
	}
	return out
}

// MeanVector returns the element-wise mean of vectors, or a zero vector of
// length dim when vectors is empty.
func MeanVector(vectors [][]float64, dim int) []float64 {
	mean := make([]float64, dim)
	if len(vectors) == 0 {
		return mean
	}
	for _, v := range vectors {
		for i, x := range v {
			mean[i] += x
		}
	}
	n := float64(len(vectors))
	for i := range mean {
		mean[i] /= n
	}
	return mean
}
