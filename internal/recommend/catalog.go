// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package recommend

import (
	"fmt"
)

// Catalog is the read-only embedding matrix of a generation run.
// Row order matches the order items were supplied in. The matrix is shared
// by every worker and must not be mutated after NewCatalog returns.
type Catalog struct {
	ids    []int64
	index  map[int64]int
	matrix [][]float64
	norms  []float64
	dim    int
}

// NewCatalog validates items and builds the embedding matrix.
// It fails with ErrDimensionMismatch when embeddings differ in length and
// with ErrDuplicateContent when a content id repeats.
func NewCatalog(items []ContentItem) (*Catalog, error) {
	c := &Catalog{
		ids:    make([]int64, len(items)),
		index:  make(map[int64]int, len(items)),
		matrix: make([][]float64, len(items)),
		norms:  make([]float64, len(items)),
	}
	if len(items) == 0 {
		return c, nil
	}

	c.dim = len(items[0].Embedding)
	if c.dim == 0 {
		return nil, fmt.Errorf("content %d has an empty embedding: %w", items[0].ContentID, ErrDimensionMismatch)
	}

	for i, item := range items {
		if len(item.Embedding) != c.dim {
			return nil, fmt.Errorf("content %d has dimension %d, expected %d: %w",
				item.ContentID, len(item.Embedding), c.dim, ErrDimensionMismatch)
		}
		if prev, dup := c.index[item.ContentID]; dup {
			return nil, fmt.Errorf("content %d at rows %d and %d: %w", item.ContentID, prev, i, ErrDuplicateContent)
		}
		c.ids[i] = item.ContentID
		c.index[item.ContentID] = i
		c.matrix[i] = item.Embedding
		c.norms[i] = Norm(item.Embedding)
	}
	return c, nil
}

// Len returns the number of items.
func (c *Catalog) Len() int { return len(c.ids) }

// Dim returns the embedding dimensionality, zero for an empty catalog.
func (c *Catalog) Dim() int { return c.dim }

// ContentID returns the id of row i.
func (c *Catalog) ContentID(i int) int64 { return c.ids[i] }

// IndexOf returns the row of contentID.
func (c *Catalog) IndexOf(contentID int64) (int, bool) {
	i, ok := c.index[contentID]
	return i, ok
}

// Vector returns the embedding of row i.
func (c *Catalog) Vector(i int) []float64 { return c.matrix[i] }

// Matrix returns every embedding in row order.
func (c *Catalog) Matrix() [][]float64 { return c.matrix }

// Similarities returns the cosine similarity of v against every row.
func (c *Catalog) Similarities(v []float64) []float64 {
	scores := make([]float64, len(c.matrix))
	nv := Norm(v)
	if nv == 0 {
		return scores
	}
	for i, row := range c.matrix {
		if c.norms[i] == 0 {
			continue
		}
		scores[i] = Dot(v, row) / (nv * c.norms[i])
	}
	return scores
}

// InteractionLog groups interactions by user.
type InteractionLog struct {
	users  []int64
	byUser map[int64][]Interaction
	total  int
}

// NewInteractionLog indexes interactions. Users are kept in order of their
// first interaction.
func NewInteractionLog(interactions []Interaction) *InteractionLog {
	l := &InteractionLog{
		byUser: make(map[int64][]Interaction),
		total:  len(interactions),
	}
	for _, in := range interactions {
		if _, ok := l.byUser[in.UserID]; !ok {
			l.users = append(l.users, in.UserID)
		}
		l.byUser[in.UserID] = append(l.byUser[in.UserID], in)
	}
	return l
}

// Users returns user ids in first-appearance order.
func (l *InteractionLog) Users() []int64 { return l.users }

// ForUser returns the interactions of userID.
func (l *InteractionLog) ForUser(userID int64) []Interaction { return l.byUser[userID] }

// Has reports whether userID has at least one interaction.
func (l *InteractionLog) Has(userID int64) bool {
	_, ok := l.byUser[userID]
	return ok
}

// Len returns the total number of interactions.
func (l *InteractionLog) Len() int { return l.total }
