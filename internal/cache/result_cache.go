// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

// Package cache provides the in-process read cache placed in front of the
// recommendation store.
package cache

import (
	"context"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tomtom215/clusterrec/internal/metrics"
	"github.com/tomtom215/clusterrec/internal/store"
)

// Source loads a user's recommendations on a cache miss.
type Source interface {
	UserRecommendations(ctx context.Context, moduleSource string, userID int64) (*store.UserRecommendations, error)
}

type key struct {
	moduleSource string
	userID       int64
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// ResultCache is a read-through LRU over a Source. A zero size disables
// caching and every read goes to the source.
type ResultCache struct {
	source Source
	lru    *lru.Cache[key, *store.UserRecommendations]

	hits   atomic.Int64
	misses atomic.Int64
}

// NewResultCache creates a cache holding up to size users.
func NewResultCache(source Source, size int) (*ResultCache, error) {
	c := &ResultCache{source: source}
	if size > 0 {
		l, err := lru.New[key, *store.UserRecommendations](size)
		if err != nil {
			return nil, err
		}
		c.lru = l
	}
	return c, nil
}

// UserRecommendations returns the cached list or loads it from the source.
// Errors, including not-found, are never cached.
func (c *ResultCache) UserRecommendations(ctx context.Context, moduleSource string, userID int64) (*store.UserRecommendations, error) {
	k := key{moduleSource: moduleSource, userID: userID}
	if c.lru != nil {
		if v, ok := c.lru.Get(k); ok {
			c.hits.Add(1)
			metrics.RecordCacheLookup(true)
			return v, nil
		}
	}
	c.misses.Add(1)
	metrics.RecordCacheLookup(false)

	v, err := c.source.UserRecommendations(ctx, moduleSource, userID)
	if err != nil {
		return nil, err
	}
	if c.lru != nil {
		c.lru.Add(k, v)
	}
	return v, nil
}

// Purge drops every entry. Call it after a new run becomes current.
func (c *ResultCache) Purge() {
	if c.lru != nil {
		c.lru.Purge()
	}
}

// Stats returns hit and miss counters.
func (c *ResultCache) Stats() Stats {
	s := Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
	if c.lru != nil {
		s.Size = c.lru.Len()
	}
	return s
}
