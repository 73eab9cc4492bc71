// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package recommend

import (
	"fmt"
	"runtime"
)

// Selection methods understood by the clusterer.
const (
	SelectionEOM  = "eom"
	SelectionLeaf = "leaf"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// TotalRecommendations is the per-user output budget N.
	TotalRecommendations int `json:"total_recommendations" koanf:"total_recommendations"`

	// FallbackPoolSize is how many top-similarity items form the fallback pool.
	FallbackPoolSize int `json:"fallback_pool_size" koanf:"fallback_pool_size"`

	// MinGoodItemsForClustering is the distinct good item count below which
	// clustering is skipped and the few-interest path is taken.
	MinGoodItemsForClustering int `json:"min_good_items_for_clustering" koanf:"min_good_items_for_clustering"`

	// Clustering holds the density clustering parameters.
	Clustering ClusteringConfig `json:"clustering" koanf:"clustering"`

	// BatchSize bounds how many users are in flight at once.
	BatchSize int `json:"batch_size" koanf:"batch_size"`

	// Workers is the per-batch worker pool size. Zero means runtime.NumCPU().
	Workers int `json:"workers" koanf:"workers"`

	// DedupeByContentID collapses repeated content ids from different
	// clusters before top-K selection. Off by default.
	DedupeByContentID bool `json:"dedupe_by_content_id" koanf:"dedupe_by_content_id"`

	// ModuleSource is written on every output row.
	ModuleSource string `json:"module_source" koanf:"module_source"`
}

// ClusteringConfig holds Clusterer parameters.
type ClusteringConfig struct {
	MinClusterSize  int    `json:"min_cluster_size" koanf:"min_cluster_size"`
	MinSamples      int    `json:"min_samples" koanf:"min_samples"`
	SelectionMethod string `json:"selection_method" koanf:"selection_method"`
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() *Config {
	return &Config{
		TotalRecommendations:      50,
		FallbackPoolSize:          2000,
		MinGoodItemsForClustering: 5,
		Clustering: ClusteringConfig{
			MinClusterSize:  5,
			MinSamples:      3,
			SelectionMethod: SelectionEOM,
		},
		BatchSize:    20,
		Workers:      0,
		ModuleSource: ModuleSourceContentBased,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.TotalRecommendations < 1 {
		return fmt.Errorf("total_recommendations must be positive, got %d", c.TotalRecommendations)
	}
	if c.FallbackPoolSize < 1 {
		return fmt.Errorf("fallback_pool_size must be positive, got %d", c.FallbackPoolSize)
	}
	if c.MinGoodItemsForClustering < 1 {
		return fmt.Errorf("min_good_items_for_clustering must be positive, got %d", c.MinGoodItemsForClustering)
	}
	if c.Clustering.MinClusterSize < 2 {
		return fmt.Errorf("clustering.min_cluster_size must be at least 2, got %d", c.Clustering.MinClusterSize)
	}
	if c.Clustering.MinSamples < 1 {
		return fmt.Errorf("clustering.min_samples must be positive, got %d", c.Clustering.MinSamples)
	}
	switch c.Clustering.SelectionMethod {
	case SelectionEOM, SelectionLeaf:
	default:
		return fmt.Errorf("clustering.selection_method must be %q or %q, got %q",
			SelectionEOM, SelectionLeaf, c.Clustering.SelectionMethod)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	if c.ModuleSource == "" {
		return fmt.Errorf("module_source must not be empty")
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// workerCount resolves the effective pool size for a batch of n users.
func (c *Config) workerCount(n int) int {
	w := c.Workers
	if w <= 0 {
		w = runtime.NumCPU()
	}
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}
