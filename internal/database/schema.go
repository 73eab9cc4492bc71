// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package database

import (
	"context"
	"fmt"
)

// Table names.
const (
	TableCatalog         = "catalog"
	TableInteractions    = "interactions"
	TableUsers           = "users"
	TableRecommendations = "recommendations"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS catalog (
		content_id BIGINT NOT NULL,
		embedding DOUBLE[] NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS interactions (
		user_id BIGINT NOT NULL,
		content_id BIGINT NOT NULL,
		rating INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		user_id BIGINT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS recommendations (
		user_id BIGINT NOT NULL,
		content_id BIGINT NOT NULL,
		recommendation_rank INTEGER NOT NULL,
		module_source VARCHAR NOT NULL,
		run_id VARCHAR NOT NULL,
		generated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_user ON interactions(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_recommendations_source_user ON recommendations(module_source, user_id)`,
}

func (db *DB) createTables(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
