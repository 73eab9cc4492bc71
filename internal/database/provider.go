// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/clusterrec/internal/logging"
	"github.com/tomtom215/clusterrec/internal/recommend"
	"github.com/tomtom215/clusterrec/internal/validation"
)

// GetCatalog implements recommend.DataProvider.
// Items are returned in insertion order. An item whose embedding contains
// NaN or Inf fails the load.
func (db *DB) GetCatalog(ctx context.Context) ([]recommend.ContentItem, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT content_id, embedding FROM catalog ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	var items []recommend.ContentItem
	for rows.Next() {
		var (
			id  int64
			raw any
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		embedding, err := toFloat64s(raw)
		if err != nil {
			return nil, fmt.Errorf("content %d: %w", id, err)
		}
		item := recommend.ContentItem{ContentID: id, Embedding: embedding}
		if verr := validation.ValidateStruct(&item); verr != nil {
			return nil, fmt.Errorf("content %d: %w", id, verr)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog: %w", err)
	}
	return items, nil
}

// GetInteractions implements recommend.DataProvider.
// Rows with a rating outside 1..5 are skipped and counted in a warning.
func (db *DB) GetInteractions(ctx context.Context) ([]recommend.Interaction, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id, content_id, rating FROM interactions ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer rows.Close()

	var (
		out     []recommend.Interaction
		invalid int
	)
	for rows.Next() {
		var in recommend.Interaction
		if err := rows.Scan(&in.UserID, &in.ContentID, &in.Rating); err != nil {
			return nil, fmt.Errorf("scan interaction row: %w", err)
		}
		if err := validation.ValidateStruct(&in); err != nil {
			logging.Debug().
				Int64("user_id", in.UserID).
				Int64("content_id", in.ContentID).
				Int("rating", in.Rating).
				Msg("Skipping interaction with out-of-range rating")
			invalid++
			continue
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}

	if invalid > 0 {
		logging.Warn().Int("skipped", invalid).Msg("Skipped interactions with out-of-range ratings")
	}
	return out, nil
}

// GetUsers implements recommend.DataProvider.
func (db *DB) GetUsers(ctx context.Context) ([]int64, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT user_id FROM users ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// toFloat64s converts a scanned DOUBLE[] value.
func toFloat64s(raw any) ([]float64, error) {
	switch v := raw.(type) {
	case []float64:
		return v, nil
	case []any:
		out := make([]float64, len(v))
		for i, el := range v {
			switch n := el.(type) {
			case float64:
				out[i] = n
			case float32:
				out[i] = float64(n)
			case int64:
				out[i] = float64(n)
			case int32:
				out[i] = float64(n)
			default:
				return nil, fmt.Errorf("embedding element %d has type %T", i, el)
			}
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("embedding is NULL")
	default:
		return nil, fmt.Errorf("embedding has unsupported type %T", raw)
	}
}

var _ recommend.DataProvider = (*DB)(nil)
