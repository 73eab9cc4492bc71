// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/tomtom215/clusterrec/internal/logging"
	"github.com/tomtom215/clusterrec/internal/recommend"
)

// ReplaceRecommendations replaces every row of table.ModuleSource with the
// rows of table in one transaction. It returns the number of rows written.
func (db *DB) ReplaceRecommendations(ctx context.Context, table *recommend.RecommendationTable) (n int64, err error) {
	if table.ModuleSource == "" {
		return 0, fmt.Errorf("recommendation table has no module source")
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
		}
	}()

	deleted, err := tx.ExecContext(ctx,
		`DELETE FROM recommendations WHERE module_source = ?`, table.ModuleSource)
	if err != nil {
		return 0, fmt.Errorf("delete previous recommendations: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO recommendations
		(user_id, content_id, recommendation_rank, module_source, run_id, generated_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	generatedAt := table.GeneratedAt.UTC()
	for _, r := range table.Rows {
		if _, err = stmt.ExecContext(ctx, r.UserID, r.ContentID, r.Rank, r.ModuleSource, table.RunID, generatedAt); err != nil {
			return 0, fmt.Errorf("insert recommendation for user %d: %w", r.UserID, err)
		}
		n++
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit recommendations: %w", err)
	}

	removed, _ := deleted.RowsAffected()
	logging.Info().
		Str("module_source", table.ModuleSource).
		Str("run_id", table.RunID).
		Int64("removed", removed).
		Int64("written", n).
		Msg("Recommendations table replaced")
	return n, nil
}

// InsertCatalog appends items to the catalog table in order.
func (db *DB) InsertCatalog(ctx context.Context, items []recommend.ContentItem) error {
	return db.insertAll(ctx, `INSERT INTO catalog (content_id, embedding) VALUES (?, CAST(? AS DOUBLE[]))`,
		len(items), func(stmt *sql.Stmt, i int) error {
			_, err := stmt.ExecContext(ctx, items[i].ContentID, listLiteral(items[i].Embedding))
			return err
		})
}

// InsertInteractions appends rating events to the interactions table.
func (db *DB) InsertInteractions(ctx context.Context, interactions []recommend.Interaction) error {
	return db.insertAll(ctx, `INSERT INTO interactions (user_id, content_id, rating) VALUES (?, ?, ?)`,
		len(interactions), func(stmt *sql.Stmt, i int) error {
			in := interactions[i]
			_, err := stmt.ExecContext(ctx, in.UserID, in.ContentID, in.Rating)
			return err
		})
}

// InsertUsers adds user ids, ignoring ones already present.
func (db *DB) InsertUsers(ctx context.Context, users []int64) error {
	return db.insertAll(ctx, `INSERT OR IGNORE INTO users (user_id) VALUES (?)`,
		len(users), func(stmt *sql.Stmt, i int) error {
			_, err := stmt.ExecContext(ctx, users[i])
			return err
		})
}

func (db *DB) insertAll(ctx context.Context, query string, n int, exec func(stmt *sql.Stmt, i int) error) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if err = exec(stmt, i); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// listLiteral renders v as a DuckDB list literal, e.g. "[1, 0.5]".
func listLiteral(v []float64) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
	b.WriteByte(']')
	return b.String()
}
