// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tomtom215/clusterrec/internal/config"
	"github.com/tomtom215/clusterrec/internal/logging"
)

// ErrUnsupportedFormat is returned for import files that are neither CSV nor Parquet.
var ErrUnsupportedFormat = errors.New("unsupported import format")

// importSelects maps each input table to the projection applied to the source file.
var importSelects = map[string]string{
	TableCatalog:      `SELECT CAST(content_id AS BIGINT), CAST(embedding AS DOUBLE[]) FROM %s`,
	TableInteractions: `SELECT CAST(user_id AS BIGINT), CAST(content_id AS BIGINT), CAST(rating AS INTEGER) FROM %s`,
	TableUsers:        `SELECT DISTINCT CAST(user_id AS BIGINT) FROM %s`,
}

// ImportFile replaces the contents of table with the rows of a CSV or
// Parquet file. The format is chosen by file extension.
func (db *DB) ImportFile(ctx context.Context, table, path string) (n int64, err error) {
	projection, ok := importSelects[table]
	if !ok {
		return 0, fmt.Errorf("table %q cannot be imported", table)
	}
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("import %s: %w", table, err)
	}
	source, err := fileReader(path)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return 0, fmt.Errorf("clear %s: %w", table, err)
	}
	res, err := tx.ExecContext(ctx, "INSERT INTO "+table+" "+fmt.Sprintf(projection, source))
	if err != nil {
		return 0, fmt.Errorf("import %s from %s: %w", table, path, err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import of %s: %w", table, err)
	}

	n, _ = res.RowsAffected()
	logging.Info().
		Str("table", table).
		Str("path", path).
		Int64("rows", n).
		Dur("duration", time.Since(start)).
		Msg("Imported file")
	return n, nil
}

// ImportAll imports every file named in cfg. Empty paths are skipped.
func (db *DB) ImportAll(ctx context.Context, cfg config.ImportConfig) error {
	files := []struct{ table, path string }{
		{TableCatalog, cfg.Catalog},
		{TableInteractions, cfg.Interactions},
		{TableUsers, cfg.Users},
	}
	for _, f := range files {
		if f.path == "" {
			continue
		}
		if _, err := db.ImportFile(ctx, f.table, f.path); err != nil {
			return err
		}
	}
	return nil
}

// fileReader returns the DuckDB table function reading path.
func fileReader(path string) (string, error) {
	quoted := "'" + strings.ReplaceAll(path, "'", "''") + "'"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return "read_csv_auto(" + quoted + ", header = true)", nil
	case ".parquet", ".pq":
		return "read_parquet(" + quoted + ")", nil
	default:
		return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}
