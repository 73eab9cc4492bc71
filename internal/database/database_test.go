// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package database

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/clusterrec/internal/config"
	"github.com/tomtom215/clusterrec/internal/recommend"
)

// testDBSemaphore serializes DuckDB tests.
var testDBSemaphore = make(chan struct{}, 1)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	db, err := New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "512MB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func exampleItems() []recommend.ContentItem {
	return []recommend.ContentItem{
		{ContentID: 101, Embedding: []float64{1, 0}},
		{ContentID: 102, Embedding: []float64{0, 1}},
		{ContentID: 103, Embedding: []float64{1, 1}},
		{ContentID: 104, Embedding: []float64{-1, 0}},
	}
}

func seedExample(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()
	if err := db.InsertCatalog(ctx, exampleItems()); err != nil {
		t.Fatalf("InsertCatalog() error = %v", err)
	}
	err := db.InsertInteractions(ctx, []recommend.Interaction{
		{UserID: 1, ContentID: 101, Rating: 5},
		{UserID: 1, ContentID: 102, Rating: 5},
		{UserID: 1, ContentID: 103, Rating: 1},
	})
	if err != nil {
		t.Fatalf("InsertInteractions() error = %v", err)
	}
	if err := db.InsertUsers(ctx, []int64{2, 1, 2}); err != nil {
		t.Fatalf("InsertUsers() error = %v", err)
	}
}

func TestNew_CreatesSchema(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{TableCatalog, TableInteractions, TableUsers, TableRecommendations} {
		var n int
		if err := db.conn.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestProvider_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	seedExample(t, db)
	ctx := context.Background()

	items, err := db.GetCatalog(ctx)
	if err != nil {
		t.Fatalf("GetCatalog() error = %v", err)
	}
	if !reflect.DeepEqual(items, exampleItems()) {
		t.Errorf("GetCatalog() = %+v", items)
	}

	interactions, err := db.GetInteractions(ctx)
	if err != nil {
		t.Fatalf("GetInteractions() error = %v", err)
	}
	if len(interactions) != 3 || interactions[2].Rating != 1 {
		t.Errorf("GetInteractions() = %+v", interactions)
	}

	users, err := db.GetUsers(ctx)
	if err != nil {
		t.Fatalf("GetUsers() error = %v", err)
	}
	if !reflect.DeepEqual(users, []int64{1, 2}) {
		t.Errorf("GetUsers() = %v, want [1 2]", users)
	}
}

func TestGetInteractions_SkipsOutOfRange(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	err := db.InsertInteractions(ctx, []recommend.Interaction{
		{UserID: 1, ContentID: 1, Rating: 0},
		{UserID: 1, ContentID: 2, Rating: 4},
		{UserID: 1, ContentID: 3, Rating: 9},
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := db.GetInteractions(ctx)
	if err != nil {
		t.Fatalf("GetInteractions() error = %v", err)
	}
	if len(got) != 1 || got[0].ContentID != 2 {
		t.Errorf("GetInteractions() = %+v", got)
	}
}

func TestGetCatalog_RejectsNonFinite(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.conn.ExecContext(ctx,
		`INSERT INTO catalog VALUES (1, [1.0, 'nan'::DOUBLE])`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.GetCatalog(ctx); err == nil {
		t.Error("GetCatalog() should reject NaN embeddings")
	}
}

func TestReplaceRecommendations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := &recommend.RecommendationTable{
		RunID:        "run-1",
		ModuleSource: "content_based",
		GeneratedAt:  time.Now(),
		Rows: []recommend.Recommendation{
			{UserID: 1, ContentID: 104, Rank: 1, ModuleSource: "content_based"},
			{UserID: 1, ContentID: 105, Rank: 2, ModuleSource: "content_based"},
		},
	}
	if n, err := db.ReplaceRecommendations(ctx, first); err != nil || n != 2 {
		t.Fatalf("ReplaceRecommendations() = %d, %v", n, err)
	}

	// Rows of another module source survive a replace.
	if _, err := db.conn.ExecContext(ctx,
		`INSERT INTO recommendations VALUES (9, 9, 1, 'VGCF', 'other', now())`); err != nil {
		t.Fatal(err)
	}

	second := &recommend.RecommendationTable{
		RunID:        "run-2",
		ModuleSource: "content_based",
		GeneratedAt:  time.Now(),
		Rows:         []recommend.Recommendation{{UserID: 2, ContentID: 7, Rank: 1, ModuleSource: "content_based"}},
	}
	if _, err := db.ReplaceRecommendations(ctx, second); err != nil {
		t.Fatal(err)
	}

	var own, other int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM recommendations WHERE module_source = 'content_based' AND run_id = 'run-2'`).Scan(&own); err != nil {
		t.Fatal(err)
	}
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM recommendations WHERE module_source = 'VGCF'`).Scan(&other); err != nil {
		t.Fatal(err)
	}
	if own != 1 || other != 1 {
		t.Errorf("own = %d other = %d, want 1 and 1", own, other)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM recommendations`).Scan(&total); err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Errorf("total rows = %d, want 2", total)
	}

	if _, err := db.ReplaceRecommendations(ctx, &recommend.RecommendationTable{}); err == nil {
		t.Error("missing module source should be rejected")
	}
}

func TestImportFile_CSV(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	dir := t.TempDir()

	catalog := filepath.Join(dir, "catalog.csv")
	writeFile(t, catalog, "content_id,embedding\n11,\"[1.0, 0.0]\"\n12,\"[0.0, 1.0]\"\n")
	interactions := filepath.Join(dir, "interactions.csv")
	writeFile(t, interactions, "user_id,content_id,rating\n5,11,5\n5,12,2\n")
	users := filepath.Join(dir, "users.csv")
	writeFile(t, users, "user_id\n5\n6\n6\n")

	err := db.ImportAll(ctx, config.ImportConfig{Catalog: catalog, Interactions: interactions, Users: users})
	if err != nil {
		t.Fatalf("ImportAll() error = %v", err)
	}

	items, err := db.GetCatalog(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []recommend.ContentItem{
		{ContentID: 11, Embedding: []float64{1, 0}},
		{ContentID: 12, Embedding: []float64{0, 1}},
	}
	if !reflect.DeepEqual(items, want) {
		t.Errorf("catalog = %+v", items)
	}
	got, err := db.GetUsers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []int64{5, 6}) {
		t.Errorf("users = %v", got)
	}

	// A second import replaces rather than appends.
	if n, err := db.ImportFile(ctx, TableInteractions, interactions); err != nil || n != 2 {
		t.Errorf("ImportFile() = %d, %v", n, err)
	}
	in, _ := db.GetInteractions(ctx)
	if len(in) != 2 {
		t.Errorf("interactions after re-import = %d, want 2", len(in))
	}
}

func TestImportFile_Parquet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.parquet")

	if _, err := db.conn.ExecContext(ctx, `COPY (SELECT 1::BIGINT AS content_id, [0.5, 0.5]::DOUBLE[] AS embedding)
		TO '`+path+`' (FORMAT PARQUET)`); err != nil {
		t.Fatalf("write parquet: %v", err)
	}
	if n, err := db.ImportFile(ctx, TableCatalog, path); err != nil || n != 1 {
		t.Fatalf("ImportFile() = %d, %v", n, err)
	}
	items, err := db.GetCatalog(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || math.Abs(items[0].Embedding[0]-0.5) > 1e-12 {
		t.Errorf("catalog = %+v", items)
	}
}

func TestImportFile_Errors(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "catalog.json")
	writeFile(t, jsonPath, "{}")

	if _, err := db.ImportFile(ctx, TableCatalog, jsonPath); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ImportFile(json) error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := db.ImportFile(ctx, TableRecommendations, jsonPath); err == nil {
		t.Error("output table must not be importable")
	}
	if _, err := db.ImportFile(ctx, TableUsers, filepath.Join(dir, "missing.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ImportFile(missing) error = %v", err)
	}
}

func TestGetCatalog_BuildsCatalog(t *testing.T) {
	db := setupTestDB(t)
	seedExample(t, db)

	items, err := db.GetCatalog(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := recommend.NewCatalog(items); err != nil {
		t.Errorf("catalog loaded from DuckDB should be valid: %v", err)
	}
}

func TestListLiteral(t *testing.T) {
	t.Parallel()

	if got := listLiteral([]float64{1, -0.25, 3e-9}); got != "[1, -0.25, 3e-09]" {
		t.Errorf("listLiteral() = %q", got)
	}
	if got := listLiteral(nil); got != "[]" {
		t.Errorf("listLiteral(nil) = %q", got)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}
