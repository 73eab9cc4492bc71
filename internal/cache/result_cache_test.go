// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/clusterrec/internal/store"
)

type countingSource struct {
	calls int
	err   error
}

func (s *countingSource) UserRecommendations(_ context.Context, moduleSource string, userID int64) (*store.UserRecommendations, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &store.UserRecommendations{UserID: userID, ModuleSource: moduleSource, RunID: "r1"}, nil
}

func TestResultCache_ReadThrough(t *testing.T) {
	t.Parallel()

	src := &countingSource{}
	c, err := NewResultCache(src, 2)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := c.UserRecommendations(ctx, "content_based", 1)
		if err != nil || got.UserID != 1 {
			t.Fatalf("UserRecommendations() = %+v, %v", got, err)
		}
	}
	if src.calls != 1 {
		t.Errorf("source calls = %d, want 1", src.calls)
	}
	if st := c.Stats(); st.Hits != 2 || st.Misses != 1 || st.Size != 1 {
		t.Errorf("Stats() = %+v", st)
	}

	// Module sources are cached independently.
	if _, err := c.UserRecommendations(ctx, "VGCF", 1); err != nil {
		t.Fatal(err)
	}
	if src.calls != 2 {
		t.Errorf("source calls = %d, want 2", src.calls)
	}
}

func TestResultCache_Eviction(t *testing.T) {
	t.Parallel()

	src := &countingSource{}
	c, _ := NewResultCache(src, 2)
	ctx := context.Background()

	for _, u := range []int64{1, 2, 3, 1} {
		if _, err := c.UserRecommendations(ctx, "m", u); err != nil {
			t.Fatal(err)
		}
	}
	if src.calls != 4 {
		t.Errorf("source calls = %d, want 4 (user 1 evicted)", src.calls)
	}
}

func TestResultCache_PurgeAndErrors(t *testing.T) {
	t.Parallel()

	src := &countingSource{}
	c, _ := NewResultCache(src, 10)
	ctx := context.Background()

	_, _ = c.UserRecommendations(ctx, "m", 1)
	c.Purge()
	_, _ = c.UserRecommendations(ctx, "m", 1)
	if src.calls != 2 {
		t.Errorf("source calls after purge = %d, want 2", src.calls)
	}

	src.err = store.ErrNotFound
	for i := 0; i < 2; i++ {
		if _, err := c.UserRecommendations(ctx, "m", 9); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("error = %v", err)
		}
	}
	if src.calls != 4 {
		t.Errorf("errors must not be cached, calls = %d", src.calls)
	}
}

func TestResultCache_Disabled(t *testing.T) {
	t.Parallel()

	src := &countingSource{}
	c, err := NewResultCache(src, 0)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = c.UserRecommendations(context.Background(), "m", 1)
	_, _ = c.UserRecommendations(context.Background(), "m", 1)
	c.Purge()
	if src.calls != 2 || c.Stats().Size != 0 {
		t.Errorf("calls = %d stats = %+v", src.calls, c.Stats())
	}
}
