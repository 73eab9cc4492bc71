// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package services

import (
	"context"
	"time"

	"github.com/tomtom215/clusterrec/internal/events"
	"github.com/tomtom215/clusterrec/internal/recommend"
)

// Sink receives every successfully generated table.
type Sink interface {
	Name() string
	Write(ctx context.Context, table *recommend.RecommendationTable, duration time.Duration) error
}

type funcSink struct {
	name  string
	write func(ctx context.Context, table *recommend.RecommendationTable, duration time.Duration) error
}

func (s funcSink) Name() string { return s.name }

func (s funcSink) Write(ctx context.Context, table *recommend.RecommendationTable, duration time.Duration) error {
	return s.write(ctx, table, duration)
}

// TableWriter replaces the persisted output table.
type TableWriter interface {
	ReplaceRecommendations(ctx context.Context, table *recommend.RecommendationTable) (int64, error)
}

// RunSaver stores a run for per-user reads.
type RunSaver interface {
	SaveRun(ctx context.Context, table *recommend.RecommendationTable) error
}

// Purger drops cached reads.
type Purger interface {
	Purge()
}

// EventPublisher announces finished runs.
type EventPublisher interface {
	PublishRunCompleted(ctx context.Context, e *events.RunCompleted) error
}

// DuckDBSink writes the table to the recommendations table.
func DuckDBSink(w TableWriter) Sink {
	return funcSink{name: "duckdb", write: func(ctx context.Context, t *recommend.RecommendationTable, _ time.Duration) error {
		_, err := w.ReplaceRecommendations(ctx, t)
		return err
	}}
}

// StoreSink saves the run to the result store.
func StoreSink(s RunSaver) Sink {
	return funcSink{name: "store", write: func(ctx context.Context, t *recommend.RecommendationTable, _ time.Duration) error {
		return s.SaveRun(ctx, t)
	}}
}

// CacheSink purges the read cache so the next read sees the new run.
// It must follow StoreSink.
func CacheSink(p Purger) Sink {
	return funcSink{name: "cache", write: func(context.Context, *recommend.RecommendationTable, time.Duration) error {
		p.Purge()
		return nil
	}}
}

// EventSink publishes a RunCompleted event.
func EventSink(p EventPublisher) Sink {
	return funcSink{name: "events", write: func(ctx context.Context, t *recommend.RecommendationTable, d time.Duration) error {
		return p.PublishRunCompleted(ctx, events.NewRunCompleted(t, d))
	}}
}
