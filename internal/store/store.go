// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

// Package store keeps the latest generated recommendations in BadgerDB for
// low-latency per-user reads.
//
// Each run is written under its own key space and becomes visible by
// flipping a single pointer key, so readers see either the previous run
// or the new one, never a mix. The previous run's keys are dropped after
// the flip.
//
// Key layout:
//
//	current:<module_source>                    -> RunRecord (JSON)
//	user:<module_source>:<run_id>:<user_id>    -> UserRecommendations (JSON)
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/clusterrec/internal/config"
	"github.com/tomtom215/clusterrec/internal/logging"
	"github.com/tomtom215/clusterrec/internal/recommend"
)

// ErrNotFound is returned when no recommendations exist for the request.
var ErrNotFound = errors.New("recommendations not found")

const (
	currentKeyPrefix = "current:"
	userKeyPrefix    = "user:"
)

// RunRecord describes the run whose rows are currently served.
type RunRecord struct {
	RunID        string    `json:"run_id"`
	ModuleSource string    `json:"module_source"`
	GeneratedAt  time.Time `json:"generated_at"`
	Users        int       `json:"users"`
	Rows         int       `json:"rows"`
}

// UserRecommendations is one user's ranked list from a run.
type UserRecommendations struct {
	UserID       int64                      `json:"user_id"`
	ModuleSource string                     `json:"module_source"`
	RunID        string                     `json:"run_id"`
	GeneratedAt  time.Time                  `json:"generated_at"`
	Items        []recommend.Recommendation `json:"items"`
}

// Store is a BadgerDB-backed recommendation store.
type Store struct {
	db *badger.DB
}

// Open opens the store described by cfg.
func Open(cfg config.StoreConfig) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func currentKey(moduleSource string) []byte {
	return []byte(currentKeyPrefix + moduleSource)
}

func runPrefix(moduleSource, runID string) []byte {
	return []byte(userKeyPrefix + moduleSource + ":" + runID + ":")
}

func userKey(moduleSource, runID string, userID int64) []byte {
	return []byte(fmt.Sprintf("%s%s:%s:%d", userKeyPrefix, moduleSource, runID, userID))
}

// SaveRun stores every user's rows from table and makes them current.
func (s *Store) SaveRun(ctx context.Context, table *recommend.RecommendationTable) error {
	if table.RunID == "" || table.ModuleSource == "" {
		return fmt.Errorf("recommendation table needs a run id and module source")
	}

	byUser := table.ByUser()
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for userID, rows := range byUser {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := json.Marshal(UserRecommendations{
			UserID:       userID,
			ModuleSource: table.ModuleSource,
			RunID:        table.RunID,
			GeneratedAt:  table.GeneratedAt,
			Items:        rows,
		})
		if err != nil {
			return fmt.Errorf("marshal user %d: %w", userID, err)
		}
		if err := wb.Set(userKey(table.ModuleSource, table.RunID, userID), data); err != nil {
			return fmt.Errorf("write user %d: %w", userID, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush run %s: %w", table.RunID, err)
	}

	record := RunRecord{
		RunID:        table.RunID,
		ModuleSource: table.ModuleSource,
		GeneratedAt:  table.GeneratedAt,
		Users:        len(byUser),
		Rows:         len(table.Rows),
	}
	previous, err := s.swapCurrent(record)
	if err != nil {
		return err
	}

	if previous != nil && previous.RunID != record.RunID {
		if err := s.db.DropPrefix(runPrefix(previous.ModuleSource, previous.RunID)); err != nil {
			logging.Warn().Err(err).Str("run_id", previous.RunID).Msg("Failed to drop previous run from store")
		}
	}
	return nil
}

// swapCurrent points the module source at record and returns the record it replaced.
func (s *Store) swapCurrent(record RunRecord) (*RunRecord, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal run record: %w", err)
	}

	var previous *RunRecord
	err = s.db.Update(func(txn *badger.Txn) error {
		prev, err := getJSON[RunRecord](txn, currentKey(record.ModuleSource))
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		previous = prev
		return txn.Set(currentKey(record.ModuleSource), data)
	})
	if err != nil {
		return nil, fmt.Errorf("update current run: %w", err)
	}
	return previous, nil
}

// LatestRun returns the run currently served for moduleSource.
func (s *Store) LatestRun(_ context.Context, moduleSource string) (*RunRecord, error) {
	var record *RunRecord
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		record, err = getJSON[RunRecord](txn, currentKey(moduleSource))
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// UserRecommendations returns the current list for userID.
func (s *Store) UserRecommendations(_ context.Context, moduleSource string, userID int64) (*UserRecommendations, error) {
	var recs *UserRecommendations
	err := s.db.View(func(txn *badger.Txn) error {
		run, err := getJSON[RunRecord](txn, currentKey(moduleSource))
		if err != nil {
			return err
		}
		recs, err = getJSON[UserRecommendations](txn, userKey(moduleSource, run.RunID, userID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func getJSON[T any](txn *badger.Txn, key []byte) (*T, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	var v T
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &v)
	}); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &v, nil
}

// CollectGarbage rewrites value log files until badger reports nothing
// left to reclaim. It is a no-op for in-memory stores.
func (s *Store) CollectGarbage(_ context.Context) error {
	for {
		err := s.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run value log GC: %w", err)
		}
	}
}
