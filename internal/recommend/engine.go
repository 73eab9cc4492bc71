// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package recommend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Engine runs generation over the whole user base.
// It is safe for concurrent use; runs are serialized.
type Engine struct {
	config *Config
	logger zerolog.Logger

	clusterer    Clusterer
	index        NeighborIndex
	dataProvider DataProvider
	observer     Observer

	runMu    sync.Mutex
	statusMu sync.RWMutex
	status   RunStatus
}

// NewEngine creates an engine. A nil cfg selects DefaultConfig.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Engine{
		config: cfg.Clone(),
		logger: logger.With().Str("component", "recommend").Logger(),
		status: RunStatus{State: StateInit},
	}, nil
}

// SetClusterer sets the density clusterer used for multi-interest users.
func (e *Engine) SetClusterer(c Clusterer) {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	e.clusterer = c
	e.logger.Info().Str("clusterer", c.Name()).Msg("registered clusterer")
}

// SetNeighborIndex sets the index rebuilt over the catalog on every run.
func (e *Engine) SetNeighborIndex(idx NeighborIndex) {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	e.index = idx
	e.logger.Info().Str("index", idx.Name()).Msg("registered neighbor index")
}

// SetDataProvider sets where runs load their inputs from.
func (e *Engine) SetDataProvider(dp DataProvider) {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	e.dataProvider = dp
}

// SetObserver sets an optional per-user observer.
func (e *Engine) SetObserver(o Observer) {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	e.observer = o
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Status returns a snapshot of the current or last run.
func (e *Engine) Status() RunStatus {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.status
}

// IsRunning reports whether a run is executing.
func (e *Engine) IsRunning() bool {
	return e.Status().Running
}

// Generate recomputes recommendations for every user in the interaction log.
// Each call is an independent run starting from INIT.
func (e *Engine) Generate(ctx context.Context) (*RecommendationTable, error) {
	if !e.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer e.runMu.Unlock()

	if e.dataProvider == nil {
		return nil, fmt.Errorf("data provider: %w", ErrNotConfigured)
	}
	if e.clusterer == nil {
		return nil, fmt.Errorf("clusterer: %w", ErrNotConfigured)
	}
	if e.index == nil {
		return nil, fmt.Errorf("neighbor index: %w", ErrNotConfigured)
	}

	runID := uuid.NewString()
	start := time.Now()
	e.updateStatus(func(s *RunStatus) {
		*s = RunStatus{RunID: runID, State: StateInit, Running: true, StartedAt: start}
	})

	logger := e.logger.With().Str("run_id", runID).Logger()
	logger.Info().Msg("starting generation run")

	table, err := e.run(ctx, runID, logger)

	finished := time.Now()
	e.updateStatus(func(s *RunStatus) {
		s.Running = false
		s.FinishedAt = finished
		s.DurationMS = finished.Sub(start).Milliseconds()
		if err != nil {
			s.LastError = err.Error()
			_ = s.advance(StateFailed)
		}
	})

	if err != nil {
		logger.Error().Err(err).Msg("generation run failed")
		return nil, err
	}

	st := e.Status()
	logger.Info().
		Int("users", st.Users).
		Int("rows", st.Rows).
		Int("degenerate_profiles", st.DegenerateProfiles).
		Int64("duration_ms", st.DurationMS).
		Msg("generation run complete")

	table.GeneratedAt = finished
	return table, nil
}

// run executes the phases of one generation run.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) run(ctx context.Context, runID string, logger zerolog.Logger) (*RecommendationTable, error) {
	items, err := e.dataProvider.GetCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	interactions, err := e.dataProvider.GetInteractions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load interactions: %w", err)
	}
	userTable, err := e.dataProvider.GetUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	catalog, err := NewCatalog(items)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	log := NewInteractionLog(interactions)
	users := log.Users()

	skipped := 0
	for _, id := range userTable {
		if !log.Has(id) {
			skipped++
		}
	}

	e.updateStatus(func(s *RunStatus) {
		s.CatalogSize = catalog.Len()
		s.Interactions = log.Len()
		s.Users = len(users)
		s.SkippedUsers = skipped
	})
	logger.Info().
		Int("catalog_size", catalog.Len()).
		Int("dimension", catalog.Dim()).
		Int("interactions", log.Len()).
		Int("users", len(users)).
		Int("users_without_interactions", skipped).
		Msg("inputs loaded")

	if err := e.index.Build(ctx, catalog.Matrix()); err != nil {
		return nil, fmt.Errorf("build %s index: %w", e.index.Name(), err)
	}

	p := &pipeline{
		builder:    NewProfileBuilder(catalog, e.clusterer, e.config),
		generator:  NewCandidateGenerator(catalog, e.index, e.config),
		aggregator: NewAggregator(e.config),
		log:        log,
		observer:   e.observer,
	}

	perUser := make([][]Recommendation, len(users))
	batchSize := e.config.BatchSize
	for lo := 0; lo < len(users); lo += batchSize {
		hi := lo + batchSize
		if hi > len(users) {
			hi = len(users)
		}
		last := hi == len(users)
		if err := e.runBatch(ctx, p, users[lo:hi], perUser[lo:hi], last); err != nil {
			return nil, err
		}
		logger.Debug().Int("from", lo).Int("to", hi).Msg("batch complete")
	}

	if len(users) == 0 {
		if err := e.advance(StateProfilesBuilt); err != nil {
			return nil, err
		}
		if err := e.advance(StateRecommendationsGenerated); err != nil {
			return nil, err
		}
	}

	table := &RecommendationTable{RunID: runID, ModuleSource: e.config.ModuleSource}
	for _, rows := range perUser {
		table.Rows = append(table.Rows, rows...)
	}
	e.updateStatus(func(s *RunStatus) { s.Rows = len(table.Rows) })

	if err := e.advance(StateDone); err != nil {
		return nil, err
	}
	return table, nil
}

// runBatch builds every profile of the batch, then generates its rows.
// The run-level state advances when the final batch finishes each phase.
func (e *Engine) runBatch(ctx context.Context, p *pipeline, users []int64, out [][]Recommendation, last bool) error {
	workers := e.config.workerCount(len(users))

	profiles := make([]*UserProfile, len(users))
	err := runPool(ctx, workers, len(users), func(i int) error {
		profile, err := p.builder.Build(ctx, users[i], p.log.ForUser(users[i]))
		if err != nil {
			return err
		}
		profiles[i] = profile
		return nil
	})
	if err != nil {
		return fmt.Errorf("build profiles: %w", err)
	}

	degenerate := 0
	for _, prof := range profiles {
		if prof.Degenerate() {
			degenerate++
		}
	}
	e.updateStatus(func(s *RunStatus) {
		s.ProfilesBuilt += len(profiles)
		s.DegenerateProfiles += degenerate
	})
	if last {
		if err := e.advance(StateProfilesBuilt); err != nil {
			return err
		}
	}

	err = runPool(ctx, workers, len(users), func(i int) error {
		rows, err := p.recommend(ctx, profiles[i])
		if err != nil {
			return err
		}
		out[i] = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("generate recommendations: %w", err)
	}

	e.updateStatus(func(s *RunStatus) { s.UsersGenerated += len(users) })
	if last {
		return e.advance(StateRecommendationsGenerated)
	}
	return nil
}

func (e *Engine) advance(next RunState) error {
	var err error
	e.updateStatus(func(s *RunStatus) { err = s.advance(next) })
	return err
}

func (e *Engine) updateStatus(fn func(s *RunStatus)) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	fn(&e.status)
}

// pipeline bundles the per-run stages shared by all workers.
type pipeline struct {
	builder    *ProfileBuilder
	generator  *CandidateGenerator
	aggregator *Aggregator
	log        *InteractionLog
	observer   Observer
}

// recommend turns one profile into ranked rows.
func (p *pipeline) recommend(ctx context.Context, profile *UserProfile) ([]Recommendation, error) {
	start := time.Now()

	candidates, stats, err := p.generator.Generate(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", profile.UserID, err)
	}
	rows := p.aggregator.Aggregate(profile.UserID, candidates)

	if p.observer != nil {
		noise := 0
		for _, g := range profile.GoodItems {
			if g.Cluster == NoiseCluster {
				noise++
			}
		}
		p.observer.ObserveUser(UserReport{
			UserID:      profile.UserID,
			GoodItems:   len(profile.GoodItems),
			Clusters:    stats.Clusters,
			NoiseItems:  noise,
			FewInterest: stats.FewInterest,
			Degenerate:  profile.Degenerate(),
			Candidates:  len(candidates),
			Supplement:  stats.Supplement,
			Rows:        len(rows),
			Duration:    time.Since(start),
		})
	}
	return rows, nil
}
