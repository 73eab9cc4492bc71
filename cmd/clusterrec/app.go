// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/clusterrec/internal/api"
	"github.com/tomtom215/clusterrec/internal/cache"
	"github.com/tomtom215/clusterrec/internal/config"
	"github.com/tomtom215/clusterrec/internal/database"
	"github.com/tomtom215/clusterrec/internal/events"
	"github.com/tomtom215/clusterrec/internal/logging"
	"github.com/tomtom215/clusterrec/internal/metrics"
	"github.com/tomtom215/clusterrec/internal/recommend"
	"github.com/tomtom215/clusterrec/internal/recommend/algorithms"
	"github.com/tomtom215/clusterrec/internal/store"
	"github.com/tomtom215/clusterrec/internal/supervisor"
	"github.com/tomtom215/clusterrec/internal/supervisor/services"
)

// app holds the components shared by both modes.
type app struct {
	cfg        *config.Config
	db         *database.DB
	provider   *database.ResilientProvider
	engine     *recommend.Engine
	store      *store.Store
	cache      *cache.ResultCache
	publisher  *events.Publisher
	generation *services.GenerationService

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (a *app, err error) {
	a = &app{cfg: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.db, err = database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	a.closers = append(a.closers, a.db.Close)

	if cfg.Database.Import.Enabled() {
		if err = a.db.ImportAll(ctx, cfg.Database.Import); err != nil {
			return nil, fmt.Errorf("import input files: %w", err)
		}
	}

	a.provider = database.NewResilientProvider(a.db, database.DefaultResilientProviderConfig())

	recCfg := cfg.Recommend
	a.engine, err = recommend.NewEngine(&recCfg, logging.Logger())
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	a.engine.SetDataProvider(a.provider)
	a.engine.SetClusterer(algorithms.NewHDBSCAN())
	a.engine.SetNeighborIndex(algorithms.NewBruteForceIndex())
	a.engine.SetObserver(metrics.EngineObserver{})

	a.store, err = store.Open(cfg.Store)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.store.Close)

	a.cache, err = cache.NewResultCache(a.store, cfg.Cache.Size)
	if err != nil {
		return nil, fmt.Errorf("create result cache: %w", err)
	}

	sinks := []services.Sink{
		services.DuckDBSink(a.db),
		services.StoreSink(a.store),
		services.CacheSink(a.cache),
	}
	if cfg.Events.Enabled {
		a.publisher, err = events.New(cfg.Events)
		if err != nil {
			return nil, fmt.Errorf("create event publisher: %w", err)
		}
		a.closers = append(a.closers, a.publisher.Close)
		sinks = append(sinks, services.EventSink(a.publisher))
	}

	a.generation = services.NewGenerationService(
		a.engine,
		services.GenerationConfigFrom(cfg.Generation),
		logging.WithComponent("generation"),
		sinks...,
	)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logging.Error().Err(err).Msg("Error during shutdown")
		}
	}
	a.closers = nil
}

func (a *app) generate(ctx context.Context) error {
	if err := a.generation.RunOnce(ctx); err != nil {
		return err
	}
	st := a.engine.Status()
	logging.Info().
		Str("run_id", st.RunID).
		Int("users", st.Users).
		Int("skipped_users", st.SkippedUsers).
		Int("rows", st.Rows).
		Int64("duration_ms", st.DurationMS).
		Msg("Generation finished")
	return nil
}

func (a *app) serve(ctx context.Context) error {
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(a.cfg.Supervisor))
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddDataService(services.NewMaintenanceService(30*time.Minute, logging.WithComponent("maintenance"),
		services.MaintenanceTask{Name: "badger-gc", Run: a.store.CollectGarbage},
		services.MaintenanceTask{Name: "duckdb-checkpoint", Run: a.db.Checkpoint},
	))
	tree.AddGenerationService(a.generation)

	handler := api.NewHandler(api.HandlerDeps{
		Recommendations: a.cache,
		Runs:            a.store,
		Generation:      a.generation,
		Database:        a.db,
		ProviderState:   func() string { return a.provider.State().String() },
		ModuleSource:    a.cfg.Recommend.ModuleSource,
		Version:         version,
	})
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(a.cfg.Security)))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadTimeout:       a.cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      a.cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, a.cfg.Supervisor.ShutdownTimeout, logging.WithComponent("http")))

	logging.Info().Str("addr", server.Addr).Msg("Supervisor tree starting")
	err = tree.Serve(ctx)

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within shutdown timeout")
		}
	}
	return err
}
