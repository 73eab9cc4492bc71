// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/clusterrec/internal/config"
	"github.com/tomtom215/clusterrec/internal/logging"
	"github.com/tomtom215/clusterrec/internal/metrics"
	"github.com/tomtom215/clusterrec/internal/recommend"
)

// Generator produces a recommendation table per call.
type Generator interface {
	Generate(ctx context.Context) (*recommend.RecommendationTable, error)
	IsRunning() bool
}

// TriggerResult describes how a manual trigger was handled.
type TriggerResult string

const (
	// TriggerAccepted queued a run.
	TriggerAccepted TriggerResult = "accepted"
	// TriggerCoalesced found a run already queued.
	TriggerCoalesced TriggerResult = "coalesced"
	// TriggerBusy found a run in progress.
	TriggerBusy TriggerResult = "busy"
	// TriggerThrottled arrived within the trigger cooldown.
	TriggerThrottled TriggerResult = "throttled"
)

// GenerationServiceConfig holds configuration for the generation service.
type GenerationServiceConfig struct {
	// Interval between scheduled runs. Zero disables the schedule.
	Interval time.Duration

	// RunOnStart runs once when the service starts.
	RunOnStart bool

	// Timeout bounds one run including sink writes. Default: 1h
	Timeout time.Duration

	// TriggerCooldown is the minimum spacing between accepted triggers.
	TriggerCooldown time.Duration
}

// GenerationConfigFrom converts the generation config section.
func GenerationConfigFrom(cfg config.GenerationConfig) GenerationServiceConfig {
	return GenerationServiceConfig{
		Interval:        cfg.Interval,
		RunOnStart:      cfg.RunOnStart,
		Timeout:         cfg.Timeout,
		TriggerCooldown: cfg.TriggerCooldown,
	}
}

// GenerationService runs the engine under supervision and hands each
// finished table to its sinks in order.
type GenerationService struct {
	engine  Generator
	sinks   []Sink
	config  GenerationServiceConfig
	logger  zerolog.Logger
	name    string
	trigger chan struct{}
	limiter *rate.Limiter
	running atomic.Bool
}

// NewGenerationService creates a generation service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewGenerationService(engine Generator, cfg GenerationServiceConfig, logger zerolog.Logger, sinks ...Sink) *GenerationService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Hour
	}
	limit := rate.Inf
	if cfg.TriggerCooldown > 0 {
		limit = rate.Every(cfg.TriggerCooldown)
	}
	return &GenerationService{
		engine:  engine,
		sinks:   sinks,
		config:  cfg,
		logger:  logger.With().Str("service", "generation").Logger(),
		name:    "generation-service",
		trigger: make(chan struct{}, 1),
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Serve implements suture.Service. Failed runs are logged and retried on
// the next tick or trigger.
func (s *GenerationService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("run_on_start", s.config.RunOnStart).
		Dur("interval", s.config.Interval).
		Msg("generation service starting")

	if s.config.RunOnStart {
		s.runLogged(ctx, "startup")
	}

	var tick <-chan time.Time
	if s.config.Interval > 0 {
		ticker := time.NewTicker(s.config.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("generation service shutting down")
			return ctx.Err()
		case <-tick:
			s.runLogged(ctx, "schedule")
		case <-s.trigger:
			s.runLogged(ctx, "trigger")
		}
	}
}

// Trigger asks for a run as soon as possible. It never blocks.
func (s *GenerationService) Trigger() TriggerResult {
	result := s.trigger0()
	metrics.RecordTrigger(string(result))
	return result
}

func (s *GenerationService) trigger0() TriggerResult {
	if s.running.Load() || s.engine.IsRunning() {
		return TriggerBusy
	}
	if len(s.trigger) > 0 {
		return TriggerCoalesced
	}
	if !s.limiter.Allow() {
		return TriggerThrottled
	}
	select {
	case s.trigger <- struct{}{}:
		return TriggerAccepted
	default:
		return TriggerCoalesced
	}
}

// Status returns the engine's status when the engine exposes one.
func (s *GenerationService) Status() (recommend.RunStatus, bool) {
	if st, ok := s.engine.(interface{ Status() recommend.RunStatus }); ok {
		return st.Status(), true
	}
	return recommend.RunStatus{}, false
}

func (s *GenerationService) runLogged(ctx context.Context, reason string) {
	if err := s.RunOnce(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn().Err(err).Str("reason", reason).Msg("generation run failed")
	}
}

// RunOnce generates one table and writes it to every sink. A sink failure
// stops the remaining sinks so events are only published for stored runs.
func (s *GenerationService) RunOnce(ctx context.Context) error {
	s.running.Store(true)
	defer s.running.Store(false)

	runCtx, cancel := context.WithTimeout(logging.ContextWithNewCorrelationID(ctx), s.config.Timeout)
	defer cancel()

	start := time.Now()
	table, err := s.engine.Generate(runCtx)
	duration := time.Since(start)
	if err != nil {
		metrics.RecordRun(duration, 0, err)
		return fmt.Errorf("generate: %w", err)
	}
	metrics.RecordRun(duration, len(table.Rows), nil)

	logger := s.logger.With().Str("run_id", table.RunID).Logger()
	for _, sink := range s.sinks {
		sinkStart := time.Now()
		err := sink.Write(runCtx, table, duration)
		metrics.RecordSinkWrite(sink.Name(), time.Since(sinkStart), err)
		if err != nil {
			return fmt.Errorf("write %s: %w", sink.Name(), err)
		}
		logger.Debug().Str("sink", sink.Name()).Dur("duration", time.Since(sinkStart)).Msg("sink written")
	}

	logger.Info().
		Int("users", table.UserCount()).
		Int("rows", len(table.Rows)).
		Dur("duration", duration).
		Msg("generation run complete")
	return nil
}

// String returns the service name for logging.
func (s *GenerationService) String() string {
	return s.name
}
