// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// MaintenanceTask is one periodic storage upkeep step.
type MaintenanceTask struct {
	Name string
	Run  func(ctx context.Context) error
}

// MaintenanceService runs its tasks on a fixed interval.
type MaintenanceService struct {
	tasks    []MaintenanceTask
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewMaintenanceService creates a maintenance service. A non-positive
// interval means 10m.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMaintenanceService(interval time.Duration, logger zerolog.Logger, tasks ...MaintenanceTask) *MaintenanceService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &MaintenanceService{
		tasks:    tasks,
		interval: interval,
		logger:   logger.With().Str("service", "maintenance").Logger(),
		name:     "maintenance-service",
	}
}

// Serve implements suture.Service.
func (m *MaintenanceService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.runAll(ctx)
		}
	}
}

func (m *MaintenanceService) runAll(ctx context.Context) {
	for _, task := range m.tasks {
		start := time.Now()
		if err := task.Run(ctx); err != nil {
			m.logger.Warn().Err(err).Str("task", task.Name).Msg("maintenance task failed")
			continue
		}
		m.logger.Debug().Str("task", task.Name).Dur("duration", time.Since(start)).Msg("maintenance task done")
	}
}

// String returns the service name for logging.
func (m *MaintenanceService) String() string {
	return m.name
}
