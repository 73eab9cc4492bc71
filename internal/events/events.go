// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

// Package events announces completed generation runs to downstream
// consumers through Watermill.
//
// The default backend is an in-process Go channel. Builds tagged nats
// can publish to NATS JetStream instead, either on an external server or
// on an embedded one started by this package.
package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/clusterrec/internal/recommend"
)

// DefaultTopic is the topic run-completion events are published to.
const DefaultTopic = "recommendations.generated"

// RunCompleted is published after a run's rows are written.
type RunCompleted struct {
	EventID      string    `json:"event_id"`
	RunID        string    `json:"run_id"`
	ModuleSource string    `json:"module_source"`
	Users        int       `json:"users"`
	Rows         int       `json:"rows"`
	DurationMS   int64     `json:"duration_ms"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// NewRunCompleted builds the event for a finished run.
func NewRunCompleted(table *recommend.RecommendationTable, duration time.Duration) *RunCompleted {
	return &RunCompleted{
		EventID:      uuid.NewString(),
		RunID:        table.RunID,
		ModuleSource: table.ModuleSource,
		Users:        table.UserCount(),
		Rows:         len(table.Rows),
		DurationMS:   duration.Milliseconds(),
		GeneratedAt:  table.GeneratedAt,
	}
}

// Marshal encodes the event as JSON.
func (e *RunCompleted) Marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal run event: %w", err)
	}
	return data, nil
}

// UnmarshalRunCompleted decodes an event payload.
func UnmarshalRunCompleted(data []byte) (*RunCompleted, error) {
	var e RunCompleted
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal run event: %w", err)
	}
	if e.RunID == "" {
		return nil, fmt.Errorf("run event has no run_id")
	}
	return &e, nil
}
