// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package recommend

import (
	"fmt"
	"time"
)

// RunState is the phase of a generation run.
type RunState string

// Run states. A run moves strictly forward through
// INIT -> PROFILES_BUILT -> RECOMMENDATIONS_GENERATED -> DONE, or to FAILED
// from any non-terminal state.
const (
	StateInit                     RunState = "INIT"
	StateProfilesBuilt            RunState = "PROFILES_BUILT"
	StateRecommendationsGenerated RunState = "RECOMMENDATIONS_GENERATED"
	StateDone                     RunState = "DONE"
	StateFailed                   RunState = "FAILED"
)

var runTransitions = map[RunState]RunState{
	StateInit:                     StateProfilesBuilt,
	StateProfilesBuilt:            StateRecommendationsGenerated,
	StateRecommendationsGenerated: StateDone,
}

// Terminal reports whether no further transition is possible.
func (s RunState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// CanTransition reports whether s may move to next.
func (s RunState) CanTransition(next RunState) bool {
	if next == StateFailed {
		return !s.Terminal()
	}
	return runTransitions[s] == next
}

// RunStatus is a snapshot of the current or most recent run.
type RunStatus struct {
	RunID      string    `json:"run_id,omitempty"`
	State      RunState  `json:"state"`
	Running    bool      `json:"running"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	DurationMS int64     `json:"duration_ms"`

	CatalogSize  int `json:"catalog_size"`
	Interactions int `json:"interactions"`
	Users        int `json:"users"`
	SkippedUsers int `json:"skipped_users"`

	ProfilesBuilt      int `json:"profiles_built"`
	UsersGenerated     int `json:"users_generated"`
	DegenerateProfiles int `json:"degenerate_profiles"`
	Rows               int `json:"rows"`

	LastError string `json:"last_error,omitempty"`
}

// advance moves the status to next or reports ErrInvalidTransition.
func (s *RunStatus) advance(next RunState) error {
	if !s.State.CanTransition(next) {
		return fmt.Errorf("%s -> %s: %w", s.State, next, ErrInvalidTransition)
	}
	s.State = next
	return nil
}

// UserReport summarizes the work done for one user.
type UserReport struct {
	UserID      int64
	GoodItems   int
	Clusters    int
	NoiseItems  int
	FewInterest bool
	Degenerate  bool
	Candidates  int
	Supplement  int
	Rows        int
	Duration    time.Duration
}

// Observer receives per-user reports while a run executes. Implementations
// are called from worker goroutines and must be safe for concurrent use.
type Observer interface {
	ObserveUser(report UserReport)
}
