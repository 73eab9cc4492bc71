// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package recommend

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestRunState_Transitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to RunState
		ok       bool
	}{
		{StateInit, StateProfilesBuilt, true},
		{StateProfilesBuilt, StateRecommendationsGenerated, true},
		{StateRecommendationsGenerated, StateDone, true},
		{StateInit, StateRecommendationsGenerated, false},
		{StateProfilesBuilt, StateInit, false},
		{StateDone, StateInit, false},
		{StateProfilesBuilt, StateFailed, true},
		{StateDone, StateFailed, false},
		{StateFailed, StateFailed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			t.Parallel()
			s := RunStatus{State: tt.from}
			err := s.advance(tt.to)
			if tt.ok && err != nil {
				t.Errorf("advance() error = %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("advance() error = %v, want ErrInvalidTransition", err)
			}
		})
	}
}

func TestRunPool(t *testing.T) {
	t.Parallel()

	out := make([]int, 50)
	err := runPool(context.Background(), 4, len(out), func(i int) error {
		out[i] = i * i
		return nil
	})
	if err != nil {
		t.Fatalf("runPool() error = %v", err)
	}
	for i, v := range out {
		if v != i*i {
			t.Fatalf("out[%d] = %d", i, v)
		}
	}
}

func TestRunPool_LowestErrorWins(t *testing.T) {
	t.Parallel()

	errLow := errors.New("low")
	errHigh := errors.New("high")
	var calls atomic.Int32
	err := runPool(context.Background(), 4, 20, func(i int) error {
		calls.Add(1)
		switch {
		case i == 3:
			return errLow
		case i >= 5:
			return errHigh
		}
		return nil
	})
	if !errors.Is(err, errLow) {
		t.Fatalf("runPool() error = %v, want %v", err, errLow)
	}
	if calls.Load() < 4 {
		t.Errorf("calls = %d, jobs before the failure must run", calls.Load())
	}
}

func TestRunPool_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls atomic.Int32
	err := runPool(ctx, 2, 5, func(int) error {
		calls.Add(1)
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("runPool() error = %v, want context.Canceled", err)
	}
	if calls.Load() != 0 {
		t.Errorf("calls = %d, want 0", calls.Load())
	}
}

func TestRunPool_Empty(t *testing.T) {
	t.Parallel()

	if err := runPool(context.Background(), 3, 0, func(int) error { return errors.New("never") }); err != nil {
		t.Errorf("runPool() error = %v", err)
	}
}
