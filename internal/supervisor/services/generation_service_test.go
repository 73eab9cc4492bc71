// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/clusterrec/internal/events"
	"github.com/tomtom215/clusterrec/internal/recommend"
)

// mockGenerator is a test double for the engine.
type mockGenerator struct {
	mu      sync.Mutex
	calls   int
	err     error
	delay   time.Duration
	release chan struct{}
}

func (m *mockGenerator) Generate(ctx context.Context) (*recommend.RecommendationTable, error) {
	m.mu.Lock()
	m.calls++
	n := m.calls
	err, delay, release := m.err, m.delay, m.release
	m.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	return &recommend.RecommendationTable{
		RunID:        fmt.Sprintf("run-%d", n),
		ModuleSource: recommend.ModuleSourceContentBased,
		GeneratedAt:  time.Now(),
		Rows:         []recommend.Recommendation{{UserID: 1, ContentID: 104, Rank: 1, ModuleSource: recommend.ModuleSourceContentBased}},
	}, nil
}

func (m *mockGenerator) IsRunning() bool { return false }

func (m *mockGenerator) getCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// recordingSink remembers the run ids it received.
type recordingSink struct {
	name string
	err  error

	mu   sync.Mutex
	runs []string
}

func (r *recordingSink) Name() string { return r.name }

func (r *recordingSink) Write(_ context.Context, t *recommend.RecommendationTable, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, t.RunID)
	return r.err
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestGenerationService_String(t *testing.T) {
	svc := NewGenerationService(&mockGenerator{}, GenerationServiceConfig{}, zerolog.Nop())
	if got := svc.String(); got != "generation-service" {
		t.Errorf("String() = %q, want %q", got, "generation-service")
	}
	var _ suture.Service = svc
}

func TestGenerationService_RunOnceWritesSinksInOrder(t *testing.T) {
	var order []string
	var mu sync.Mutex
	mk := func(name string) Sink {
		return funcSink{name: name, write: func(context.Context, *recommend.RecommendationTable, time.Duration) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}}
	}

	svc := NewGenerationService(&mockGenerator{}, GenerationServiceConfig{}, zerolog.Nop(), mk("duckdb"), mk("store"), mk("events"))
	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if len(order) != 3 || order[0] != "duckdb" || order[2] != "events" {
		t.Errorf("sink order = %v", order)
	}
}

func TestGenerationService_SinkFailureStopsLaterSinks(t *testing.T) {
	failing := &recordingSink{name: "store", err: errors.New("disk full")}
	after := &recordingSink{name: "events"}

	svc := NewGenerationService(&mockGenerator{}, GenerationServiceConfig{}, zerolog.Nop(), failing, after)
	err := svc.RunOnce(context.Background())
	if err == nil || !errors.Is(err, failing.err) {
		t.Fatalf("RunOnce() error = %v, want disk full", err)
	}
	if after.count() != 0 {
		t.Error("sinks after a failure should not be written")
	}
}

func TestGenerationService_GenerateErrorSkipsSinks(t *testing.T) {
	sink := &recordingSink{name: "store"}
	gen := &mockGenerator{err: recommend.ErrDimensionMismatch}

	svc := NewGenerationService(gen, GenerationServiceConfig{}, zerolog.Nop(), sink)
	if err := svc.RunOnce(context.Background()); !errors.Is(err, recommend.ErrDimensionMismatch) {
		t.Errorf("RunOnce() error = %v", err)
	}
	if sink.count() != 0 {
		t.Error("failed run should not reach sinks")
	}
}

func TestGenerationService_RunOnStart(t *testing.T) {
	gen := &mockGenerator{}
	sink := &recordingSink{name: "store"}
	svc := NewGenerationService(gen, GenerationServiceConfig{RunOnStart: true}, zerolog.Nop(), sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	waitFor(t, func() bool { return sink.count() == 1 })
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
	if gen.getCalls() != 1 {
		t.Errorf("Generate() called %d times, want 1", gen.getCalls())
	}
}

func TestGenerationService_Schedule(t *testing.T) {
	gen := &mockGenerator{}
	svc := NewGenerationService(gen, GenerationServiceConfig{Interval: 20 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Serve(ctx) }()

	waitFor(t, func() bool { return gen.getCalls() >= 2 })
}

func TestGenerationService_ScheduledFailureKeepsServing(t *testing.T) {
	gen := &mockGenerator{err: errors.New("provider down")}
	svc := NewGenerationService(gen, GenerationServiceConfig{Interval: 10 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	waitFor(t, func() bool { return gen.getCalls() >= 3 })
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v", err)
	}
}

func TestGenerationService_Trigger(t *testing.T) {
	t.Run("accepted then coalesced while pending", func(t *testing.T) {
		svc := NewGenerationService(&mockGenerator{}, GenerationServiceConfig{}, zerolog.Nop())

		if got := svc.Trigger(); got != TriggerAccepted {
			t.Errorf("first Trigger() = %s, want accepted", got)
		}
		if got := svc.Trigger(); got != TriggerCoalesced {
			t.Errorf("second Trigger() = %s, want coalesced", got)
		}
	})

	t.Run("throttled within cooldown", func(t *testing.T) {
		svc := NewGenerationService(&mockGenerator{}, GenerationServiceConfig{TriggerCooldown: time.Hour}, zerolog.Nop())

		if got := svc.Trigger(); got != TriggerAccepted {
			t.Fatalf("Trigger() = %s", got)
		}
		<-svc.trigger
		if got := svc.Trigger(); got != TriggerThrottled {
			t.Errorf("Trigger() = %s, want throttled", got)
		}
	})

	t.Run("busy while a run is in progress", func(t *testing.T) {
		gen := &mockGenerator{release: make(chan struct{})}
		svc := NewGenerationService(gen, GenerationServiceConfig{}, zerolog.Nop())

		done := make(chan error, 1)
		go func() { done <- svc.RunOnce(context.Background()) }()
		waitFor(t, func() bool { return gen.getCalls() == 1 })

		if got := svc.Trigger(); got != TriggerBusy {
			t.Errorf("Trigger() = %s, want busy", got)
		}
		close(gen.release)
		if err := <-done; err != nil {
			t.Fatal(err)
		}
	})

	t.Run("triggered run is served", func(t *testing.T) {
		gen := &mockGenerator{}
		svc := NewGenerationService(gen, GenerationServiceConfig{}, zerolog.Nop())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = svc.Serve(ctx) }()

		svc.Trigger()
		waitFor(t, func() bool { return gen.getCalls() == 1 })
	})
}

func TestGenerationService_EventSink(t *testing.T) {
	ch := events.NewChannel(watermill.NopLogger{})
	pub := events.NewPublisher(ch, "")
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	messages, err := ch.Subscribe(ctx, events.DefaultTopic)
	if err != nil {
		t.Fatal(err)
	}

	svc := NewGenerationService(&mockGenerator{}, GenerationServiceConfig{}, zerolog.Nop(), EventSink(pub))
	if err := svc.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	select {
	case msg := <-messages:
		msg.Ack()
		e, err := events.UnmarshalRunCompleted(msg.Payload)
		if err != nil {
			t.Fatal(err)
		}
		if e.RunID != "run-1" || e.Rows != 1 || e.Users != 1 {
			t.Errorf("event = %+v", e)
		}
	case <-ctx.Done():
		t.Fatal("no event received")
	}
}
