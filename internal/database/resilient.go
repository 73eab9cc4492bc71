// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/clusterrec/internal/logging"
	"github.com/tomtom215/clusterrec/internal/recommend"
)

// ErrProviderUnavailable is returned while the circuit breaker is open.
var ErrProviderUnavailable = errors.New("data provider unavailable")

// ResilientProviderConfig configures the circuit breaker around input loads.
type ResilientProviderConfig struct {
	// Name identifies the circuit breaker instance in logs.
	Name string

	// MaxRequests is the number of requests allowed in half-open state.
	MaxRequests uint32

	// Interval is the cyclic reset period for counts.
	Interval time.Duration

	// Timeout is the duration in open state before transitioning to half-open.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures before opening.
	FailureThreshold uint32
}

// DefaultResilientProviderConfig returns conservative breaker settings.
func DefaultResilientProviderConfig() ResilientProviderConfig {
	return ResilientProviderConfig{
		Name:             "data-provider",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 3,
	}
}

// ResilientProvider guards a recommend.DataProvider with a circuit breaker.
// Context cancellation does not count as a provider failure.
type ResilientProvider struct {
	inner recommend.DataProvider
	cb    *gobreaker.CircuitBreaker[any]
}

// NewResilientProvider wraps inner.
func NewResilientProvider(inner recommend.DataProvider, cfg ResilientProviderConfig) *ResilientProvider {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}
	return &ResilientProvider{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[any](settings),
	}
}

// State returns the breaker state.
func (p *ResilientProvider) State() gobreaker.State {
	return p.cb.State()
}

// GetCatalog implements recommend.DataProvider.
func (p *ResilientProvider) GetCatalog(ctx context.Context) ([]recommend.ContentItem, error) {
	return guarded(p.cb, func() ([]recommend.ContentItem, error) { return p.inner.GetCatalog(ctx) })
}

// GetInteractions implements recommend.DataProvider.
func (p *ResilientProvider) GetInteractions(ctx context.Context) ([]recommend.Interaction, error) {
	return guarded(p.cb, func() ([]recommend.Interaction, error) { return p.inner.GetInteractions(ctx) })
}

// GetUsers implements recommend.DataProvider.
func (p *ResilientProvider) GetUsers(ctx context.Context) ([]int64, error) {
	return guarded(p.cb, func() ([]int64, error) { return p.inner.GetUsers(ctx) })
}

func guarded[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	var zero T
	res, err := cb.Execute(func() (any, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return zero, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}
	return res.(T), nil
}

var _ recommend.DataProvider = (*ResilientProvider)(nil)
