// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

// Package resilience isolates partner API failures. Each platform gets its
// own guard composed of a circuit breaker, a bounded retryer, and a
// sliding-window rate limiter, so one degraded partner cannot slow the
// others down.
package resilience

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/eventgraph/internal/logging"
	"github.com/tomtom215/eventgraph/internal/models"
)

// BreakerSettings tunes one platform's circuit breaker.
type BreakerSettings struct {
	// FailureRate in (0, 1] trips the breaker once MinRequests have been
	// observed within the rolling Interval.
	FailureRate float64

	// MinRequests is the minimum sample size before FailureRate applies.
	MinRequests uint32

	// Interval is the rolling window over which closed-state counts
	// accumulate before being cleared.
	Interval time.Duration

	// OpenTimeout is how long an open breaker rejects calls before allowing
	// a single half-open trial.
	OpenTimeout time.Duration
}

// DefaultBreakerSettings trips at 50% failures over at least 10 calls and
// holds open for 30 seconds.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		FailureRate: 0.5,
		MinRequests: 10,
		Interval:    time.Minute,
		OpenTimeout: 30 * time.Second,
	}
}

// CircuitBreaker wraps a gobreaker instance for one platform and translates
// its state errors into the engine's error vocabulary.
type CircuitBreaker struct {
	platform models.Platform
	cb       *gobreaker.CircuitBreaker[struct{}]
}

// NewCircuitBreaker creates a breaker for the given platform. A single
// half-open trial decides recovery: success closes the breaker, failure
// reopens it for another OpenTimeout.
func NewCircuitBreaker(platform models.Platform, settings BreakerSettings) *CircuitBreaker {
	st := gobreaker.Settings{
		Name:        string(platform),
		MaxRequests: 1,
		Interval:    settings.Interval,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.FailureRate
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("platform", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}

	return &CircuitBreaker{
		platform: platform,
		cb:       gobreaker.NewCircuitBreaker[struct{}](st),
	}
}

// Execute runs fn through the breaker. When the breaker is open or the
// half-open trial slot is taken, it returns a CircuitOpenError without
// invoking fn.
func (b *CircuitBreaker) Execute(fn func() error) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &models.CircuitOpenError{Platform: b.platform}
		}
		return err
	}
	return nil
}

// State returns the breaker's current state name.
func (b *CircuitBreaker) State() string {
	return b.cb.State().String()
}
