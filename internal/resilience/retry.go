// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/eventgraph/internal/logging"
	"github.com/tomtom215/eventgraph/internal/models"
)

// DefaultRetryAttempts bounds total attempts per outbound call.
const DefaultRetryAttempts = 3

// DefaultRetryBaseDelay is the backoff unit; delays double per attempt.
const DefaultRetryBaseDelay = time.Second

// Retryer re-issues failed calls with exponential backoff. Only errors
// models.IsRetryable accepts are retried; everything else surfaces
// immediately. A partner-advertised Retry-After delay overrides the
// computed backoff.
type Retryer struct {
	maxAttempts int
	baseDelay   time.Duration
}

// NewRetryer creates a retryer with the given attempt budget and backoff
// unit. Non-positive values fall back to defaults.
func NewRetryer(maxAttempts int, baseDelay time.Duration) *Retryer {
	if maxAttempts < 1 {
		maxAttempts = DefaultRetryAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultRetryBaseDelay
	}
	return &Retryer{maxAttempts: maxAttempts, baseDelay: baseDelay}
}

// Do runs fn up to the attempt budget, sleeping between attempts. The wait
// is context-cancellable. After the final attempt the last error is returned
// unchanged so callers see the real failure, not a retry wrapper.
func (r *Retryer) Do(ctx context.Context, platform models.Platform, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := r.delayFor(attempt, lastErr)
			logging.Debug().
				Str("platform", string(platform)).
				Int("attempt", attempt+1).
				Dur("delay", delay).
				Msg("Retrying partner call")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !models.IsRetryable(err) {
			return err
		}
	}

	return lastErr
}

// delayFor computes the backoff before the given attempt (1-based). A partner
// 429 with a Retry-After hint takes precedence over exponential backoff.
func (r *Retryer) delayFor(attempt int, lastErr error) time.Duration {
	var rate *models.RateLimitError
	if errors.As(lastErr, &rate) && rate.Source == models.RateLimitPartner && rate.RetryAfter > 0 {
		return rate.RetryAfter
	}
	return r.baseDelay * time.Duration(1<<(attempt-1))
}
