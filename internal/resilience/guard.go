// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

package resilience

import (
	"context"
	"time"

	"github.com/tomtom215/eventgraph/internal/models"
)

// Guard composes one platform's protection layers. The retryer is the
// outermost layer; inside it every attempt first asks the local rate
// limiter, then runs through the breaker, so each network attempt is
// individually limited and counted. A limiter rejection or a breaker that
// opens mid-retry stops the loop because neither error is retryable.
type Guard struct {
	platform  models.Platform
	limiter   *RateLimiter
	breaker   *CircuitBreaker
	retryer   *Retryer
	baseDelay time.Duration
}

// GuardSettings configures a single platform guard.
type GuardSettings struct {
	Breaker           BreakerSettings
	RetryAttempts     int
	RetryBaseDelay    time.Duration
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// DefaultGuardSettings allows 100 calls per minute, retries 3 times, and
// uses the default breaker thresholds.
func DefaultGuardSettings() GuardSettings {
	return GuardSettings{
		Breaker:           DefaultBreakerSettings(),
		RetryAttempts:     DefaultRetryAttempts,
		RetryBaseDelay:    DefaultRetryBaseDelay,
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
	}
}

// NewGuard creates a guard for one platform.
func NewGuard(platform models.Platform, settings GuardSettings) *Guard {
	return &Guard{
		platform:  platform,
		limiter:   NewRateLimiter(settings.RateLimitRequests, settings.RateLimitWindow),
		breaker:   NewCircuitBreaker(platform, settings.Breaker),
		retryer:   NewRetryer(settings.RetryAttempts, settings.RetryBaseDelay),
		baseDelay: settings.RetryBaseDelay,
	}
}

// Call runs fn under the guard. Local limiter rejections surface as a
// RateLimitError with Source local and are never retried.
func (g *Guard) Call(ctx context.Context, fn func() error) error {
	return g.CallWithAttempts(ctx, 0, fn)
}

// CallWithAttempts runs fn under the guard with a per-call retry budget.
// Non-positive attempts use the guard's configured default. The limiter
// check runs per attempt, so a retried call consumes one window slot per
// outbound attempt, not one per Call.
func (g *Guard) CallWithAttempts(ctx context.Context, attempts int, fn func() error) error {
	retryer := g.retryer
	if attempts > 0 {
		retryer = NewRetryer(attempts, g.baseDelay)
	}

	return retryer.Do(ctx, g.platform, func() error {
		if !g.limiter.Allow() {
			return &models.RateLimitError{Platform: g.platform, Source: models.RateLimitLocal}
		}
		return g.breaker.Execute(fn)
	})
}

// Platform identifies the platform this guard protects.
func (g *Guard) Platform() models.Platform { return g.platform }

// BreakerState exposes the breaker state for health reporting.
func (g *Guard) BreakerState() string { return g.breaker.State() }

// Registry holds one guard per platform. Guards are created up front for
// every configured platform, so lookups never mutate the map and need no
// locking.
type Registry struct {
	guards map[models.Platform]*Guard
}

// NewRegistry creates guards for the given platforms with shared settings.
func NewRegistry(platforms []models.Platform, settings GuardSettings) *Registry {
	guards := make(map[models.Platform]*Guard, len(platforms))
	for _, p := range platforms {
		guards[p] = NewGuard(p, settings)
	}
	return &Registry{guards: guards}
}

// Guard returns the guard for a platform, or nil when the platform is not
// registered.
func (r *Registry) Guard(platform models.Platform) *Guard {
	return r.guards[platform]
}
