// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

// Package sync hosts the orchestrator, the single coordination point for
// event lifecycle operations. It owns the ordering rules the rest of the
// engine relies on: validation before persistence, store writes before cache
// writes, cache invalidation before repopulation on update, and restricted
// field rejection before any I/O at all.
package sync

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/eventgraph/internal/cache"
	"github.com/tomtom215/eventgraph/internal/logging"
	"github.com/tomtom215/eventgraph/internal/models"
	"github.com/tomtom215/eventgraph/internal/platform"
	"github.com/tomtom215/eventgraph/internal/resilience"
	"github.com/tomtom215/eventgraph/internal/store"
	"github.com/tomtom215/eventgraph/internal/validation"
)

// Orchestrator coordinates validation, persistence, caching, and partner
// imports. All methods are safe for concurrent use; concurrent updates to
// the same event resolve last-write-wins.
type Orchestrator struct {
	store     store.Gateway
	cache     *cache.EventCache
	validator *validation.EventValidator
	guards    *resilience.Registry
	adapters  map[models.Platform]platform.Adapter
}

// New creates an orchestrator. Adapters are keyed by the platform they
// serve; platforms without an adapter reject imports.
func New(gw store.Gateway, c *cache.EventCache, guards *resilience.Registry, adapters []platform.Adapter) *Orchestrator {
	byPlatform := make(map[models.Platform]platform.Adapter, len(adapters))
	for _, a := range adapters {
		byPlatform[a.Platform()] = a
	}
	return &Orchestrator{
		store:     gw,
		cache:     c,
		validator: validation.New(),
		guards:    guards,
		adapters:  byPlatform,
	}
}

// CreateEvent validates the candidate and persists the resulting event,
// writing through to the cache. Candidates without an id get a generated
// one; candidates without a platform default to INTERNAL.
func (o *Orchestrator) CreateEvent(ctx context.Context, candidate *models.EventCandidate) (*models.Event, error) {
	if candidate.Platform == "" {
		candidate.Platform = models.PlatformInternal
	}
	if candidate.ID == "" {
		candidate.ID = uuid.NewString()
	}

	event, err := o.validator.Validate(candidate)
	if err != nil {
		return nil, err
	}

	if err := o.store.WriteEvent(ctx, event); err != nil {
		return nil, err
	}
	o.cache.Set(event)

	logging.Info().
		Str("event_id", event.ID).
		Str("platform", string(event.Platform)).
		Msg("Event created")

	return event, nil
}

// GetEvent reads through the cache: a hit skips the store entirely, a miss
// loads from the store and repopulates the cache. Returns
// models.NotFoundError when the event exists in neither.
func (o *Orchestrator) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	if event, ok := o.cache.Get(id); ok {
		return event, nil
	}

	event, err := o.store.ReadEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	o.cache.Set(event)

	return event, nil
}

// UpdateEvent merges the patch into the current event and revalidates the
// whole merged result, never the delta. Patches naming restricted fields are
// rejected before any store or cache access. On success the cache entry is
// invalidated and repopulated with the new version so a subsequent read
// cannot observe the stale one.
func (o *Orchestrator) UpdateEvent(ctx context.Context, id string, patch *models.EventPatch) (*models.Event, error) {
	if restricted := patch.RestrictedFields(); len(restricted) > 0 {
		return nil, &models.RestrictedFieldError{Fields: restricted}
	}

	current, err := o.store.ReadEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	candidate := current.Candidate()
	patch.ApplyTo(candidate)

	updated, err := o.validator.Validate(candidate)
	if err != nil {
		return nil, err
	}

	// Creation provenance survives every update.
	updated.CreatedAt = current.CreatedAt
	updated.CreatedBy = current.CreatedBy
	updated.UpdatedAt = time.Now().UTC()

	if err := o.store.WriteEvent(ctx, updated); err != nil {
		return nil, err
	}
	o.cache.Delete(id)
	o.cache.Set(updated)

	logging.Info().
		Str("event_id", id).
		Msg("Event updated")

	return updated, nil
}

// ImportEvents pulls all pages for the date range from the platform's
// adapter under its resilience guard, then validates and persists each
// record. Duplicate records, identified by (platform, external_id), are
// skipped, not overwritten. With SkipInvalid set, per-record failures are
// collected and the loop continues; otherwise the first failure aborts.
func (o *Orchestrator) ImportEvents(ctx context.Context, p models.Platform, dateRange models.DateRange, opts models.ImportOptions) (*models.ImportResult, error) {
	adapter, ok := o.adapters[p]
	if !ok {
		return nil, &models.UnsupportedPlatformError{Name: string(p)}
	}
	guard := o.guards.Guard(p)
	if guard == nil {
		return nil, &models.UnsupportedPlatformError{Name: string(p)}
	}

	if err := dateRange.Validate(); err != nil {
		return nil, models.NewValidationError(models.FieldError{
			Field:   "date_range",
			Message: err.Error(),
		})
	}
	dateRange = dateRange.Clamp(models.MaxImportRange)
	opts = opts.Normalize()

	logging.Info().
		Str("platform", string(p)).
		Time("start", dateRange.Start).
		Time("end", dateRange.End).
		Int("batch_size", opts.BatchSize).
		Msg("Import started")

	result := &models.ImportResult{}
	cursor := ""
	index := 0

	for {
		var page *platform.Page
		err := guard.CallWithAttempts(ctx, opts.RetryAttempts, func() error {
			var fetchErr error
			page, fetchErr = adapter.FetchPage(ctx, dateRange, cursor, opts.BatchSize)
			return fetchErr
		})
		if err != nil {
			// A page-level failure is not attributable to a single record;
			// the whole import fails regardless of SkipInvalid.
			return nil, err
		}

		for _, raw := range page.Records {
			created, externalID, recErr := o.importRecord(ctx, adapter, raw)
			switch {
			case recErr != nil:
				result.RecordFailure(index, externalID, recErr)
				if !opts.SkipInvalid {
					result.Success = false
					return result, nil
				}
			case created:
				result.ImportedCount++
			default:
				result.SkippedCount++
			}
			index++
		}

		if page.Done || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	result.Success = result.FailedCount == 0

	logging.Info().
		Str("platform", string(p)).
		Int("imported", result.ImportedCount).
		Int("skipped", result.SkippedCount).
		Int("failed", result.FailedCount).
		Msg("Import finished")

	return result, nil
}

// importRecord transforms, validates, and persists one partner record.
// Returns created=false with a nil error when the record was a duplicate,
// and the partner external id (when known) for error reporting.
func (o *Orchestrator) importRecord(ctx context.Context, adapter platform.Adapter, raw []byte) (created bool, externalID string, err error) {
	candidate, err := adapter.Transform(raw)
	if err != nil {
		return false, "", err
	}
	externalID = candidate.ExternalID

	event, err := o.validator.Validate(candidate)
	if err != nil {
		return false, externalID, err
	}

	created, err = o.store.WriteEventIfAbsent(ctx, event)
	if err != nil {
		return false, externalID, err
	}
	if created {
		o.cache.Set(event)
	}
	return created, externalID, nil
}

// CacheStats exposes read-cache counters for health reporting.
func (o *Orchestrator) CacheStats() cache.Stats {
	return o.cache.GetStats()
}

// BreakerStates reports each guarded platform's breaker state.
func (o *Orchestrator) BreakerStates() map[string]string {
	states := make(map[string]string)
	for _, p := range models.ExternalPlatforms {
		if g := o.guards.Guard(p); g != nil {
			states[string(p)] = g.BreakerState()
		}
	}
	return states
}
