// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

// Package cache provides the TTL read cache the orchestrator consults before
// the store. Entries expire after one hour by default; writes and updates go
// through the orchestrator, which keeps the cache consistent by writing
// through on create and invalidate-then-repopulate on update.
package cache

import (
	"sync"
	"time"

	"github.com/tomtom215/eventgraph/internal/models"
)

// DefaultTTL is the entry lifetime when the deployment does not override it.
const DefaultTTL = time.Hour

// cleanupInterval is how often the background sweep removes expired entries.
const cleanupInterval = 5 * time.Minute

// entry is a cached event with its expiration.
type entry struct {
	event     *models.Event
	expiresAt time.Time
}

// Stats tracks cache performance counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// EventCache is a thread-safe in-memory TTL cache keyed by canonical event
// id. Events are cloned on the way in and out so callers never alias cached
// state.
type EventCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration

	statsMu sync.Mutex
	stats   Stats

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates an event cache with the given TTL and starts the background
// cleanup sweep. Non-positive TTLs fall back to DefaultTTL.
func New(ttl time.Duration) *EventCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &EventCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		stats:   Stats{LastCleanup: time.Now()},
		stop:    make(chan struct{}),
	}

	go c.cleanupLoop()

	return c
}

// Get returns the cached event for id, or (nil, false) on miss or
// expiration. Expired entries are evicted on access.
func (c *EventCache) Get(id string) (*models.Event, bool) {
	c.mu.RLock()
	e, exists := c.entries[id]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return nil, false
	}

	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, id)
		c.mu.Unlock()
		c.recordMiss()
		c.recordEviction()
		return nil, false
	}

	c.recordHit()
	return e.event.Clone(), true
}

// Set stores a copy of the event under its id with the default TTL,
// overwriting any previous entry.
func (c *EventCache) Set(event *models.Event) {
	c.SetWithTTL(event, c.ttl)
}

// SetWithTTL stores a copy of the event with a custom TTL.
func (c *EventCache) SetWithTTL(event *models.Event, ttl time.Duration) {
	c.mu.Lock()
	c.entries[event.ID] = entry{
		event:     event.Clone(),
		expiresAt: time.Now().Add(ttl),
	}
	total := int64(len(c.entries))
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.TotalKeys = total
	c.statsMu.Unlock()
}

// Delete removes the entry for id. Safe to call for absent ids.
func (c *EventCache) Delete(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()

	c.recordEviction()
}

// Clear removes all entries.
func (c *EventCache) Clear() {
	c.mu.Lock()
	evictions := int64(len(c.entries))
	c.entries = make(map[string]entry)
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.Evictions += evictions
	c.stats.TotalKeys = 0
	c.statsMu.Unlock()
}

// GetStats returns a snapshot of the performance counters.
func (c *EventCache) GetStats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// HitRate returns the hit percentage over the cache's lifetime.
func (c *EventCache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// Close stops the background cleanup goroutine.
func (c *EventCache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// cleanupLoop periodically removes expired entries until Close.
func (c *EventCache) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes all expired entries.
func (c *EventCache) cleanup() {
	now := time.Now()
	c.mu.Lock()
	evictions := int64(0)
	for id, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, id)
			evictions++
		}
	}
	total := int64(len(c.entries))
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.Evictions += evictions
	c.stats.TotalKeys = total
	c.stats.LastCleanup = now
	c.statsMu.Unlock()
}

func (c *EventCache) recordHit() {
	c.statsMu.Lock()
	c.stats.Hits++
	c.statsMu.Unlock()
}

func (c *EventCache) recordMiss() {
	c.statsMu.Lock()
	c.stats.Misses++
	c.statsMu.Unlock()
}

func (c *EventCache) recordEviction() {
	c.statsMu.Lock()
	c.stats.Evictions++
	c.statsMu.Unlock()
}
