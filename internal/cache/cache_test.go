// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

package cache

import (
	"testing"
	"time"

	"github.com/tomtom215/eventgraph/internal/models"
)

func testEvent(id string) *models.Event {
	return &models.Event{
		ID:    id,
		Title: "Cached Event",
		Metadata: models.EventMetadata{
			Tags: map[string]string{"venue": "hall a"},
		},
	}
}

func TestCacheSetGet(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set(testEvent("evt-1"))

	got, ok := c.Get("evt-1")
	if !ok {
		t.Fatal("Get(evt-1) miss, want hit")
	}
	if got.Title != "Cached Event" {
		t.Errorf("Title = %q, want Cached Event", got.Title)
	}

	if _, ok := c.Get("evt-2"); ok {
		t.Error("Get(evt-2) hit, want miss")
	}
}

func TestCacheReturnsCopies(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	original := testEvent("evt-1")
	c.Set(original)
	original.Title = "Mutated After Set"

	got, ok := c.Get("evt-1")
	if !ok {
		t.Fatal("Get miss")
	}
	if got.Title != "Cached Event" {
		t.Error("mutation after Set leaked into cache")
	}

	got.Metadata.Tags["venue"] = "hall b"
	again, _ := c.Get("evt-1")
	if again.Metadata.Tags["venue"] != "hall a" {
		t.Error("mutation of returned event leaked into cache")
	}
}

func TestCacheExpiration(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.SetWithTTL(testEvent("evt-1"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, ok := c.Get("evt-1"); ok {
		t.Error("expired entry still served")
	}
}

func TestCacheDelete(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set(testEvent("evt-1"))
	c.Delete("evt-1")

	if _, ok := c.Get("evt-1"); ok {
		t.Error("deleted entry still served")
	}

	// Deleting an absent id is a no-op.
	c.Delete("evt-never")
}

func TestCacheClear(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set(testEvent("evt-1"))
	c.Set(testEvent("evt-2"))
	c.Clear()

	if _, ok := c.Get("evt-1"); ok {
		t.Error("cleared entry still served")
	}
	if got := c.GetStats().TotalKeys; got != 0 {
		t.Errorf("TotalKeys after Clear = %d, want 0", got)
	}
}

func TestCacheStats(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set(testEvent("evt-1"))
	c.Get("evt-1") // hit
	c.Get("evt-2") // miss

	stats := c.GetStats()
	if stats.Hits != 1 {
		t.Errorf("Hits = %d, want 1", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if rate := c.HitRate(); rate != 50.0 {
		t.Errorf("HitRate = %.1f, want 50.0", rate)
	}
}
