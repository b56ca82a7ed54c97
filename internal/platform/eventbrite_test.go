// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eventgraph/internal/config"
	"github.com/tomtom215/eventgraph/internal/models"
)

func newEventbriteTestAdapter(baseURL string) *EventbriteAdapter {
	return NewEventbriteAdapter(&config.PlatformConfig{
		BaseURL: baseURL,
		Token:   "test-token",
		Timeout: 5 * time.Second,
	})
}

func TestEventbriteFetchPageNumberCursor(t *testing.T) {
	var gotPages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Path; got != "/v3/events/search/" {
			t.Errorf("path = %q", got)
		}
		page := r.URL.Query().Get("page")
		gotPages = append(gotPages, page)

		hasMore := page == "1"
		resp := map[string]interface{}{
			"events": []map[string]interface{}{{"id": "eb-" + page}},
			"pagination": map[string]interface{}{
				"has_more_items": hasMore,
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	adapter := newEventbriteTestAdapter(srv.URL)
	ctx := context.Background()

	first, err := adapter.FetchPage(ctx, testDateRange(), "", 25)
	if err != nil {
		t.Fatalf("FetchPage (first): %v", err)
	}
	if first.Done {
		t.Fatal("first page reported done")
	}
	if first.NextCursor != "2" {
		t.Fatalf("NextCursor = %q, want 2", first.NextCursor)
	}

	second, err := adapter.FetchPage(ctx, testDateRange(), first.NextCursor, 25)
	if err != nil {
		t.Fatalf("FetchPage (second): %v", err)
	}
	if !second.Done {
		t.Fatal("second page not reported done")
	}

	if len(gotPages) != 2 || gotPages[0] != "1" || gotPages[1] != "2" {
		t.Errorf("requested pages = %v, want [1 2]", gotPages)
	}
}

func TestEventbriteFetchPageRejectsBadCursor(t *testing.T) {
	adapter := newEventbriteTestAdapter("http://unused")
	if _, err := adapter.FetchPage(context.Background(), testDateRange(), "not-a-number", 25); err == nil {
		t.Error("FetchPage with malformed cursor should fail")
	}
	if _, err := adapter.FetchPage(context.Background(), testDateRange(), "0", 25); err == nil {
		t.Error("FetchPage with page 0 should fail")
	}
}

func TestEventbriteTransform(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "123456",
		"name": {"text": "Tech Conference 2026"},
		"description": {"text": "Annual gathering"},
		"start": {"utc": "2026-10-01T08:00:00Z"},
		"end": {"utc": "2026-10-02T18:00:00Z"},
		"venue": {
			"name": "Convention Center",
			"address": {"localized_address_display": "Messedamm 22, Berlin"}
		},
		"capacity": 5000,
		"listed": true,
		"category": {"short_name": "Science & Tech"},
		"format": {"short_name": "Conference"}
	}`)

	candidate, err := newEventbriteTestAdapter("http://unused").Transform(raw)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	if candidate.ID != "eventbrite_123456" {
		t.Errorf("ID = %q, want eventbrite_123456", candidate.ID)
	}
	if candidate.Title != "Tech Conference 2026" {
		t.Errorf("Title = %q", candidate.Title)
	}
	if candidate.Location != "Messedamm 22, Berlin" {
		t.Errorf("Location = %q", candidate.Location)
	}
	if candidate.Metadata.IsPrivate {
		t.Error("listed event mapped to private")
	}
	// science & tech -> conference
	if len(candidate.Metadata.Categories) != 1 || candidate.Metadata.Categories[0] != "conference" {
		t.Errorf("Categories = %v, want [conference]", candidate.Metadata.Categories)
	}
	if candidate.Metadata.Tags["format"] != "Conference" {
		t.Errorf("Tags = %v, want format preserved", candidate.Metadata.Tags)
	}
}

func TestEventbriteTransformUnlistedIsPrivate(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "999",
		"name": {"text": "Invite Only"},
		"start": {"utc": "2026-10-01T08:00:00Z"},
		"end": {"utc": "2026-10-01T12:00:00Z"},
		"venue": {"name": "Backroom"},
		"listed": false,
		"category": {"short_name": "Community"}
	}`)

	candidate, err := newEventbriteTestAdapter("http://unused").Transform(raw)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	if !candidate.Metadata.IsPrivate {
		t.Error("unlisted event should be private")
	}
	if candidate.Metadata.DataClassification != models.ClassificationConfidential {
		t.Errorf("DataClassification = %v, want CONFIDENTIAL", candidate.Metadata.DataClassification)
	}
	if candidate.Location != "Backroom" {
		t.Errorf("Location = %q, want venue name fallback", candidate.Location)
	}
	if candidate.Metadata.Capacity != defaultCapacity {
		t.Errorf("Capacity = %d, want default %d", candidate.Metadata.Capacity, defaultCapacity)
	}
}
