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

func newPartifulTestAdapter(baseURL string) *PartifulAdapter {
	return NewPartifulAdapter(&config.PlatformConfig{
		BaseURL: baseURL,
		Token:   "test-token",
		Timeout: 5 * time.Second,
	})
}

func TestPartifulFetchPageCursor(t *testing.T) {
	pages := map[string]string{
		"":      `{"data":[{"id":"pf-1"}],"next_cursor":"abc"}`,
		"abc":   `{"data":[{"id":"pf-2"}],"next_cursor":""}`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Path; got != "/v1/events" {
			t.Errorf("path = %q", got)
		}
		if got := r.URL.Query().Get("from"); got == "" {
			t.Error("from parameter missing")
		}
		w.Write([]byte(pages[r.URL.Query().Get("cursor")]))
	}))
	defer srv.Close()

	adapter := newPartifulTestAdapter(srv.URL)
	ctx := context.Background()

	first, err := adapter.FetchPage(ctx, testDateRange(), "", 50)
	if err != nil {
		t.Fatalf("FetchPage (first): %v", err)
	}
	if first.Done || first.NextCursor != "abc" {
		t.Fatalf("first page done=%v cursor=%q, want more with cursor abc", first.Done, first.NextCursor)
	}

	second, err := adapter.FetchPage(ctx, testDateRange(), first.NextCursor, 50)
	if err != nil {
		t.Fatalf("FetchPage (second): %v", err)
	}
	if !second.Done {
		t.Error("empty next_cursor should end pagination")
	}
}

func TestPartifulTransform(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "pf-77",
		"title": "Rooftop Mixer",
		"details": "Snacks provided",
		"start_date": "2026-09-12T18:00:00Z",
		"end_date": "2026-09-12T22:00:00Z",
		"venue": {"name": "Skybar", "address": "Torstr 1, Berlin"},
		"is_private": true,
		"max_guests": 40,
		"vibe": "mixer",
		"guests": [{"id": "alice"}, {"id": "bob"}, {"id": ""}]
	}`)

	candidate, err := newPartifulTestAdapter("http://unused").Transform(raw)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	if candidate.ID != "partiful_pf-77" {
		t.Errorf("ID = %q, want partiful_pf-77", candidate.ID)
	}
	if candidate.Title != "Rooftop Mixer" {
		t.Errorf("Title = %q", candidate.Title)
	}
	if candidate.Location != "Torstr 1, Berlin" {
		t.Errorf("Location = %q, want address over venue name", candidate.Location)
	}
	if len(candidate.Participants) != 2 {
		t.Errorf("Participants = %v, want empty guest ids dropped", candidate.Participants)
	}
	if candidate.Metadata.Capacity != 40 {
		t.Errorf("Capacity = %d, want 40", candidate.Metadata.Capacity)
	}
	if !candidate.Metadata.IsPrivate {
		t.Error("is_private not mapped")
	}
	if candidate.Metadata.DataClassification != models.ClassificationConfidential {
		t.Errorf("DataClassification = %v, want CONFIDENTIAL", candidate.Metadata.DataClassification)
	}
	// mixer -> networking
	if len(candidate.Metadata.Categories) != 1 || candidate.Metadata.Categories[0] != "networking" {
		t.Errorf("Categories = %v, want [networking]", candidate.Metadata.Categories)
	}
	if candidate.Metadata.Tags["vibe"] != "mixer" {
		t.Errorf("Tags = %v, want vibe preserved", candidate.Metadata.Tags)
	}
}
