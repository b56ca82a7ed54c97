// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eventgraph/internal/config"
	"github.com/tomtom215/eventgraph/internal/models"
)

// eventbriteCategories maps Eventbrite category short names onto the
// canonical vocabulary. Unrecognized categories are dropped.
var eventbriteCategories = map[string]string{
	"business":           "professional",
	"science & tech":     "conference",
	"community":          "networking",
	"music":              "social",
	"food & drink":       "social",
	"seasonal & holiday": "social",
	"family & education": "education",
	"school activities":  "education",
	"hobbies":            "workshop",
	"other":              "other",
}

// EventbriteAdapter fetches events from the Eventbrite search API.
// Eventbrite paginates with page numbers; the adapter serializes the page
// number into the cursor so the orchestrator can treat all partners
// uniformly.
type EventbriteAdapter struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewEventbriteAdapter creates an Eventbrite adapter from platform
// configuration.
func NewEventbriteAdapter(cfg *config.PlatformConfig) *EventbriteAdapter {
	return &EventbriteAdapter{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		client:  newHTTPClient(cfg.Timeout),
	}
}

// Platform implements Adapter.
func (a *EventbriteAdapter) Platform() models.Platform { return models.PlatformEventbrite }

// eventbriteSearchResponse is the envelope of the event search endpoint.
type eventbriteSearchResponse struct {
	Events     []json.RawMessage `json:"events"`
	Pagination struct {
		PageNumber   int  `json:"page_number"`
		PageCount    int  `json:"page_count"`
		HasMoreItems bool `json:"has_more_items"`
	} `json:"pagination"`
}

type eventbriteEvent struct {
	ID   string `json:"id"`
	Name struct {
		Text string `json:"text"`
	} `json:"name"`
	Description struct {
		Text string `json:"text"`
	} `json:"description"`
	Start struct {
		UTC time.Time `json:"utc"`
	} `json:"start"`
	End struct {
		UTC time.Time `json:"utc"`
	} `json:"end"`
	Venue struct {
		Name    string `json:"name"`
		Address struct {
			LocalizedAddressDisplay string `json:"localized_address_display"`
		} `json:"address"`
	} `json:"venue"`
	Capacity int  `json:"capacity"`
	Listed   bool `json:"listed"`
	Category struct {
		ShortName string `json:"short_name"`
	} `json:"category"`
	Format struct {
		ShortName string `json:"short_name"`
	} `json:"format"`
}

// FetchPage implements Adapter. An empty cursor means page 1.
func (a *EventbriteAdapter) FetchPage(ctx context.Context, dateRange models.DateRange, cursor string, limit int) (*Page, error) {
	page := 1
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("invalid eventbrite page cursor %q", cursor)
		}
		page = parsed
	}

	params := url.Values{}
	params.Set("start_date.range_start", dateRange.Start.UTC().Format("2006-01-02T15:04:05Z"))
	params.Set("start_date.range_end", dateRange.End.UTC().Format("2006-01-02T15:04:05Z"))
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(clampLimit(limit)))
	params.Set("expand", "venue,category,format")

	reqURL := fmt.Sprintf("%s/v3/events/search/?%s", a.baseURL, params.Encode())
	body, err := doGET(ctx, a.client, models.PlatformEventbrite, reqURL, a.token)
	if err != nil {
		return nil, err
	}

	var envelope eventbriteSearchResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode eventbrite search response: %w", err)
	}

	return &Page{
		Records:    envelope.Events,
		NextCursor: strconv.Itoa(page + 1),
		Done:       !envelope.Pagination.HasMoreItems,
	}, nil
}

// Transform implements Adapter.
func (a *EventbriteAdapter) Transform(raw json.RawMessage) (*models.EventCandidate, error) {
	var ev eventbriteEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("decode eventbrite event: %w", err)
	}

	// Unlisted events are treated as private
	private := !ev.Listed

	capacity := ev.Capacity
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	location := ev.Venue.Address.LocalizedAddressDisplay
	if location == "" {
		location = ev.Venue.Name
	}

	tags := map[string]string{}
	if ev.Format.ShortName != "" {
		tags["format"] = ev.Format.ShortName
	}

	return &models.EventCandidate{
		ID:          models.PlatformEventbrite.SynthesizeID(ev.ID),
		Title:       ev.Name.Text,
		Description: ev.Description.Text,
		StartDate:   ev.Start.UTC,
		EndDate:     ev.End.UTC,
		Location:    location,
		Platform:    models.PlatformEventbrite,
		ExternalID:  ev.ID,
		Metadata: models.MetadataCandidate{
			Tags:               tags,
			Categories:         mapCategories([]string{ev.Category.ShortName}, eventbriteCategories),
			Capacity:           capacity,
			IsPrivate:          private,
			DataClassification: classificationFor(private),
		},
	}, nil
}
