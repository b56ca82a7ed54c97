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

// partifulCategories maps Partiful vibe values onto the canonical
// vocabulary. Unrecognized vibes are dropped.
var partifulCategories = map[string]string{
	"party":        "social",
	"dinner":       "social",
	"hangout":      "social",
	"game night":   "social",
	"mixer":        "networking",
	"networking":   "networking",
	"workshop":     "workshop",
	"professional": "professional",
	"class":        "education",
}

// PartifulAdapter fetches events from the Partiful partner API.
// Partiful paginates with an opaque cursor.
type PartifulAdapter struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewPartifulAdapter creates a Partiful adapter from platform configuration.
func NewPartifulAdapter(cfg *config.PlatformConfig) *PartifulAdapter {
	return &PartifulAdapter{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		client:  newHTTPClient(cfg.Timeout),
	}
}

// Platform implements Adapter.
func (a *PartifulAdapter) Platform() models.Platform { return models.PlatformPartiful }

// partifulListResponse is the envelope of the events listing endpoint.
type partifulListResponse struct {
	Data       []json.RawMessage `json:"data"`
	NextCursor string            `json:"next_cursor"`
}

type partifulEvent struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Details   string    `json:"details"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Venue     struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	} `json:"venue"`
	IsPrivate bool   `json:"is_private"`
	MaxGuests int    `json:"max_guests"`
	Vibe      string `json:"vibe"`
	Guests    []struct {
		ID string `json:"id"`
	} `json:"guests"`
}

// FetchPage implements Adapter.
func (a *PartifulAdapter) FetchPage(ctx context.Context, dateRange models.DateRange, cursor string, limit int) (*Page, error) {
	params := url.Values{}
	params.Set("from", dateRange.Start.UTC().Format(time.RFC3339))
	params.Set("to", dateRange.End.UTC().Format(time.RFC3339))
	params.Set("limit", strconv.Itoa(clampLimit(limit)))
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	reqURL := fmt.Sprintf("%s/v1/events?%s", a.baseURL, params.Encode())
	body, err := doGET(ctx, a.client, models.PlatformPartiful, reqURL, a.token)
	if err != nil {
		return nil, err
	}

	var envelope partifulListResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode partiful events response: %w", err)
	}

	return &Page{
		Records:    envelope.Data,
		NextCursor: envelope.NextCursor,
		Done:       envelope.NextCursor == "",
	}, nil
}

// Transform implements Adapter.
func (a *PartifulAdapter) Transform(raw json.RawMessage) (*models.EventCandidate, error) {
	var ev partifulEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("decode partiful event: %w", err)
	}

	capacity := ev.MaxGuests
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	location := ev.Venue.Address
	if location == "" {
		location = ev.Venue.Name
	}

	participants := make([]string, 0, len(ev.Guests))
	for _, g := range ev.Guests {
		if g.ID != "" {
			participants = append(participants, g.ID)
		}
	}

	tags := map[string]string{}
	if ev.Vibe != "" {
		tags["vibe"] = ev.Vibe
	}

	return &models.EventCandidate{
		ID:           models.PlatformPartiful.SynthesizeID(ev.ID),
		Title:        ev.Title,
		Description:  ev.Details,
		StartDate:    ev.StartDate,
		EndDate:      ev.EndDate,
		Location:     location,
		Platform:     models.PlatformPartiful,
		ExternalID:   ev.ID,
		Participants: participants,
		Metadata: models.MetadataCandidate{
			Tags:               tags,
			Categories:         mapCategories([]string{ev.Vibe}, partifulCategories),
			Capacity:           capacity,
			IsPrivate:          ev.IsPrivate,
			DataClassification: classificationFor(ev.IsPrivate),
		},
	}, nil
}
