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

// defaultCapacity is used when a partner omits the capacity field; the
// canonical model requires capacity in [1, 10000].
const defaultCapacity = 100

// lumaCategories maps Luma event tags onto the canonical vocabulary.
// Unrecognized tags are dropped.
var lumaCategories = map[string]string{
	"conference":   "conference",
	"summit":       "conference",
	"workshop":     "workshop",
	"hackathon":    "workshop",
	"networking":   "networking",
	"meetup":       "networking",
	"mixer":        "social",
	"party":        "social",
	"social":       "social",
	"professional": "professional",
	"career":       "professional",
	"education":    "education",
	"talk":         "education",
	"webinar":      "education",
}

// LumaAdapter fetches events from the Luma calendar API.
// Luma paginates with an opaque cursor.
type LumaAdapter struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewLumaAdapter creates a Luma adapter from platform configuration.
func NewLumaAdapter(cfg *config.PlatformConfig) *LumaAdapter {
	return &LumaAdapter{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		client:  newHTTPClient(cfg.Timeout),
	}
}

// Platform implements Adapter.
func (a *LumaAdapter) Platform() models.Platform { return models.PlatformLuma }

// lumaListResponse is the envelope of Luma's list-events endpoint.
type lumaListResponse struct {
	Entries    []json.RawMessage `json:"entries"`
	HasMore    bool              `json:"has_more"`
	NextCursor string            `json:"next_cursor"`
}

// lumaEntry is one calendar entry; the event payload is nested.
type lumaEntry struct {
	APIID string    `json:"api_id"`
	Event lumaEvent `json:"event"`
}

type lumaEvent struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	Timezone    string    `json:"timezone"`
	GeoAddress  struct {
		FullAddress string `json:"full_address"`
		CityState   string `json:"city_state"`
	} `json:"geo_address_json"`
	Visibility string   `json:"visibility"`
	Capacity   int      `json:"capacity"`
	Tags       []string `json:"tags"`
}

// FetchPage implements Adapter.
func (a *LumaAdapter) FetchPage(ctx context.Context, dateRange models.DateRange, cursor string, limit int) (*Page, error) {
	params := url.Values{}
	params.Set("after", dateRange.Start.UTC().Format(time.RFC3339))
	params.Set("before", dateRange.End.UTC().Format(time.RFC3339))
	params.Set("pagination_limit", strconv.Itoa(clampLimit(limit)))
	if cursor != "" {
		params.Set("pagination_cursor", cursor)
	}

	reqURL := fmt.Sprintf("%s/public/v1/calendar/list-events?%s", a.baseURL, params.Encode())
	body, err := doGET(ctx, a.client, models.PlatformLuma, reqURL, a.token)
	if err != nil {
		return nil, err
	}

	var envelope lumaListResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode luma list-events response: %w", err)
	}

	return &Page{
		Records:    envelope.Entries,
		NextCursor: envelope.NextCursor,
		Done:       !envelope.HasMore,
	}, nil
}

// Transform implements Adapter.
func (a *LumaAdapter) Transform(raw json.RawMessage) (*models.EventCandidate, error) {
	var entry lumaEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode luma entry: %w", err)
	}

	ev := entry.Event
	private := ev.Visibility == "private"

	capacity := ev.Capacity
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	tags := map[string]string{}
	if ev.Timezone != "" {
		tags["timezone"] = ev.Timezone
	}

	return &models.EventCandidate{
		ID:          models.PlatformLuma.SynthesizeID(entry.APIID),
		Title:       ev.Name,
		Description: ev.Description,
		StartDate:   ev.StartAt,
		EndDate:     ev.EndAt,
		Location:    ev.GeoAddress.FullAddress,
		Platform:    models.PlatformLuma,
		ExternalID:  entry.APIID,
		Metadata: models.MetadataCandidate{
			Tags:               tags,
			Categories:         mapCategories(ev.Tags, lumaCategories),
			Capacity:           capacity,
			IsPrivate:          private,
			DataClassification: classificationFor(private),
		},
	}, nil
}

// classificationFor derives the classification from the partner private flag.
func classificationFor(private bool) models.DataClassification {
	if private {
		return models.ClassificationConfidential
	}
	return models.ClassificationPublic
}

// mapCategories translates partner category values through a vocabulary
// table, dropping unrecognized values and duplicates. An empty result falls
// back to "other" so the candidate still carries at least one category.
func mapCategories(values []string, vocab map[string]string) []string {
	seen := map[string]struct{}{}
	var categories []string
	for _, v := range values {
		mapped, ok := vocab[normalizeCategory(v)]
		if !ok {
			continue
		}
		if _, dup := seen[mapped]; dup {
			continue
		}
		seen[mapped] = struct{}{}
		categories = append(categories, mapped)
		if len(categories) == models.MaxCategories {
			break
		}
	}
	if len(categories) == 0 {
		categories = []string{"other"}
	}
	return categories
}
