// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

// Package platform contains the partner API adapters. An adapter is the only
// place that understands a partner's schema: it fetches paginated raw records
// for a date range and maps each one onto a canonical EventCandidate. It never
// validates - that is the validator's job - it only maps.
package platform

import (
	"context"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eventgraph/internal/models"
)

// MaxPageSize caps the number of records requested per page from any partner.
const MaxPageSize = 100

// Page is one page of raw partner records. Records stay opaque to callers;
// they are decoded by the owning adapter's Transform.
type Page struct {
	// Records holds the raw partner payloads in page order.
	Records []json.RawMessage

	// NextCursor resumes pagination. Its interpretation is adapter-specific:
	// an opaque token for cursor-based partners, a serialized page number for
	// offset-based ones.
	NextCursor string

	// Done reports that no further pages exist.
	Done bool
}

// Adapter is the per-partner contract. Implementations must be safe for
// concurrent use; the orchestrator drives one import per platform at a time
// but platforms run independently.
type Adapter interface {
	// Platform identifies the partner this adapter serves.
	Platform() models.Platform

	// FetchPage retrieves one page of raw records within the date range.
	// Pass an empty cursor for the first page.
	FetchPage(ctx context.Context, dateRange models.DateRange, cursor string, limit int) (*Page, error)

	// Transform maps a raw partner record onto a canonical candidate. It
	// derives data_classification from the partner's private flag and maps
	// the partner category vocabulary onto the canonical one; unrecognized
	// categories are dropped, not rejected.
	Transform(raw json.RawMessage) (*models.EventCandidate, error)
}

// clampLimit normalizes a requested page size to partner bounds.
func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// normalizeCategory prepares a partner category value for vocabulary lookup.
func normalizeCategory(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
