// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

// Package models defines the canonical event model shared by the validator,
// platform adapters, orchestrator, and persistence gateway, together with the
// engine's error taxonomy and import result types.
//
// An Event is never constructed directly by callers outside this package
// hierarchy: the validating factory in internal/validation is the only path
// from an EventCandidate to an Event, so an Event that exists has passed every
// structural and domain invariant.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Platform identifies the origin of an event record.
type Platform string

// Supported platforms.
const (
	PlatformLuma       Platform = "LUMA"
	PlatformEventbrite Platform = "EVENTBRITE"
	PlatformPartiful   Platform = "PARTIFUL"
	PlatformInternal   Platform = "INTERNAL"
)

// ExternalPlatforms lists the partner platforms that support imports.
var ExternalPlatforms = []Platform{PlatformLuma, PlatformEventbrite, PlatformPartiful}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformLuma, PlatformEventbrite, PlatformPartiful, PlatformInternal:
		return true
	default:
		return false
	}
}

// IDPrefix returns the prefix used when synthesizing canonical ids for
// imported events ("{prefix}_{external_id}").
func (p Platform) IDPrefix() string {
	return strings.ToLower(string(p))
}

// SynthesizeID builds the canonical id for an imported partner event.
func (p Platform) SynthesizeID(externalID string) string {
	return p.IDPrefix() + "_" + externalID
}

// ParsePlatform converts a string to a Platform, case-insensitively.
// Returns UnsupportedPlatformError for unknown values.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", &UnsupportedPlatformError{Name: s}
	}
	return p, nil
}

// ValidationStatus tracks where an event sits in the validation lifecycle.
type ValidationStatus string

// Validation states.
const (
	ValidationPending   ValidationStatus = "PENDING"
	ValidationValidated ValidationStatus = "VALIDATED"
	ValidationRejected  ValidationStatus = "REJECTED"
)

// DataClassification is the sensitivity tag governing downstream handling.
type DataClassification string

// Data classifications, least to most sensitive.
const (
	ClassificationPublic       DataClassification = "PUBLIC"
	ClassificationInternal     DataClassification = "INTERNAL"
	ClassificationConfidential DataClassification = "CONFIDENTIAL"
)

// Metadata bounds enforced by the validator.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxTags              = 20
	MaxTagKeyLength      = 50
	MaxTagValueLength    = 100
	MinCapacity          = 1
	MaxCapacity          = 10000
	MinCategories        = 1
	MaxCategories        = 5
)

// Categories is the fixed canonical category vocabulary.
var Categories = []string{
	"conference", "workshop", "networking", "social",
	"professional", "education", "other",
}

// KnownCategory reports whether c belongs to the canonical vocabulary.
func KnownCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// EventMetadata is owned by an Event and shares its lifecycle. It is persisted
// as a separate node linked to the event node by an ownership edge.
type EventMetadata struct {
	Tags               map[string]string  `json:"tags"`
	Categories         []string           `json:"categories"`
	Capacity           int                `json:"capacity"`
	IsPrivate          bool               `json:"is_private"`
	DataClassification DataClassification `json:"data_classification"`
	LastModifiedBy     string             `json:"last_modified_by,omitempty"`
	LastModifiedAt     time.Time          `json:"last_modified_at"`
}

// Event is the aggregate root of the canonical model. Timestamps serialize as
// RFC3339 UTC; tags serialize as a flat string map.
type Event struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description,omitempty"`
	StartDate        time.Time        `json:"start_date"`
	EndDate          time.Time        `json:"end_date"`
	Location         string           `json:"location"`
	Platform         Platform         `json:"platform"`
	ExternalID       string           `json:"external_id,omitempty"`
	Metadata         EventMetadata    `json:"metadata"`
	Participants     []string         `json:"participants"`
	ValidationStatus ValidationStatus `json:"validation_status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	CreatedBy        string           `json:"created_by,omitempty"`
	UpdatedBy        string           `json:"updated_by,omitempty"`
}

// Clone returns a deep copy of the event. The orchestrator hands copies to
// the cache so later mutations cannot alias cached state.
func (e *Event) Clone() *Event {
	clone := *e
	if e.Participants != nil {
		clone.Participants = append([]string(nil), e.Participants...)
	}
	if e.Metadata.Tags != nil {
		clone.Metadata.Tags = make(map[string]string, len(e.Metadata.Tags))
		for k, v := range e.Metadata.Tags {
			clone.Metadata.Tags[k] = v
		}
	}
	if e.Metadata.Categories != nil {
		clone.Metadata.Categories = append([]string(nil), e.Metadata.Categories...)
	}
	return &clone
}

// Candidate rebuilds an EventCandidate from a committed event. UpdateEvent
// merges a patch into this and revalidates the whole result, never the delta.
func (e *Event) Candidate() *EventCandidate {
	c := &EventCandidate{
		ID:           e.ID,
		Title:        e.Title,
		Description:  e.Description,
		StartDate:    e.StartDate,
		EndDate:      e.EndDate,
		Location:     e.Location,
		Platform:     e.Platform,
		ExternalID:   e.ExternalID,
		Participants: append([]string(nil), e.Participants...),
		CreatedBy:    e.CreatedBy,
		UpdatedBy:    e.UpdatedBy,
		Metadata: MetadataCandidate{
			Tags:               make(map[string]string, len(e.Metadata.Tags)),
			Categories:         append([]string(nil), e.Metadata.Categories...),
			Capacity:           e.Metadata.Capacity,
			IsPrivate:          e.Metadata.IsPrivate,
			DataClassification: e.Metadata.DataClassification,
		},
	}
	for k, v := range e.Metadata.Tags {
		c.Metadata.Tags[k] = v
	}
	return c
}

// MetadataCandidate is the unvalidated metadata shape.
type MetadataCandidate struct {
	Tags               map[string]string  `json:"tags" validate:"max=20"`
	Categories         []string           `json:"categories" validate:"min=1,max=5,dive,oneof=conference workshop networking social professional education other"`
	Capacity           int                `json:"capacity" validate:"min=1,max=10000"`
	IsPrivate          bool               `json:"is_private"`
	DataClassification DataClassification `json:"data_classification" validate:"required,oneof=PUBLIC INTERNAL CONFIDENTIAL"`
}

// EventCandidate is the unvalidated shape produced by platform adapters and
// by the create/update request paths. It only becomes an Event through the
// validator.
type EventCandidate struct {
	ID           string            `json:"id"`
	Title        string            `json:"title" validate:"required,min=1,max=200"`
	Description  string            `json:"description" validate:"max=2000"`
	StartDate    time.Time         `json:"start_date" validate:"required"`
	EndDate      time.Time         `json:"end_date" validate:"required"`
	Location     string            `json:"location" validate:"required"`
	Platform     Platform          `json:"platform" validate:"required,oneof=LUMA EVENTBRITE PARTIFUL INTERNAL"`
	ExternalID   string            `json:"external_id"`
	Participants []string          `json:"participants" validate:"unique,dive,member_id"`
	Metadata     MetadataCandidate `json:"metadata"`
	CreatedBy    string            `json:"created_by"`
	UpdatedBy    string            `json:"updated_by"`
}

// DateRange bounds an import query. End must be after Start.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// MaxImportRange caps how far a single import may reach.
const MaxImportRange = 365 * 24 * time.Hour

// Validate checks range ordering.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("date range requires both start and end")
	}
	if !r.End.After(r.Start) {
		return fmt.Errorf("date range end %s is not after start %s",
			r.End.Format(time.RFC3339), r.Start.Format(time.RFC3339))
	}
	return nil
}

// Clamp trims the range end so the span never exceeds max.
func (r DateRange) Clamp(max time.Duration) DateRange {
	if r.End.Sub(r.Start) > max {
		r.End = r.Start.Add(max)
	}
	return r
}
