// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

package models

import (
	"sort"
	"time"

	"github.com/goccy/go-json"
)

// restrictedEventFields are immutable after creation. A patch naming any of
// them is rejected with RestrictedFieldError before persistence is touched.
var restrictedEventFields = map[string]struct{}{
	"id":                {},
	"created_at":        {},
	"created_by":        {},
	"updated_at":        {},
	"platform":          {},
	"external_id":       {},
	"validation_status": {},
}

// MetadataPatch carries optional metadata mutations. Nil fields are left
// unchanged by the merge.
type MetadataPatch struct {
	Tags               *map[string]string  `json:"tags,omitempty"`
	Categories         *[]string           `json:"categories,omitempty"`
	Capacity           *int                `json:"capacity,omitempty"`
	IsPrivate          *bool               `json:"is_private,omitempty"`
	DataClassification *DataClassification `json:"data_classification,omitempty"`
}

// EventPatch is a partial update to an event. Decoding from JSON records any
// restricted field names present in the payload so the orchestrator can
// reject the update before any I/O.
type EventPatch struct {
	Title        *string        `json:"title,omitempty"`
	Description  *string        `json:"description,omitempty"`
	StartDate    *time.Time     `json:"start_date,omitempty"`
	EndDate      *time.Time     `json:"end_date,omitempty"`
	Location     *string        `json:"location,omitempty"`
	Participants *[]string      `json:"participants,omitempty"`
	Metadata     *MetadataPatch `json:"metadata,omitempty"`
	UpdatedBy    *string        `json:"updated_by,omitempty"`

	restricted []string
}

// eventPatchAlias avoids UnmarshalJSON recursion.
type eventPatchAlias EventPatch

// UnmarshalJSON decodes the patch and records restricted field names.
func (p *EventPatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var restricted []string
	for key := range raw {
		if _, ok := restrictedEventFields[key]; ok {
			restricted = append(restricted, key)
		}
	}
	sort.Strings(restricted)

	var alias eventPatchAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	*p = EventPatch(alias)
	p.restricted = restricted
	return nil
}

// RestrictedFields returns the restricted field names named by the patch.
func (p *EventPatch) RestrictedFields() []string {
	return p.restricted
}

// Empty reports whether the patch changes nothing.
func (p *EventPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.StartDate == nil &&
		p.EndDate == nil && p.Location == nil && p.Participants == nil &&
		p.Metadata == nil && p.UpdatedBy == nil
}

// ApplyTo merges the patch into a candidate rebuilt from the current event.
// The caller revalidates the whole result; the patch itself is never
// validated in isolation.
func (p *EventPatch) ApplyTo(c *EventCandidate) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.StartDate != nil {
		c.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		c.EndDate = *p.EndDate
	}
	if p.Location != nil {
		c.Location = *p.Location
	}
	if p.Participants != nil {
		c.Participants = append([]string(nil), (*p.Participants)...)
	}
	if p.UpdatedBy != nil {
		c.UpdatedBy = *p.UpdatedBy
	}
	if p.Metadata != nil {
		if p.Metadata.Tags != nil {
			c.Metadata.Tags = make(map[string]string, len(*p.Metadata.Tags))
			for k, v := range *p.Metadata.Tags {
				c.Metadata.Tags[k] = v
			}
		}
		if p.Metadata.Categories != nil {
			c.Metadata.Categories = append([]string(nil), (*p.Metadata.Categories)...)
		}
		if p.Metadata.Capacity != nil {
			c.Metadata.Capacity = *p.Metadata.Capacity
		}
		if p.Metadata.IsPrivate != nil {
			c.Metadata.IsPrivate = *p.Metadata.IsPrivate
		}
		if p.Metadata.DataClassification != nil {
			c.Metadata.DataClassification = *p.Metadata.DataClassification
		}
	}
}
