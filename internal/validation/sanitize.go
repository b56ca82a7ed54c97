// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

package validation

import (
	"regexp"
	"strings"

	"github.com/tomtom215/eventgraph/internal/models"
)

// htmlTagPattern matches HTML-like tags, including unterminated ones at the
// end of input.
var htmlTagPattern = regexp.MustCompile(`<[^>]*>?`)

// SanitizeString strips HTML-like tags and trims surrounding whitespace.
func SanitizeString(s string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, ""))
}

// clampString truncates s to max runes.
func clampString(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// sanitizeCandidate returns a sanitized deep copy of the candidate. The input
// is never mutated; validation stays side-effect free for callers.
//
// Tag keys are trimmed and lowercased, tag values trimmed. Length clamping
// here covers title and description; all other bounds are rejected, not
// clamped, by the later stages.
func sanitizeCandidate(in *models.EventCandidate) *models.EventCandidate {
	c := *in

	c.Title = clampString(SanitizeString(in.Title), models.MaxTitleLength)
	c.Description = clampString(SanitizeString(in.Description), models.MaxDescriptionLength)
	c.Location = SanitizeString(in.Location)
	c.CreatedBy = strings.TrimSpace(in.CreatedBy)
	c.UpdatedBy = strings.TrimSpace(in.UpdatedBy)

	c.Participants = make([]string, len(in.Participants))
	for i, p := range in.Participants {
		c.Participants[i] = strings.TrimSpace(p)
	}

	c.Metadata.Categories = make([]string, len(in.Metadata.Categories))
	for i, cat := range in.Metadata.Categories {
		c.Metadata.Categories[i] = strings.ToLower(strings.TrimSpace(cat))
	}

	c.Metadata.Tags = make(map[string]string, len(in.Metadata.Tags))
	for k, v := range in.Metadata.Tags {
		key := strings.ToLower(strings.TrimSpace(k))
		c.Metadata.Tags[key] = strings.TrimSpace(SanitizeString(v))
	}

	return &c
}
