// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

package validation

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/eventgraph/internal/models"
)

// validCandidate returns a candidate that passes all three stages.
func validCandidate() *models.EventCandidate {
	start := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	return &models.EventCandidate{
		ID:           "evt-1",
		Title:        "Engineering Meetup",
		Description:  "Monthly get-together",
		StartDate:    start,
		EndDate:      start.Add(3 * time.Hour),
		Location:     "Berlin",
		Platform:     models.PlatformInternal,
		Participants: []string{"alice", "bob"},
		CreatedBy:    "alice",
		Metadata: models.MetadataCandidate{
			Tags:               map[string]string{"venue": "hall a"},
			Categories:         []string{"social"},
			Capacity:           50,
			IsPrivate:          false,
			DataClassification: models.ClassificationPublic,
		},
	}
}

func TestValidateSuccess(t *testing.T) {
	event, err := New().Validate(validCandidate())
	if err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	if event.ValidationStatus != models.ValidationValidated {
		t.Errorf("ValidationStatus = %v, want VALIDATED", event.ValidationStatus)
	}
	if event.CreatedAt.IsZero() || event.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
	if event.CreatedAt.Location() != time.UTC {
		t.Error("CreatedAt not UTC")
	}
	if event.Metadata.LastModifiedBy != "alice" {
		t.Errorf("LastModifiedBy = %q, want alice", event.Metadata.LastModifiedBy)
	}
}

func TestValidateDoesNotMutateInput(t *testing.T) {
	candidate := validCandidate()
	candidate.Title = "  <b>Meetup</b>  "

	if _, err := New().Validate(candidate); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	if candidate.Title != "  <b>Meetup</b>  " {
		t.Errorf("input candidate mutated: title = %q", candidate.Title)
	}
}

func TestValidateSanitizesStrings(t *testing.T) {
	candidate := validCandidate()
	candidate.Title = "  <script>alert(1)</script>Launch Party  "
	candidate.Description = "Drinks <img src=x" // unterminated tag

	event, err := New().Validate(candidate)
	if err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	if event.Title != "alert(1)Launch Party" {
		t.Errorf("Title = %q, want tags stripped and trimmed", event.Title)
	}
	if event.Description != "Drinks" {
		t.Errorf("Description = %q, want unterminated tag stripped", event.Description)
	}
}

func TestValidateClampsTitleLength(t *testing.T) {
	candidate := validCandidate()
	candidate.Title = strings.Repeat("a", models.MaxTitleLength+50)

	event, err := New().Validate(candidate)
	if err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	if len(event.Title) != models.MaxTitleLength {
		t.Errorf("Title length = %d, want clamped to %d", len(event.Title), models.MaxTitleLength)
	}
}

func TestValidateStructuralFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.EventCandidate)
		field  string
	}{
		{"missing title", func(c *models.EventCandidate) { c.Title = "" }, "title"},
		{"missing location", func(c *models.EventCandidate) { c.Location = "" }, "location"},
		{"unknown platform", func(c *models.EventCandidate) { c.Platform = "MEETUP" }, "platform"},
		{"no categories", func(c *models.EventCandidate) { c.Metadata.Categories = nil }, "categories"},
		{"six categories", func(c *models.EventCandidate) {
			c.Metadata.Categories = []string{"conference", "workshop", "networking", "social", "professional", "education"}
		}, "categories"},
		{"unknown category", func(c *models.EventCandidate) { c.Metadata.Categories = []string{"rave"} }, "categories"},
		{"capacity zero", func(c *models.EventCandidate) { c.Metadata.Capacity = 0 }, "capacity"},
		{"capacity too large", func(c *models.EventCandidate) { c.Metadata.Capacity = 10001 }, "capacity"},
		{"duplicate participants", func(c *models.EventCandidate) { c.Participants = []string{"alice", "alice"} }, "participants"},
		{"malformed participant", func(c *models.EventCandidate) { c.Participants = []string{"not a valid id!"} }, "participants"},
		{"bad classification", func(c *models.EventCandidate) { c.Metadata.DataClassification = "SECRET" }, "data_classification"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := validCandidate()
			tt.mutate(candidate)

			_, err := New().Validate(candidate)
			var validationErr *models.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}

			found := false
			for _, f := range validationErr.Fields {
				if strings.Contains(f.Field, tt.field) {
					found = true
				}
			}
			if !found {
				t.Errorf("ValidationError fields %v do not mention %q", validationErr.Fields, tt.field)
			}
		})
	}
}

func TestValidateTagBounds(t *testing.T) {
	t.Run("twenty tags pass", func(t *testing.T) {
		candidate := validCandidate()
		candidate.Metadata.Tags = make(map[string]string, models.MaxTags)
		for i := 0; i < models.MaxTags; i++ {
			candidate.Metadata.Tags[fmt.Sprintf("key-%d", i)] = "value"
		}
		if _, err := New().Validate(candidate); err != nil {
			t.Fatalf("Validate() with %d tags failed: %v", models.MaxTags, err)
		}
	})

	t.Run("twenty-one tags fail", func(t *testing.T) {
		candidate := validCandidate()
		candidate.Metadata.Tags = make(map[string]string, models.MaxTags+1)
		for i := 0; i <= models.MaxTags; i++ {
			candidate.Metadata.Tags[fmt.Sprintf("key-%d", i)] = "value"
		}
		if _, err := New().Validate(candidate); err == nil {
			t.Fatalf("Validate() with %d tags should fail", models.MaxTags+1)
		}
	})

	t.Run("tag key charset", func(t *testing.T) {
		candidate := validCandidate()
		candidate.Metadata.Tags = map[string]string{"bad_key!": "value"}
		if _, err := New().Validate(candidate); err == nil {
			t.Fatal("Validate() with invalid tag key should fail")
		}
	})

	t.Run("tag value too long", func(t *testing.T) {
		candidate := validCandidate()
		candidate.Metadata.Tags = map[string]string{"key": strings.Repeat("v", models.MaxTagValueLength+1)}
		if _, err := New().Validate(candidate); err == nil {
			t.Fatal("Validate() with oversized tag value should fail")
		}
	})
}

func TestValidateDomainRules(t *testing.T) {
	t.Run("end before start", func(t *testing.T) {
		candidate := validCandidate()
		candidate.EndDate = candidate.StartDate.Add(-time.Hour)

		_, err := New().Validate(candidate)
		var validationErr *models.ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("Validate() error = %v, want ValidationError", err)
		}
	})

	t.Run("private public coupling", func(t *testing.T) {
		candidate := validCandidate()
		candidate.Metadata.IsPrivate = true
		candidate.Metadata.DataClassification = models.ClassificationPublic

		if _, err := New().Validate(candidate); err == nil {
			t.Fatal("private event classified PUBLIC should fail")
		}
	})

	t.Run("private confidential allowed", func(t *testing.T) {
		candidate := validCandidate()
		candidate.Metadata.IsPrivate = true
		candidate.Metadata.DataClassification = models.ClassificationConfidential

		if _, err := New().Validate(candidate); err != nil {
			t.Fatalf("private CONFIDENTIAL event should pass: %v", err)
		}
	})
}

func TestValidateAggregatesViolations(t *testing.T) {
	candidate := validCandidate()
	candidate.Title = ""
	candidate.Location = ""
	candidate.Metadata.Capacity = 0

	_, err := New().Validate(candidate)
	var validationErr *models.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Validate() error = %v, want ValidationError", err)
	}
	if len(validationErr.Fields) < 3 {
		t.Errorf("expected at least 3 aggregated violations, got %d: %v",
			len(validationErr.Fields), validationErr.Fields)
	}
}
