// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

// Package validation turns EventCandidates into Events. Validation runs in
// three ordered stages, short-circuiting on first stage failure:
//
//  1. sanitization - strip HTML-like tags, trim, clamp string lengths
//  2. structural   - type/range/format checks via go-playground/validator
//  3. domain       - cross-field business rules (date ordering,
//     privacy/classification coupling, tag bounds)
//
// All violations found within a stage are aggregated into one
// models.ValidationError rather than surfaced one at a time. Validation is
// pure: no I/O, no mutation of the input candidate.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/eventgraph/internal/models"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// memberIDPattern is the well-formed participant identifier format.
var memberIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// tagCharPattern restricts tag keys and values to alphanumeric, space, and
// hyphen after normalization.
var tagCharPattern = regexp.MustCompile(`^[a-zA-Z0-9 -]+$`)

// GetValidator returns the singleton validator instance.
// The validator is initialized once with custom validators and options.
// This function is thread-safe.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report json field names in errors instead of Go field names
		validate.RegisterTagNameFunc(jsonFieldName)

		// member_id: participant identifier format
		_ = validate.RegisterValidation("member_id", func(fl validator.FieldLevel) bool {
			return memberIDPattern.MatchString(fl.Field().String())
		})
	})

	return validate
}

// jsonFieldName extracts the json tag name for error reporting.
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

// EventValidator validates candidates and constructs Events. It is the only
// path from an EventCandidate to an Event.
type EventValidator struct{}

// New returns an EventValidator.
func New() *EventValidator {
	return &EventValidator{}
}

// Validate runs the three-stage pipeline over the candidate and, on success,
// constructs a VALIDATED Event. On failure it returns a
// *models.ValidationError aggregating every violation from the failing stage.
func (v *EventValidator) Validate(candidate *models.EventCandidate) (*models.Event, error) {
	// Stage 1: sanitization (cannot fail; produces the working copy)
	c := sanitizeCandidate(candidate)

	// Stage 2: structural
	if err := structuralErrors(c); err != nil {
		return nil, err
	}

	// Stage 3: domain
	if err := domainErrors(c); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	event := &models.Event{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		StartDate:    c.StartDate,
		EndDate:      c.EndDate,
		Location:     c.Location,
		Platform:     c.Platform,
		ExternalID:   c.ExternalID,
		Participants: c.Participants,
		Metadata: models.EventMetadata{
			Tags:               c.Metadata.Tags,
			Categories:         c.Metadata.Categories,
			Capacity:           c.Metadata.Capacity,
			IsPrivate:          c.Metadata.IsPrivate,
			DataClassification: c.Metadata.DataClassification,
			LastModifiedBy:     lastModifier(c),
			LastModifiedAt:     now,
		},
		ValidationStatus: models.ValidationValidated,
		CreatedAt:        now,
		UpdatedAt:        now,
		CreatedBy:        c.CreatedBy,
		UpdatedBy:        c.UpdatedBy,
	}
	return event, nil
}

func lastModifier(c *models.EventCandidate) string {
	if c.UpdatedBy != "" {
		return c.UpdatedBy
	}
	return c.CreatedBy
}

// ValidateStruct runs the shared validator over any tagged struct and
// aggregates all violations into a single ValidationError. Returns nil when
// the struct passes.
func ValidateStruct(v interface{}) *models.ValidationError {
	err := GetValidator().Struct(v)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		// Unexpected error type - wrap it
		return models.NewValidationError(models.FieldError{
			Field:   "unknown",
			Message: err.Error(),
		})
	}

	fields := make([]models.FieldError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fields[i] = models.FieldError{
			Field:   fieldErr.Field(),
			Tag:     fieldErr.Tag(),
			Message: translateError(fieldErr),
		}
	}
	return models.NewValidationError(fields...)
}

// structuralErrors runs the schema-level checks over a candidate.
func structuralErrors(c *models.EventCandidate) error {
	if verr := ValidateStruct(c); verr != nil {
		return verr
	}
	return nil
}

// domainErrors checks cross-field business rules.
func domainErrors(c *models.EventCandidate) error {
	var fields []models.FieldError

	if !c.EndDate.After(c.StartDate) {
		fields = append(fields, models.FieldError{
			Field:   "end_date",
			Tag:     "gtfield",
			Message: "end_date must be after start_date",
		})
	}

	if c.Metadata.IsPrivate && c.Metadata.DataClassification == models.ClassificationPublic {
		fields = append(fields, models.FieldError{
			Field:   "data_classification",
			Tag:     "privacy",
			Message: "private events cannot be classified PUBLIC",
		})
	}

	fields = append(fields, tagErrors(c.Metadata.Tags)...)

	if len(fields) > 0 {
		return models.NewValidationError(fields...)
	}
	return nil
}

// tagErrors enforces per-entry tag bounds after normalization.
func tagErrors(tags map[string]string) []models.FieldError {
	var fields []models.FieldError
	for k, v := range tags {
		switch {
		case k == "" || len(k) > models.MaxTagKeyLength:
			fields = append(fields, models.FieldError{
				Field:   "tags",
				Tag:     "tag_key",
				Message: fmt.Sprintf("tag key %q must be 1-%d characters", k, models.MaxTagKeyLength),
			})
		case !tagCharPattern.MatchString(k):
			fields = append(fields, models.FieldError{
				Field:   "tags",
				Tag:     "tag_key",
				Message: fmt.Sprintf("tag key %q contains characters outside alphanumeric/space/hyphen", k),
			})
		}
		switch {
		case len(v) > models.MaxTagValueLength:
			fields = append(fields, models.FieldError{
				Field:   "tags",
				Tag:     "tag_value",
				Message: fmt.Sprintf("tag %q value exceeds %d characters", k, models.MaxTagValueLength),
			})
		case v != "" && !tagCharPattern.MatchString(v):
			fields = append(fields, models.FieldError{
				Field:   "tags",
				Tag:     "tag_value",
				Message: fmt.Sprintf("tag %q value contains characters outside alphanumeric/space/hyphen", k),
			})
		}
	}
	return fields
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required":  "%s is required",
	"unique":    "%s must not contain duplicates",
	"member_id": "%s must be a well-formed member identifier",
}

// errorMessageWithParam maps validation tags to templates that include param.
var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

// translateError converts a validator.FieldError to a human-readable message.
func translateError(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}
	return translateMinMax(fe, field, tag, param)
}

// translateMinMax handles min/max validation with type-specific messages.
func translateMinMax(fe validator.FieldError, field, tag, param string) string {
	isString := fe.Kind().String() == "string"

	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
