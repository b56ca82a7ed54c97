// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eventgraph/internal/models"
	"github.com/tomtom215/eventgraph/internal/validation"
)

// maxRequestBodySize bounds inbound request bodies (1MB).
const maxRequestBodySize = 1 << 20

// ImportRequest is the body of POST /api/v1/imports/{platform}.
type ImportRequest struct {
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`

	// Options are optional; absent fields take the documented defaults and
	// out-of-range values clamp back to them in Normalize rather than
	// rejecting the request.
	BatchSize     *int  `json:"batch_size,omitempty"`
	RetryAttempts *int  `json:"retry_attempts,omitempty"`
	SkipInvalid   *bool `json:"skip_invalid,omitempty"`
}

// DateRange builds the import range from the request.
func (r *ImportRequest) DateRange() models.DateRange {
	return models.DateRange{Start: r.StartDate, End: r.EndDate}
}

// Options merges the request's optional tuning over the defaults.
func (r *ImportRequest) Options() models.ImportOptions {
	opts := models.DefaultImportOptions()
	if r.BatchSize != nil {
		opts.BatchSize = *r.BatchSize
	}
	if r.RetryAttempts != nil {
		opts.RetryAttempts = *r.RetryAttempts
	}
	if r.SkipInvalid != nil {
		opts.SkipInvalid = *r.SkipInvalid
	}
	return opts.Normalize()
}

// validateRequest runs the shared validator over a decoded request struct.
func validateRequest(v interface{}) *models.ValidationError {
	return validation.ValidateStruct(v)
}

// decodeJSON decodes a request body into dst with a size cap and strict
// EOF handling. Unknown fields are tolerated; restricted-field detection for
// patches happens in the patch's own decoder.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	if len(body) == 0 {
		return fmt.Errorf("request body is empty")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
