// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

package models

// Import option bounds and defaults.
const (
	MinBatchSize     = 1
	MaxBatchSize     = 100
	DefaultBatchSize = 50

	MinRetryAttempts     = 1
	MaxRetryAttempts     = 5
	DefaultRetryAttempts = 3
)

// ImportOptions tunes a single ImportEvents call.
type ImportOptions struct {
	// BatchSize is the page size requested from the partner API (1-100).
	BatchSize int `json:"batch_size"`

	// RetryAttempts bounds total attempts per outbound call (1-5).
	RetryAttempts int `json:"retry_attempts"`

	// SkipInvalid controls continue-on-error batch semantics: when true,
	// per-record failures are collected and the loop continues; when false,
	// the first failure aborts the whole import.
	SkipInvalid bool `json:"skip_invalid"`
}

// DefaultImportOptions returns the documented defaults.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{
		BatchSize:     DefaultBatchSize,
		RetryAttempts: DefaultRetryAttempts,
		SkipInvalid:   true,
	}
}

// Normalize clamps out-of-range values back to their defaults.
func (o ImportOptions) Normalize() ImportOptions {
	if o.BatchSize < MinBatchSize || o.BatchSize > MaxBatchSize {
		o.BatchSize = DefaultBatchSize
	}
	if o.RetryAttempts < MinRetryAttempts || o.RetryAttempts > MaxRetryAttempts {
		o.RetryAttempts = DefaultRetryAttempts
	}
	return o
}

// ImportError records a single failed record within an import batch.
type ImportError struct {
	// Index is the zero-based position of the record across all pages.
	Index int `json:"index"`

	// ExternalID is the partner-native id, when the record carried one.
	ExternalID string `json:"external_id,omitempty"`

	// Message describes the failure.
	Message string `json:"message"`
}

// ImportResult aggregates per-record outcomes of one ImportEvents call. It is
// transient: produced once, returned to the caller, never persisted.
type ImportResult struct {
	Success       bool          `json:"success"`
	ImportedCount int           `json:"imported_count"`
	FailedCount   int           `json:"failed_count"`
	SkippedCount  int           `json:"skipped_count"`
	Errors        []ImportError `json:"errors,omitempty"`
}

// RecordFailure appends a per-record error and updates counts.
func (r *ImportResult) RecordFailure(index int, externalID string, err error) {
	r.FailedCount++
	r.Errors = append(r.Errors, ImportError{
		Index:      index,
		ExternalID: externalID,
		Message:    err.Error(),
	})
}
