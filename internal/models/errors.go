// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag,omitempty"`
	Message string `json:"message"`
}

// ValidationError aggregates every field-level violation found during a
// validation pass. It is never retried and always surfaced to the caller.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

// NewValidationError builds a ValidationError from field errors.
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// NotFoundError indicates the event exists in neither cache nor store.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("event %s not found", e.ID)
}

// RestrictedFieldError indicates an update attempted to mutate immutable
// fields. It is raised before any persistence I/O occurs.
type RestrictedFieldError struct {
	Fields []string
}

func (e *RestrictedFieldError) Error() string {
	return fmt.Sprintf("update touches restricted fields: %s", strings.Join(e.Fields, ", "))
}

// RateLimitSource distinguishes local limiter rejections from partner 429s.
type RateLimitSource string

// Rate limit sources.
const (
	RateLimitLocal   RateLimitSource = "local"
	RateLimitPartner RateLimitSource = "partner"
)

// RateLimitError is raised by the local sliding-window limiter (not retried)
// or mapped from a partner HTTP 429 (retried after the advertised delay).
type RateLimitError struct {
	Platform   Platform
	Source     RateLimitSource
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.Source == RateLimitPartner {
		return fmt.Sprintf("%s rate limited by partner (retry after %s)", e.Platform, e.RetryAfter)
	}
	return fmt.Sprintf("%s request rejected by local rate limiter", e.Platform)
}

// AuthenticationError indicates a rejected partner credential. Never retried.
type AuthenticationError struct {
	Platform   Platform
	StatusCode int
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s rejected credentials (HTTP %d)", e.Platform, e.StatusCode)
}

// TransientNetworkError wraps timeouts, transport failures, and 5xx responses.
// Retried up to the bounded attempt count, then escalated.
type TransientNetworkError struct {
	Platform   Platform
	Op         string
	StatusCode int
	Err        error
}

func (e *TransientNetworkError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s failed with HTTP %d", e.Platform, e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Platform, e.Op, e.Err)
}

func (e *TransientNetworkError) Unwrap() error { return e.Err }

// CircuitOpenError indicates the platform's breaker rejected the call without
// touching the network.
type CircuitOpenError struct {
	Platform Platform
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("%s circuit breaker is open", e.Platform)
}

// PersistenceError wraps store read/write failures. Not retried by this
// layer; durability is the store's concern.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// UnsupportedPlatformError indicates an import request for an unknown or
// unconfigured platform.
type UnsupportedPlatformError struct {
	Name string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform %q", e.Name)
}

// IsRetryable reports whether an outbound call failing with err may be
// retried: transient network failures and partner 429s only. Validation
// errors, auth errors, local limiter rejections, and open breakers never
// retry.
func IsRetryable(err error) bool {
	var transient *TransientNetworkError
	if errors.As(err, &transient) {
		return true
	}
	var rate *RateLimitError
	if errors.As(err, &rate) {
		return rate.Source == RateLimitPartner
	}
	return false
}
