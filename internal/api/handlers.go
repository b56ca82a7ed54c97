// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/eventgraph/internal/logging"
	"github.com/tomtom215/eventgraph/internal/models"
	enginesync "github.com/tomtom215/eventgraph/internal/sync"
)

// Handler holds the HTTP handlers for the event API.
type Handler struct {
	orchestrator *enginesync.Orchestrator
	startTime    time.Time
}

// NewHandler creates a handler backed by the orchestrator.
func NewHandler(orchestrator *enginesync.Orchestrator) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		startTime:    time.Now(),
	}
}

// CreateEvent handles POST /api/v1/events.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var candidate models.EventCandidate
	if err := decodeJSON(w, r, &candidate); err != nil {
		rw.BadRequest(err.Error())
		return
	}

	event, err := h.orchestrator.CreateEvent(r.Context(), &candidate)
	if err != nil {
		h.writeDomainError(rw, err)
		return
	}

	rw.Created(event)
}

// GetEvent handles GET /api/v1/events/{id}.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id := chi.URLParam(r, "id")
	if id == "" {
		rw.BadRequest("event id is required")
		return
	}

	event, err := h.orchestrator.GetEvent(r.Context(), id)
	if err != nil {
		h.writeDomainError(rw, err)
		return
	}

	rw.Success(event)
}

// UpdateEvent handles PATCH /api/v1/events/{id}.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id := chi.URLParam(r, "id")
	if id == "" {
		rw.BadRequest("event id is required")
		return
	}

	var patch models.EventPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if patch.Empty() && len(patch.RestrictedFields()) == 0 {
		rw.BadRequest("patch changes nothing")
		return
	}

	event, err := h.orchestrator.UpdateEvent(r.Context(), id, &patch)
	if err != nil {
		h.writeDomainError(rw, err)
		return
	}

	rw.Success(event)
}

// ImportEvents handles POST /api/v1/imports/{platform}.
func (h *Handler) ImportEvents(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	platform, err := models.ParsePlatform(chi.URLParam(r, "platform"))
	if err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeUnsupportedSource, err.Error())
		return
	}

	var req ImportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validateRequest(&req); verr != nil {
		rw.ValidationError("validation failed", verr.Fields)
		return
	}

	result, err := h.orchestrator.ImportEvents(r.Context(), platform, req.DateRange(), req.Options())
	if err != nil {
		h.writeDomainError(rw, err)
		return
	}

	rw.Success(result)
}

// healthResponse is the body of GET /api/v1/healthz.
type healthResponse struct {
	Status        string            `json:"status"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Breakers      map[string]string `json:"breakers"`
	Cache         cacheHealth       `json:"cache"`
}

type cacheHealth struct {
	Keys      int64   `json:"keys"`
	HitRate   float64 `json:"hit_rate"`
	Evictions int64   `json:"evictions"`
}

// Health handles GET /api/v1/healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	stats := h.orchestrator.CacheStats()
	total := stats.Hits + stats.Misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(stats.Hits) / float64(total) * 100.0
	}

	rw.Success(healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Breakers:      h.orchestrator.BreakerStates(),
		Cache: cacheHealth{
			Keys:      stats.TotalKeys,
			HitRate:   hitRate,
			Evictions: stats.Evictions,
		},
	})
}

// writeDomainError maps the engine's error taxonomy onto HTTP responses.
func (h *Handler) writeDomainError(rw *ResponseWriter, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		rw.ValidationError("validation failed", validationErr.Fields)
		return
	}

	var restrictedErr *models.RestrictedFieldError
	if errors.As(err, &restrictedErr) {
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeRestrictedField,
			restrictedErr.Error(), restrictedErr.Fields)
		return
	}

	var notFoundErr *models.NotFoundError
	if errors.As(err, &notFoundErr) {
		rw.NotFound(notFoundErr.Error())
		return
	}

	var unsupportedErr *models.UnsupportedPlatformError
	if errors.As(err, &unsupportedErr) {
		rw.Error(http.StatusBadRequest, ErrCodeUnsupportedSource, unsupportedErr.Error())
		return
	}

	var rateErr *models.RateLimitError
	if errors.As(err, &rateErr) {
		rw.TooManyRequests(rateErr.Error())
		return
	}

	var circuitErr *models.CircuitOpenError
	if errors.As(err, &circuitErr) {
		rw.ServiceUnavailable(circuitErr.Error())
		return
	}

	var authErr *models.AuthenticationError
	if errors.As(err, &authErr) {
		rw.Error(http.StatusBadGateway, ErrCodePartnerFailure, authErr.Error())
		return
	}

	var transientErr *models.TransientNetworkError
	if errors.As(err, &transientErr) {
		rw.Error(http.StatusBadGateway, ErrCodePartnerFailure, transientErr.Error())
		return
	}

	var persistErr *models.PersistenceError
	if errors.As(err, &persistErr) {
		logging.Error().Err(err).Msg("Persistence error")
		rw.Error(http.StatusInternalServerError, ErrCodePersistenceError, "a persistence error occurred")
		return
	}

	logging.Error().Err(err).Msg("Unhandled error")
	rw.InternalError("an internal error occurred")
}
