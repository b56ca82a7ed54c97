// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

// Package store persists canonical events in BadgerDB laid out as a small
// graph: an event node, a metadata node, and an ownership edge between them,
// written atomically in one transaction. An external-id index key supports
// import deduplication inside the same transaction that writes the nodes.
package store

import (
	"context"

	"github.com/tomtom215/eventgraph/internal/models"
)

// Gateway is the persistence contract the orchestrator depends on.
type Gateway interface {
	// WriteEvent persists the event and its metadata atomically,
	// overwriting any previous version.
	WriteEvent(ctx context.Context, event *models.Event) error

	// WriteEventIfAbsent persists the event only when no event with the
	// same (platform, external_id) pair exists. The existence check and the
	// write share one transaction. Returns true when the event was written.
	WriteEventIfAbsent(ctx context.Context, event *models.Event) (bool, error)

	// ReadEvent loads an event and its metadata by canonical id. Returns
	// models.NotFoundError when no such event exists.
	ReadEvent(ctx context.Context, id string) (*models.Event, error)

	// FindByExternalID resolves a (platform, external_id) pair to the
	// canonical id, or models.NotFoundError.
	FindByExternalID(ctx context.Context, platform models.Platform, externalID string) (string, error)

	// Close releases the underlying database.
	Close() error
}
