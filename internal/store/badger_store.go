// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/eventgraph/internal/models"
)

// Key prefixes for BadgerDB storage
const (
	eventKeyPrefix = "event:"
	metaKeyPrefix  = "event_meta:"
	edgeKeyPrefix  = "edge:owns:"
	extIDKeyPrefix = "extid:"
)

// BadgerGateway implements Gateway on a BadgerDB instance.
type BadgerGateway struct {
	db *badger.DB
}

// Open opens a BadgerDB at path, or in memory for tests and ephemeral
// deployments, and wraps it in a gateway.
func Open(path string, inMemory bool) (*BadgerGateway, error) {
	opts := badger.DefaultOptions(path).
		WithInMemory(inMemory).
		WithLogger(nil)
	if inMemory {
		opts = opts.WithDir("").WithValueDir("")
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return &BadgerGateway{db: db}, nil
}

// NewBadgerGateway wraps an already-open BadgerDB.
func NewBadgerGateway(db *badger.DB) *BadgerGateway {
	return &BadgerGateway{db: db}
}

// Close releases the underlying database.
func (g *BadgerGateway) Close() error {
	return g.db.Close()
}

// eventNode shadows the embedded Metadata field so the event node is stored
// without it; the metadata lives in its own node under metaKeyPrefix.
type eventNode struct {
	*models.Event
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// ownsEdge links an event node to its metadata node. Metadata shares the
// event's lifecycle, so the edge carries only identity and write time.
type ownsEdge struct {
	EventKey    string    `json:"event_key"`
	MetadataKey string    `json:"metadata_key"`
	WrittenAt   time.Time `json:"written_at"`
}

// WriteEvent implements Gateway.
func (g *BadgerGateway) WriteEvent(ctx context.Context, event *models.Event) error {
	err := g.db.Update(func(txn *badger.Txn) error {
		return writeEventNodes(txn, event)
	})
	if err != nil {
		return &models.PersistenceError{Op: "write event", Err: err}
	}
	return nil
}

// WriteEventIfAbsent implements Gateway. The external-id index lookup and
// the node writes run in a single serializable transaction, so two imports
// racing on the same partner record cannot both create it.
func (g *BadgerGateway) WriteEventIfAbsent(ctx context.Context, event *models.Event) (bool, error) {
	created := false

	err := g.db.Update(func(txn *badger.Txn) error {
		if event.ExternalID != "" {
			key := extIDKey(event.Platform, event.ExternalID)
			_, err := txn.Get(key)
			if err == nil {
				return nil // duplicate, leave created false
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("check external id index: %w", err)
			}
		}

		if err := writeEventNodes(txn, event); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, &models.PersistenceError{Op: "write event if absent", Err: err}
	}
	return created, nil
}

// ReadEvent implements Gateway.
func (g *BadgerGateway) ReadEvent(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event

	err := g.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(eventKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return &models.NotFoundError{ID: id}
		}
		if err != nil {
			return fmt.Errorf("get event node: %w", err)
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &event)
		}); err != nil {
			return fmt.Errorf("decode event node: %w", err)
		}

		metaItem, err := txn.Get([]byte(metaKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			// Orphan event node; the dual write makes this unreachable short
			// of external tampering, but fail loudly rather than return a
			// half-assembled aggregate.
			return fmt.Errorf("metadata node missing for event %s", id)
		}
		if err != nil {
			return fmt.Errorf("get metadata node: %w", err)
		}
		return metaItem.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &event.Metadata); err != nil {
				return fmt.Errorf("decode metadata node: %w", err)
			}
			return nil
		})
	})

	if err != nil {
		var notFound *models.NotFoundError
		if errors.As(err, &notFound) {
			return nil, err
		}
		return nil, &models.PersistenceError{Op: "read event", Err: err}
	}

	return &event, nil
}

// FindByExternalID implements Gateway.
func (g *BadgerGateway) FindByExternalID(ctx context.Context, platform models.Platform, externalID string) (string, error) {
	var id string

	err := g.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(extIDKey(platform, externalID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return &models.NotFoundError{ID: platform.SynthesizeID(externalID)}
		}
		if err != nil {
			return fmt.Errorf("get external id index: %w", err)
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})

	if err != nil {
		var notFound *models.NotFoundError
		if errors.As(err, &notFound) {
			return "", err
		}
		return "", &models.PersistenceError{Op: "find by external id", Err: err}
	}

	return id, nil
}

// writeEventNodes writes the event node, metadata node, ownership edge, and
// external-id index entry inside txn. Callers own transaction boundaries.
func writeEventNodes(txn *badger.Txn, event *models.Event) error {
	eventKey := eventKeyPrefix + event.ID
	metaKey := metaKeyPrefix + event.ID

	eventData, err := json.Marshal(&eventNode{Event: event})
	if err != nil {
		return fmt.Errorf("marshal event node: %w", err)
	}
	metaData, err := json.Marshal(&event.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata node: %w", err)
	}
	edgeData, err := json.Marshal(&ownsEdge{
		EventKey:    eventKey,
		MetadataKey: metaKey,
		WrittenAt:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal ownership edge: %w", err)
	}

	if err := txn.Set([]byte(eventKey), eventData); err != nil {
		return fmt.Errorf("set event node: %w", err)
	}
	if err := txn.Set([]byte(metaKey), metaData); err != nil {
		return fmt.Errorf("set metadata node: %w", err)
	}
	if err := txn.Set([]byte(edgeKeyPrefix+event.ID), edgeData); err != nil {
		return fmt.Errorf("set ownership edge: %w", err)
	}
	if event.ExternalID != "" {
		if err := txn.Set(extIDKey(event.Platform, event.ExternalID), []byte(event.ID)); err != nil {
			return fmt.Errorf("set external id index: %w", err)
		}
	}
	return nil
}

// extIDKey builds the external-id index key for a platform record.
func extIDKey(platform models.Platform, externalID string) []byte {
	return []byte(extIDKeyPrefix + string(platform) + ":" + externalID)
}
