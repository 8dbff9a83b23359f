package repository

import (
	"context"

	"coach-portal/internal/coaching/domain/model"
)

// CollectionBackend persists records as (collection, id, data) rows. Every
// implementation keeps data.id equal to the row id.
type CollectionBackend interface {
	// EnsureSchema creates the backing table or index if absent. Idempotent.
	EnsureSchema(ctx context.Context) error
	// List returns every record of a collection ordered by id ascending.
	List(ctx context.Context, collection string) ([]model.Record, error)
	// Get returns errors.ErrRecordNotFound on a miss.
	Get(ctx context.Context, collection, id string) (model.Record, error)
	// Put inserts or replaces the row.
	Put(ctx context.Context, collection, id string, data model.Record) error
	// Delete removes the row and reports whether one existed.
	Delete(ctx context.Context, collection, id string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}
