package repository

import (
	"context"
	"io"

	"coach-portal/internal/coaching/domain/model"
)

// Mailer sends email. Failures are reported as false, never as an error.
type Mailer interface {
	Send(ctx context.Context, msg model.Email) bool
}

// BlobStorage stores uploaded files under slash separated keys.
type BlobStorage interface {
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error
	Open(ctx context.Context, key string) (io.ReadCloser, model.BlobInfo, error)
	Close() error
}

// ChangeStore persists record events per collection for replay.
type ChangeStore interface {
	Append(ctx context.Context, change model.StoredChange) (string, error)
	// Since returns changes after the given stream id ("" or "0" for the start).
	Since(ctx context.Context, collection, since string, limit int64) ([]model.StoredChange, error)
	Close() error
}
