package usecase

import (
	"context"
	"errors"

	"coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/shared/logger"
)

// Collection is a typed view over one collection of the store. Fields that do
// not fit T are left zero and logged; the record itself is kept.
type Collection[T any] struct {
	store  CollectionStore
	name   string
	logger logger.Logger
}

func NewCollection[T any](store CollectionStore, name string) *Collection[T] {
	return &Collection[T]{store: store, name: name, logger: logger.NewNopLogger()}
}

// WithLogger sets where partial decodes are reported.
func (c *Collection[T]) WithLogger(log logger.Logger) *Collection[T] {
	if log != nil {
		c.logger = log
	}
	return c
}

func (c *Collection[T]) Name() string { return c.name }

// All returns every decodable record, degrading to empty like ReadAll.
func (c *Collection[T]) All(ctx context.Context) []T {
	return c.decodeAll(ctx, c.store.ReadAll(ctx, c.name, nil))
}

// Where keeps records whose field equals value.
func (c *Collection[T]) Where(ctx context.Context, field, value string) []T {
	return c.decodeAll(ctx, FilterRecords(c.store.ReadAll(ctx, c.name, nil), field, value))
}

// Get returns false on a miss, a read error or a record that does not decode at all.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, bool) {
	var out T
	rec := c.store.ReadOne(ctx, c.name, id)
	if rec == nil {
		return out, false
	}
	return c.decode(ctx, rec)
}

// Insert stores item and returns it with its final id.
func (c *Collection[T]) Insert(ctx context.Context, item T) (T, error) {
	var out T
	rec, err := model.ToRecord(item)
	if err != nil {
		return out, err
	}
	stored, err := c.store.Insert(ctx, c.name, rec)
	if err != nil {
		return out, err
	}
	out, _ = c.decode(ctx, stored)
	return out, nil
}

// Update shallow-merges partial and returns the decoded result.
func (c *Collection[T]) Update(ctx context.Context, id string, partial model.Record) (T, error) {
	var out T
	merged, err := c.store.Update(ctx, c.name, id, partial)
	if err != nil {
		return out, err
	}
	out, _ = c.decode(ctx, merged)
	return out, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) (bool, error) {
	return c.store.Delete(ctx, c.name, id)
}

func (c *Collection[T]) decodeAll(ctx context.Context, records []model.Record) []T {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if item, ok := c.decode(ctx, rec); ok {
			out = append(out, item)
		}
	}
	return out
}

// decode reports false only when nothing could be decoded.
func (c *Collection[T]) decode(ctx context.Context, rec model.Record) (T, bool) {
	var item T
	err := model.FromRecord(rec, &item)
	if err == nil {
		return item, true
	}
	var fieldErr *model.FieldError
	if errors.As(err, &fieldErr) {
		c.logger.WithContext(ctx).Warnf("%s/%s: %v", c.name, rec.ID(), fieldErr)
		return item, true
	}
	c.logger.WithContext(ctx).Warnf("%s/%s skipped: %v", c.name, rec.ID(), err)
	return item, false
}
