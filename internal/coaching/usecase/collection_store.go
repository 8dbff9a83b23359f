package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/coaching/domain/repository"
	apperrors "coach-portal/internal/shared/errors"
	"coach-portal/internal/shared/eventbus"
	"coach-portal/internal/shared/logger"
)

// CollectionStore is the generic document store over named collections.
//
// Reads degrade: ReadAll returns the caller's fallback and ReadOne returns nil on
// any storage error, after logging it. Writes surface every storage error.
type CollectionStore interface {
	EnsureSchema(ctx context.Context) error
	ReadAll(ctx context.Context, collection string, fallback []model.Record) []model.Record
	ReadOne(ctx context.Context, collection, id string) model.Record
	Insert(ctx context.Context, collection string, item model.Record) (model.Record, error)
	// Update shallow-merges partial over the stored record. ErrRecordNotFound when absent.
	Update(ctx context.Context, collection, id string, partial model.Record) (model.Record, error)
	// Delete is unconditional; existed reports whether a row was removed.
	Delete(ctx context.Context, collection, id string) (existed bool, err error)
	NewID() string
	Ping(ctx context.Context) error
}

type collectionStore struct {
	backend repository.CollectionBackend
	events  eventbus.Publisher
	logger  logger.Logger

	schemaMu    sync.Mutex
	schemaReady bool
	now         func() time.Time
}

// NewCollectionStore wires the policy layer over a backend. events may be nil.
func NewCollectionStore(backend repository.CollectionBackend, events eventbus.Publisher, log logger.Logger) CollectionStore {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &collectionStore{
		backend: backend,
		events:  events,
		logger:  log.WithComponent("collection-store"),
		now:     time.Now,
	}
}

// EnsureSchema runs the backend DDL once per process. Only a successful run is
// remembered, so a failed cold start is retried by the next call.
func (s *collectionStore) EnsureSchema(ctx context.Context) error {
	s.schemaMu.Lock()
	defer s.schemaMu.Unlock()

	if s.schemaReady {
		return nil
	}
	if err := s.backend.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	s.schemaReady = true
	return nil
}

func (s *collectionStore) ReadAll(ctx context.Context, collection string, fallback []model.Record) []model.Record {
	if err := s.EnsureSchema(ctx); err != nil {
		s.logger.WithContext(ctx).Errorf("readAll %s: %v", collection, err)
		return fallback
	}
	records, err := s.backend.List(ctx, collection)
	if err != nil {
		s.logger.WithContext(ctx).Errorf("readAll %s: %v", collection, err)
		return fallback
	}
	return records
}

func (s *collectionStore) ReadOne(ctx context.Context, collection, id string) model.Record {
	if err := s.EnsureSchema(ctx); err != nil {
		s.logger.WithContext(ctx).Errorf("readOne %s/%s: %v", collection, id, err)
		return nil
	}
	rec, err := s.backend.Get(ctx, collection, id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrRecordNotFound) {
			s.logger.WithContext(ctx).Errorf("readOne %s/%s: %v", collection, id, err)
		}
		return nil
	}
	return rec
}

func (s *collectionStore) Insert(ctx context.Context, collection string, item model.Record) (model.Record, error) {
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	rec := item.Clone()
	id := rec.ID()
	if id == "" {
		id = s.NewID()
	}
	rec["id"] = id

	if err := s.backend.Put(ctx, collection, id, rec); err != nil {
		return nil, err
	}
	s.publish(ctx, eventbus.EventTypeRecordCreated, collection, id, rec)
	return rec, nil
}

func (s *collectionStore) Update(ctx context.Context, collection, id string, partial model.Record) (model.Record, error) {
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	// Read through the backend, not ReadOne: an outage here must not look like a miss.
	current, err := s.backend.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}

	merged := current.Merge(partial)
	merged["id"] = id
	if err := s.backend.Put(ctx, collection, id, merged); err != nil {
		return nil, err
	}
	s.publish(ctx, eventbus.EventTypeRecordUpdated, collection, id, merged)
	return merged, nil
}

func (s *collectionStore) Delete(ctx context.Context, collection, id string) (bool, error) {
	if err := s.EnsureSchema(ctx); err != nil {
		return false, err
	}
	existed, err := s.backend.Delete(ctx, collection, id)
	if err != nil {
		return false, err
	}
	if existed {
		s.publish(ctx, eventbus.EventTypeRecordDeleted, collection, id, nil)
	}
	return existed, nil
}

// NewID is a base-36 millisecond timestamp followed by eight random base-36
// characters. Uniqueness is enforced only by the (collection, id) key on write.
func (s *collectionStore) NewID() string {
	return newID(s.now())
}

func newID(now time.Time) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	var b strings.Builder
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 36))
	for i := 0; i < 8; i++ {
		b.WriteByte(alphabet[rand.IntN(len(alphabet))])
	}
	return b.String()
}

func (s *collectionStore) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

func (s *collectionStore) publish(ctx context.Context, kind, collection, id string, rec model.Record) {
	if s.events == nil {
		return
	}
	var data map[string]interface{}
	if rec != nil {
		data = rec.Clone()
	}
	s.events.PublishAndForget(ctx, eventbus.NewRecordEvent(kind, collection, id, data))
}

// FilterRecords keeps records whose field equals value, preserving order.
func FilterRecords(records []model.Record, field, value string) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if r.Matches(field, value) {
			out = append(out, r)
		}
	}
	return out
}
