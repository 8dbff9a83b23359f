package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/coaching/domain/repository"
	apperrors "coach-portal/internal/shared/errors"
)

// Backend keeps records in process memory. Records are stored as JSON so callers
// never share maps with the store, matching what a database round trip does.
type Backend struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte

	// Fail, when set, is returned by every operation. Tests use it to simulate an outage.
	Fail error
}

var _ repository.CollectionBackend = (*Backend)(nil)

func NewBackend() *Backend {
	return &Backend{data: make(map[string]map[string][]byte)}
}

func (b *Backend) EnsureSchema(ctx context.Context) error {
	return b.failure()
}

func (b *Backend) List(ctx context.Context, collection string) ([]model.Record, error) {
	if err := b.failure(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	rows := b.data[collection]
	keys := make([]string, 0, len(rows))
	for id := range rows {
		keys = append(keys, id)
	}
	sort.Strings(keys)

	out := make([]model.Record, 0, len(keys))
	for _, id := range keys {
		rec, err := decode(rows[id])
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (b *Backend) Get(ctx context.Context, collection, id string) (model.Record, error) {
	if err := b.failure(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	raw, ok := b.data[collection][id]
	b.mu.RUnlock()
	if !ok {
		return nil, apperrors.ErrRecordNotFound
	}
	return decode(raw)
}

func (b *Backend) Put(ctx context.Context, collection, id string, data model.Record) error {
	if err := b.failure(); err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data[collection] == nil {
		b.data[collection] = make(map[string][]byte)
	}
	b.data[collection][id] = raw
	return nil
}

func (b *Backend) Delete(ctx context.Context, collection, id string) (bool, error) {
	if err := b.failure(); err != nil {
		return false, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.data[collection][id]
	delete(b.data[collection], id)
	return ok, nil
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.failure()
}

func (b *Backend) Close() error { return nil }

func (b *Backend) failure() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.Fail
}

// SetFailure switches the simulated outage on (non-nil) or off (nil).
func (b *Backend) SetFailure(err error) {
	b.mu.Lock()
	b.Fail = err
	b.mu.Unlock()
}

func decode(raw []byte) (model.Record, error) {
	var rec model.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}
