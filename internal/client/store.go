// Package client is an in-memory cache of collections fetched from the
// /data/{collection} resource. Mutators apply their change to the cache only
// after the server acknowledged the write; nothing is rolled back if the server
// state later diverges.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/shared/eventbus"
	"coach-portal/internal/shared/logger"

	"golang.org/x/sync/errgroup"
)

// ResponseError is a non-2xx answer from the server.
type ResponseError struct {
	Status  int
	Message string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("server answered %d: %s", e.Status, e.Message)
}

// Listener is called with the collection whose slice changed.
type Listener func(collection string)

// Store caches one slice per collection.
type Store struct {
	baseURL string
	http    *http.Client
	token   string
	log     logger.Logger

	mu        sync.RWMutex
	slices    map[string][]model.Record
	listeners []Listener

	loading atomic.Bool
}

type Option func(*Store)

func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) { s.http = c }
}

// WithToken sends a bearer session token on every call.
func WithToken(token string) Option {
	return func(s *Store) { s.token = token }
}

func WithLogger(log logger.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New creates an empty cache talking to the API mounted at baseURL.
func New(baseURL string, opts ...Option) *Store {
	s := &Store{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     logger.NewNopLogger(),
		slices:  make(map[string][]model.Record),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("client-store")
	return s
}

// Subscribe registers fn for change notifications.
func (s *Store) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Loading is true while FetchAll is in flight.
func (s *Store) Loading() bool {
	return s.loading.Load()
}

// Records returns a copy of the cached slice for collection.
func (s *Store) Records(collection string) []model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Record, len(s.slices[collection]))
	copy(out, s.slices[collection])
	return out
}

// Find looks up a cached record by id.
func (s *Store) Find(collection, id string) (model.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.slices[collection] {
		if r.ID() == id {
			return r, true
		}
	}
	return nil, false
}

// Fetch replaces the cached slice of collection with the server's list. On
// failure the previous slice is kept.
func (s *Store) Fetch(ctx context.Context, collection string) error {
	var records []model.Record
	if err := s.do(ctx, http.MethodGet, collection, nil, nil, &records); err != nil {
		return err
	}
	if records == nil {
		records = []model.Record{}
	}
	s.replace(collection, func([]model.Record) []model.Record { return records })
	return nil
}

// FetchAll fetches every collection concurrently; all of them by default.
// Loading reports true from before the first request until all have settled.
// The first error is returned once every fetch has finished.
func (s *Store) FetchAll(ctx context.Context, collections ...string) error {
	if len(collections) == 0 {
		collections = model.AllowedCollections()
	}
	s.loading.Store(true)
	defer s.loading.Store(false)

	var g errgroup.Group
	for _, c := range collections {
		g.Go(func() error {
			if err := s.Fetch(ctx, c); err != nil {
				s.log.Warnf("fetch %s: %v", c, err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// Add creates item on the server and appends the stored record.
func (s *Store) Add(ctx context.Context, collection string, item model.Record) (model.Record, error) {
	var created model.Record
	if err := s.do(ctx, http.MethodPost, collection, nil, item, &created); err != nil {
		return nil, err
	}
	s.replace(collection, func(cur []model.Record) []model.Record {
		return append(cur, created)
	})
	return created, nil
}

// Update shallow-merges partial into the record id and swaps in the merged
// record the server returns.
func (s *Store) Update(ctx context.Context, collection, id string, partial model.Record) (model.Record, error) {
	body := partial.Clone()
	body["id"] = id

	var updated model.Record
	if err := s.do(ctx, http.MethodPut, collection, nil, body, &updated); err != nil {
		return nil, err
	}
	s.replace(collection, func(cur []model.Record) []model.Record {
		return replaceByID(cur, updated)
	})
	return updated, nil
}

// Delete removes id on the server and drops it from the cache.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	q := url.Values{"id": {id}}
	if err := s.do(ctx, http.MethodDelete, collection, q, nil, nil); err != nil {
		return err
	}
	s.replace(collection, func(cur []model.Record) []model.Record {
		return removeByID(cur, id)
	})
	return nil
}

// ApplyChange patches the cache with a change pushed by the server's change
// feed. Collections that were never fetched are ignored.
func (s *Store) ApplyChange(change model.StoredChange) {
	s.mu.RLock()
	_, cached := s.slices[change.Collection]
	s.mu.RUnlock()
	if !cached {
		return
	}

	switch change.Type {
	case eventbus.EventTypeRecordCreated, eventbus.EventTypeRecordUpdated:
		if change.Data == nil {
			return
		}
		rec := change.Data.Clone()
		rec["id"] = change.ID
		s.replace(change.Collection, func(cur []model.Record) []model.Record {
			if _, found := indexOf(cur, change.ID); found {
				return replaceByID(cur, rec)
			}
			return append(cur, rec)
		})
	case eventbus.EventTypeRecordDeleted:
		s.replace(change.Collection, func(cur []model.Record) []model.Record {
			return removeByID(cur, change.ID)
		})
	}
}

func (s *Store) replace(collection string, fn func([]model.Record) []model.Record) {
	s.mu.Lock()
	cur := s.slices[collection]
	next := fn(append([]model.Record(nil), cur...))
	s.slices[collection] = next
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(collection)
	}
}

func (s *Store) do(ctx context.Context, method, collection string, query url.Values, body, out interface{}) error {
	target := s.baseURL + "/data/" + url.PathEscape(collection)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", collection, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return &ResponseError{Status: resp.StatusCode, Message: payload.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", collection, err)
	}
	return nil
}

func indexOf(records []model.Record, id string) (int, bool) {
	for i, r := range records {
		if r.ID() == id {
			return i, true
		}
	}
	return -1, false
}

func replaceByID(records []model.Record, rec model.Record) []model.Record {
	if i, ok := indexOf(records, rec.ID()); ok {
		records[i] = rec
	}
	return records
}

func removeByID(records []model.Record, id string) []model.Record {
	out := records[:0]
	for _, r := range records {
		if r.ID() != id {
			out = append(out, r)
		}
	}
	return out
}
