package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/shared/eventbus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockChangeStore keeps appended changes in memory.
type MockChangeStore struct {
	mu        sync.Mutex
	changes   []model.StoredChange
	AppendErr error
}

func (m *MockChangeStore) Append(ctx context.Context, change model.StoredChange) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return "", m.AppendErr
	}
	change.StreamID = time.Now().Format("150405.000000000") + "-0"
	m.changes = append(m.changes, change)
	return change.StreamID, nil
}

func (m *MockChangeStore) Since(ctx context.Context, collection, since string, limit int64) ([]model.StoredChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.StoredChange
	for _, c := range m.changes {
		if c.Collection == collection {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockChangeStore) Close() error { return nil }

func TestRealtimeUsecase_DeliversToMatchingSubscribers(t *testing.T) {
	hub := NewRealtimeUsecase(nil, nil)
	ctx := context.Background()
	goals := make(chan model.StoredChange, 1)
	athletes := make(chan model.StoredChange, 1)
	hub.Subscribe(ctx, "s1", []string{model.CollectionGoals}, goals)
	hub.Subscribe(ctx, "s2", []string{model.CollectionAthletes}, athletes)
	assert.Equal(t, 2, hub.SubscriberCount())

	ev := eventbus.NewRecordEvent(eventbus.EventTypeRecordUpdated, model.CollectionGoals, "g1", map[string]interface{}{"id": "g1"})
	require.NoError(t, hub.HandleEvent(ctx, ev))

	select {
	case change := <-goals:
		assert.Equal(t, "g1", change.ID)
		assert.Equal(t, eventbus.EventTypeRecordUpdated, change.Type)
	default:
		t.Fatal("goals subscriber got nothing")
	}
	assert.Empty(t, athletes)

	hub.Unsubscribe(ctx, "s1")
	assert.Equal(t, 1, hub.SubscriberCount())
}

func TestRealtimeUsecase_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewRealtimeUsecase(nil, nil)
	ch := make(chan model.StoredChange) // unbuffered, nobody reading
	hub.Subscribe(context.Background(), "slow", []string{model.CollectionGoals}, ch)

	done := make(chan struct{})
	go func() {
		_ = hub.HandleEvent(context.Background(), eventbus.NewRecordEvent(eventbus.EventTypeRecordCreated, model.CollectionGoals, "g1", nil))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow subscriber")
	}
}

func TestRealtimeUsecase_PersistsAndReplays(t *testing.T) {
	changes := &MockChangeStore{}
	hub := NewRealtimeUsecase(changes, nil)
	ctx := context.Background()
	live := make(chan model.StoredChange, 1)
	hub.Subscribe(ctx, "s1", []string{model.CollectionGoals}, live)

	require.NoError(t, hub.HandleEvent(ctx, eventbus.NewRecordEvent(eventbus.EventTypeRecordCreated, model.CollectionGoals, "g1", nil)))
	assert.NotEmpty(t, (<-live).StreamID)

	replayed, err := hub.Replay(ctx, model.CollectionGoals, "", 0)
	require.NoError(t, err)
	require.Len(t, replayed, 1)
	assert.Equal(t, "g1", replayed[0].ID)
}

func TestRealtimeUsecase_AppendFailureStillDelivers(t *testing.T) {
	hub := NewRealtimeUsecase(&MockChangeStore{AppendErr: errors.New("redis down")}, nil)
	live := make(chan model.StoredChange, 1)
	hub.Subscribe(context.Background(), "s1", []string{model.CollectionGoals}, live)

	require.NoError(t, hub.HandleEvent(context.Background(), eventbus.NewRecordEvent(eventbus.EventTypeRecordDeleted, model.CollectionGoals, "g1", nil)))
	change := <-live
	assert.Empty(t, change.StreamID)
}

func TestRealtimeUsecase_ReplayDisabled(t *testing.T) {
	_, err := NewRealtimeUsecase(nil, nil).Replay(context.Background(), "goals", "", 0)
	assert.ErrorIs(t, err, ErrChangeStreamDisabled)
}

func TestRealtimeUsecase_IgnoresNonRecordEvents(t *testing.T) {
	hub := NewRealtimeUsecase(nil, nil)
	assert.NoError(t, hub.HandleEvent(context.Background(), eventbus.NewBasicEvent(eventbus.EventTypeReminderSent, "x", "test")))
}
