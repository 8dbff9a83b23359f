package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/coaching/domain/repository"
	"coach-portal/internal/shared/eventbus"
	"coach-portal/internal/shared/logger"
)

// ErrChangeStreamDisabled is returned by Replay when no change store is configured.
var ErrChangeStreamDisabled = errors.New("change stream not configured")

// RealtimeUsecase fans record changes out to live subscribers and, when a change
// store is configured, persists them for replay.
type RealtimeUsecase interface {
	// Subscribe registers ch for changes to the given collections. The subscriber
	// owns ch; a full channel drops the change for that subscriber.
	Subscribe(ctx context.Context, subscriberID string, collections []string, ch chan<- model.StoredChange)
	Unsubscribe(ctx context.Context, subscriberID string)
	// HandleEvent is the event bus handler for record events.
	HandleEvent(ctx context.Context, event eventbus.Event) error
	Replay(ctx context.Context, collection, since string, limit int64) ([]model.StoredChange, error)
	SubscriberCount() int
}

type subscription struct {
	collections map[string]bool
	ch          chan<- model.StoredChange
}

type realtimeUsecase struct {
	mu          sync.RWMutex
	subscribers map[string]subscription
	changes     repository.ChangeStore
	logger      logger.Logger
}

// NewRealtimeUsecase builds the hub. changes may be nil.
func NewRealtimeUsecase(changes repository.ChangeStore, log logger.Logger) RealtimeUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &realtimeUsecase{
		subscribers: make(map[string]subscription),
		changes:     changes,
		logger:      log.WithComponent("realtime"),
	}
}

func (uc *realtimeUsecase) Subscribe(ctx context.Context, subscriberID string, collections []string, ch chan<- model.StoredChange) {
	set := make(map[string]bool, len(collections))
	for _, c := range collections {
		set[c] = true
	}

	uc.mu.Lock()
	if _, exists := uc.subscribers[subscriberID]; exists {
		uc.logger.Warnf("subscriber %s already registered, replacing", subscriberID)
	}
	uc.subscribers[subscriberID] = subscription{collections: set, ch: ch}
	uc.mu.Unlock()

	uc.logger.Debugf("subscriber %s listening to %v", subscriberID, collections)
}

func (uc *realtimeUsecase) Unsubscribe(ctx context.Context, subscriberID string) {
	uc.mu.Lock()
	delete(uc.subscribers, subscriberID)
	uc.mu.Unlock()
}

func (uc *realtimeUsecase) SubscriberCount() int {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return len(uc.subscribers)
}

func (uc *realtimeUsecase) HandleEvent(ctx context.Context, event eventbus.Event) error {
	rec, ok := event.(*eventbus.RecordEvent)
	if !ok {
		return nil
	}
	change := model.StoredChange{
		Type:       rec.Kind,
		Collection: rec.Collection,
		ID:         rec.ID,
		Data:       model.Record(rec.Record),
		Timestamp:  rec.At.Format(time.RFC3339Nano),
	}

	if uc.changes != nil {
		id, err := uc.changes.Append(ctx, change)
		if err != nil {
			// live delivery still goes ahead without a stream id
			uc.logger.Errorf("persist change %s/%s: %v", change.Collection, change.ID, err)
		}
		change.StreamID = id
	}

	uc.broadcast(change)
	return nil
}

func (uc *realtimeUsecase) broadcast(change model.StoredChange) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	for id, sub := range uc.subscribers {
		if !sub.collections[change.Collection] {
			continue
		}
		select {
		case sub.ch <- change:
		default:
			uc.logger.Warnf("subscriber %s is not keeping up, dropped %s %s/%s", id, change.Type, change.Collection, change.ID)
		}
	}
}

func (uc *realtimeUsecase) Replay(ctx context.Context, collection, since string, limit int64) ([]model.StoredChange, error) {
	if uc.changes == nil {
		return nil, ErrChangeStreamDisabled
	}
	return uc.changes.Since(ctx, collection, since, limit)
}
