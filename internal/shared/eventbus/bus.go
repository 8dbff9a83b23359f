package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"coach-portal/internal/shared/logger"
)

// Event types published by the collection store and the side-effect endpoints
const (
	EventTypeRecordCreated       = "record.created"
	EventTypeRecordUpdated       = "record.updated"
	EventTypeRecordDeleted       = "record.deleted"
	EventTypeNotificationCreated = "notification.created"
	EventTypeReminderSent        = "reminder.sent"
	EventTypeUserLoggedIn        = "user.logged_in"

	// AllEvents subscribes a handler to every event type.
	AllEvents = "*"
)

// Event is anything that can travel on the bus
type Event interface {
	Type() string
	Data() interface{}
	Timestamp() time.Time
	Source() string
}

// Handler reacts to an event. A returned error is retried up to BusConfig.MaxRetries.
type Handler func(ctx context.Context, event Event) error

// Publisher is the narrow side of the bus that writers depend on
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	PublishAndForget(ctx context.Context, event Event)
}

// EventBus is an in-process fan-out of events to subscribed handlers
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   logger.Logger
	config   BusConfig

	// fire-and-forget events go through one dispatcher so they arrive in call order
	queue     chan queuedEvent
	done      chan struct{}
	startOnce sync.Once
	sendMu    sync.RWMutex
	closed    bool
}

type queuedEvent struct {
	ctx   context.Context
	event Event
}

// BusConfig holds configuration for the event bus
type BusConfig struct {
	AsyncProcessing bool
	MaxRetries      int
	RetryDelay      time.Duration
	// QueueSize bounds pending PublishAndForget events; a full queue blocks the caller.
	QueueSize int
}

// DefaultBusConfig returns default configuration
func DefaultBusConfig() BusConfig {
	return BusConfig{
		AsyncProcessing: false,
		MaxRetries:      2,
		RetryDelay:      50 * time.Millisecond,
		QueueSize:       1024,
	}
}

// NewEventBus creates a synchronous event bus
func NewEventBus(log logger.Logger) *EventBus {
	return NewEventBusWithConfig(log, DefaultBusConfig())
}

// NewEventBusWithConfig creates a new event bus with custom configuration
func NewEventBusWithConfig(log logger.Logger, config BusConfig) *EventBus {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultBusConfig().QueueSize
	}
	return &EventBus{
		handlers: make(map[string][]Handler),
		logger:   log.WithComponent("eventbus"),
		config:   config,
		queue:    make(chan queuedEvent, config.QueueSize),
		done:     make(chan struct{}),
	}
}

// Subscribe adds a handler for a specific event type, or AllEvents
func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	eb.logger.Debugf("subscribed handler for %s", eventType)
}

// Publish delivers an event to the handlers of its type and to wildcard handlers.
// The first handler error (after retries) is returned.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	eb.mu.RLock()
	handlers := make([]Handler, 0, len(eb.handlers[event.Type()])+len(eb.handlers[AllEvents]))
	handlers = append(handlers, eb.handlers[event.Type()]...)
	handlers = append(handlers, eb.handlers[AllEvents]...)
	eb.mu.RUnlock()

	if len(handlers) == 0 {
		return nil
	}

	if eb.config.AsyncProcessing {
		return eb.publishAsync(ctx, event, handlers)
	}

	for i, handler := range handlers {
		if err := eb.executeHandler(ctx, event, handler, i); err != nil {
			return err
		}
	}
	return nil
}

func (eb *EventBus) publishAsync(ctx context.Context, event Event, handlers []Handler) error {
	var wg sync.WaitGroup
	errCh := make(chan error, len(handlers))

	for i, handler := range handlers {
		wg.Add(1)
		go func(h Handler, idx int) {
			defer wg.Done()
			if err := eb.executeHandler(ctx, event, h, idx); err != nil {
				errCh <- err
			}
		}(handler, i)
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		return err
	}
	return nil
}

func (eb *EventBus) executeHandler(ctx context.Context, event Event, handler Handler, idx int) error {
	var lastErr error

	for attempt := 0; attempt <= eb.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(eb.config.RetryDelay):
			}
		}

		if err := handler(ctx, event); err != nil {
			lastErr = err
			eb.logger.Warnf("handler %d failed for %s (attempt %d): %v", idx, event.Type(), attempt+1, err)
			continue
		}
		return nil
	}

	return fmt.Errorf("handler failed after %d attempts: %w", eb.config.MaxRetries+1, lastErr)
}

// PublishAndForget queues the event for the bus's dispatcher and returns.
// Queued events are delivered one at a time in the order they were queued. The
// context is stripped of its cancellation so a finished HTTP request does not
// abort delivery.
func (eb *EventBus) PublishAndForget(ctx context.Context, event Event) {
	eb.startOnce.Do(eb.startDispatcher)

	eb.sendMu.RLock()
	defer eb.sendMu.RUnlock()
	if eb.closed {
		eb.logger.Warnf("bus closed, dropping %s", event.Type())
		return
	}
	eb.queue <- queuedEvent{ctx: context.WithoutCancel(ctx), event: event}
}

func (eb *EventBus) startDispatcher() {
	go func() {
		defer close(eb.done)
		for q := range eb.queue {
			if err := eb.Publish(q.ctx, q.event); err != nil {
				eb.logger.Errorf("failed to publish %s: %v", q.event.Type(), err)
			}
		}
	}()
}

// Close stops accepting fire-and-forget events and waits until the queued ones
// are delivered.
func (eb *EventBus) Close() {
	eb.startOnce.Do(eb.startDispatcher)

	eb.sendMu.Lock()
	if eb.closed {
		eb.sendMu.Unlock()
		<-eb.done
		return
	}
	eb.closed = true
	close(eb.queue)
	eb.sendMu.Unlock()
	<-eb.done
}

// RecordEvent describes a write to one record of a collection
type RecordEvent struct {
	Kind       string                 `json:"type"`
	Collection string                 `json:"collection"`
	ID         string                 `json:"id"`
	Record     map[string]interface{} `json:"data,omitempty"`
	At         time.Time              `json:"timestamp"`
	Origin     string                 `json:"source,omitempty"`
}

// NewRecordEvent stamps a record change with the current time
func NewRecordEvent(kind, collection, id string, record map[string]interface{}) *RecordEvent {
	return &RecordEvent{
		Kind:       kind,
		Collection: collection,
		ID:         id,
		Record:     record,
		At:         time.Now().UTC(),
		Origin:     "collection-store",
	}
}

func (e *RecordEvent) Type() string         { return e.Kind }
func (e *RecordEvent) Data() interface{}    { return e.Record }
func (e *RecordEvent) Timestamp() time.Time { return e.At }
func (e *RecordEvent) Source() string       { return e.Origin }

// BasicEvent carries an arbitrary payload
type BasicEvent struct {
	eventType string
	data      interface{}
	timestamp time.Time
	source    string
}

// NewBasicEvent creates a new basic event with a source
func NewBasicEvent(eventType string, data interface{}, source string) Event {
	return &BasicEvent{
		eventType: eventType,
		data:      data,
		timestamp: time.Now().UTC(),
		source:    source,
	}
}

func (e *BasicEvent) Type() string         { return e.eventType }
func (e *BasicEvent) Data() interface{}    { return e.data }
func (e *BasicEvent) Timestamp() time.Time { return e.timestamp }
func (e *BasicEvent) Source() string       { return e.source }
