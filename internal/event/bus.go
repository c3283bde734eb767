// Package event provides a pub/sub event system for the action protocol using watermill.
package event

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/logging"
)

// EventType represents the type of event.
type EventType string

const (
	CommandFailed  EventType = "command.failed"
	ToastShown     EventType = "toast.shown"
	ReportCreated  EventType = "report.created"
	HistoryChanged EventType = "history.changed"
	StateChanged   EventType = "state.changed"
	SessionSaved   EventType = "session.saved"
)

// Event represents an event to be published.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// Subscriber is a function that receives events.
type Subscriber func(event Event)

// subscriberEntry wraps a subscriber with an ID.
type subscriberEntry struct {
	id uint64
	fn Subscriber
}

// Bus is the event bus that manages pub/sub using watermill.
// Direct subscribers receive the typed Event; every event is also
// forwarded as a JSON watermill message on the topic named by its type.
type Bus struct {
	mu sync.RWMutex

	pubsub *gochannel.GoChannel

	subscribers map[EventType][]subscriberEntry
	global      []subscriberEntry

	nextID uint64
	closed bool
}

// NewBus creates a new event bus with watermill infrastructure.
func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer: 100,
				Persistent:          false,
			},
			watermill.NopLogger{},
		),
		subscribers: make(map[EventType][]subscriberEntry),
	}
}

// newID generates a unique subscriber ID.
func (b *Bus) newID() uint64 {
	return atomic.AddUint64(&b.nextID, 1)
}

// Subscribe registers a subscriber for a specific event type.
// Returns an unsubscribe function.
func (b *Bus) Subscribe(eventType EventType, fn Subscriber) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return func() {}
	}

	id := b.newID()
	b.subscribers[eventType] = append(b.subscribers[eventType], subscriberEntry{id: id, fn: fn})

	return func() {
		b.unsubscribe(eventType, id)
	}
}

// SubscribeAll registers a subscriber for all events.
// Returns an unsubscribe function.
func (b *Bus) SubscribeAll(fn Subscriber) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return func() {}
	}

	id := b.newID()
	b.global = append(b.global, subscriberEntry{id: id, fn: fn})

	return func() {
		b.unsubscribeGlobal(id)
	}
}

func (b *Bus) unsubscribe(eventType EventType, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[eventType]
	for i, entry := range subs {
		if entry.id == id {
			b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
}

func (b *Bus) unsubscribeGlobal(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, entry := range b.global {
		if entry.id == id {
			b.global = append(b.global[:i], b.global[i+1:]...)
			break
		}
	}
}

// collect returns the subscribers for an event, or nil when the bus is closed.
func (b *Bus) collect(eventType EventType) ([]Subscriber, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, false
	}

	subs := make([]Subscriber, 0, len(b.subscribers[eventType])+len(b.global))
	for _, entry := range b.subscribers[eventType] {
		subs = append(subs, entry.fn)
	}
	for _, entry := range b.global {
		subs = append(subs, entry.fn)
	}
	return subs, true
}

// Publish sends an event to all subscribers asynchronously.
// Each subscriber is called in its own goroutine to prevent blocking.
func (b *Bus) Publish(event Event) {
	subs, ok := b.collect(event.Type)
	if !ok {
		return
	}
	b.forward(event)
	for _, sub := range subs {
		go sub(event)
	}
}

// PublishSync sends an event to all subscribers synchronously.
// All subscribers are called in the current goroutine before returning.
func (b *Bus) PublishSync(event Event) {
	subs, ok := b.collect(event.Type)
	if !ok {
		return
	}
	b.forward(event)
	for _, sub := range subs {
		sub(event)
	}
}

// forward publishes the event on the watermill topic for its type.
func (b *Bus) forward(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logging.Debug().Err(err).Str("eventType", string(event.Type)).Msg("event not forwarded: marshal failed")
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("type", string(event.Type))
	if err := b.pubsub.Publish(string(event.Type), msg); err != nil {
		logging.Debug().Err(err).Str("eventType", string(event.Type)).Msg("event not forwarded")
	}
}

// Messages subscribes to the watermill topic of an event type. Each
// message payload is the JSON encoding of an Event and must be acked.
func (b *Bus) Messages(ctx context.Context, eventType EventType) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, string(eventType))
}

// Close closes the bus and all its subscribers.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.subscribers = make(map[EventType][]subscriberEntry)
	b.global = nil
	b.mu.Unlock()

	return b.pubsub.Close()
}

// PubSub returns the underlying watermill GoChannel for advanced use cases.
func (b *Bus) PubSub() *gochannel.GoChannel {
	return b.pubsub
}
