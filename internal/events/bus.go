// Package events provides the change-event bus for store mutations.
// Repositories publish an event after every successful mutation;
// derived views subscribe to know when their inputs changed, instead
// of being re-run by an external trigger.
package events

import (
	"log/slog"
	"sync"

	"github.com/ledgerlite/ledgerlite/internal/metrics"
)

// Entity identifies which logical collection changed.
type Entity string

const (
	EntityUser         Entity = "user"
	EntityExpense      Entity = "expense"
	EntityBudget       Entity = "budget"
	EntityNotification Entity = "notification"
)

// Op identifies the kind of mutation.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// Event describes one store mutation.
type Event struct {
	Entity  Entity
	Op      Op
	OwnerID string // owner of the namespaced key; empty for the global users key
}

// DefaultBuffer is the per-subscriber channel buffer.
const DefaultBuffer = 64

// Subscription is one subscriber's view of the bus.
type Subscription struct {
	C   <-chan Event
	ch  chan Event
	bus *Bus
}

// Close detaches the subscription from the bus and closes its channel.
func (s *Subscription) Close() {
	s.bus.unsubscribe(s)
}

// Bus fans change events out to subscribers. Publishing never blocks:
// a subscriber that cannot keep up loses events (it must treat any
// received event as "recompute", so a dropped event only delays, never
// corrupts, the derived view).
type Bus struct {
	mu      sync.Mutex
	subs    map[*Subscription]struct{}
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewBus creates a change-event bus.
func NewBus(logger *slog.Logger, recorder metrics.Recorder) *Bus {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Bus{
		subs:    make(map[*Subscription]struct{}),
		logger:  logger.With("component", "events.bus"),
		metrics: recorder,
	}
}

// Subscribe registers a new subscriber with the given channel buffer.
// A buffer <= 0 uses DefaultBuffer.
func (b *Bus) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	ch := make(chan Event, buffer)
	sub := &Subscription{C: ch, ch: ch, bus: b}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	return sub
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	_, ok := b.subs[sub]
	if ok {
		delete(b.subs, sub)
	}
	b.mu.Unlock()

	if ok {
		close(sub.ch)
	}
}

// Publish delivers the event to every subscriber without blocking.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subs {
		select {
		case sub.ch <- ev:
			b.metrics.IncChangeEventPublished("delivered")
		default:
			b.metrics.IncChangeEventPublished("dropped")
			b.logger.Debug("change event dropped",
				"entity", string(ev.Entity),
				"op", string(ev.Op),
			)
		}
	}
}
