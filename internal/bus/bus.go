package bus

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Handler receives emitted events.
type Handler func(Event)

// subscriber pairs a handler with its registration token.
type subscriber struct {
	id uuid.UUID
	fn Handler
}

// Bus is a typed publish/subscribe registry.
type Bus struct {
	logger *slog.Logger

	mu   sync.RWMutex
	subs map[string][]subscriber
}

// New creates an empty Bus.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		logger: logger,
		subs:   make(map[string][]subscriber),
	}
}

// Subscribe registers fn for the named event and returns an unsubscribe
// handle. Calling the handle more than once is a no-op.
func (b *Bus) Subscribe(name string, fn Handler) func() {
	if fn == nil {
		return func() {}
	}

	id := uuid.New()

	b.mu.Lock()
	b.subs[name] = append(b.subs[name], subscriber{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.unsubscribe(name, id)
	}
}

// unsubscribe removes the registration with the given token. Unknown tokens
// (already removed, or cleared by Clear) are ignored.
func (b *Bus) unsubscribe(name string, id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[name]
	for i, s := range list {
		if s.id == id {
			b.subs[name] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(b.subs[name]) == 0 {
		delete(b.subs, name)
	}
}

// Emit synchronously invokes all subscribers of the event's name in
// registration order. Each invocation is individually recovered so one
// failing subscriber cannot prevent others from being notified. With zero
// subscribers the event is dropped.
func (b *Bus) Emit(e Event) {
	b.mu.RLock()
	list := make([]subscriber, len(b.subs[e.EventName()]))
	copy(list, b.subs[e.EventName()])
	b.mu.RUnlock()

	for _, s := range list {
		b.invoke(e, s)
	}
}

func (b *Bus) invoke(e Event, s subscriber) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("subscriber panicked",
				"event", e.EventName(),
				"panic", r,
			)
		}
	}()
	s.fn(e)
}

// Len returns the current subscriber count for an event name.
func (b *Bus) Len(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}

// Clear removes every subscription. Used on shutdown; after Clear no
// further events reach any subscriber.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[string][]subscriber)
}
