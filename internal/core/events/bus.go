// Package events provides the in-process publish/subscribe channel used for
// core broadcasts.
package events

import (
	"sync"

	"go.uber.org/zap"
)

// Event is a named broadcast with optional parameters.
type Event struct {
	Name   string `json:"name"`
	Params []any  `json:"params"`
}

// Handler receives published events.
type Handler func(Event)

type subscription struct {
	id      uint64
	name    string // empty matches every event
	handler Handler
}

// Bus fans events out to subscribers synchronously, in subscription order.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
	logger *zap.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{logger: logger}
}

// Subscribe registers handler for events called name.
func (b *Bus) Subscribe(name string, handler Handler) (unsubscribe func()) {
	return b.add(name, handler)
}

// SubscribeAll registers handler for every event.
func (b *Bus) SubscribeAll(handler Handler) (unsubscribe func()) {
	return b.add("", handler)
}

func (b *Bus) add(name string, handler Handler) func() {
	b.mu.Lock()
	b.nextID++
	sid := b.nextID
	b.subs = append(b.subs, subscription{id: sid, name: name, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(sid) })
	}
}

func (b *Bus) remove(sid uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == sid {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers an event to every matching subscriber and returns the
// number of handlers invoked. A panicking handler is logged and skipped.
func (b *Bus) Publish(name string, params ...any) int {
	if params == nil {
		params = []any{}
	}
	event := Event{Name: name, Params: params}

	b.mu.RLock()
	targets := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.name == "" || s.name == name {
			targets = append(targets, s.handler)
		}
	}
	b.mu.RUnlock()

	for _, handler := range targets {
		b.deliver(handler, event)
	}
	return len(targets)
}

func (b *Bus) deliver(handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked",
				zap.String("event", event.Name),
				zap.Any("panic", r),
			)
		}
	}()
	handler(event)
}
