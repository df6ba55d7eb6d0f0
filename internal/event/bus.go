// Package event provides a small publish/subscribe bus with hierarchical
// dot-notation topics.
//
// All delivery is synchronous and in subscription order: Publish invokes every
// matching handler before returning. The application is event-driven rather
// than parallel, so ordering between two publishers is whatever order they
// call Publish in; handlers must be idempotent with respect to re-delivery of
// equivalent events.
package event

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Handler receives a published event.
type Handler func(topic Topic, payload any)

// Subscription identifies an active subscription so it can be cancelled.
type Subscription struct {
	id  uint64
	bus *Bus
}

// Unsubscribe removes the subscription from the bus. Safe to call twice.
func (s Subscription) Unsubscribe() {
	if s.bus != nil {
		s.bus.unsubscribe(s.id)
	}
}

// Stats reports bus activity counters.
type Stats struct {
	Published uint64
	Delivered uint64
	Panics    uint64
}

type subscriber struct {
	id      uint64
	pattern Topic
	handler Handler
}

// Bus routes published events to pattern subscribers.
// It is safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscriber
	nextID uint64

	published atomic.Uint64
	delivered atomic.Uint64
	panics    atomic.Uint64

	// PanicHandler, if set, observes recovered handler panics.
	PanicHandler func(topic Topic, recovered any)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for every topic matching pattern.
func (b *Bus) Subscribe(pattern Topic, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs = append(b.subs, subscriber{id: b.nextID, pattern: pattern, handler: h})
	return Subscription{id: b.nextID, bus: b}
}

// Publish delivers payload to all handlers whose pattern matches topic.
// Handler panics are recovered so one bad subscriber cannot take down the
// event loop.
func (b *Bus) Publish(topic Topic, payload any) {
	b.published.Add(1)

	b.mu.RLock()
	matched := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if Match(s.pattern, topic) {
			matched = append(matched, s.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range matched {
		b.deliver(topic, payload, h)
	}
}

func (b *Bus) deliver(topic Topic, payload any, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			if b.PanicHandler != nil {
				b.PanicHandler(topic, r)
			}
		}
	}()
	h(topic, payload)
	b.delivered.Add(1)
}

// Stats returns a snapshot of bus counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Published: b.published.Load(),
		Delivered: b.delivered.Load(),
		Panics:    b.panics.Load(),
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Bus) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// String implements fmt.Stringer for debug logging.
func (s Stats) String() string {
	return fmt.Sprintf("published=%d delivered=%d panics=%d", s.Published, s.Delivered, s.Panics)
}
