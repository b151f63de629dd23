// Package event provides a small in-process pub/sub bus used to fan
// watched records out to multiple sinks.
//
// Delivery is best-effort: each subscriber has a bounded buffer and a
// publish that would block is dropped instead, so one stalled consumer
// cannot hold back the tail session.
package event

import (
	"sync"

	"tailsv/internal/metrics"
)

const defaultSubscriberBuffer = 128

type Options struct {
	// SubscriberBuffer is the per-subscriber channel capacity.
	SubscriberBuffer int
	// Registry receives drop counts. Defaults to metrics.Default.
	Registry *metrics.Registry
}

type subscription[T any] struct {
	channel chan T
}

type Bus[T any] struct {
	mu          sync.Mutex
	subscribers map[uint64]subscription[T]
	nextID      uint64
	closed      bool
	options     Options
	registry    *metrics.Registry
}

func NewBus[T any](options Options) *Bus[T] {
	if options.SubscriberBuffer <= 0 {
		options.SubscriberBuffer = defaultSubscriberBuffer
	}
	registry := options.Registry
	if registry == nil {
		registry = metrics.Default
	}
	return &Bus[T]{
		subscribers: make(map[uint64]subscription[T]),
		options:     options,
		registry:    registry,
	}
}

// Subscribe registers a new subscriber. The returned cancel function
// removes the subscription and closes its channel; it is idempotent.
func (b *Bus[T]) Subscribe() (<-chan T, func()) {
	if b == nil {
		return nil, func() {}
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		closed := make(chan T)
		close(closed)
		return closed, func() {}
	}

	id := b.nextID
	b.nextID++
	sub := subscription[T]{channel: make(chan T, b.options.SubscriberBuffer)}
	b.subscribers[id] = sub

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.removeSubscriber(id)
		})
	}
	return sub.channel, cancel
}

// Publish delivers the event to every subscriber without blocking.
func (b *Bus[T]) Publish(eventValue T) {
	if b == nil {
		return
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	subs := make([]subscription[T], 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		select {
		case sub.channel <- eventValue:
		default:
			b.registry.IncDroppedEvents()
		}
	}
}

// Close closes all subscriber channels. Publish after Close is a no-op.
func (b *Bus[T]) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subscribers {
		close(sub.channel)
		delete(b.subscribers, id)
	}
}

func (b *Bus[T]) SubscriberCount() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

func (b *Bus[T]) removeSubscriber(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subscribers[id]
	if !ok {
		return
	}
	delete(b.subscribers, id)
	close(sub.channel)
}
