package pubsub

import (
	"context"
	"sync"
	"time"
)

const defaultBufferSize = 64

// Broker is a generic pub/sub event broker.
//
// Two kinds of subscribers are supported. Observers registered with Observe
// are invoked synchronously on the publishing goroutine, in registration
// order, before Publish returns. Channel subscribers created with Subscribe
// receive a buffered copy of each event and never block the publisher.
type Broker[T any] struct {
	subs       map[chan Event[T]]struct{}
	observers  []observer[T]
	nextID     uint64
	mu         sync.RWMutex
	done       chan struct{}
	bufferSize int
}

type observer[T any] struct {
	id      uint64
	handler Handler[T]
}

// NewBroker creates a new broker with the default buffer size (64).
func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithBuffer[T](defaultBufferSize)
}

// NewBrokerWithBuffer creates a new broker with a custom buffer size.
func NewBrokerWithBuffer[T any](size int) *Broker[T] {
	return &Broker[T]{
		subs:       make(map[chan Event[T]]struct{}),
		done:       make(chan struct{}),
		bufferSize: size,
	}
}

// Observe registers a synchronous handler and returns a function that
// removes it. The returned function is safe to call more than once.
func (b *Broker[T]) Observe(handler Handler[T]) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		return func() {}
	default:
	}

	b.nextID++
	id := b.nextID
	b.observers = append(b.observers, observer[T]{id: id, handler: handler})

	return func() { b.unobserve(id) }
}

func (b *Broker[T]) unobserve(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, o := range b.observers {
		if o.id == id {
			// Copy so an in-flight Publish keeps iterating its own snapshot.
			next := make([]observer[T], 0, len(b.observers)-1)
			next = append(next, b.observers[:i]...)
			b.observers = append(next, b.observers[i+1:]...)
			return
		}
	}
}

// Subscribe creates a new subscription channel.
// The channel is automatically closed when ctx is cancelled.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Check if broker is closed
	select {
	case <-b.done:
		ch := make(chan Event[T])
		close(ch)
		return ch
	default:
	}

	sub := make(chan Event[T], b.bufferSize)
	b.subs[sub] = struct{}{}

	// Cleanup goroutine
	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()

		select {
		case <-b.done:
			return // Already closed
		default:
		}

		delete(b.subs, sub)
		close(sub)
	}()

	return sub
}

// Publish sends an event to all subscribers.
// Observers run synchronously after the broker lock is released, so a
// handler may itself observe, unobserve or publish. Channel delivery is
// non-blocking: events are dropped if a subscriber channel is full.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	b.mu.RLock()

	select {
	case <-b.done:
		b.mu.RUnlock()
		return
	default:
	}

	event := Event[T]{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	for sub := range b.subs {
		select {
		case sub <- event:
			// Delivered
		default:
			// Channel full - drop to prevent blocking
		}
	}
	observers := b.observers
	b.mu.RUnlock()

	for _, o := range observers {
		o.handler(event)
	}
}

// Close shuts down the broker, all subscriber channels and all observers.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		return // Already closed
	default:
	}

	close(b.done)
	for sub := range b.subs {
		close(sub)
	}
	b.subs = nil
	b.observers = nil
}

// SubscriberCount returns the number of active channel subscribers.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// ObserverCount returns the number of registered synchronous observers.
func (b *Broker[T]) ObserverCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.observers)
}
