// Package pubsub provides the generic publish/subscribe primitives behind
// every change stream in gridstate.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	CreatedEvent EventType = "created"
	UpdatedEvent EventType = "updated"
	DeletedEvent EventType = "deleted"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Handler receives events synchronously.
type Handler[T any] func(Event[T])

// Observable is the read-only side of a broker handed out to consumers.
type Observable[T any] interface {
	Observe(handler Handler[T]) func()
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}

var _ Observable[int] = (*Broker[int])(nil)
