// Package filter defines the filter capability consumed by the registry and
// the built-in filter kinds.
//
// A filter judges items (Accepts), reports whether it constrains anything
// (IsActive), and announces every state-meaningful mutation on Changes.
// Serializable filters additionally expose a kind-tagged State that can be
// read, restored and compared without the filter object itself.
//
// Built-in filters are not safe for concurrent mutation; the registry and
// the state provider serialize access to them.
package filter

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/zjrosen/gridstate/internal/pubsub"
)

// ErrUnknownKind is returned when a State names a kind nobody registered.
var ErrUnknownKind = errors.New("unknown filter kind")

// Accessor resolves a named property on an item. ok is false when the
// item has no such property.
type Accessor[T any] func(item T, property string) (value any, ok bool)

// Filter is the capability every grid filter provides.
type Filter[T any] interface {
	IsActive() bool
	Accepts(item T) bool
	Changes() pubsub.Observable[State]
}

// Serializable is a Filter whose configuration can be captured and restored.
// Implementations should be pointer types: a registered filter is
// identified by instance (see Same) as well as by Key.
type Serializable[T any] interface {
	Filter[T]
	// State returns a copy of the current configuration.
	State() State
	// SetState replaces the whole configuration and re-derives every
	// derived field. It always notifies Changes.
	SetState(State)
	Key() Key
	Equals(other Serializable[T]) bool
}

// changes is embedded by the built-ins to own their change stream.
type changes struct {
	broker *pubsub.Broker[State]
}

func newChanges() changes {
	return changes{broker: pubsub.NewBroker[State]()}
}

func (c changes) Changes() pubsub.Observable[State] {
	return c.broker
}

func (c changes) emit(s State) {
	c.broker.Publish(pubsub.UpdatedEvent, s)
}

// Same reports whether a and b are the same filter instance. Filters are
// meant to be pointers; a filter whose dynamic value cannot be compared is
// never the same as anything, so the check cannot panic.
func Same[T any](a, b Serializable[T]) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}

func equalKeys[T any](self Serializable[T], other Serializable[T]) bool {
	if other == nil {
		return false
	}
	return self.Key() == other.Key()
}

// ensureID gives id-bearing filters an identity when the caller has none.
func ensureID(id string) string {
	if strings.TrimSpace(id) == "" {
		return uuid.NewString()
	}
	return id
}

// stringOf renders a property value the way string and list filters see it.
func stringOf(v any) string {
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}
