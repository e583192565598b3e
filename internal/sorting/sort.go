// Package sorting tracks the grid's sort order.
package sorting

import (
	"reflect"
	"sync"

	"github.com/zjrosen/gridstate/internal/debounce"
	"github.com/zjrosen/gridstate/internal/log"
	"github.com/zjrosen/gridstate/internal/pubsub"
)

// PageResetter is the part of the pagination provider a sort change drives.
type PageResetter interface {
	Reset()
}

// Sort is the sort provider. Every mutation returns the grid to its first
// page and notifies once, inside the shared debouncer.
type Sort[T any] struct {
	mu         sync.Mutex
	comparator Comparator[T]
	reverse    bool
	debouncer  *debounce.Debouncer
	page       PageResetter
	broker     *pubsub.Broker[Comparator[T]]
}

// New creates an unsorted provider. page may be nil.
func New[T any](d *debounce.Debouncer, page PageResetter) *Sort[T] {
	if d == nil {
		d = debounce.New()
	}
	return &Sort[T]{
		debouncer: d,
		page:      page,
		broker:    pubsub.NewBroker[Comparator[T]](),
	}
}

// Changes carries the comparator in effect after every mutation.
func (s *Sort[T]) Changes() pubsub.Observable[Comparator[T]] {
	return s.broker
}

// Comparator returns the installed comparator, or nil when unsorted.
func (s *Sort[T]) Comparator() Comparator[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.comparator
}

// SetComparator installs c without touching the direction. nil clears the sort.
func (s *Sort[T]) SetComparator(c Comparator[T]) {
	s.mutate(func() {
		s.comparator = c
	})
}

func (s *Sort[T]) Reverse() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reverse
}

func (s *Sort[T]) SetReverse(reverse bool) {
	s.mutate(func() {
		s.reverse = reverse
	})
}

// Toggle sorts by c: ascending when c is new, flipping the direction when c
// is already installed. ComparatorFunc values are never "already installed".
func (s *Sort[T]) Toggle(c Comparator[T]) {
	s.mutate(func() {
		if sameComparator(s.comparator, c) {
			s.reverse = !s.reverse
			return
		}
		s.comparator = c
		s.reverse = false
	})
}

// Compare orders a and b by the installed comparator and direction.
// Without a comparator every pair is equal.
func (s *Sort[T]) Compare(a, b T) int {
	s.mu.Lock()
	c, reverse := s.comparator, s.reverse
	s.mu.Unlock()
	if c == nil {
		return 0
	}
	if reverse {
		return -c.Compare(a, b)
	}
	return c.Compare(a, b)
}

// Close releases all subscribers.
func (s *Sort[T]) Close() {
	s.broker.Close()
}

func (s *Sort[T]) mutate(fn func()) {
	s.debouncer.Scoped(func() {
		s.mu.Lock()
		fn()
		c, reverse := s.comparator, s.reverse
		s.mu.Unlock()

		log.Debug(log.CatSort, "Sort changed", "reverse", reverse, "sorted", c != nil)
		if s.page != nil {
			s.page.Reset()
		}
		s.broker.Publish(pubsub.UpdatedEvent, c)
	})
}

func sameComparator[T any](a, b Comparator[T]) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	t := reflect.TypeOf(a)
	if t != reflect.TypeOf(b) || !t.Comparable() {
		return false
	}
	return a == b
}
