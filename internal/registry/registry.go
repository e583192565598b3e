// Package registry holds the live set of grid filters.
//
// Filters are kept in registration order, keyed by their identity
// (filter.Key). Adding a filter equal to one already registered replaces it
// in place: the newcomer inherits the old filter's state and position. Every
// change of a registered filter, and every add or remove of an active one,
// is announced once on Changes, inside a debouncer scope, after the page has
// been reset to the first page.
package registry

import (
	"sync"
	"sync/atomic"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/zjrosen/gridstate/internal/debounce"
	"github.com/zjrosen/gridstate/internal/filter"
	"github.com/zjrosen/gridstate/internal/log"
	"github.com/zjrosen/gridstate/internal/pubsub"
)

// PageResetter is the part of the pagination provider the registry drives.
type PageResetter interface {
	Reset()
}

// Option configures a Registry.
type Option func(*options)

type options struct {
	debouncer *debounce.Debouncer
	page      PageResetter
}

// WithDebouncer shares a debouncer with the other grid providers.
func WithDebouncer(d *debounce.Debouncer) Option {
	return func(o *options) { o.debouncer = d }
}

// WithPage makes every filter change send the grid back to its first page.
func WithPage(p PageResetter) Option {
	return func(o *options) { o.page = p }
}

type entry[T any] struct {
	filter filter.Serializable[T]
	reg    *Registration[T]
	cancel func()
}

// Registry is the ordered set of registered filters.
type Registry[T any] struct {
	mu        sync.Mutex
	entries   *orderedmap.OrderedMap[filter.Key, *entry[T]]
	debouncer *debounce.Debouncer
	page      PageResetter
	broker    *pubsub.Broker[filter.Serializable[T]]
}

// New creates an empty registry. Without WithDebouncer the registry owns a
// private debouncer.
func New[T any](opts ...Option) *Registry[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.debouncer == nil {
		o.debouncer = debounce.New()
	}
	return &Registry[T]{
		entries:   orderedmap.New[filter.Key, *entry[T]](),
		debouncer: o.debouncer,
		page:      o.page,
		broker:    pubsub.NewBroker[filter.Serializable[T]](),
	}
}

// Debouncer returns the debouncer every emission is scoped in.
func (r *Registry[T]) Debouncer() *debounce.Debouncer {
	return r.debouncer
}

// Add registers f and returns its registration handle.
//
// When a filter with the same key is already registered, f first receives
// that filter's state, then takes its place in the ordering; the old filter's
// registration is revoked. Adding the exact same filter twice returns the
// existing handle.
func (r *Registry[T]) Add(f filter.Serializable[T]) *Registration[T] {
	key := f.Key()

	r.mu.Lock()
	old, exists := r.entries.Get(key)
	r.mu.Unlock()

	if exists && filter.Same(old.filter, f) {
		return old.reg
	}
	if exists {
		f.SetState(old.filter.State())
	}

	e := &entry[T]{filter: f}
	e.reg = &Registration[T]{registry: r, filter: f}
	e.cancel = f.Changes().Observe(func(pubsub.Event[filter.State]) {
		r.filterChanged(e)
	})

	r.mu.Lock()
	prev, replaced := r.entries.Set(key, e)
	r.mu.Unlock()

	wasActive := false
	if replaced {
		prev.cancel()
		prev.reg.revoked.Store(true)
		wasActive = prev.filter.IsActive()
		log.Debug(log.CatRegistry, "Replaced filter", "key", key.String())
	} else {
		log.Debug(log.CatRegistry, "Added filter", "key", key.String())
	}

	if f.IsActive() || wasActive {
		r.emit(pubsub.CreatedEvent, f)
	}
	return e.reg
}

// Remove unregisters f. Filters that are not registered, or that have been
// replaced by an equal filter, are ignored.
func (r *Registry[T]) Remove(f filter.Serializable[T]) {
	if f == nil {
		return
	}
	r.remove(f.Key(), func(e *entry[T]) bool { return filter.Same(e.filter, f) })
}

// remove deletes the entry under key if match accepts it.
func (r *Registry[T]) remove(key filter.Key, match func(*entry[T]) bool) {
	r.mu.Lock()
	e, ok := r.entries.Get(key)
	if !ok || !match(e) {
		r.mu.Unlock()
		return
	}
	r.entries.Delete(key)
	r.mu.Unlock()

	e.cancel()
	e.reg.revoked.Store(true)
	log.Debug(log.CatRegistry, "Removed filter", "key", key.String())

	if e.filter.IsActive() {
		r.emit(pubsub.DeletedEvent, e.filter)
	}
}

// Registered returns the registration of the filter equal to f, if any.
func (r *Registry[T]) Registered(f filter.Serializable[T]) (*Registration[T], bool) {
	if f == nil {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries.Get(f.Key())
	if !ok {
		return nil, false
	}
	return e.reg, true
}

// Filters returns every registered filter in registration order.
func (r *Registry[T]) Filters() []filter.Serializable[T] {
	return r.collect(func(filter.Serializable[T]) bool { return true })
}

// ActiveFilters returns the registered filters that currently constrain
// results, in registration order.
func (r *Registry[T]) ActiveFilters() []filter.Serializable[T] {
	return r.collect(func(f filter.Serializable[T]) bool { return f.IsActive() })
}

func (r *Registry[T]) collect(keep func(filter.Serializable[T]) bool) []filter.Serializable[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]filter.Serializable[T], 0, r.entries.Len())
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		if keep(pair.Value.filter) {
			out = append(out, pair.Value.filter)
		}
	}
	return out
}

// Accepts reports whether every active filter accepts item.
func (r *Registry[T]) Accepts(item T) bool {
	for _, f := range r.ActiveFilters() {
		if !f.Accepts(item) {
			return false
		}
	}
	return true
}

// Len returns the number of registered filters, active or not.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries.Len()
}

// Changes carries the filter that was added (Created), removed (Deleted)
// or mutated (Updated).
func (r *Registry[T]) Changes() pubsub.Observable[filter.Serializable[T]] {
	return r.broker
}

// Close drops every registration and subscriber.
func (r *Registry[T]) Close() {
	r.mu.Lock()
	var all []*entry[T]
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		all = append(all, pair.Value)
	}
	r.entries = orderedmap.New[filter.Key, *entry[T]]()
	r.mu.Unlock()

	for _, e := range all {
		e.cancel()
		e.reg.revoked.Store(true)
	}
	r.broker.Close()
}

func (r *Registry[T]) filterChanged(e *entry[T]) {
	r.mu.Lock()
	cur, ok := r.entries.Get(e.filter.Key())
	current := ok && cur == e
	r.mu.Unlock()
	if !current {
		return
	}
	r.emit(pubsub.UpdatedEvent, e.filter)
}

func (r *Registry[T]) emit(t pubsub.EventType, f filter.Serializable[T]) {
	r.debouncer.Scoped(func() {
		if r.page != nil {
			r.page.Reset()
		}
		r.broker.Publish(t, f)
	})
}

// Registration is the handle returned by Add. It owns the fact that its
// filter is registered.
type Registration[T any] struct {
	registry *Registry[T]
	filter   filter.Serializable[T]
	revoked  atomic.Bool
}

// Filter returns the registered filter.
func (reg *Registration[T]) Filter() filter.Serializable[T] {
	return reg.filter
}

// Active reports whether the registration has not been revoked.
func (reg *Registration[T]) Active() bool {
	return !reg.revoked.Load()
}

// Unregister removes the filter. Calling it again is a no-op.
func (reg *Registration[T]) Unregister() {
	if !reg.revoked.CompareAndSwap(false, true) {
		return
	}
	reg.registry.remove(reg.filter.Key(), func(e *entry[T]) bool { return e.reg == reg })
}
