package filter

import (
	"cmp"
	"time"

	"github.com/spf13/cast"
)

// bounds is an inclusive interval where a nil end is unbounded.
type bounds[B any] struct {
	from, to *B
}

func (b bounds[B]) set() bool {
	return b.from != nil || b.to != nil
}

func (b bounds[B]) contains(v B, compare func(a, b B) int) bool {
	if b.from != nil && compare(v, *b.from) < 0 {
		return false
	}
	if b.to != nil && compare(v, *b.to) > 0 {
		return false
	}
	return true
}

func clonePtr[B any](p *B) *B {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// NumberIntervalFilter keeps items whose numeric property lies in [From, To].
type NumberIntervalFilter[T any] struct {
	changes
	id       string
	property string
	accessor Accessor[T]
	bounds   bounds[float64]
}

var _ Serializable[struct{}] = (*NumberIntervalFilter[struct{}])(nil)

// NewNumberIntervalFilter creates an unbounded (inactive) filter.
func NewNumberIntervalFilter[T any](id, property string, accessor Accessor[T]) *NumberIntervalFilter[T] {
	return &NumberIntervalFilter[T]{
		changes:  newChanges(),
		id:       ensureID(id),
		property: property,
		accessor: accessor,
	}
}

func (f *NumberIntervalFilter[T]) ID() string {
	return f.id
}

// Bounds returns copies of the current bounds; nil means unbounded.
func (f *NumberIntervalFilter[T]) Bounds() (from, to *float64) {
	return clonePtr(f.bounds.from), clonePtr(f.bounds.to)
}

// SetBounds replaces both bounds and notifies once.
func (f *NumberIntervalFilter[T]) SetBounds(from, to *float64) {
	f.bounds = bounds[float64]{from: clonePtr(from), to: clonePtr(to)}
	f.emit(f.State())
}

// Reset clears both bounds.
func (f *NumberIntervalFilter[T]) Reset() {
	f.SetBounds(nil, nil)
}

func (f *NumberIntervalFilter[T]) IsActive() bool {
	return f.bounds.set()
}

// Accepts is inclusive on both ends. Values that cannot be read as numbers
// are rejected while the filter is active.
func (f *NumberIntervalFilter[T]) Accepts(item T) bool {
	if !f.IsActive() {
		return true
	}
	v, ok := f.accessor(item, f.property)
	if !ok || v == nil {
		return false
	}
	n, err := cast.ToFloat64E(v)
	if err != nil {
		return false
	}
	return f.bounds.contains(n, cmp.Compare[float64])
}

func (f *NumberIntervalFilter[T]) State() State {
	return State{
		Kind:     KindNumberInterval,
		ID:       f.id,
		Property: f.property,
		From:     clonePtr(f.bounds.from),
		To:       clonePtr(f.bounds.to),
	}
}

func (f *NumberIntervalFilter[T]) SetState(s State) {
	f.bounds = bounds[float64]{from: clonePtr(s.From), to: clonePtr(s.To)}
	f.emit(f.State())
}

func (f *NumberIntervalFilter[T]) Key() Key {
	return Key{Kind: KindNumberInterval, ID: f.id}
}

func (f *NumberIntervalFilter[T]) Equals(other Serializable[T]) bool {
	return equalKeys[T](f, other)
}

// DateIntervalFilter keeps items whose date property lies in [From, To].
type DateIntervalFilter[T any] struct {
	changes
	id       string
	property string
	accessor Accessor[T]
	bounds   bounds[time.Time]
}

var _ Serializable[struct{}] = (*DateIntervalFilter[struct{}])(nil)

// NewDateIntervalFilter creates an unbounded (inactive) filter.
func NewDateIntervalFilter[T any](id, property string, accessor Accessor[T]) *DateIntervalFilter[T] {
	return &DateIntervalFilter[T]{
		changes:  newChanges(),
		id:       ensureID(id),
		property: property,
		accessor: accessor,
	}
}

func (f *DateIntervalFilter[T]) ID() string {
	return f.id
}

func (f *DateIntervalFilter[T]) Bounds() (from, to *time.Time) {
	return clonePtr(f.bounds.from), clonePtr(f.bounds.to)
}

func (f *DateIntervalFilter[T]) SetBounds(from, to *time.Time) {
	f.bounds = bounds[time.Time]{from: clonePtr(from), to: clonePtr(to)}
	f.emit(f.State())
}

// CollapseToFrom sets To to From, so only values equal to From are accepted.
// For date-only values that is the single day From. Without a From bound it
// does nothing.
func (f *DateIntervalFilter[T]) CollapseToFrom() {
	if f.bounds.from == nil {
		return
	}
	f.SetBounds(f.bounds.from, f.bounds.from)
}

func (f *DateIntervalFilter[T]) Reset() {
	f.SetBounds(nil, nil)
}

func (f *DateIntervalFilter[T]) IsActive() bool {
	return f.bounds.set()
}

func (f *DateIntervalFilter[T]) Accepts(item T) bool {
	if !f.IsActive() {
		return true
	}
	v, ok := f.accessor(item, f.property)
	if !ok || v == nil {
		return false
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		return false
	}
	return f.bounds.contains(t, func(a, b time.Time) int { return a.Compare(b) })
}

func (f *DateIntervalFilter[T]) State() State {
	return State{
		Kind:     KindDateInterval,
		ID:       f.id,
		Property: f.property,
		FromDate: clonePtr(f.bounds.from),
		ToDate:   clonePtr(f.bounds.to),
	}
}

func (f *DateIntervalFilter[T]) SetState(s State) {
	f.bounds = bounds[time.Time]{from: clonePtr(s.FromDate), to: clonePtr(s.ToDate)}
	f.emit(f.State())
}

func (f *DateIntervalFilter[T]) Key() Key {
	return Key{Kind: KindDateInterval, ID: f.id}
}

func (f *DateIntervalFilter[T]) Equals(other Serializable[T]) bool {
	return equalKeys[T](f, other)
}
