package filter

import (
	"fmt"
	"slices"
)

// Constructor builds an empty filter for the identity carried by s.
// The factory applies the full state afterwards.
type Constructor[T any] func(s State, accessor Accessor[T]) Serializable[T]

// Factory turns States back into live filters.
type Factory[T any] struct {
	accessor Accessor[T]
	ctors    map[Kind]Constructor[T]
}

// NewFactory creates a factory knowing every built-in kind.
func NewFactory[T any](accessor Accessor[T]) *Factory[T] {
	f := &Factory[T]{
		accessor: accessor,
		ctors:    make(map[Kind]Constructor[T]),
	}
	f.Register(KindString, func(s State, a Accessor[T]) Serializable[T] {
		return NewStringFilter(s.Property, a)
	})
	f.Register(KindList, func(s State, a Accessor[T]) Serializable[T] {
		return NewListFilter(s.ID, s.Property, s.Values, a)
	})
	f.Register(KindNumberInterval, func(s State, a Accessor[T]) Serializable[T] {
		return NewNumberIntervalFilter(s.ID, s.Property, a)
	})
	f.Register(KindDateInterval, func(s State, a Accessor[T]) Serializable[T] {
		return NewDateIntervalFilter(s.ID, s.Property, a)
	})
	f.Register(KindColor, func(s State, a Accessor[T]) Serializable[T] {
		return NewColorFilter(s.ID, s.Property, s.AllColors, a)
	})
	return f
}

// Register adds or replaces the constructor for kind.
func (f *Factory[T]) Register(kind Kind, ctor Constructor[T]) {
	f.ctors[kind] = ctor
}

// Accessor returns the property accessor handed to every constructor.
func (f *Factory[T]) Accessor() Accessor[T] {
	return f.accessor
}

// Kinds lists the registered kinds in a stable order.
func (f *Factory[T]) Kinds() []Kind {
	kinds := make([]Kind, 0, len(f.ctors))
	for k := range f.ctors {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// New builds a live filter from s. Compact entries become string filters.
func (f *Factory[T]) New(s State) (Serializable[T], error) {
	kind := s.Kind
	if s.IsCompact() {
		kind = KindString
		s.Kind = KindString
	}
	ctor, ok := f.ctors[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	flt := ctor(s, f.accessor)
	flt.SetState(s)
	return flt, nil
}
