package filter

import "strings"

// StringFilter is the built-in case-insensitive text filter on one property.
type StringFilter[T any] struct {
	changes
	property string
	accessor Accessor[T]
	exact    bool
	rawValue string
	lower    string
}

var _ Serializable[struct{}] = (*StringFilter[struct{}])(nil)

// StringOption configures a StringFilter.
type StringOption func(*stringOptions)

type stringOptions struct {
	exact bool
}

// Exact makes the filter match whole values instead of substrings.
func Exact() StringOption {
	return func(o *stringOptions) { o.exact = true }
}

// NewStringFilter creates an empty (inactive) filter on property.
func NewStringFilter[T any](property string, accessor Accessor[T], opts ...StringOption) *StringFilter[T] {
	var o stringOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &StringFilter[T]{
		changes:  newChanges(),
		property: property,
		accessor: accessor,
		exact:    o.exact,
	}
}

// Property returns the filtered property name.
func (f *StringFilter[T]) Property() string {
	return f.property
}

// Value returns the raw input value.
func (f *StringFilter[T]) Value() string {
	return f.rawValue
}

// SetValue updates the search text. Setting the current value again is a no-op.
func (f *StringFilter[T]) SetValue(value string) {
	if value == f.rawValue {
		return
	}
	f.rawValue = value
	f.lower = normalize(value)
	f.emit(f.State())
}

// IsActive reports whether the trimmed value is non-empty.
func (f *StringFilter[T]) IsActive() bool {
	return f.lower != ""
}

// Accepts tests the item's property against the lowercase search text.
// Items without the property are rejected while the filter is active.
func (f *StringFilter[T]) Accepts(item T) bool {
	if !f.IsActive() {
		return true
	}
	v, ok := f.accessor(item, f.property)
	if !ok || v == nil {
		return false
	}
	s := strings.ToLower(stringOf(v))
	if f.exact {
		return s == f.lower
	}
	return strings.Contains(s, f.lower)
}

func (f *StringFilter[T]) State() State {
	return State{
		Kind:     KindString,
		Property: f.property,
		Value:    f.rawValue,
		Exact:    f.exact,
	}
}

// SetState restores value and matching mode. The property is the filter's
// identity and is never changed by a restore.
func (f *StringFilter[T]) SetState(s State) {
	f.rawValue = s.Value
	f.lower = normalize(s.Value)
	f.exact = s.Exact
	f.emit(f.State())
}

func (f *StringFilter[T]) Key() Key {
	return Key{Kind: KindString, ID: f.property}
}

func (f *StringFilter[T]) Equals(other Serializable[T]) bool {
	return equalKeys[T](f, other)
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
