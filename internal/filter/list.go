package filter

import "slices"

// ListFilter selects items whose property equals one value from a fixed list.
type ListFilter[T any] struct {
	changes
	id       string
	property string
	accessor Accessor[T]
	values   []string
	selected string
}

var _ Serializable[struct{}] = (*ListFilter[struct{}])(nil)

// NewListFilter creates a filter offering values, with nothing selected.
// An empty id is replaced by a generated one.
func NewListFilter[T any](id, property string, values []string, accessor Accessor[T]) *ListFilter[T] {
	return &ListFilter[T]{
		changes:  newChanges(),
		id:       ensureID(id),
		property: property,
		accessor: accessor,
		values:   slices.Clone(values),
	}
}

func (f *ListFilter[T]) ID() string {
	return f.id
}

// Values returns the selectable values.
func (f *ListFilter[T]) Values() []string {
	return slices.Clone(f.values)
}

// Selected returns the selected value, or "" when none.
func (f *ListFilter[T]) Selected() string {
	return f.selected
}

// Select changes the selection; "" clears it.
func (f *ListFilter[T]) Select(value string) {
	if value == f.selected {
		return
	}
	f.selected = value
	f.emit(f.State())
}

func (f *ListFilter[T]) IsActive() bool {
	return f.selected != ""
}

func (f *ListFilter[T]) Accepts(item T) bool {
	if !f.IsActive() {
		return true
	}
	v, ok := f.accessor(item, f.property)
	if !ok || v == nil {
		return false
	}
	return stringOf(v) == f.selected
}

func (f *ListFilter[T]) State() State {
	return State{
		Kind:          KindList,
		ID:            f.id,
		Property:      f.property,
		Values:        slices.Clone(f.values),
		SelectedValue: f.selected,
	}
}

// SetState restores the selection, and the value list when one is supplied.
func (f *ListFilter[T]) SetState(s State) {
	f.selected = s.SelectedValue
	if len(s.Values) > 0 {
		f.values = slices.Clone(s.Values)
	}
	f.emit(f.State())
}

func (f *ListFilter[T]) Key() Key {
	return Key{Kind: KindList, ID: f.id}
}

func (f *ListFilter[T]) Equals(other Serializable[T]) bool {
	return equalKeys[T](f, other)
}
