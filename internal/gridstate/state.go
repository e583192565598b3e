package gridstate

import (
	"github.com/zjrosen/gridstate/internal/filter"
	"github.com/zjrosen/gridstate/internal/sorting"
)

// State is the canonical snapshot of a grid. Nil fields mean the
// corresponding provider has nothing meaningful to report.
type State[T any] struct {
	Page    *PageState
	Sort    *SortState[T]
	Filters []FilterEntry[T]
}

// PageState is the visible window: zero-based item indexes and the size.
type PageState struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to" yaml:"to"`
	Size int `json:"size" yaml:"size"`
}

// SortState names the sort either by property or by comparator object.
type SortState[T any] struct {
	By      SortBy[T]
	Reverse bool
}

// SortBy holds exactly one of Property or Comparator.
type SortBy[T any] struct {
	Property   string
	Comparator sorting.Comparator[T]
}

// ByProperty sorts on a named property.
func ByProperty[T any](property string) SortBy[T] {
	return SortBy[T]{Property: property}
}

// ByComparator sorts with a custom comparator.
func ByComparator[T any](c sorting.Comparator[T]) SortBy[T] {
	return SortBy[T]{Comparator: c}
}

// FilterEntry is one filter in a snapshot: the compact {Property, Value}
// shape of a built-in string filter, or a live filter.
type FilterEntry[T any] struct {
	Property string
	Value    string
	Filter   filter.Serializable[T]
}

// Compact creates the {property, value} entry of a string filter.
func Compact[T any](property, value string) FilterEntry[T] {
	return FilterEntry[T]{Property: property, Value: value}
}

// Live wraps a filter object.
func Live[T any](f filter.Serializable[T]) FilterEntry[T] {
	return FilterEntry[T]{Filter: f}
}

// IsCompact reports whether e is the {property, value} shape.
func (e FilterEntry[T]) IsCompact() bool {
	return e.Filter == nil
}

// Key returns the identity of the filter the entry describes.
func (e FilterEntry[T]) Key() filter.Key {
	if e.IsCompact() {
		return filter.Key{Kind: filter.KindString, ID: e.Property}
	}
	return e.Filter.Key()
}

// FilterState returns the entry as a serializable filter state.
func (e FilterEntry[T]) FilterState() filter.State {
	if e.IsCompact() {
		return filter.State{Property: e.Property, Value: e.Value}
	}
	return e.Filter.State()
}
