// Package snapshot is the fully serializable form of a grid state.
//
// gridstate.State carries live filter and comparator objects; a Snapshot
// replaces them with filter.State values and the sorted property name, so it
// can be written to JSON, YAML, a URL query or the views database, and
// restored later through a filter.Factory.
package snapshot

import (
	"fmt"

	"github.com/zjrosen/gridstate/internal/filter"
	"github.com/zjrosen/gridstate/internal/gridstate"
	"github.com/zjrosen/gridstate/internal/log"
)

// Snapshot is a serializable grid state.
type Snapshot struct {
	Page    *gridstate.PageState `json:"page,omitempty" yaml:"page,omitempty"`
	Sort    *Sort                `json:"sort,omitempty" yaml:"sort,omitempty"`
	Filters []filter.State       `json:"filters,omitempty" yaml:"filters,omitempty"`
}

// Sort is a sort by property name.
type Sort struct {
	By      string `json:"by" yaml:"by"`
	Reverse bool   `json:"reverse,omitempty" yaml:"reverse,omitempty"`
}

// IsZero reports whether s constrains nothing.
func (s Snapshot) IsZero() bool {
	return s.Page == nil && s.Sort == nil && len(s.Filters) == 0
}

// FromState captures st. A sort by a custom comparator has no serializable
// form and is left out.
func FromState[T any](st gridstate.State[T]) Snapshot {
	var s Snapshot
	if st.Page != nil {
		page := *st.Page
		s.Page = &page
	}
	if st.Sort != nil {
		if st.Sort.By.Property != "" {
			s.Sort = &Sort{By: st.Sort.By.Property, Reverse: st.Sort.Reverse}
		} else {
			log.Warn(log.CatState, "Custom comparator dropped from snapshot")
		}
	}
	for _, e := range st.Filters {
		s.Filters = append(s.Filters, e.FilterState().Clone())
	}
	return s
}

// FromProvider captures p's current state. Unlike FromState it writes every
// active filter with its full state, so a string filter keeps its matching
// mode.
func FromProvider[T any](p *gridstate.Provider[T]) Snapshot {
	st := p.State()
	st.Filters = nil
	s := FromState(st)
	for _, f := range p.Filters().ActiveFilters() {
		s.Filters = append(s.Filters, f.State().Clone())
	}
	return s
}

// Restore turns s back into a state that can be written to a provider.
// Compact entries stay compact; every other entry is rebuilt by factory.
func Restore[T any](s Snapshot, factory *filter.Factory[T]) (gridstate.State[T], error) {
	var st gridstate.State[T]
	if s.Page != nil {
		page := *s.Page
		st.Page = &page
	}
	if s.Sort != nil {
		st.Sort = &gridstate.SortState[T]{
			By:      gridstate.ByProperty[T](s.Sort.By),
			Reverse: s.Sort.Reverse,
		}
	}
	if s.Filters != nil {
		st.Filters = make([]gridstate.FilterEntry[T], 0, len(s.Filters))
	}
	for i, fs := range s.Filters {
		if fs.IsCompact() {
			st.Filters = append(st.Filters, gridstate.Compact[T](fs.Property, fs.Value))
			continue
		}
		f, err := factory.New(fs)
		if err != nil {
			return gridstate.State[T]{}, fmt.Errorf("restore filter %d: %w", i, err)
		}
		st.Filters = append(st.Filters, gridstate.Live(f))
	}
	return st, nil
}
