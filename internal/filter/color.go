package filter

import (
	"maps"
	"slices"
)

// ColorFilter is a multi-select filter over a fixed palette.
type ColorFilter[T any] struct {
	changes
	id        string
	property  string
	accessor  Accessor[T]
	allColors []string
	selected  map[string]bool
	nbColors  int
}

var _ Serializable[struct{}] = (*ColorFilter[struct{}])(nil)

// NewColorFilter creates a filter over palette with no colour selected.
func NewColorFilter[T any](id, property string, palette []string, accessor Accessor[T]) *ColorFilter[T] {
	return &ColorFilter[T]{
		changes:   newChanges(),
		id:        ensureID(id),
		property:  property,
		accessor:  accessor,
		allColors: slices.Clone(palette),
		selected:  make(map[string]bool),
	}
}

func (f *ColorFilter[T]) ID() string {
	return f.id
}

// AllColors returns the palette.
func (f *ColorFilter[T]) AllColors() []string {
	return slices.Clone(f.allColors)
}

// NbColors returns how many colours are selected.
func (f *ColorFilter[T]) NbColors() int {
	return f.nbColors
}

// ToggleColor flips one colour in or out of the selection.
func (f *ColorFilter[T]) ToggleColor(color string) {
	f.selected[color] = !f.selected[color]
	if f.selected[color] {
		f.nbColors++
	} else {
		f.nbColors--
	}
	f.emit(f.State())
}

// ListSelected returns the selected colours, palette order first.
func (f *ColorFilter[T]) ListSelected() []string {
	var list []string
	for _, c := range f.allColors {
		if f.selected[c] {
			list = append(list, c)
		}
	}
	extra := make([]string, 0)
	for c, on := range f.selected {
		if on && !slices.Contains(f.allColors, c) {
			extra = append(extra, c)
		}
	}
	slices.Sort(extra)
	return append(list, extra...)
}

func (f *ColorFilter[T]) IsActive() bool {
	return f.nbColors > 0
}

// Accepts keeps everything while no colour is selected.
func (f *ColorFilter[T]) Accepts(item T) bool {
	if f.nbColors == 0 {
		return true
	}
	v, ok := f.accessor(item, f.property)
	if !ok || v == nil {
		return false
	}
	return f.selected[stringOf(v)]
}

func (f *ColorFilter[T]) State() State {
	return State{
		Kind:           KindColor,
		ID:             f.id,
		Property:       f.property,
		AllColors:      slices.Clone(f.allColors),
		SelectedColors: maps.Clone(f.selected),
	}
}

// SetState restores the selection and recounts it.
func (f *ColorFilter[T]) SetState(s State) {
	f.selected = make(map[string]bool, len(s.SelectedColors))
	f.nbColors = 0
	for c, on := range s.SelectedColors {
		f.selected[c] = on
		if on {
			f.nbColors++
		}
	}
	if len(s.AllColors) > 0 {
		f.allColors = slices.Clone(s.AllColors)
	}
	f.emit(f.State())
}

func (f *ColorFilter[T]) Key() Key {
	return Key{Kind: KindColor, ID: f.id}
}

func (f *ColorFilter[T]) Equals(other Serializable[T]) bool {
	return equalKeys[T](f, other)
}
