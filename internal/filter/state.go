package filter

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// Kind identifies the shape of a State and the filter type that owns it.
type Kind string

const (
	// KindCompact marks the compact {property, value} shape produced for
	// built-in string filters in outward snapshots. It is not a filter type.
	KindCompact        Kind = ""
	KindString         Kind = "string"
	KindList           Kind = "list"
	KindNumberInterval Kind = "number-interval"
	KindDateInterval   Kind = "date-interval"
	KindColor          Kind = "color"
)

// BuiltinKinds lists the filter kinds shipped with gridstate.
func BuiltinKinds() []Kind {
	return []Kind{KindString, KindList, KindNumberInterval, KindDateInterval, KindColor}
}

// ParseKind validates a kind name read from configuration.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if slices.Contains(BuiltinKinds(), k) {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// State is the serializable, kind-tagged description of one filter.
// Only the fields belonging to Kind are meaningful:
//
//	string          Property, Value, Exact
//	list            ID, Property, Values, SelectedValue
//	number-interval ID, Property, From, To
//	date-interval   ID, Property, FromDate, ToDate
//	color           ID, Property, AllColors, SelectedColors
//
// A State with an empty Kind and a Property is the compact string shape.
type State struct {
	Kind     Kind   `json:"kind,omitempty" yaml:"kind,omitempty"`
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	Property string `json:"property,omitempty" yaml:"property,omitempty"`

	Value string `json:"value,omitempty" yaml:"value,omitempty"`
	Exact bool   `json:"exact,omitempty" yaml:"exact,omitempty"`

	Values        []string `json:"values,omitempty" yaml:"values,omitempty"`
	SelectedValue string   `json:"selectedValue,omitempty" yaml:"selectedValue,omitempty"`

	From     *float64   `json:"from,omitempty" yaml:"from,omitempty"`
	To       *float64   `json:"to,omitempty" yaml:"to,omitempty"`
	FromDate *time.Time `json:"fromDate,omitempty" yaml:"fromDate,omitempty"`
	ToDate   *time.Time `json:"toDate,omitempty" yaml:"toDate,omitempty"`

	AllColors      []string        `json:"allColors,omitempty" yaml:"allColors,omitempty"`
	SelectedColors map[string]bool `json:"selectedColors,omitempty" yaml:"selectedColors,omitempty"`
}

// IsCompact reports whether s is the compact {property, value} shape.
func (s State) IsCompact() bool {
	return s.Kind == KindCompact && s.Property != ""
}

// Key returns the identity of the filter described by s. String filters
// (and compact entries) are identified by property, everything else by ID.
func (s State) Key() Key {
	if s.Kind == KindString || s.Kind == KindCompact {
		return Key{Kind: KindString, ID: s.Property}
	}
	return Key{Kind: s.Kind, ID: s.ID}
}

// Clone returns a deep copy so callers cannot alias a filter's internals.
func (s State) Clone() State {
	c := s
	c.Values = slices.Clone(s.Values)
	c.AllColors = slices.Clone(s.AllColors)
	c.SelectedColors = maps.Clone(s.SelectedColors)
	if s.From != nil {
		v := *s.From
		c.From = &v
	}
	if s.To != nil {
		v := *s.To
		c.To = &v
	}
	if s.FromDate != nil {
		v := *s.FromDate
		c.FromDate = &v
	}
	if s.ToDate != nil {
		v := *s.ToDate
		c.ToDate = &v
	}
	return c
}

// Key is the opaque identity under which a filter is registered.
type Key struct {
	Kind Kind
	ID   string
}

func (k Key) String() string {
	return string(k.Kind) + "/" + k.ID
}
