package app

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/zjrosen/gridstate/internal/filter"
)

// ErrInvalidInput is wrapped by every ParseFilterInput failure.
var ErrInvalidInput = errors.New("invalid filter input")

// ParseFilterInput reads a typed filter expression into a state derived from
// base. Empty input yields base, which is inactive.
//
//	string           al        substring, case-insensitive
//	                 =Alice    exact
//	list             active    one of the column values
//	number-interval  18..30    also 18.. and ..30; a single number pins both ends
//	date-interval    2024-01-01..2024-06-30
//	color            red,blue  any of the column colors
func ParseFilterInput(base filter.State, input string) (filter.State, error) {
	s := base.Clone()
	input = strings.TrimSpace(input)
	if input == "" {
		return s, nil
	}

	switch base.Kind {
	case filter.KindString, filter.KindCompact:
		s.Kind = filter.KindString
		if rest, ok := strings.CutPrefix(input, "="); ok {
			s.Value, s.Exact = rest, true
		} else {
			s.Value, s.Exact = input, false
		}

	case filter.KindList:
		if len(base.Values) > 0 && !slices.Contains(base.Values, input) {
			return s, fmt.Errorf("%w: %q is not one of %s", ErrInvalidInput, input, strings.Join(base.Values, ", "))
		}
		s.SelectedValue = input

	case filter.KindNumberInterval:
		from, to, err := parseRange(input, func(v string) (float64, error) {
			return strconv.ParseFloat(v, 64)
		})
		if err != nil {
			return s, err
		}
		s.From, s.To = from, to

	case filter.KindDateInterval:
		from, to, err := parseRange(input, func(v string) (time.Time, error) {
			return cast.ToTimeE(v)
		})
		if err != nil {
			return s, err
		}
		s.FromDate, s.ToDate = from, to

	case filter.KindColor:
		s.SelectedColors = make(map[string]bool, len(base.AllColors))
		for _, c := range base.AllColors {
			s.SelectedColors[c] = false
		}
		for _, c := range strings.Split(input, ",") {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			if !slices.Contains(base.AllColors, c) {
				return s, fmt.Errorf("%w: unknown color %q", ErrInvalidInput, c)
			}
			s.SelectedColors[c] = true
		}

	default:
		return s, fmt.Errorf("%w: kind %q has no text form", ErrInvalidInput, base.Kind)
	}
	return s, nil
}

// parseRange reads "a..b", "a..", "..b" or "a" (meaning a..a).
func parseRange[V any](input string, parse func(string) (V, error)) (from, to *V, err error) {
	lo, hi, isRange := strings.Cut(input, "..")
	if !isRange {
		hi = lo
	}
	bound := func(v string) (*V, error) {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, nil
		}
		parsed, err := parse(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidInput, v, err)
		}
		return &parsed, nil
	}
	if from, err = bound(lo); err != nil {
		return nil, nil, err
	}
	if to, err = bound(hi); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

// FormatFilterInput is the inverse of ParseFilterInput, used to prefill
// editors.
func FormatFilterInput(s filter.State) string {
	switch s.Kind {
	case filter.KindString, filter.KindCompact:
		if s.Exact && s.Value != "" {
			return "=" + s.Value
		}
		return s.Value
	case filter.KindList:
		return s.SelectedValue
	case filter.KindNumberInterval:
		return formatRange(s.From, s.To, func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) })
	case filter.KindDateInterval:
		return formatRange(s.FromDate, s.ToDate, func(v time.Time) string { return v.Format(time.DateOnly) })
	case filter.KindColor:
		var on []string
		for _, c := range s.AllColors {
			if s.SelectedColors[c] {
				on = append(on, c)
			}
		}
		return strings.Join(on, ",")
	}
	return ""
}

func formatRange[V any](from, to *V, format func(V) string) string {
	if from == nil && to == nil {
		return ""
	}
	var lo, hi string
	if from != nil {
		lo = format(*from)
	}
	if to != nil {
		hi = format(*to)
	}
	return lo + ".." + hi
}
