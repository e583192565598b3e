package sorting

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/zjrosen/gridstate/internal/filter"
)

// Comparator orders two items: negative when a sorts first, zero when equal.
type Comparator[T any] interface {
	Compare(a, b T) int
}

// ComparatorFunc adapts a function to Comparator.
type ComparatorFunc[T any] func(a, b T) int

func (f ComparatorFunc[T]) Compare(a, b T) int {
	return f(a, b)
}

// PropertyComparator orders items by one named property. Numbers compare
// numerically, times chronologically, anything else as lowercase text.
// Items missing the property sort after the others.
type PropertyComparator[T any] struct {
	property string
	accessor filter.Accessor[T]
}

// NewPropertyComparator creates a comparator on property.
func NewPropertyComparator[T any](property string, accessor filter.Accessor[T]) *PropertyComparator[T] {
	return &PropertyComparator[T]{property: property, accessor: accessor}
}

// Property returns the compared property name.
func (c *PropertyComparator[T]) Property() string {
	return c.property
}

func (c *PropertyComparator[T]) Compare(a, b T) int {
	av, aok := c.accessor(a, c.property)
	bv, bok := c.accessor(b, c.property)
	aok = aok && av != nil
	bok = bok && bv != nil
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return 1
	case !bok:
		return -1
	}
	return compareValues(av, bv)
}

func compareValues(a, b any) int {
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	if isNumber(a) && isNumber(b) {
		return cmp.Compare(cast.ToFloat64(a), cast.ToFloat64(b))
	}
	return cmp.Compare(strings.ToLower(text(a)), strings.ToLower(text(b)))
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

func text(v any) string {
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}
