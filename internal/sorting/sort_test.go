package sorting

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/gridstate/internal/debounce"
	"github.com/zjrosen/gridstate/internal/pubsub"
)

type row map[string]any

func rowProp(r row, property string) (any, bool) {
	v, ok := r[property]
	return v, ok
}

type fakePage struct{ resets int }

func (p *fakePage) Reset() { p.resets++ }

func TestPropertyComparator(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name     string
		property string
		a, b     row
		want     int
	}{
		{name: "numbers", property: "n", a: row{"n": 9}, b: row{"n": 10}, want: -1},
		{name: "mixed numbers", property: "n", a: row{"n": 2.5}, b: row{"n": 2}, want: 1},
		{name: "text ignores case", property: "s", a: row{"s": "alice"}, b: row{"s": "Bob"}, want: -1},
		{name: "text equal", property: "s", a: row{"s": "ALI"}, b: row{"s": "ali"}, want: 0},
		{name: "times", property: "t", a: row{"t": day(3)}, b: row{"t": day(2)}, want: 1},
		{name: "missing last", property: "s", a: row{}, b: row{"s": "z"}, want: 1},
		{name: "nil last", property: "s", a: row{"s": "z"}, b: row{"s": nil}, want: -1},
		{name: "both missing", property: "s", a: row{}, b: row{}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewPropertyComparator[row](tt.property, rowProp)
			require.Equal(t, tt.want, c.Compare(tt.a, tt.b))
		})
	}
}

func TestSort_ToggleFlipsDirection(t *testing.T) {
	page := &fakePage{}
	s := New[row](nil, page)
	byName := NewPropertyComparator[row]("name", rowProp)
	byAge := NewPropertyComparator[row]("age", rowProp)

	s.Toggle(byName)
	require.Same(t, byName, s.Comparator())
	require.False(t, s.Reverse())

	s.Toggle(byName)
	require.True(t, s.Reverse())

	s.Toggle(byAge)
	require.Same(t, byAge, s.Comparator())
	require.False(t, s.Reverse())
	require.Equal(t, 3, page.resets)
}

func TestSort_CompareHonoursDirection(t *testing.T) {
	s := New[row](nil, nil)
	rows := []row{{"n": 3}, {"n": 1}, {"n": 2}}

	require.Zero(t, s.Compare(rows[0], rows[1]), "unsorted")

	s.SetComparator(NewPropertyComparator[row]("n", rowProp))
	slices.SortStableFunc(rows, s.Compare)
	require.Equal(t, []row{{"n": 1}, {"n": 2}, {"n": 3}}, rows)

	s.SetReverse(true)
	slices.SortStableFunc(rows, s.Compare)
	require.Equal(t, []row{{"n": 3}, {"n": 2}, {"n": 1}}, rows)
}

func TestSort_ComparatorFunc(t *testing.T) {
	s := New[row](nil, nil)
	byLen := ComparatorFunc[row](func(a, b row) int { return len(a) - len(b) })

	s.Toggle(byLen)
	s.Toggle(byLen)
	require.False(t, s.Reverse(), "function comparators are never the installed one")
	require.Negative(t, s.Compare(row{}, row{"a": 1}))
}

func TestSort_MutationsNotifyOncePerScope(t *testing.T) {
	d := debounce.New()
	page := &fakePage{}
	s := New[row](d, page)

	changes := 0
	s.Changes().Observe(func(pubsub.Event[Comparator[row]]) { changes++ })
	settled := 0
	d.Changes().Observe(func(pubsub.Event[struct{}]) { settled++ })

	d.Scoped(func() {
		s.SetComparator(NewPropertyComparator[row]("n", rowProp))
		s.SetReverse(true)
	})

	require.Equal(t, 2, changes)
	require.Equal(t, 2, page.resets)
	require.Equal(t, 1, settled)
}
