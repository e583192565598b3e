package render

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/gridstate/internal/dataset"
	"github.com/zjrosen/gridstate/internal/filter"
	"github.com/zjrosen/gridstate/internal/gridstate"
	"github.com/zjrosen/gridstate/internal/snapshot"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestCell(t *testing.T) {
	tests := []struct {
		name  string
		value any
		width int
		want  string
	}{
		{"nil", nil, 10, ""},
		{"integral float", 30.0, 10, "30"},
		{"fraction", 2.5, 10, "2.5"},
		{"bool", true, 10, "true"},
		{"time", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), 20, "2024-03-01"},
		{"list", []any{"a", 1.0}, 10, "a, 1"},
		{"map", map[string]any{"city": "Oslo"}, 30, `{"city":"Oslo"}`},
		{"newlines", "two\nlines", 20, "two lines"},
		{"truncated", "abcdefghij", 5, "abcd…"},
		{"unbounded", "abcdefghij", 0, "abcdefghij"},
		{"wide runes", "日本語テキスト", 7, "日本語…"},
		{"combining marks kept whole", "e\u0301e\u0301e\u0301", 2, "e\u0301…"},
		{"escape sequences dropped", "\x1b[31mred\x1b[0m", 10, "red"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Cell(tt.value, tt.width))
		})
	}
}

func TestTable_RendersHeadersAndRows(t *testing.T) {
	rows := []dataset.Row{
		{"name": "Alice", "address": map[string]any{"city": "Oslo"}},
		{"name": "Bob"},
	}
	cols := []Column{{Title: "Name", Property: "name"}, {Title: "City", Property: "address.city"}}

	out := Table(cols, rows, Summary{First: 0, Last: 1, Total: 2, Page: 1, Pages: 1}, 0)

	require.Contains(t, out, "Name")
	require.Contains(t, out, "City")
	require.Contains(t, out, "Alice")
	require.Contains(t, out, "Oslo")
	require.Contains(t, out, "Bob")
	require.True(t, strings.HasSuffix(out, "1-2 of 2"))
}

func TestTable_Empty(t *testing.T) {
	out := Table([]Column{{Title: "Name", Property: "name"}}, nil, Summary{}, 0)
	require.Contains(t, out, "No matching rows.")
	require.Contains(t, out, "0 rows")
}

func TestTable_WrapsSummary(t *testing.T) {
	cols := []Column{{Title: "Name", Property: "name"}}
	rows := []dataset.Row{{"name": "Alice"}}
	s := Summary{Total: 1, Filters: []filter.State{
		{Property: "name", Value: "something long"},
		{Property: "city", Value: "another long value"},
	}}

	unwrapped := Table(cols, rows, s, 0)
	wrapped := Table(cols, rows, s, 20)
	require.Greater(t, strings.Count(wrapped, "\n"), strings.Count(unwrapped, "\n"))
}

func TestSummary_String(t *testing.T) {
	from, to := 18.0, 30.0
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s := Summary{
		First: 10, Last: 19, Total: 42, Page: 2, Pages: 5,
		Sort: &snapshot.Sort{By: "age", Reverse: true},
		Filters: []filter.State{
			{Property: "name", Value: "al"},
			{Kind: filter.KindString, Property: "status", Value: "active", Exact: true},
			{Kind: filter.KindList, ID: "s", Property: "status", SelectedValue: "pending"},
			{Kind: filter.KindNumberInterval, ID: "a", Property: "age", From: &from, To: &to},
			{Kind: filter.KindNumberInterval, ID: "b", Property: "age", From: &from},
			{Kind: filter.KindDateInterval, ID: "j", Property: "joined", ToDate: &day},
			{Kind: filter.KindColor, ID: "c", Property: "color", SelectedColors: map[string]bool{"red": true, "blue": true, "green": false}},
		},
		View: "adults",
	}

	require.Equal(t,
		`view adults · 11-20 of 42 · page 2/5 · sort age ↓ · filters name~"al", status="active", status=pending, age 18..30, age ≥18, joined ≤2024-06-01, color in {blue,red}`,
		s.String())
}

func TestSummary_LastPageClampsToTotal(t *testing.T) {
	s := Summary{First: 20, Last: 29, Total: 23, Page: 3, Pages: 3}
	require.Equal(t, "21-23 of 23 · page 3/3", s.String())
}

func TestDescribeState(t *testing.T) {
	require.Equal(t, "all rows", DescribeState(snapshot.Snapshot{}))

	s := snapshot.Snapshot{
		Page:    &gridstate.PageState{From: 0, To: 9, Size: 10},
		Sort:    &snapshot.Sort{By: "name"},
		Filters: []filter.State{{Kind: filter.KindList, ID: "s", Property: "status", SelectedValue: "active"}},
	}
	require.Equal(t, "10 per page · sort name ↑ · filters status=active", DescribeState(s))
}

func TestSummaryOf(t *testing.T) {
	grid := gridstate.New[dataset.Row](dataset.Get)
	defer grid.Close()

	grid.Page().SetTotalItems(25)
	grid.SetState(context.Background(), gridstate.State[dataset.Row]{
		Page:    &gridstate.PageState{From: 10, Size: 10},
		Sort:    &gridstate.SortState[dataset.Row]{By: gridstate.ByProperty[dataset.Row]("name")},
		Filters: []gridstate.FilterEntry[dataset.Row]{gridstate.Compact[dataset.Row]("name", "a")},
	})

	s := SummaryOf(grid)
	require.Equal(t, 10, s.First)
	require.Equal(t, 2, s.Page)
	require.Equal(t, 3, s.Pages)
	require.Equal(t, "name", s.Sort.By)
	require.Len(t, s.Filters, 1)
}
