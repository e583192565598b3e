package render

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/zjrosen/gridstate/internal/filter"
	"github.com/zjrosen/gridstate/internal/gridstate"
	"github.com/zjrosen/gridstate/internal/snapshot"
)

// Summary describes the window and constraints of a rendered page.
type Summary struct {
	First, Last int // zero-based indices of the rows shown
	Total       int
	Page, Pages int
	Sort        *snapshot.Sort
	Filters     []filter.State
	View        string // name of the applied saved view, if any
}

// SummaryOf reads the summary off a grid whose total is already known.
func SummaryOf[T any](grid *gridstate.Provider[T]) Summary {
	page := grid.Page()
	s := snapshot.FromProvider(grid)
	return Summary{
		First:   page.FirstItem(),
		Last:    page.LastItem(),
		Total:   page.TotalItems(),
		Page:    page.Current(),
		Pages:   page.Last(),
		Sort:    s.Sort,
		Filters: s.Filters,
	}
}

func (s Summary) String() string {
	var parts []string
	if s.View != "" {
		parts = append(parts, "view "+s.View)
	}
	if s.Total == 0 {
		parts = append(parts, "0 rows")
	} else {
		last := min(s.Last, s.Total-1)
		parts = append(parts, fmt.Sprintf("%d-%d of %d", s.First+1, last+1, s.Total))
	}
	if s.Pages > 1 {
		parts = append(parts, fmt.Sprintf("page %d/%d", s.Page, s.Pages))
	}
	parts = append(parts, constraints(s.Sort, s.Filters)...)
	return strings.Join(parts, " · ")
}

// DescribeState summarizes a saved state without a dataset: its page size,
// sort and filters.
func DescribeState(s snapshot.Snapshot) string {
	var parts []string
	if s.Page != nil && s.Page.Size > 0 {
		parts = append(parts, fmt.Sprintf("%d per page", s.Page.Size))
	}
	parts = append(parts, constraints(s.Sort, s.Filters)...)
	if len(parts) == 0 {
		return "all rows"
	}
	return strings.Join(parts, " · ")
}

func constraints(sort *snapshot.Sort, filters []filter.State) []string {
	var parts []string
	if sort != nil {
		dir := "↑"
		if sort.Reverse {
			dir = "↓"
		}
		parts = append(parts, "sort "+sort.By+" "+dir)
	}
	if len(filters) > 0 {
		descs := make([]string, len(filters))
		for i, f := range filters {
			descs[i] = DescribeFilter(f)
		}
		parts = append(parts, "filters "+strings.Join(descs, ", "))
	}
	return parts
}

// DescribeFilter renders a filter state as a short expression.
func DescribeFilter(f filter.State) string {
	switch f.Kind {
	case filter.KindCompact, filter.KindString:
		if f.Exact {
			return f.Property + "=" + strconv.Quote(f.Value)
		}
		return f.Property + "~" + strconv.Quote(f.Value)
	case filter.KindList:
		return f.Property + "=" + f.SelectedValue
	case filter.KindNumberInterval:
		return bounds(f.Property, num(f.From), num(f.To))
	case filter.KindDateInterval:
		return bounds(f.Property, date(f.FromDate), date(f.ToDate))
	case filter.KindColor:
		var on []string
		for c, selected := range f.SelectedColors {
			if selected {
				on = append(on, c)
			}
		}
		slices.Sort(on)
		return f.Property + " in {" + strings.Join(on, ",") + "}"
	}
	return string(f.Kind) + ":" + f.ID
}

func bounds(property, from, to string) string {
	switch {
	case from != "" && to != "":
		return property + " " + from + ".." + to
	case from != "":
		return property + " ≥" + from
	case to != "":
		return property + " ≤" + to
	}
	return property
}

func num(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func date(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}
