// Package app wires a dataset, its configured columns and the grid state
// providers into one Grid shared by the CLI commands and the interactive
// view.
package app

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/gridstate/internal/cachemanager"
	"github.com/zjrosen/gridstate/internal/config"
	"github.com/zjrosen/gridstate/internal/dataset"
	"github.com/zjrosen/gridstate/internal/filter"
	"github.com/zjrosen/gridstate/internal/gridstate"
	"github.com/zjrosen/gridstate/internal/items"
	"github.com/zjrosen/gridstate/internal/log"
	"github.com/zjrosen/gridstate/internal/registry"
	"github.com/zjrosen/gridstate/internal/render"
	"github.com/zjrosen/gridstate/internal/snapshot"
	"github.com/zjrosen/gridstate/internal/sorting"
)

// Column is a configured column and the registrar owning its filter slot.
type Column struct {
	Config config.ColumnConfig

	// base is the inactive filter state the column starts from; ok is
	// false for columns without a filter.
	base   filter.State
	ok     bool
	filter *registry.Registrar[dataset.Row]
}

// Filterable reports whether the column has a filter.
func (c *Column) Filterable() bool {
	return c.ok
}

// Kind is the kind of the column's filter.
func (c *Column) Kind() filter.Kind {
	return c.base.Kind
}

// Grid is the state of one dataset on screen.
type Grid struct {
	provider *gridstate.Provider[dataset.Row]
	items    *items.Items[dataset.Row]
	factory  *filter.Factory[dataset.Row]
	columns  []*Column
	view     string
}

type options struct {
	tracer trace.Tracer
}

type Option func(*options)

// WithTracer records state writes as spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// New builds a grid over rows. Columns come from cfg, or one per dataset
// property when none are configured.
func New(cfg config.Config, rows []dataset.Row, opts ...Option) (*Grid, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cols := cfg.Columns
	if len(cols) == 0 {
		cols = config.ColumnsFor(dataset.Properties(rows))
	}
	if err := config.ValidateColumns(cols); err != nil {
		return nil, err
	}

	var gridOpts []gridstate.Option
	if o.tracer != nil {
		gridOpts = append(gridOpts, gridstate.WithTracer(o.tracer))
	}
	provider := gridstate.New[dataset.Row](dataset.Get, gridOpts...)

	g := &Grid{
		provider: provider,
		factory:  filter.NewFactory[dataset.Row](dataset.Get),
	}

	provider.Debouncer().Scoped(func() {
		for _, cc := range cols {
			col := &Column{Config: cc, filter: registry.NewRegistrar(provider.Filters())}
			col.base, col.ok = cc.FilterState()
			g.columns = append(g.columns, col)
		}
		for _, col := range g.columns {
			if _, err := g.columnFilter(col); err != nil {
				log.ErrorErr(log.CatConfig, "Column filter unavailable", err, "column", col.Config.Title())
			}
		}

		provider.Page().SetSize(cfg.PageSize)
		if cfg.DefaultSort.By != "" {
			provider.Sort().SetComparator(sorting.NewPropertyComparator(cfg.DefaultSort.By, dataset.Get))
			provider.Sort().SetReverse(cfg.DefaultSort.Reverse)
		}
	})

	ttl := cfg.Cache.TTL
	if ttl <= 0 {
		ttl = cachemanager.DefaultExpiration
	}
	cleanup := cfg.Cache.CleanupInterval
	if cleanup <= 0 {
		cleanup = cachemanager.DefaultCleanupInterval
	}
	cache := cachemanager.NewInMemoryCacheManager[string, []int]("row-order", ttl, cleanup)
	g.items = items.New(provider, rows, cache, ttl)

	log.Debug(log.CatState, "Grid ready", "rows", len(rows), "columns", len(g.columns))
	return g, nil
}

func (g *Grid) Provider() *gridstate.Provider[dataset.Row] { return g.provider }
func (g *Grid) Items() *items.Items[dataset.Row]           { return g.items }
func (g *Grid) Factory() *filter.Factory[dataset.Row]      { return g.factory }
func (g *Grid) Columns() []*Column                         { return g.columns }

// View is the name of the last saved view applied, if any.
func (g *Grid) View() string { return g.view }

// columnFilter returns the column's registered filter, registering a fresh
// one if the slot is empty (never filled, or removed by a state write).
func (g *Grid) columnFilter(col *Column) (filter.Serializable[dataset.Row], error) {
	if !col.ok {
		return nil, nil
	}
	if f := col.filter.Filter(); f != nil {
		return f, nil
	}
	f, err := g.factory.New(col.base)
	if err != nil {
		return nil, err
	}
	col.filter.SetFilter(f)
	return col.filter.Filter(), nil
}

// Column finds a column by title or property.
func (g *Grid) Column(name string) (*Column, bool) {
	for _, col := range g.columns {
		if col.Config.Title() == name || col.Config.Property == name {
			return col, true
		}
	}
	return nil, false
}

// SetColumnFilter parses input against the column's filter kind and applies
// it. Empty input clears the filter.
func (g *Grid) SetColumnFilter(col *Column, input string) error {
	if !col.ok {
		return fmt.Errorf("column %s has no filter", col.Config.Title())
	}
	s, err := ParseFilterInput(col.base, input)
	if err != nil {
		return fmt.Errorf("column %s: %w", col.Config.Title(), err)
	}
	f, err := g.columnFilter(col)
	if err != nil {
		return err
	}
	g.view = ""
	f.SetState(s)
	return nil
}

// ColumnFilterState returns the column's current filter state.
func (g *Grid) ColumnFilterState(col *Column) (filter.State, bool) {
	f := col.filter.Filter()
	if f == nil {
		return col.base, col.ok
	}
	return f.State(), true
}

// ToggleSort sorts by the column, reversing if it is already the sort.
func (g *Grid) ToggleSort(col *Column) {
	sort := g.provider.Sort()
	if pc, ok := sort.Comparator().(*sorting.PropertyComparator[dataset.Row]); ok && pc.Property() == col.Config.Property {
		sort.Toggle(pc)
		return
	}
	sort.Toggle(sorting.NewPropertyComparator(col.Config.Property, dataset.Get))
}

// SortBy sorts by the column in the given direction.
func (g *Grid) SortBy(col *Column, reverse bool) {
	g.provider.Debouncer().Scoped(func() {
		g.provider.Sort().SetComparator(sorting.NewPropertyComparator(col.Config.Property, dataset.Get))
		g.provider.Sort().SetReverse(reverse)
	})
	g.view = ""
}

// Snapshot captures the current state.
func (g *Grid) Snapshot() snapshot.Snapshot {
	return snapshot.FromProvider(g.provider)
}

// Apply replaces the grid state with s as one change. Filters and sort
// missing from s are cleared; a missing page keeps the current size.
func (g *Grid) Apply(ctx context.Context, s snapshot.Snapshot) error {
	st, err := snapshot.Restore(s, g.factory)
	if err != nil {
		return err
	}
	if st.Filters == nil {
		st.Filters = []gridstate.FilterEntry[dataset.Row]{}
	}
	g.provider.Debouncer().Scoped(func() {
		if st.Sort == nil {
			g.provider.Sort().SetComparator(nil)
			g.provider.Sort().SetReverse(false)
		}
		g.provider.SetState(ctx, st)
	})
	g.view = ""
	return nil
}

// ApplyView applies a saved view and remembers its name.
func (g *Grid) ApplyView(ctx context.Context, name string, s snapshot.Snapshot) error {
	if err := g.Apply(ctx, s); err != nil {
		return fmt.Errorf("apply view %s: %w", name, err)
	}
	g.view = name
	return nil
}

// SetRows swaps the dataset, keeping the grid state.
func (g *Grid) SetRows(ctx context.Context, rows []dataset.Row) {
	g.items.SetRows(ctx, rows)
}

// RenderColumns describes the columns for the renderer, highlighting the
// ones that are filtered or sorted.
func (g *Grid) RenderColumns() []render.Column {
	var sortBy string
	if pc, ok := g.provider.Sort().Comparator().(*sorting.PropertyComparator[dataset.Row]); ok {
		sortBy = pc.Property()
	}
	out := make([]render.Column, len(g.columns))
	for i, col := range g.columns {
		f := col.filter.Filter()
		out[i] = render.Column{
			Title:    col.Config.Title(),
			Property: col.Config.Property,
			Width:    col.Config.Width,
			Color:    col.ok && col.base.Kind == filter.KindColor,
			Active:   col.Config.Property == sortBy || (f != nil && f.IsActive()),
		}
	}
	return out
}

// Render draws the displayed page.
func (g *Grid) Render(width int) string {
	summary := render.SummaryOf(g.provider)
	summary.View = g.view
	return render.Table(g.RenderColumns(), g.items.Displayed(), summary, width)
}

// Close releases the column registrations and every provider.
func (g *Grid) Close() {
	for _, col := range g.columns {
		col.filter.Close()
	}
	g.items.Close()
	g.provider.Close()
}

// SinceLabel formats how long ago t was, for listings.
func SinceLabel(t, now time.Time) string {
	d := now.Sub(t).Round(time.Minute)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return t.Format(time.DateOnly)
}
