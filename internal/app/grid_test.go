package app

import (
	"context"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/gridstate/internal/config"
	"github.com/zjrosen/gridstate/internal/dataset"
	"github.com/zjrosen/gridstate/internal/filter"
	"github.com/zjrosen/gridstate/internal/snapshot"
	"github.com/zjrosen/gridstate/internal/testutil"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func peopleConfig() config.Config {
	cfg := config.Defaults()
	cfg.PageSize = 3
	cfg.Columns = []config.ColumnConfig{
		{Name: "Name", Property: "name"},
		{Name: "Age", Property: "age", Filter: "number-interval"},
		{Name: "Status", Property: "status", Filter: "list", Values: []string{"active", "inactive", "pending"}},
		{Name: "Joined", Property: "joined", Filter: "date-interval"},
		{Name: "Color", Property: "color", Filter: "color", Values: []string{"red", "green", "blue"}},
		{Name: "City", Property: "address.city", Filter: config.NoFilter},
	}
	return cfg
}

func newGrid(t *testing.T, cfg config.Config) *Grid {
	t.Helper()
	g, err := New(cfg, testutil.NewBuilder(t).WithPeople().Build())
	require.NoError(t, err)
	t.Cleanup(g.Close)
	return g
}

func names(rows []dataset.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i], _ = r["name"].(string)
	}
	return out
}

func TestNew_RegistersInactiveColumnFilters(t *testing.T) {
	g := newGrid(t, peopleConfig())

	require.Equal(t, 5, g.Provider().Filters().Len(), "every filterable column owns a filter")
	require.Empty(t, g.Provider().Filters().ActiveFilters())
	require.Equal(t, 7, g.Items().Total())
	require.Len(t, g.Items().Displayed(), 3)
}

func TestNew_DerivesColumnsFromDataset(t *testing.T) {
	cfg := config.Defaults()
	g := newGrid(t, cfg)

	_, ok := g.Column("address")
	require.True(t, ok)
	_, ok = g.Column("name")
	require.True(t, ok)
}

func TestNew_RejectsInvalidColumns(t *testing.T) {
	cfg := config.Defaults()
	cfg.Columns = []config.ColumnConfig{{Name: "x"}}
	_, err := New(cfg, nil)
	require.Error(t, err)
}

func TestNew_DefaultSort(t *testing.T) {
	cfg := peopleConfig()
	cfg.DefaultSort = config.SortConfig{By: "age", Reverse: true}
	g := newGrid(t, cfg)

	require.Equal(t, []string{"Ali", "Carol", "Alice"}, names(g.Items().Displayed()))
}

func TestGrid_SetColumnFilter(t *testing.T) {
	g := newGrid(t, peopleConfig())
	age, _ := g.Column("Age")
	color, _ := g.Column("color")

	require.NoError(t, g.SetColumnFilter(age, "20..30"))
	require.NoError(t, g.SetColumnFilter(color, "red,blue"))
	require.Equal(t, 2, g.Items().Total(), "Alice and Bob")

	require.NoError(t, g.SetColumnFilter(age, ""))
	require.Equal(t, 4, g.Items().Total())

	city, _ := g.Column("City")
	require.Error(t, g.SetColumnFilter(city, "Oslo"))
	require.ErrorIs(t, g.SetColumnFilter(color, "purple"), ErrInvalidInput)
}

func TestGrid_ToggleSort(t *testing.T) {
	g := newGrid(t, peopleConfig())
	age, _ := g.Column("Age")

	g.ToggleSort(age)
	require.Equal(t, []string{"Dave", "Alina", "Bob"}, names(g.Items().Displayed()))

	g.ToggleSort(age)
	require.Equal(t, []string{"Ali", "Carol", "Alice"}, names(g.Items().Displayed()))
	require.True(t, g.RenderColumns()[1].Active)
}

func TestGrid_ExactFilterSurvivesSnapshot(t *testing.T) {
	g := newGrid(t, peopleConfig())
	name, _ := g.Column("Name")

	require.NoError(t, g.SetColumnFilter(name, "ali"))
	require.Equal(t, 3, g.Items().Total())
	require.NoError(t, g.SetColumnFilter(name, "=ali"))
	require.Equal(t, []string{"Ali"}, names(g.Items().Displayed()))

	data, err := g.Snapshot().JSON()
	require.NoError(t, err)
	require.Contains(t, string(data), `"exact": true`)
	s, err := snapshot.ParseJSON(data)
	require.NoError(t, err)

	other := newGrid(t, peopleConfig())
	require.NoError(t, other.Apply(context.Background(), s))
	require.Equal(t, []string{"Ali"}, names(other.Items().Displayed()))
	otherName, _ := other.Column("Name")
	fs, ok := other.ColumnFilterState(otherName)
	require.True(t, ok)
	require.True(t, fs.Exact)
}

func TestGrid_SnapshotApplyRoundTrip(t *testing.T) {
	g := newGrid(t, peopleConfig())
	age, _ := g.Column("Age")
	name, _ := g.Column("Name")
	require.NoError(t, g.SetColumnFilter(age, "20.."))
	require.NoError(t, g.SetColumnFilter(name, "al"))
	g.ToggleSort(name)
	g.Provider().Page().Next()

	saved := g.Snapshot()
	before := names(g.Items().Displayed())

	other := newGrid(t, peopleConfig())
	require.NoError(t, other.ApplyView(context.Background(), "mine", saved))
	require.Equal(t, before, names(other.Items().Displayed()))
	require.Equal(t, saved.Fingerprint(), other.Snapshot().Fingerprint())
	require.Equal(t, "mine", other.View())

	// The view's filters land in the column slots.
	otherAge, _ := other.Column("Age")
	st, ok := other.ColumnFilterState(otherAge)
	require.True(t, ok)
	require.Equal(t, 20.0, *st.From)
}

func TestGrid_ApplyClearsWhatTheSnapshotLacks(t *testing.T) {
	g := newGrid(t, peopleConfig())
	name, _ := g.Column("Name")
	require.NoError(t, g.SetColumnFilter(name, "al"))
	g.ToggleSort(name)

	require.NoError(t, g.Apply(context.Background(), snapshot.Snapshot{}))

	require.Empty(t, g.Provider().Filters().ActiveFilters())
	require.Nil(t, g.Provider().Sort().Comparator())
	require.Equal(t, 7, g.Items().Total())
	require.Equal(t, 3, g.Provider().Page().Size(), "page size kept")

	// The column slot is refilled on the next edit.
	require.NoError(t, g.SetColumnFilter(name, "bob"))
	require.Equal(t, 1, g.Items().Total())
}

func TestGrid_ApplyRejectsUnknownKind(t *testing.T) {
	g := newGrid(t, peopleConfig())
	err := g.Apply(context.Background(), snapshot.Snapshot{Filters: []filter.State{{Kind: "weird", ID: "x"}}})
	require.ErrorIs(t, err, filter.ErrUnknownKind)
}

func TestGrid_Render(t *testing.T) {
	g := newGrid(t, peopleConfig())
	out := g.Render(0)

	require.Contains(t, out, "Name")
	require.Contains(t, out, "Alice")
	require.Contains(t, out, "1-3 of 7")
	require.Contains(t, out, "page 1/3")
}

func TestGrid_SetRowsKeepsState(t *testing.T) {
	g := newGrid(t, peopleConfig())
	name, _ := g.Column("Name")
	require.NoError(t, g.SetColumnFilter(name, "z"))
	require.Zero(t, g.Items().Total())

	g.SetRows(context.Background(), testutil.NewBuilder(t).WithRow("z", testutil.Name("Zed")).Build())
	require.Equal(t, []string{"Zed"}, names(g.Items().Displayed()))
}

func TestSinceLabel(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	require.Equal(t, "just now", SinceLabel(now.Add(-10*time.Second), now))
	require.Equal(t, "5m ago", SinceLabel(now.Add(-5*time.Minute), now))
	require.Equal(t, "3h ago", SinceLabel(now.Add(-3*time.Hour), now))
	require.Equal(t, "2024-05-01", SinceLabel(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), now))
}

func TestGrid_SortBy(t *testing.T) {
	g := newGrid(t, peopleConfig())
	age, _ := g.Column("Age")

	g.SortBy(age, true)
	require.Equal(t, []string{"Ali", "Carol", "Alice"}, names(g.Items().Displayed()))
	require.Equal(t, &snapshot.Sort{By: "age", Reverse: true}, g.Snapshot().Sort)
}
