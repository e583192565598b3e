package gridview

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/gridstate/internal/app"
	"github.com/zjrosen/gridstate/internal/config"
	"github.com/zjrosen/gridstate/internal/dataset"
	"github.com/zjrosen/gridstate/internal/log"
	"github.com/zjrosen/gridstate/internal/testutil"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func newGrid(t *testing.T) *app.Grid {
	t.Helper()
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
	g, err := app.New(cfg, testutil.NewBuilder(t).WithPeople().Build())
	require.NoError(t, err)
	t.Cleanup(g.Close)
	return g
}

func newModel(t *testing.T, opts ...Option) Model {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return New(ctx, newGrid(t), opts...)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "ctrl+r":
			msg = tea.KeyMsg{Type: tea.KeyCtrlR}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = update(t, m, msg)
	}
	return m
}

// typeText sends s one rune at a time, the way a terminal delivers it.
func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func names(rows []dataset.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i], _ = r["name"].(string)
	}
	return out
}

func TestModel_Paging(t *testing.T) {
	m := newModel(t)
	page := m.grid.Provider().Page()

	m = press(t, m, "j")
	assert.Equal(t, 2, page.Current())
	m = press(t, m, "G")
	assert.Equal(t, 3, page.Current())
	m = press(t, m, "j")
	assert.Equal(t, 3, page.Current(), "next stops at the last page")
	m = press(t, m, "k")
	assert.Equal(t, 2, page.Current())
	press(t, m, "g")
	assert.Equal(t, 1, page.Current())
}

func TestModel_ColumnNavigationWraps(t *testing.T) {
	m := newModel(t)

	m = press(t, m, "h")
	assert.Equal(t, 5, m.column)
	m = press(t, m, "l")
	assert.Equal(t, 0, m.column)
	m = press(t, m, "l", "l")
	assert.Equal(t, "Status", m.current().Config.Title())
}

func TestModel_SortCurrentColumn(t *testing.T) {
	m := newModel(t)

	m = press(t, m, "l", "s")
	assert.Equal(t, []string{"Dave", "Alina", "Bob"}, names(m.grid.Items().Displayed()))

	m = press(t, m, "s")
	assert.Equal(t, []string{"Ali", "Carol", "Alice"}, names(m.grid.Items().Displayed()))
}

func TestModel_EditFilter(t *testing.T) {
	m := newModel(t)

	m = press(t, m, "l", "/")
	require.True(t, m.editing)
	assert.Empty(t, m.input.Value())

	m = typeText(t, m, "20..30")
	assert.Equal(t, 7, m.grid.Items().Total(), "nothing applies before enter")

	m = press(t, m, "enter")
	assert.False(t, m.editing)
	assert.NoError(t, m.err)
	assert.Equal(t, 4, m.grid.Items().Total())

	// Editing again starts from the current filter.
	m = press(t, m, "/")
	assert.Equal(t, "20..30", m.input.Value())
}

func TestModel_CancelKeepsFilter(t *testing.T) {
	m := newModel(t)

	m = press(t, m, "/")
	m = typeText(t, m, "al")
	m = press(t, m, "esc")

	assert.False(t, m.editing)
	assert.Equal(t, 7, m.grid.Items().Total())
}

func TestModel_InvalidInputShowsError(t *testing.T) {
	m := newModel(t)

	m = press(t, m, "l", "l", "l", "l", "/")
	require.Equal(t, "Color", m.current().Config.Title())
	m = typeText(t, m, "purple")
	m = press(t, m, "enter")

	require.ErrorIs(t, m.err, app.ErrInvalidInput)
	assert.Contains(t, m.View(), "unknown color")
	assert.Equal(t, 7, m.grid.Items().Total())
}

func TestModel_ColumnWithoutFilter(t *testing.T) {
	m := newModel(t)

	m = press(t, m, "h", "/")

	assert.False(t, m.editing)
	assert.Contains(t, m.View(), "column has no filter")
}

func TestModel_ClearFilters(t *testing.T) {
	m := newModel(t)
	m = press(t, m, "/")
	m = typeText(t, m, "al")
	m = press(t, m, "enter", "l", "/")
	m = typeText(t, m, "30..")
	m = press(t, m, "enter")
	require.Equal(t, 2, m.grid.Items().Total(), "Alice and Ali")

	m = press(t, m, "x")
	assert.Equal(t, 3, m.grid.Items().Total(), "age filter cleared")

	m = press(t, m, "s", "X")
	assert.Equal(t, 7, m.grid.Items().Total())
	assert.Nil(t, m.grid.Provider().Sort().Comparator())
	assert.Equal(t, 3, m.grid.Provider().Page().Size())
}

func TestModel_Reload(t *testing.T) {
	rows := testutil.NewBuilder(t).WithRow("z", testutil.Name("Zed")).Build()
	m := newModel(t, WithReloader(func() ([]dataset.Row, error) { return rows, nil }))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	assert.Equal(t, []string{"Zed"}, names(m.grid.Items().Displayed()))
	assert.Contains(t, m.View(), "reloaded 1 rows")
}

func TestModel_ReloadError(t *testing.T) {
	m := newModel(t)

	m, _ = update(t, m, rowsLoadedMsg{err: errors.New("disk gone")})

	assert.Contains(t, m.View(), "disk gone")
	assert.Equal(t, 7, m.grid.Items().Total(), "rows kept")
}

func TestModel_ReloadWithoutReloader(t *testing.T) {
	m := newModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Nil(t, cmd)
}

func TestModel_WaitForFile(t *testing.T) {
	ch := make(chan struct{}, 1)
	m := newModel(t, WithFileChanges(ch))

	ch <- struct{}{}
	assert.Equal(t, fileChangedMsg{}, m.waitForFile()())

	close(ch)
	assert.Nil(t, m.waitForFile()())
}

func TestModel_WaitForFileStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := New(ctx, newGrid(t), WithFileChanges(make(chan struct{})))

	cancel()
	assert.Nil(t, m.waitForFile()())
}

func TestModel_RowsChangedKeepsListening(t *testing.T) {
	m := newModel(t)
	cmd := m.Init()
	require.NotNil(t, cmd)

	m.grid.Provider().Page().Next()
	msg := m.listener.Listen()()
	m, cmd = update(t, m, msg)

	assert.Equal(t, 1, m.redraw)
	assert.NotNil(t, cmd)
}

func TestModel_LogWarningsShowAsStatus(t *testing.T) {
	m := newModel(t)

	m, _ = update(t, m, log.LogEvent{Payload: "2025-01-01T10:00:00 [DEBUG] [items] Displayed items\n"})
	assert.Empty(t, m.status)

	m, _ = update(t, m, log.LogEvent{Payload: "2025-01-01T10:00:00 [WARN] [state] Custom comparator dropped from snapshot\n"})
	assert.Equal(t, "[WARN] [state] Custom comparator dropped from snapshot", m.status)
	assert.Contains(t, m.View(), "Custom comparator dropped")
}

func TestModel_HelpAndQuit(t *testing.T) {
	m := newModel(t)

	m = press(t, m, "?")
	assert.True(t, m.help.ShowAll)
	assert.Contains(t, m.View(), "clear all")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModel_View(t *testing.T) {
	m := newModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	view := m.View()
	assert.Contains(t, view, "▸ Name")
	assert.Contains(t, view, "Alice")
	assert.Contains(t, view, "1-3 of 7")
	assert.Contains(t, view, "column Name (string)")
}

func TestModel_Program(t *testing.T) {
	m := newModel(t)
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 40))

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("page 1/3"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("page 2/3"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	final, ok := tm.FinalModel(t, teatest.WithFinalTimeout(3*time.Second)).(Model)
	require.True(t, ok)
	assert.Equal(t, 2, final.grid.Provider().Page().Current())
}
