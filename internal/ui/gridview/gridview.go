// Package gridview is the interactive grid: a Bubble Tea model that
// re-renders whenever the displayed rows change.
package gridview

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/gridstate/internal/app"
	"github.com/zjrosen/gridstate/internal/dataset"
	"github.com/zjrosen/gridstate/internal/keys"
	"github.com/zjrosen/gridstate/internal/log"
	"github.com/zjrosen/gridstate/internal/pubsub"
	"github.com/zjrosen/gridstate/internal/render"
	"github.com/zjrosen/gridstate/internal/snapshot"
)

// Reloader reads the dataset again.
type Reloader func() ([]dataset.Row, error)

// rowsLoadedMsg carries the result of a reload.
type rowsLoadedMsg struct {
	rows []dataset.Row
	err  error
}

// fileChangedMsg is sent when the dataset file changed on disk.
type fileChangedMsg struct{}

var (
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(render.ActiveColor)
	statusStyle = lipgloss.NewStyle().Foreground(render.MutedColor)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"})
)

// Model is the grid view.
type Model struct {
	ctx  context.Context
	grid *app.Grid
	keys keys.KeyMap
	help help.Model

	input   textinput.Model
	editing bool
	column  int

	width  int
	status string
	err    error
	redraw int // displayed-rows notifications seen

	listener    *pubsub.ContinuousListener[[]dataset.Row]
	logs        *log.LogListener // nil unless the debug log is on
	reload      Reloader
	fileChanges <-chan struct{}
}

type Option func(*Model)

// WithReloader enables ctrl+r and reloads on file changes.
func WithReloader(r Reloader) Option {
	return func(m *Model) { m.reload = r }
}

// WithFileChanges reloads the dataset on every signal from ch.
func WithFileChanges(ch <-chan struct{}) Option {
	return func(m *Model) { m.fileChanges = ch }
}

// New creates the view. The subscription to the grid lives as long as ctx.
func New(ctx context.Context, grid *app.Grid, opts ...Option) Model {
	input := textinput.New()
	input.Prompt = "filter> "

	m := Model{
		ctx:      ctx,
		grid:     grid,
		keys:     keys.DefaultKeyMap(),
		help:     help.New(),
		input:    input,
		listener: pubsub.NewContinuousListener(ctx, grid.Items().Changes()),
		logs:     log.NewListener(ctx),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listener.Listen(), m.listenLogs(), m.waitForFile())
}

func (m Model) listenLogs() tea.Cmd {
	if m.logs == nil {
		return nil
	}
	return m.logs.Listen()
}

func (m Model) waitForFile() tea.Cmd {
	if m.fileChanges == nil {
		return nil
	}
	ch, ctx := m.fileChanges, m.ctx
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			return fileChangedMsg{}
		}
	}
}

func (m Model) reloadCmd() tea.Cmd {
	if m.reload == nil {
		return nil
	}
	reload := m.reload
	return func() tea.Msg {
		rows, err := reload()
		return rowsLoadedMsg{rows: rows, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case pubsub.Event[[]dataset.Row]:
		m.redraw++
		return m, m.listener.Listen()

	case log.LogEvent:
		// Warnings and errors surface on the status line.
		if strings.Contains(msg.Payload, "[WARN]") || strings.Contains(msg.Payload, "[ERROR]") {
			_, entry, _ := strings.Cut(strings.TrimSpace(msg.Payload), " ")
			m.status = entry
		}
		return m, m.listenLogs()

	case fileChangedMsg:
		log.Debug(log.CatUI, "Dataset file changed, reloading")
		return m, tea.Batch(m.reloadCmd(), m.waitForFile())

	case rowsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			log.ErrorErr(log.CatUI, "Reload failed", msg.err)
			return m, nil
		}
		m.err = nil
		m.grid.SetRows(m.ctx, msg.rows)
		m.status = fmt.Sprintf("reloaded %d rows", len(msg.rows))
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateGrid(msg)
	}
	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Apply):
		m.editing = false
		m.input.Blur()
		m.setFilter(m.input.Value())
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.editing = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := m.grid.Provider().Page()
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.NextPage):
		page.Next()
	case key.Matches(msg, m.keys.PrevPage):
		page.Previous()
	case key.Matches(msg, m.keys.FirstPage):
		page.Reset()
	case key.Matches(msg, m.keys.LastPage):
		page.SetCurrent(page.Last())
	case key.Matches(msg, m.keys.NextColumn):
		m.column = (m.column + 1) % max(len(m.grid.Columns()), 1)
	case key.Matches(msg, m.keys.PrevColumn):
		n := max(len(m.grid.Columns()), 1)
		m.column = (m.column - 1 + n) % n
	case key.Matches(msg, m.keys.Sort):
		if col := m.current(); col != nil {
			m.grid.ToggleSort(col)
		}
	case key.Matches(msg, m.keys.Filter):
		return m.startEditing()
	case key.Matches(msg, m.keys.ClearFilter):
		m.setFilter("")
	case key.Matches(msg, m.keys.ClearAll):
		// An empty snapshot clears filters and sort and keeps the page size.
		if err := m.grid.Apply(m.ctx, snapshot.Snapshot{}); err != nil {
			m.err = err
		}
	case key.Matches(msg, m.keys.Reload):
		return m, m.reloadCmd()
	}
	return m, nil
}

func (m Model) startEditing() (tea.Model, tea.Cmd) {
	col := m.current()
	if col == nil || !col.Filterable() {
		m.status = "column has no filter"
		return m, nil
	}
	s, _ := m.grid.ColumnFilterState(col)
	m.input.SetValue(app.FormatFilterInput(s))
	m.input.CursorEnd()
	m.editing = true
	cmd := m.input.Focus()
	return m, cmd
}

func (m *Model) setFilter(input string) {
	col := m.current()
	if col == nil {
		return
	}
	if err := m.grid.SetColumnFilter(col, input); err != nil {
		m.err = err
		return
	}
	m.err = nil
}

func (m Model) current() *app.Column {
	cols := m.grid.Columns()
	if m.column < 0 || m.column >= len(cols) {
		return nil
	}
	return cols[m.column]
}

func (m Model) View() string {
	cols := m.grid.RenderColumns()
	if m.column < len(cols) {
		cols[m.column].Title = cursorStyle.Render("▸ " + cols[m.column].Title)
	}

	summary := render.SummaryOf(m.grid.Provider())
	summary.View = m.grid.View()
	out := render.Table(cols, m.grid.Items().Displayed(), summary, m.width)

	if col := m.current(); col != nil {
		line := "column " + col.Config.Title()
		if col.Filterable() {
			line += " (" + string(col.Kind()) + ")"
		}
		out += "\n" + statusStyle.Render(line)
	}
	if m.editing {
		out += "\n" + m.input.View()
	}
	if m.err != nil {
		out += "\n" + errorStyle.Render(m.err.Error())
	} else if m.status != "" {
		out += "\n" + statusStyle.Render(m.status)
	}
	return out + "\n" + m.help.View(m.keys)
}
