package render

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/rivo/uniseg"

	"github.com/zjrosen/gridstate/internal/dataset"
)

// DefaultCellWidth caps cells of columns without an explicit width.
const DefaultCellWidth = 32

const ellipsis = "…"

// Column is one rendered column.
type Column struct {
	Title    string
	Property string
	Width    int  // max cell width; 0 = DefaultCellWidth
	Color    bool // render values as color swatches
	Active   bool // highlighted header: the column is filtered or sorted
}

// Table renders rows under the given columns followed by the summary.
// width bounds the summary wrap; 0 disables wrapping.
func Table(columns []Column, rows []dataset.Row, summary Summary, width int) string {
	var b strings.Builder
	if len(rows) == 0 {
		b.WriteString(emptyStyle.Render("No matching rows."))
	} else {
		b.WriteString(grid(columns, rows))
	}
	b.WriteString("\n")

	line := summary.String()
	if width > 0 {
		line = wordwrap.String(line, width)
	}
	b.WriteString(summaryStyle.Render(line))
	return b.String()
}

func grid(columns []Column, rows []dataset.Row) string {
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.Title
	}

	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = make([]string, len(columns))
		for c, col := range columns {
			v, _ := dataset.Get(row, col.Property)
			cells[r][c] = Cell(v, col.width())
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				if col < len(columns) && columns[col].Active {
					return activeHeaderStyle
				}
				return headerStyle
			}
			if col < len(columns) && columns[col].Color && row >= 0 && row < len(cells) {
				if c, ok := swatches[strings.ToLower(cells[row][col])]; ok {
					return cellStyle.Foreground(c)
				}
			}
			if row%2 == 1 {
				return oddCellStyle
			}
			return cellStyle
		})
	return t.String()
}

func (c Column) width() int {
	if c.Width > 0 {
		return c.Width
	}
	return DefaultCellWidth
}

// Cell formats a property value on one line of at most width cells. Escape
// sequences in the value are dropped.
func Cell(v any, width int) string {
	s := strings.ReplaceAll(ansi.Strip(format(v)), "\n", " ")
	if width > 0 && runewidth.StringWidth(s) > width {
		s = truncate(s, width)
	}
	return s
}

// truncate cuts s at a grapheme boundary so that it and a trailing ellipsis
// fit in width cells.
func truncate(s string, width int) string {
	limit := width - runewidth.StringWidth(ellipsis)
	var b strings.Builder
	used, state := 0, -1
	for s != "" {
		var cluster string
		cluster, s, _, state = uniseg.StepString(s, state)
		w := runewidth.StringWidth(cluster)
		if used+w > limit {
			break
		}
		b.WriteString(cluster)
		used += w
	}
	b.WriteString(ellipsis)
	return b.String()
}

func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case time.Time:
		return x.Format(time.DateOnly)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = format(e)
		}
		return strings.Join(parts, ", ")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "?"
	}
	return string(data)
}
