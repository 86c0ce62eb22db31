package style

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column with name and width.
type Column struct {
	Name  string
	Width int
	Align Alignment
	Style lipgloss.Style
}

// Alignment specifies column text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

// Table provides styled table rendering, used by the branch catalog and the
// agent status list.
type Table struct {
	columns     []Column
	rows        [][]string
	headerSep   bool
	indent      string
	headerStyle lipgloss.Style
}

// NewTable creates a new table with the given columns.
func NewTable(columns ...Column) *Table {
	return &Table{
		columns:     columns,
		headerSep:   true,
		indent:      "  ",
		headerStyle: Bold,
	}
}

// SetIndent sets the left indent for the table.
func (t *Table) SetIndent(indent string) *Table {
	t.indent = indent
	return t
}

// AddRow appends a row of cell values. len(cells) should equal len(columns);
// extra cells are ignored, missing cells render empty.
func (t *Table) AddRow(cells ...string) *Table {
	t.rows = append(t.rows, cells)
	return t
}

func pad(s string, width int, align Alignment) string {
	if lipgloss.Width(s) >= width {
		return s
	}
	gap := width - lipgloss.Width(s)
	switch align {
	case AlignRight:
		return strings.Repeat(" ", gap) + s
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}

func cell(col Column, value string) string {
	padded := pad(value, col.Width, col.Align)
	if col.Style.String() != "" {
		return col.Style.Render(padded)
	}
	return padded
}

// Render returns the fully formatted table as a string, one line per row.
func (t *Table) Render() string {
	var b strings.Builder

	headerCells := make([]string, len(t.columns))
	for i, col := range t.columns {
		headerCells[i] = pad(col.Name, col.Width, col.Align)
	}
	b.WriteString(t.indent + t.headerStyle.Render(strings.Join(headerCells, "  ")) + "\n")

	if t.headerSep {
		total := 0
		for _, col := range t.columns {
			total += col.Width + 2
		}
		b.WriteString(t.indent + Dim.Render(strings.Repeat("-", maxInt(0, total-2))) + "\n")
	}

	for _, row := range t.rows {
		cells := make([]string, len(t.columns))
		for i, col := range t.columns {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			cells[i] = cell(col, v)
		}
		b.WriteString(t.indent + strings.Join(cells, "  ") + "\n")
	}

	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// FormatDuration renders a short human duration like "3h12m" — used by the
// catalog to show a branch's age and by the supervisor to show pane uptime.
func FormatDuration(seconds int64) string {
	if seconds < 60 {
		return strconv.FormatInt(seconds, 10) + "s"
	}
	minutes := seconds / 60
	if minutes < 60 {
		return strconv.FormatInt(minutes, 10) + "m"
	}
	hours := minutes / 60
	minutes %= 60
	if hours < 24 {
		return strconv.FormatInt(hours, 10) + "h" + strconv.FormatInt(minutes, 10) + "m"
	}
	days := hours / 24
	hours %= 24
	return strconv.FormatInt(days, 10) + "d" + strconv.FormatInt(hours, 10) + "h"
}
