package pod

import (
	"fmt"
	"io"
	"strings"

	"github.com/Moonlight-Companies/gologger/coloransi"
)

// FormatFunc colors a cell after its width has been measured
type FormatFunc func(value string) string

// ColumnSpec describes one table column
type ColumnSpec struct {
	Header     string
	BlankValue string // shown for empty cells, "-" when unset
	FormatFunc FormatFunc
	MinWidth   int
	AlignRight bool // counts and offsets
}

// Table collects rows and renders them with aligned columns. Widths are
// measured on visible characters so colored cells line up.
type Table struct {
	columns []ColumnSpec
	rows    [][]string // nil row is a separator
}

func NewTable(cols ...ColumnSpec) *Table {
	t := &Table{columns: cols}
	for i := range t.columns {
		if t.columns[i].BlankValue == "" {
			t.columns[i].BlankValue = "-"
		}
	}
	return t
}

// AddRow appends a row. Missing or empty cells get the column's blank value,
// extra cells are dropped.
func (t *Table) AddRow(data ...string) {
	row := make([]string, len(t.columns))
	for i, col := range t.columns {
		if i < len(data) && data[i] != "" {
			row[i] = data[i]
		} else {
			row[i] = col.BlankValue
		}
	}
	t.rows = append(t.rows, row)
}

func (t *Table) AddSeparator() {
	t.rows = append(t.rows, nil)
}

// Len returns the number of rows added so far, separators included
func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) widths() []int {
	widths := make([]int, len(t.columns))
	for i, col := range t.columns {
		widths[i] = max(col.MinWidth, visibleLength(col.Header))
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], visibleLength(cell))
		}
	}
	return widths
}

func (t *Table) Render(w io.Writer) error {
	widths := t.widths()

	rule := make([]string, len(widths))
	for i, width := range widths {
		rule[i] = strings.Repeat("-", width)
	}
	ruleLine := strings.Join(rule, " ")

	headers := make([]string, len(t.columns))
	for i, col := range t.columns {
		headers[i] = pad(col.Header, widths[i], col.AlignRight)
	}
	if _, err := fmt.Fprintln(w, strings.Join(headers, " ")); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ruleLine); err != nil {
		return err
	}

	for _, row := range t.rows {
		line := ruleLine
		if row != nil {
			cells := make([]string, len(row))
			for i, cell := range row {
				col := t.columns[i]
				if col.FormatFunc != nil {
					cell = col.FormatFunc(cell)
				}
				cells[i] = pad(cell, widths[i], col.AlignRight)
			}
			line = strings.Join(cells, " ")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func pad(s string, width int, right bool) string {
	gap := width - visibleLength(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

// visibleLength counts runes outside ANSI escape sequences
func visibleLength(s string) int {
	n := 0
	escaped := false
	for _, r := range s {
		switch {
		case r == '\033':
			escaped = true
		case escaped:
			escaped = r != 'm'
		default:
			n++
		}
	}
	return n
}

// NullPointerFormatter greys out null pointers and blanks
func NullPointerFormatter(s string) string {
	if s == "-" || s == "0x00000000" {
		return coloransi.Foreground(coloransi.BrightBlack, s)
	}
	return s
}
