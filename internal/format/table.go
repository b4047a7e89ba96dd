package format

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
)

// Tabler is implemented by payloads that can render as a terminal table.
type Tabler interface {
	Table() *Table
}

// Table is a render-ready grid: a header row plus string cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// AddRow appends one row of cells.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

var (
	headCell = color.New(color.Bold, color.Underline)

	greenCell  = color.New(color.FgGreen).SprintFunc()
	yellowCell = color.New(color.FgYellow).SprintFunc()
	redCell    = color.New(color.FgRed).SprintFunc()
	faintCell  = color.New(color.Faint).SprintFunc()
)

// WriteTable renders v as an aligned table. Payloads that do not
// implement Tabler fall back to pretty JSON so --format table is always
// safe to pass.
func WriteTable(w io.Writer, v any) error {
	tb, ok := v.(Tabler)
	if !ok {
		return WriteJSON(w, v, true)
	}
	t := tb.Table()
	if t == nil {
		return WriteJSON(w, v, true)
	}

	tbl := uitable.New()
	tbl.MaxColWidth = 60
	tbl.Wrap = true
	tbl.Separator = "  "

	if len(t.Columns) > 0 {
		hdr := make([]interface{}, len(t.Columns))
		for i, c := range t.Columns {
			hdr[i] = headCell.Sprint(c)
		}
		tbl.AddRow(hdr...)
	}
	for _, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for i, c := range row {
			cells[i] = c
		}
		tbl.AddRow(cells...)
	}

	_, err := fmt.Fprintln(w, tbl)
	return err
}

// StatusCell colors a task or project status for table output.
func StatusCell(s string) string {
	switch s {
	case "done", "completed":
		return greenCell(s)
	case "in_progress":
		return yellowCell(s)
	case "on_hold", "cancelled":
		return faintCell(s)
	default:
		return s
	}
}

// PriorityCell colors a priority for table output.
func PriorityCell(p string) string {
	switch p {
	case "high":
		return redCell(p)
	case "medium":
		return yellowCell(p)
	case "low":
		return faintCell(p)
	default:
		return p
	}
}
