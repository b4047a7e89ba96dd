package format

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func withoutColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

type taskRows struct {
	rows [][]string
}

func (r taskRows) Table() *Table {
	tbl := &Table{Columns: []string{"NAME", "STATUS"}}
	for _, row := range r.rows {
		tbl.AddRow(row...)
	}
	return tbl
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]int{"a": 1}, "", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := buf.String(); got != "{\"a\":1}\n" {
		t.Fatalf("compact json = %q", got)
	}

	buf.Reset()
	if err := Write(&buf, map[string]int{"a": 1}, "json", true); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := buf.String(); got != "{\n  \"a\": 1\n}\n" {
		t.Fatalf("pretty json = %q", got)
	}
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, 1, "yaml", false)
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("err = %v", err)
	}
}

func TestWriteEDNMapSortsKeywordKeys(t *testing.T) {
	type payload struct {
		B int    `json:"b"`
		A string `json:"a"`
	}
	var buf bytes.Buffer
	if err := Write(&buf, payload{B: 2, A: "x"}, "edn", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := buf.String(); got != `{:a "x" :b 2}`+"\n" {
		t.Fatalf("edn = %q", got)
	}
}

func TestWriteEDNVector(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEDN(&buf, []int{1, 2, 3}, false); err != nil {
		t.Fatalf("WriteEDN: %v", err)
	}
	if got := buf.String(); got != "[1 2 3]\n" {
		t.Fatalf("edn = %q", got)
	}
}

func TestWriteTableRendersRows(t *testing.T) {
	withoutColor(t)

	var buf bytes.Buffer
	v := taskRows{rows: [][]string{
		{"Long run", "completed"},
		{"Stretch", "todo"},
	}}
	if err := Write(&buf, v, "table", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"NAME", "STATUS", "Long run", "completed", "Stretch", "todo"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteTableFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]string{"id": "task-1"}, "table", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), `"id": "task-1"`) {
		t.Fatalf("fallback output = %q", buf.String())
	}
}

func TestCellHelpersPassThroughWithoutColor(t *testing.T) {
	withoutColor(t)

	cases := []struct {
		in   string
		cell func(string) string
	}{
		{"completed", StatusCell},
		{"in_progress", StatusCell},
		{"todo", StatusCell},
		{"high", PriorityCell},
		{"low", PriorityCell},
	}
	for _, tc := range cases {
		if got := tc.cell(tc.in); got != tc.in {
			t.Fatalf("cell(%q) = %q", tc.in, got)
		}
	}
}
