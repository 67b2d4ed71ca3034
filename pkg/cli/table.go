package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// Table writes column-aligned rows under a header and a dash divider.
// Nothing is printed until the first Row, so an empty table is silent.
type Table struct {
	w       *tabwriter.Writer
	headers []string
	rows    int
}

// NewTable creates a table on stdout with the given column headers.
func NewTable(headers ...string) *Table {
	return NewTableTo(os.Stdout, headers...)
}

// NewTableTo creates a table that writes to out.
func NewTableTo(out io.Writer, headers ...string) *Table {
	return &Table{
		w:       tabwriter.NewWriter(out, 0, 0, 2, ' ', 0),
		headers: headers,
	}
}

// Row adds a row. Missing trailing cells are left blank and extra cells
// are dropped so every line has one cell per header.
func (t *Table) Row(values ...string) {
	if t.rows == 0 {
		t.line(t.headers)
		dividers := make([]string, len(t.headers))
		for i, h := range t.headers {
			dividers[i] = strings.Repeat("-", len(h))
		}
		t.line(dividers)
	}
	t.rows++

	cells := make([]string, len(t.headers))
	copy(cells, values)
	t.line(cells)
}

// Len returns the number of rows added.
func (t *Table) Len() int {
	return t.rows
}

// Flush writes the buffered rows.
func (t *Table) Flush() error {
	if t.rows == 0 {
		return nil
	}
	return t.w.Flush()
}

func (t *Table) line(cells []string) {
	fmt.Fprintln(t.w, strings.Join(cells, "\t"))
}
