package output

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// TableFormatter renders datasets as rounded ASCII tables.
type TableFormatter struct{}

// Format renders each dataset as a table, separated by blank lines.
func (f *TableFormatter) Format(sets ...*Dataset) (string, error) {
	rendered := make([]string, 0, len(sets))
	for _, set := range sets {
		if set == nil {
			continue
		}

		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		if set.Title != "" {
			t.SetTitle(set.Title)
		}

		header := make(table.Row, len(set.Columns))
		for i, col := range set.Columns {
			header[i] = col
		}
		t.AppendHeader(header)

		for _, row := range set.Rows {
			r := make(table.Row, len(row))
			for i, cell := range row {
				r[i] = cell
			}
			t.AppendRow(r)
		}

		if set.Footer != "" && len(set.Columns) > 0 {
			footer := make(table.Row, len(set.Columns))
			footer[len(footer)-1] = set.Footer
			t.AppendFooter(footer)
		}

		rendered = append(rendered, t.Render())
	}
	return strings.Join(rendered, "\n\n"), nil
}
