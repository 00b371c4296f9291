package output

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders datasets as Markdown tables.
type MarkdownFormatter struct{}

// Format renders each dataset under a level two heading.
func (f *MarkdownFormatter) Format(sets ...*Dataset) (string, error) {
	var sb strings.Builder
	for i, set := range sets {
		if set == nil {
			continue
		}
		if i > 0 {
			sb.WriteString("\n")
		}
		if set.Title != "" {
			sb.WriteString(fmt.Sprintf("## %s\n\n", escapeMarkdownCell(set.Title)))
		}
		if len(set.Columns) == 0 {
			continue
		}

		cells := make([]string, len(set.Columns))
		for j, col := range set.Columns {
			cells[j] = escapeMarkdownCell(col)
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")

		dividers := make([]string, len(set.Columns))
		for j := range dividers {
			dividers[j] = "---"
		}
		sb.WriteString("|" + strings.Join(dividers, "|") + "|\n")

		for _, row := range set.Rows {
			escaped := make([]string, len(row))
			for j, cell := range row {
				escaped[j] = escapeMarkdownCell(cell)
			}
			sb.WriteString("| " + strings.Join(escaped, " | ") + " |\n")
		}

		if set.Footer != "" {
			sb.WriteString(fmt.Sprintf("\n_%s_\n", set.Footer))
		}
	}
	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	return strings.ReplaceAll(value, "|", "\\|")
}
