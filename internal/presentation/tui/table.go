package tui

import (
	"strings"

	"github.com/aretw0/sheetpilot/pkg/cellref"
)

// Table renders rows as a markdown table with spreadsheet column headers
// and row numbers.
func Table(rows [][]string) string {
	if len(rows) == 0 {
		return "_empty sheet_\n"
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	var b strings.Builder
	b.WriteString("| # |")
	for c := 1; c <= width; c++ {
		b.WriteString(" " + cellref.ColumnName(c) + " |")
	}
	b.WriteString("\n|---|")
	b.WriteString(strings.Repeat("---|", width))
	b.WriteString("\n")

	for i, r := range rows {
		b.WriteString("| " + itoa(i+1) + " |")
		for c := 0; c < width; c++ {
			cell := ""
			if c < len(r) {
				cell = escapeCell(r[c])
			}
			b.WriteString(" " + cell + " |")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
