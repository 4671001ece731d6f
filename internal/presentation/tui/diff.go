package tui

import (
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Line kinds of a grid diff.
const (
	LineContext = "context"
	LineAdded   = "added"
	LineRemoved = "removed"
)

// Line is one row of a grid diff.
type Line struct {
	Kind string
	Text string
}

// GridDiff compares two snapshots row by row. Each row is rendered as
// "N: v1 | v2 | ...", so a changed cell shows up as a removed and an added row.
func GridDiff(before, after [][]string) []Line {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(renderRows(before), renderRows(after))
	diffs := dmp.DiffMain(beforeChars, afterChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var lines []Line
	for _, d := range diffs {
		chunk := strings.Split(d.Text, "\n")
		if len(chunk) > 0 && chunk[len(chunk)-1] == "" {
			chunk = chunk[:len(chunk)-1]
		}
		for _, text := range chunk {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				lines = append(lines, Line{Kind: LineContext, Text: text})
			case diffmatchpatch.DiffDelete:
				lines = append(lines, Line{Kind: LineRemoved, Text: text})
			case diffmatchpatch.DiffInsert:
				lines = append(lines, Line{Kind: LineAdded, Text: text})
			}
		}
	}
	return lines
}

// Changed reports whether the diff holds any added or removed row.
func Changed(lines []Line) bool {
	for _, l := range lines {
		if l.Kind != LineContext {
			return true
		}
	}
	return false
}

// FormatDiff renders the diff with +/- markers, colored for the terminal profile.
func FormatDiff(lines []Line, p termenv.Profile) string {
	var b strings.Builder
	for _, l := range lines {
		switch l.Kind {
		case LineAdded:
			b.WriteString(termenv.String("+ " + l.Text).Foreground(p.Color("#22c55e")).String())
		case LineRemoved:
			b.WriteString(termenv.String("- " + l.Text).Foreground(p.Color("#ef4444")).String())
		default:
			b.WriteString("  " + l.Text)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderRows(rows [][]string) string {
	var b strings.Builder
	for i, r := range rows {
		b.WriteString(itoa(i + 1))
		b.WriteString(": ")
		b.WriteString(strings.Join(r, " | "))
		b.WriteString("\n")
	}
	return b.String()
}

func itoa(n int) string { return strconv.Itoa(n) }
