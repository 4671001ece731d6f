package cellref

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/xuri/excelize/v2"
)

// cellPattern accepts the -1 row sentinel in addition to plain A1 cells.
var cellPattern = regexp.MustCompile(`^\$?([A-Za-z]+)\$?(-?\d+)$`)

// Column converts a column name ("A", "aa") to its 1-based number.
func Column(name string) (int, error) {
	n, err := excelize.ColumnNameToNumber(strings.ToUpper(strings.TrimSpace(name)))
	if err != nil {
		return 0, fmt.Errorf("%w: column %q: %v", domain.ErrInvalidRange, name, err)
	}
	return n, nil
}

// ColumnName converts a 1-based column number to its name.
func ColumnName(n int) string {
	name, err := excelize.ColumnNumberToName(n)
	if err != nil {
		return ""
	}
	return name
}

// CellName renders 1-based coordinates in A1 notation.
func CellName(row, col int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return ""
	}
	return name
}

// ParseCell splits "B7" (or "B-1") into column name and row.
func ParseCell(text string) (string, int, error) {
	m := cellPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", 0, fmt.Errorf("%w: cell %q", domain.ErrInvalidRange, text)
	}
	row, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, fmt.Errorf("%w: cell %q", domain.ErrInvalidRange, text)
	}
	return strings.ToUpper(m[1]), row, nil
}

// ParseSpan parses "A1:B3", "C1:C-1" or a single "A1" into a Span.
// A single cell leaves Col2 and Row2 unset so that they default to the start.
func ParseSpan(text string) (domain.Span, error) {
	first, second, pair := strings.Cut(strings.TrimSpace(text), ":")
	col1, row1, err := ParseCell(first)
	if err != nil {
		return domain.Span{}, err
	}
	span := domain.Span{Col1: col1, Row1: row1}
	if !pair {
		return span, nil
	}
	col2, row2, err := ParseCell(second)
	if err != nil {
		return domain.Span{}, err
	}
	span.Col2, span.Row2 = col2, row2
	return span, nil
}

// Resolve turns a span into a concrete range. lastRow is only consulted for
// the LastRow sentinel, so the value is always current for the grid.
// When the sheet is empty the sentinel collapses to the start row.
func Resolve(span domain.Span, lastRow func() (int, error)) (domain.Range, error) {
	if !span.Complete() {
		return domain.Range{}, fmt.Errorf("%w: span %q needs col1 and row1", domain.ErrMissingParameter, span.String())
	}
	col1, err := Column(span.Col1)
	if err != nil {
		return domain.Range{}, err
	}
	col2 := col1
	if span.Col2 != "" {
		if col2, err = Column(span.Col2); err != nil {
			return domain.Range{}, err
		}
	}
	row2 := span.Row2
	switch {
	case row2 == domain.LastRow:
		last, err := lastRow()
		if err != nil {
			return domain.Range{}, err
		}
		row2 = last
		if row2 < 1 {
			row2 = span.Row1
		}
	case row2 <= 0:
		row2 = span.Row1
	}
	return domain.NewRange(span.Row1, col1, row2, col2), nil
}

// ParseRange parses A1 text into a range. The LastRow sentinel is not allowed here.
func ParseRange(text string) (domain.Range, error) {
	span, err := ParseSpan(text)
	if err != nil {
		return domain.Range{}, err
	}
	if span.Row2 < 0 {
		return domain.Range{}, fmt.Errorf("%w: %q", domain.ErrInvalidRange, text)
	}
	return Resolve(span, func() (int, error) { return span.Row1, nil })
}

// FormatRange renders a range in A1 notation.
func FormatRange(r domain.Range) string {
	return CellName(r.Row1, r.Col1) + ":" + CellName(r.Row2, r.Col2)
}
