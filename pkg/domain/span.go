package domain

import "strconv"

// LastRow is the Row2 sentinel meaning "the last non-empty row of the sheet".
const LastRow = -1

// Span holds the coordinates carried by Select, SelectAndDrag and Read.
//
// Col2 == "" defaults to Col1. Row2 == 0 means absent and defaults to Row1;
// Row2 == LastRow is resolved against the grid at execution time.
type Span struct {
	Col1 string `json:"col1,omitempty"`
	Row1 int    `json:"row1,omitempty"`
	Col2 string `json:"col2,omitempty"`
	Row2 int    `json:"row2,omitempty"`
}

// IsZero reports whether no coordinate was supplied.
func (s Span) IsZero() bool {
	return s.Col1 == "" && s.Row1 == 0 && s.Col2 == "" && s.Row2 == 0
}

// Complete reports whether the span carries the mandatory start coordinates.
func (s Span) Complete() bool {
	return s.Col1 != "" && s.Row1 > 0
}

// String renders the span in A1 notation, keeping the -1 sentinel ("C1:C-1").
func (s Span) String() string {
	if s.IsZero() {
		return ""
	}
	col2 := s.Col2
	if col2 == "" {
		col2 = s.Col1
	}
	row2 := s.Row2
	if row2 == 0 {
		row2 = s.Row1
	}
	return s.Col1 + strconv.Itoa(s.Row1) + ":" + col2 + strconv.Itoa(row2)
}

// Range is a resolved rectangular region. Coordinates are 1-based and inclusive,
// with Row1 <= Row2 and Col1 <= Col2.
type Range struct {
	Row1 int `json:"row1"`
	Col1 int `json:"col1"`
	Row2 int `json:"row2"`
	Col2 int `json:"col2"`
}

// NewRange builds a normalized range from two corners.
func NewRange(row1, col1, row2, col2 int) Range {
	if row2 < row1 {
		row1, row2 = row2, row1
	}
	if col2 < col1 {
		col1, col2 = col2, col1
	}
	return Range{Row1: row1, Col1: col1, Row2: row2, Col2: col2}
}

// Rows returns the number of rows in the range.
func (r Range) Rows() int { return r.Row2 - r.Row1 + 1 }

// Cols returns the number of columns in the range.
func (r Range) Cols() int { return r.Col2 - r.Col1 + 1 }

// Cell returns the absolute coordinates of the 0-based offset (i, j) inside the range.
func (r Range) Cell(i, j int) (row, col int) {
	return r.Row1 + i, r.Col1 + j
}
