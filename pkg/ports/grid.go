package ports

import (
	"context"

	"github.com/aretw0/sheetpilot/pkg/domain"
)

// Grid is a persistent 2-D tabular store addressed with 1-based coordinates.
// Implementations are not required to be safe for concurrent use; callers serialize access.
type Grid interface {
	// LastRow returns the last row holding a non-empty value, or 0 for an empty sheet.
	// It is computed against the current contents on every call.
	LastRow(ctx context.Context) (int, error)

	// LastColumn returns the last column holding a non-empty value, or 0 for an empty sheet.
	LastColumn(ctx context.Context) (int, error)

	// Values returns the values of r, always shaped Rows() x Cols(). Empty cells are "".
	Values(ctx context.Context, r domain.Range) ([][]any, error)

	// SetValues writes a block shaped like r. Writing a literal clears any formula.
	SetValues(ctx context.Context, r domain.Range, values [][]any) error

	// Cell returns a handle to a single cell.
	Cell(row, col int) Cell
}

// Cell is a handle to one cell of a Grid.
type Cell interface {
	Value(ctx context.Context) (any, error)
	SetValue(ctx context.Context, v any) error

	// SetFormula stores an A1 formula ("=A1*2") as is.
	SetFormula(ctx context.Context, formula string) error

	// FormulaR1C1 returns the formula in relative R1C1 notation, or "" if the cell has none.
	FormulaR1C1(ctx context.Context) (string, error)

	// SetFormulaR1C1 stores an R1C1 formula, adjusting relative references to this cell.
	SetFormulaR1C1(ctx context.Context, formula string) error

	// ApplyStyle mutates the cell formatting.
	ApplyStyle(ctx context.Context, op domain.StyleOp) error
}

// StyleReader is implemented by grids that can report the formatting of a cell.
type StyleReader interface {
	Style(ctx context.Context, row, col int) (domain.CellStyle, error)
}

// Flusher is implemented by grids backed by a file that must be written back
// after a batch.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Snapshot returns the first rows of the grid, up to its last non-empty column, stringified.
// It returns nil for an empty grid.
func Snapshot(ctx context.Context, grid Grid, rows int) ([][]string, error) {
	lastRow, err := grid.LastRow(ctx)
	if err != nil {
		return nil, err
	}
	lastCol, err := grid.LastColumn(ctx)
	if err != nil {
		return nil, err
	}
	if lastRow == 0 || lastCol == 0 || rows <= 0 {
		return nil, nil
	}
	if lastRow > rows {
		lastRow = rows
	}
	values, err := grid.Values(ctx, domain.NewRange(1, 1, lastRow, lastCol))
	if err != nil {
		return nil, err
	}
	return domain.FormatRows(values), nil
}
