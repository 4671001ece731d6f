package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/aretw0/sheetpilot/pkg/cellref"
	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/aretw0/sheetpilot/pkg/ports"
)

type coord struct{ row, col int }

type cell struct {
	value   any
	formula string // A1 form, including the leading "="
	style   domain.CellStyle
}

func (c *cell) empty() bool {
	return c.formula == "" && domain.FormatValue(c.value) == ""
}

// Grid implements ports.Grid in memory. Formulas are stored but not evaluated:
// the value of a formula cell is its formula text.
// Safe for concurrent use.
type Grid struct {
	cells map[coord]*cell
	mu    sync.RWMutex
}

// NewGrid creates an empty grid.
func NewGrid() *Grid {
	return &Grid{cells: make(map[coord]*cell)}
}

// NewGridFromRows creates a grid seeded from rows starting at A1.
// Values starting with "=" are stored as formulas.
func NewGridFromRows(rows [][]any) *Grid {
	g := NewGrid()
	for i, row := range rows {
		for j, v := range row {
			if s, ok := v.(string); ok && strings.HasPrefix(strings.TrimSpace(s), "=") {
				g.cells[coord{i + 1, j + 1}] = &cell{formula: strings.TrimSpace(s)}
				continue
			}
			g.put(i+1, j+1, v)
		}
	}
	return g
}

// LastRow returns the last non-empty row.
func (g *Grid) LastRow(ctx context.Context) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	last := 0
	for k, c := range g.cells {
		if k.row > last && !c.empty() {
			last = k.row
		}
	}
	return last, nil
}

// LastColumn returns the last non-empty column.
func (g *Grid) LastColumn(ctx context.Context) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	last := 0
	for k, c := range g.cells {
		if k.col > last && !c.empty() {
			last = k.col
		}
	}
	return last, nil
}

// Values returns the block of values addressed by r.
func (g *Grid) Values(ctx context.Context, r domain.Range) ([][]any, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([][]any, r.Rows())
	for i := range out {
		out[i] = make([]any, r.Cols())
		for j := range out[i] {
			row, col := r.Cell(i, j)
			out[i][j] = g.get(row, col)
		}
	}
	return out, nil
}

// SetValues writes a block shaped like r. Missing entries are written as "".
func (g *Grid) SetValues(ctx context.Context, r domain.Range, values [][]any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := 0; i < r.Rows(); i++ {
		for j := 0; j < r.Cols(); j++ {
			var v any = ""
			if i < len(values) && j < len(values[i]) {
				v = values[i][j]
			}
			row, col := r.Cell(i, j)
			g.put(row, col, v)
		}
	}
	return nil
}

// Cell returns a handle to the cell at (row, col).
func (g *Grid) Cell(row, col int) ports.Cell {
	return &cellHandle{grid: g, row: row, col: col}
}

// Style reports the formatting of a cell.
func (g *Grid) Style(ctx context.Context, row, col int) (domain.CellStyle, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if c, ok := g.cells[coord{row, col}]; ok {
		return c.style, nil
	}
	return domain.CellStyle{}, nil
}

// Formula returns the A1 formula of a cell, or "".
func (g *Grid) Formula(row, col int) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if c, ok := g.cells[coord{row, col}]; ok {
		return c.formula
	}
	return ""
}

func (g *Grid) get(row, col int) any {
	c, ok := g.cells[coord{row, col}]
	switch {
	case !ok:
		return ""
	case c.formula != "":
		return c.formula
	case c.value == nil:
		return ""
	}
	return c.value
}

// put writes a literal, dropping any formula. Caller holds the write lock.
func (g *Grid) put(row, col int, v any) {
	c := g.slot(row, col)
	c.value = v
	c.formula = ""
}

func (g *Grid) slot(row, col int) *cell {
	k := coord{row, col}
	c, ok := g.cells[k]
	if !ok {
		c = &cell{}
		g.cells[k] = c
	}
	return c
}

type cellHandle struct {
	grid     *Grid
	row, col int
}

func (h *cellHandle) Value(ctx context.Context) (any, error) {
	h.grid.mu.RLock()
	defer h.grid.mu.RUnlock()
	return h.grid.get(h.row, h.col), nil
}

func (h *cellHandle) SetValue(ctx context.Context, v any) error {
	h.grid.mu.Lock()
	defer h.grid.mu.Unlock()
	h.grid.put(h.row, h.col, v)
	return nil
}

func (h *cellHandle) SetFormula(ctx context.Context, formula string) error {
	h.grid.mu.Lock()
	defer h.grid.mu.Unlock()
	c := h.grid.slot(h.row, h.col)
	c.formula = strings.TrimSpace(formula)
	c.value = nil
	return nil
}

func (h *cellHandle) FormulaR1C1(ctx context.Context) (string, error) {
	h.grid.mu.RLock()
	defer h.grid.mu.RUnlock()
	c, ok := h.grid.cells[coord{h.row, h.col}]
	if !ok || c.formula == "" {
		return "", nil
	}
	return cellref.ToR1C1(c.formula, h.row, h.col), nil
}

func (h *cellHandle) SetFormulaR1C1(ctx context.Context, formula string) error {
	return h.SetFormula(ctx, cellref.FromR1C1(formula, h.row, h.col))
}

func (h *cellHandle) ApplyStyle(ctx context.Context, op domain.StyleOp) error {
	h.grid.mu.Lock()
	defer h.grid.mu.Unlock()
	c := h.grid.slot(h.row, h.col)
	c.style = c.style.Apply(op)
	return nil
}
