// Package xlsx implements ports.Grid over one sheet of an Excel workbook.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/sheetpilot/pkg/cellref"
	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/aretw0/sheetpilot/pkg/ports"
	"github.com/xuri/excelize/v2"
)

// Grid is a workbook sheet. Formula cells report their calculated value.
// Not safe for concurrent use; callers serialize.
type Grid struct {
	file  *excelize.File
	sheet string
	path  string
}

// New creates a grid over a fresh in-memory workbook.
func New(sheet string) (*Grid, error) {
	return wrap(excelize.NewFile(), sheet, "")
}

// Open opens the workbook at path, creating it on first Flush when it does not
// exist. An empty sheet selects the active sheet; a missing one is created.
func Open(path, sheet string) (*Grid, error) {
	f, err := excelize.OpenFile(path)
	if errors.Is(err, os.ErrNotExist) {
		f, err = excelize.NewFile(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return wrap(f, sheet, path)
}

func wrap(f *excelize.File, sheet, path string) (*Grid, error) {
	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", sheet, err)
		}
	}
	return &Grid{file: f, sheet: sheet, path: path}, nil
}

// Sheet returns the sheet name.
func (g *Grid) Sheet() string { return g.sheet }

// File exposes the underlying workbook.
func (g *Grid) File() *excelize.File { return g.file }

// Flush writes the workbook to its path. Grids created with New have no path
// and flushing them is a no-op.
func (g *Grid) Flush(ctx context.Context) error {
	if g.path == "" {
		return nil
	}
	if err := g.file.SaveAs(g.path); err != nil {
		return fmt.Errorf("save workbook %s: %w", g.path, err)
	}
	return nil
}

// Close releases the workbook.
func (g *Grid) Close() error {
	return g.file.Close()
}

// LastRow returns the last row holding a value or a formula.
func (g *Grid) LastRow(ctx context.Context) (int, error) {
	rows, err := g.file.GetRows(g.sheet)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// LastColumn returns the last column holding a value or a formula.
func (g *Grid) LastColumn(ctx context.Context) (int, error) {
	rows, err := g.file.GetRows(g.sheet)
	if err != nil {
		return 0, err
	}
	last := 0
	for _, row := range rows {
		last = max(last, len(row))
	}
	return last, nil
}

// Values returns the block addressed by r.
func (g *Grid) Values(ctx context.Context, r domain.Range) ([][]any, error) {
	out := make([][]any, r.Rows())
	for i := range out {
		out[i] = make([]any, r.Cols())
		for j := range out[i] {
			row, col := r.Cell(i, j)
			v, err := g.value(cellref.CellName(row, col))
			if err != nil {
				return nil, err
			}
			out[i][j] = v
		}
	}
	return out, nil
}

// SetValues writes a block shaped like r. Missing entries are written as "".
func (g *Grid) SetValues(ctx context.Context, r domain.Range, values [][]any) error {
	for i := 0; i < r.Rows(); i++ {
		for j := 0; j < r.Cols(); j++ {
			var v any = ""
			if i < len(values) && j < len(values[i]) {
				v = values[i][j]
			}
			row, col := r.Cell(i, j)
			if err := g.file.SetCellValue(g.sheet, cellref.CellName(row, col), v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Cell returns a handle to the cell at (row, col).
func (g *Grid) Cell(row, col int) ports.Cell {
	return &cellHandle{grid: g, row: row, col: col, name: cellref.CellName(row, col)}
}

// Style reports the formatting of a cell.
func (g *Grid) Style(ctx context.Context, row, col int) (domain.CellStyle, error) {
	s, err := g.style(cellref.CellName(row, col))
	if err != nil {
		return domain.CellStyle{}, err
	}
	return cellStyle(s), nil
}

func (g *Grid) value(name string) (any, error) {
	formula, err := g.file.GetCellFormula(g.sheet, name)
	if err != nil {
		return nil, err
	}
	if formula != "" {
		if v, err := g.file.CalcCellValue(g.sheet, name); err == nil {
			return v, nil
		}
	}

	typ, err := g.file.GetCellType(g.sheet, name)
	if err != nil {
		return nil, err
	}
	raw, err := g.file.GetCellValue(g.sheet, name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	switch typ {
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f, nil
		}
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	}
	return raw, nil
}

func (g *Grid) style(name string) (*excelize.Style, error) {
	id, err := g.file.GetCellStyle(g.sheet, name)
	if err != nil {
		return nil, err
	}
	return g.file.GetStyle(id)
}

type cellHandle struct {
	grid     *Grid
	row, col int
	name     string
}

func (h *cellHandle) Value(ctx context.Context) (any, error) {
	return h.grid.value(h.name)
}

func (h *cellHandle) SetValue(ctx context.Context, v any) error {
	return h.grid.file.SetCellValue(h.grid.sheet, h.name, v)
}

func (h *cellHandle) SetFormula(ctx context.Context, formula string) error {
	formula = strings.TrimPrefix(strings.TrimSpace(formula), "=")
	return h.grid.file.SetCellFormula(h.grid.sheet, h.name, formula)
}

func (h *cellHandle) FormulaR1C1(ctx context.Context) (string, error) {
	formula, err := h.grid.file.GetCellFormula(h.grid.sheet, h.name)
	if err != nil || formula == "" {
		return "", err
	}
	return cellref.ToR1C1("="+formula, h.row, h.col), nil
}

func (h *cellHandle) SetFormulaR1C1(ctx context.Context, formula string) error {
	return h.SetFormula(ctx, cellref.FromR1C1(formula, h.row, h.col))
}

func (h *cellHandle) ApplyStyle(ctx context.Context, op domain.StyleOp) error {
	s, err := h.grid.style(h.name)
	if err != nil {
		return err
	}
	if err := applyOp(s, op); err != nil {
		return err
	}
	id, err := h.grid.file.NewStyle(s)
	if err != nil {
		return fmt.Errorf("register style: %w", err)
	}
	return h.grid.file.SetCellStyle(h.grid.sheet, h.name, h.name, id)
}
