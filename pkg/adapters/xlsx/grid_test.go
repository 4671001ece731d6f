package xlsx_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/sheetpilot/internal/interpreter"
	"github.com/aretw0/sheetpilot/pkg/adapters/xlsx"
	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/aretw0/sheetpilot/pkg/dsl"
	"github.com/aretw0/sheetpilot/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGrid(t *testing.T) *xlsx.Grid {
	t.Helper()
	g, err := xlsx.New("Data")
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func TestGridContract(t *testing.T) {
	ports.RunGridContract(t, func(t *testing.T) ports.Grid {
		return newGrid(t)
	})
}

func TestGrid_FormulaValues(t *testing.T) {
	ctx := context.Background()
	g := newGrid(t)

	require.NoError(t, g.Cell(1, 1).SetValue(ctx, 10.0))
	require.NoError(t, g.Cell(1, 2).SetFormula(ctx, "=A1*0.9"))

	v, err := g.Cell(1, 2).Value(ctx)
	require.NoError(t, err)
	assert.Equal(t, "9", v)

	n, err := g.Cell(1, 1).Value(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10.0, n)
}

func TestGrid_DragFillsRelativeFormulas(t *testing.T) {
	ctx := context.Background()
	g := newGrid(t)
	for row := 1; row <= 3; row++ {
		require.NoError(t, g.Cell(row, 2).SetValue(ctx, float64(row*10)))
	}

	batch := dsl.NewBatch().
		Select("C1:C1").Set("=B1*0.9").
		Select("C1:C3").Drag("").
		MustBuild()
	_, err := interpreter.New(g).Execute(ctx, batch, nil)
	require.NoError(t, err)

	formula, err := g.File().GetCellFormula(g.Sheet(), "C3")
	require.NoError(t, err)
	assert.Equal(t, "B3*0.9", formula)

	v, err := g.Cell(3, 3).Value(ctx)
	require.NoError(t, err)
	assert.Equal(t, "27", v)
}

func TestGrid_Styles(t *testing.T) {
	ctx := context.Background()
	g := newGrid(t)
	cell := g.Cell(2, 2)
	yes := true

	for _, op := range []domain.StyleOp{
		{Kind: domain.StyleItalic},
		{Kind: domain.StyleUnderline},
		{Kind: domain.StyleStrikethrough},
		{Kind: domain.StyleFontColor, Color: "red"},
		{Kind: domain.StyleFontSize, Size: 14},
		{Kind: domain.StyleHorizontalAlignment, Alignment: "center"},
		{Kind: domain.StyleVerticalAlignment, Alignment: "middle"},
		{Kind: domain.StyleBorder, Border: domain.Border{Top: &yes, Left: &yes}},
		{Kind: domain.StyleWrapText, Wrap: true},
		{Kind: domain.StyleNumberFormat, NumberFormat: "$#,##0.00"},
	} {
		require.NoError(t, cell.ApplyStyle(ctx, op), op.Kind)
	}

	s, err := g.Style(ctx, 2, 2)
	require.NoError(t, err)
	assert.True(t, s.Italic)
	assert.True(t, s.Strikethrough)
	assert.False(t, s.Underline, "strikethrough replaces underline")
	assert.Equal(t, "#FF0000", s.FontColor)
	assert.Equal(t, 14, s.FontSize)
	assert.Equal(t, "center", s.Horizontal)
	assert.Equal(t, "center", s.Vertical)
	assert.True(t, s.Wrap)
	assert.Equal(t, "$#,##0.00", s.NumberFormat)
	require.NotNil(t, s.Border.Top)
	require.NotNil(t, s.Border.Left)
	assert.Nil(t, s.Border.Bottom)

	err = cell.ApplyStyle(ctx, domain.StyleOp{Kind: domain.StyleBackgroundColor, Color: "not-a-color"})
	assert.ErrorIs(t, err, domain.ErrUnknownStyle)
}

func TestGrid_FlushRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "book.xlsx")

	g, err := xlsx.Open(path, "Sheet1")
	require.NoError(t, err)
	require.NoError(t, g.SetValues(ctx, domain.NewRange(1, 1, 1, 2), [][]any{{"Name", "Price"}}))
	require.NoError(t, g.Flush(ctx))
	require.NoError(t, g.Close())

	reopened, err := xlsx.Open(path, "")
	require.NoError(t, err)
	defer reopened.Close()

	snap, err := ports.Snapshot(ctx, reopened, domain.DefaultSnapshotRows)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Name", "Price"}}, snap)
}
