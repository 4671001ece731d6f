package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		session := domain.NewSession(sessionID)
		session.Clipboard = domain.Clipboard{Cells: [][]any{{"Apple", nil}, {"Pear", 42}}}

		require.NoError(t, store.Save(ctx, session), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sessionID, loaded.ID)
		require.Len(t, loaded.Clipboard.Cells, 2)
		assert.Equal(t, "Apple", loaded.Clipboard.Cells[0][0])
		assert.Nil(t, loaded.Clipboard.Cells[0][1], "placeholders must survive persistence")
		// JSON backends turn numbers into float64; only existence is part of the contract.
		assert.NotNil(t, loaded.Clipboard.Cells[1][1])
	})

	t.Run("Load Is A Copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Clipboard.Cells = nil

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.False(t, again.Clipboard.Empty(), "mutating a loaded session must not touch the store")
	})

	t.Run("Empty Clipboard Stays Empty", func(t *testing.T) {
		id := sessionID + "-empty"
		require.NoError(t, store.Save(ctx, domain.NewSession(id)))
		defer func() { _ = store.Delete(ctx, id) }()

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.True(t, loaded.Clipboard.Empty())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewSession(sessionID)))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, domain.NewSession(id1))
		_ = store.Save(ctx, domain.NewSession(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunGridContract verifies a Grid implementation. newGrid must return an empty grid.
func RunGridContract(t *testing.T, newGrid func(t *testing.T) Grid) {
	ctx := context.Background()

	t.Run("Empty Grid", func(t *testing.T) {
		g := newGrid(t)
		last, err := g.LastRow(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, last)

		values, err := g.Values(ctx, domain.NewRange(1, 1, 2, 2))
		require.NoError(t, err)
		assert.Equal(t, [][]any{{"", ""}, {"", ""}}, values, "values are always shaped like the range")

		snap, err := Snapshot(ctx, g, 5)
		require.NoError(t, err)
		assert.Nil(t, snap)
	})

	t.Run("SetValues and Values", func(t *testing.T) {
		g := newGrid(t)
		r := domain.NewRange(2, 1, 3, 2)
		require.NoError(t, g.SetValues(ctx, r, [][]any{{"a", "b"}, {"c", "d"}}))

		values, err := g.Values(ctx, r)
		require.NoError(t, err)
		assert.Equal(t, [][]any{{"a", "b"}, {"c", "d"}}, values)

		v, err := g.Cell(3, 2).Value(ctx)
		require.NoError(t, err)
		assert.Equal(t, "d", v)
	})

	t.Run("LastRow Tracks Mutations", func(t *testing.T) {
		g := newGrid(t)
		require.NoError(t, g.Cell(4, 1).SetValue(ctx, "x"))
		last, err := g.LastRow(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, last)

		require.NoError(t, g.Cell(7, 3).SetValue(ctx, "y"))
		last, err = g.LastRow(ctx)
		require.NoError(t, err)
		assert.Equal(t, 7, last)

		lastCol, err := g.LastColumn(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, lastCol)

		require.NoError(t, g.Cell(7, 3).SetValue(ctx, ""))
		last, err = g.LastRow(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, last, "clearing a cell shrinks the used area")
	})

	t.Run("Relative Formulas", func(t *testing.T) {
		g := newGrid(t)
		require.NoError(t, g.Cell(1, 1).SetValue(ctx, "2"))
		require.NoError(t, g.Cell(1, 2).SetFormula(ctx, "=A1*2"))

		r1c1, err := g.Cell(1, 2).FormulaR1C1(ctx)
		require.NoError(t, err)
		assert.Equal(t, "=R[0]C[-1]*2", r1c1)

		require.NoError(t, g.Cell(2, 2).SetFormulaR1C1(ctx, r1c1))
		moved, err := g.Cell(2, 2).FormulaR1C1(ctx)
		require.NoError(t, err)
		assert.Equal(t, r1c1, moved, "relative formula is preserved by position")

		none, err := g.Cell(1, 1).FormulaR1C1(ctx)
		require.NoError(t, err)
		assert.Empty(t, none)

		require.NoError(t, g.Cell(1, 2).SetValue(ctx, "plain"))
		cleared, err := g.Cell(1, 2).FormulaR1C1(ctx)
		require.NoError(t, err)
		assert.Empty(t, cleared, "writing a literal drops the formula")
	})

	t.Run("ApplyStyle", func(t *testing.T) {
		g := newGrid(t)
		cell := g.Cell(1, 1)
		require.NoError(t, cell.SetValue(ctx, "x"))
		require.NoError(t, cell.ApplyStyle(ctx, domain.StyleOp{Kind: domain.StyleBold}))
		require.NoError(t, cell.ApplyStyle(ctx, domain.StyleOp{Kind: domain.StyleBackgroundColor, Color: "#FFFF00"}))

		if sr, ok := g.(StyleReader); ok {
			style, err := sr.Style(ctx, 1, 1)
			require.NoError(t, err)
			assert.True(t, style.Bold)
			assert.Equal(t, "#FFFF00", style.Background)
		}
	})

	t.Run("Snapshot", func(t *testing.T) {
		g := newGrid(t)
		for row := 1; row <= 7; row++ {
			require.NoError(t, g.Cell(row, 1).SetValue(ctx, "r"))
		}
		require.NoError(t, g.Cell(2, 2).SetValue(ctx, "b2"))

		snap, err := Snapshot(ctx, g, 5)
		require.NoError(t, err)
		require.Len(t, snap, 5)
		assert.Equal(t, []string{"r", "b2"}, snap[1])
		assert.Equal(t, []string{"r", ""}, snap[0])
	})
}
