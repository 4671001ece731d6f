package interpreter_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/sheetpilot/internal/interpreter"
	"github.com/aretw0/sheetpilot/pkg/adapters/memory"
	"github.com/aretw0/sheetpilot/pkg/cellref"
	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/aretw0/sheetpilot/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func column(t *testing.T, g *memory.Grid, a1 string) []any {
	t.Helper()
	r, err := cellref.ParseRange(a1)
	require.NoError(t, err)
	values, err := g.Values(context.Background(), r)
	require.NoError(t, err)
	out := make([]any, 0, len(values))
	for _, row := range values {
		out = append(out, row...)
	}
	return out
}

func run(t *testing.T, g *memory.Grid, clip *domain.Clipboard, b *dsl.BatchBuilder) domain.Outcome {
	t.Helper()
	batch, err := b.Build()
	require.NoError(t, err)
	out, err := interpreter.New(g).Execute(context.Background(), batch, clip)
	require.NoError(t, err)
	return out
}

func TestExecute_BoldScenario(t *testing.T) {
	g := memory.NewGrid()
	out := run(t, g, nil, dsl.NewBatch().
		Select("A1:A10").
		Set("Test Data").
		Format("bold").
		TellUser("Bold applied").
		Drag("").
		Terminate().
		TellUser("unreachable"))

	assert.Equal(t, "Bold applied", out.Message)
	assert.True(t, out.Terminated)
	assert.False(t, out.HadRead)
	assert.Equal(t, 1, out.Skipped, "drag without a formula is a no-op")

	for row := 1; row <= 10; row++ {
		v, err := g.Cell(row, 1).Value(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Test Data", v)
		style, err := g.Style(context.Background(), row, 1)
		require.NoError(t, err)
		assert.True(t, style.Bold, "row %d", row)
	}
	last, _ := g.LastRow(context.Background())
	assert.Equal(t, 10, last)
}

func TestExecute_ReadScenario(t *testing.T) {
	g := memory.NewGridFromRows([][]any{{"Apple"}})
	out := run(t, g, nil, dsl.NewBatch().Read("A1:A1"))

	assert.Equal(t, []string{"Apple"}, out.ReadMessages)
	assert.True(t, out.HadRead)
	assert.Empty(t, out.Message)
}

func TestExecute_TerminateFreezesEverythingAfter(t *testing.T) {
	g := memory.NewGridFromRows([][]any{{"keep"}})
	out := run(t, g, nil, dsl.NewBatch().
		TellUser("before").
		Terminate().
		Select("A1").
		Set("changed").
		Read("A1:A1").
		TellUser("after"))

	assert.Equal(t, "before", out.Message)
	assert.False(t, out.HadRead)
	assert.Equal(t, []any{"keep"}, column(t, g, "A1:A1"))
}

func TestExecute_LastRowIsRecomputed(t *testing.T) {
	g := memory.NewGridFromRows([][]any{{"a"}, {"b"}, {"c"}})
	run(t, g, nil, dsl.NewBatch().
		Select("A5:A5").
		Set("grown").
		Select("A1:A-1").
		Set("y"))

	assert.Equal(t, []any{"y", "y", "y", "y", "y"}, column(t, g, "A1:A5"))
}

func TestExecute_SetThenReadWithSharedFilter(t *testing.T) {
	g := memory.NewGridFromRows([][]any{{"1"}, {"x"}, {"2"}})
	out := run(t, g, nil, dsl.NewBatch().
		Select("A1:A3").
		Set("42").Where("^[0-9]+$").
		Read("A1:A3").Where("^[0-9]+$"))

	assert.Equal(t, []any{"42", "x", "42"}, column(t, g, "A1:A3"))
	assert.Equal(t, []string{"42, 42"}, out.ReadMessages)
}

func TestExecute_SetFilterSeesPreWriteValues(t *testing.T) {
	g := memory.NewGridFromRows([][]any{{"old"}, {"old"}})
	run(t, g, nil, dsl.NewBatch().
		Select("A1:A2").
		Set("old-new").Where("^old$"))

	assert.Equal(t, []any{"old-new", "old-new"}, column(t, g, "A1:A2"))
}

func TestExecute_CopyPasteSameRegionIsIdempotent(t *testing.T) {
	rows := [][]any{{"a", 1.0}, {"", "=A1"}}
	g := memory.NewGridFromRows(rows)
	clip := &domain.Clipboard{}
	before := column(t, g, "A1:B2")
	run(t, g, clip, dsl.NewBatch().Select("A1:B2").Tool("copy").Tool("paste"))

	assert.Equal(t, before, column(t, g, "A1:B2"))
	assert.Equal(t, "=A1", g.Formula(2, 2), "unchanged cells are not rewritten")
}

func TestExecute_ClipboardSurvivesBatches(t *testing.T) {
	g := memory.NewGridFromRows([][]any{{"apple", "x"}, {"pear", "y"}})
	clip := &domain.Clipboard{}

	run(t, g, clip, dsl.NewBatch().Select("A1:A2").Tool("Copy").Where("^a"))
	assert.Equal(t, [][]any{{"apple"}, {nil}}, clip.Cells)

	run(t, g, clip, dsl.NewBatch().Select("B1:B2").Tool("PasteAsValues"))
	assert.Equal(t, []any{"apple", "y"}, column(t, g, "B1:B2"), "placeholders are not pasted")

	run(t, g, clip, dsl.NewBatch().Select("A1:B2").Tool("delete").Where("^p"))
	assert.Equal(t, []any{"apple", "apple", "", "y"}, column(t, g, "A1:B2"))
}

func TestExecute_SkipsWithoutSelection(t *testing.T) {
	g := memory.NewGridFromRows([][]any{{"a"}})
	out := run(t, g, nil, dsl.NewBatch().
		Set("x").
		Format("bold").
		Tool("delete").
		Drag("").
		TellUser("still here"))

	assert.Equal(t, 4, out.Skipped)
	assert.Equal(t, "still here", out.Message)
	assert.Equal(t, []any{"a"}, column(t, g, "A1:A1"))
}

func TestExecute_PasteOnEmptyClipboardIsNoop(t *testing.T) {
	g := memory.NewGridFromRows([][]any{{"a"}})
	out := run(t, g, &domain.Clipboard{}, dsl.NewBatch().Select("A1:A1").Tool("paste"))
	assert.Equal(t, 1, out.Skipped)
	assert.Equal(t, []any{"a"}, column(t, g, "A1:A1"))
}

func TestExecute_UnknownStyleTouchesNothing(t *testing.T) {
	g := memory.NewGridFromRows([][]any{{"a"}})
	out := run(t, g, nil, dsl.NewBatch().
		Select("A1:A1").
		Format("sparkle").
		FormatWith(domain.Format{Style: "fontColor"}))

	assert.Equal(t, 2, out.Skipped)
	style, err := g.Style(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.CellStyle{}, style)
}

func TestExecute_FormatWithFilter(t *testing.T) {
	g := memory.NewGridFromRows([][]any{{"?why"}, {"because"}})
	run(t, g, nil, dsl.NewBatch().
		Select("A1:A-1").
		FormatWith(domain.Format{Style: "backgroundcolor", Color: "yellow", Reg: `^\?.*$`}))

	s1, _ := g.Style(context.Background(), 1, 1)
	s2, _ := g.Style(context.Background(), 2, 1)
	assert.Equal(t, "yellow", s1.Background)
	assert.Empty(t, s2.Background)
}

func TestExecute_DragRelativeFormula(t *testing.T) {
	g := memory.NewGridFromRows([][]any{{"", 10.0}, {"", 20.0}, {"", 30.0}})
	out := run(t, g, nil, dsl.NewBatch().
		Select("C1:C3").
		Set("=B1*0.9").
		Drag(""))

	assert.Zero(t, out.Skipped)
	assert.Equal(t, "=B1*0.9", g.Formula(1, 3))
	assert.Equal(t, "=B2*0.9", g.Formula(2, 3))
	assert.Equal(t, "=B3*0.9", g.Formula(3, 3))
}

func TestExecute_DragWithOwnRangeReplacesSelection(t *testing.T) {
	g := memory.NewGridFromRows([][]any{{"=A1+1", "=A1"}})
	run(t, g, nil, dsl.NewBatch().
		Select("B1:B1").
		Drag("A1:A3").
		Format("bold"))

	assert.Equal(t, "=A2+1", g.Formula(2, 1))
	assert.Equal(t, "=A3+1", g.Formula(3, 1))
	assert.Equal(t, "=A1", g.Formula(1, 2), "cells outside the dragged range are untouched")

	s3, _ := g.Style(context.Background(), 3, 1)
	b1, _ := g.Style(context.Background(), 1, 2)
	assert.True(t, s3.Bold, "the dragged range became the selection")
	assert.False(t, b1.Bold)
}

func TestExecute_DragWithoutSelectionIsSkipped(t *testing.T) {
	g := memory.NewGridFromRows([][]any{{"=B1*2"}})
	out := run(t, g, nil, dsl.NewBatch().Drag("A1:A3"))

	assert.Zero(t, out.Applied)
	assert.Equal(t, 1, out.Skipped)
	assert.Empty(t, g.Formula(2, 1))
	assert.Empty(t, g.Formula(3, 1))
}

func TestExecute_ReadKeepsSelection(t *testing.T) {
	g := memory.NewGridFromRows([][]any{{"a", "b"}})
	out := run(t, g, nil, dsl.NewBatch().
		Select("A1:A1").
		Read("B1:B1").Where("^zzz$").
		Set("z"))

	assert.Equal(t, []string{""}, out.ReadMessages, "a read with no match still reports")
	assert.True(t, out.HadRead)
	assert.Equal(t, []any{"z", "b"}, column(t, g, "A1:B1"))
}

func TestExecute_MalformedActionsAreSkipped(t *testing.T) {
	g := memory.NewGridFromRows([][]any{{"a"}})
	batch := domain.Batch{
		domain.Select{Span: domain.Span{Col1: "A", Row1: 1}},
		domain.Select{Span: domain.Span{Row1: 3}},
		domain.Set{Text: "x", Reg: "(["},
		domain.Unknown{Kind: "Dance"},
		domain.ToolAction{Tool: "cut"},
		domain.Read{},
		domain.Set{Text: "ok"},
	}
	out, err := interpreter.New(g).Execute(context.Background(), batch, nil)
	require.NoError(t, err)

	assert.Equal(t, 5, out.Skipped)
	assert.Equal(t, 2, out.Applied)
	assert.True(t, out.HadRead, "a Read marks the batch even when it is skipped")
	assert.Equal(t, []any{"ok"}, column(t, g, "A1:A1"), "invalid select keeps the previous selection")
}

func TestExecute_Hooks(t *testing.T) {
	g := memory.NewGrid()
	var applied []domain.ActionType
	var skipped []error
	hooks := domain.LifecycleHooks{
		OnAction: func(ctx context.Context, e *domain.ActionEvent) {
			applied = append(applied, e.Action)
			assert.Equal(t, "s-1", e.SessionID)
		},
		OnSkip: func(ctx context.Context, e *domain.SkipEvent) {
			skipped = append(skipped, e.Reason)
		},
	}
	batch := dsl.NewBatch().Set("x").Select("A1").TellUser("hi").Terminate().MustBuild()

	ctx := domain.WithSessionID(context.Background(), "s-1")
	_, err := interpreter.New(g, interpreter.WithLifecycleHooks(hooks)).Execute(ctx, batch, nil)
	require.NoError(t, err)

	assert.Equal(t, []domain.ActionType{domain.ActionSelect, domain.ActionTellUser, domain.ActionTerminate}, applied)
	require.Len(t, skipped, 1)
	assert.ErrorIs(t, skipped[0], domain.ErrNoSelection)
}

type brokenGrid struct {
	*memory.Grid
}

var errDisk = errors.New("disk on fire")

func (brokenGrid) Values(context.Context, domain.Range) ([][]any, error) {
	return nil, errDisk
}

func TestExecute_GridFailureAborts(t *testing.T) {
	g := brokenGrid{memory.NewGrid()}
	batch := dsl.NewBatch().TellUser("first").Select("A1").Set("x").TellUser("never").MustBuild()

	out, err := interpreter.New(g).Execute(context.Background(), batch, nil)
	require.ErrorIs(t, err, errDisk)
	assert.Equal(t, "first", out.Message)
}

func TestExecute_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := interpreter.New(memory.NewGrid()).Execute(ctx, domain.Batch{domain.TellUser{Message: "x"}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecute_ReadSkipsEmptyCells(t *testing.T) {
	g := memory.NewGridFromRows([][]any{{"a"}, {""}, {"c"}})
	out := run(t, g, nil, dsl.NewBatch().Read("A1:A5"))

	assert.Equal(t, []string{"a, c"}, out.ReadMessages)
}

func TestExecute_ReadWithFilterReportsEmptyCells(t *testing.T) {
	g := memory.NewGridFromRows([][]any{{"a"}, {""}, {"c"}})
	out := run(t, g, nil, dsl.NewBatch().
		Select("B1:B1").
		Set("").
		Read("A1:B3").Where("^$"))

	assert.Equal(t, []string{", , , "}, out.ReadMessages, "A2 and B1 through B3 are empty")
}
