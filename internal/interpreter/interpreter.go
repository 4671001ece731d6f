// Package interpreter executes action batches against a grid.
package interpreter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/sheetpilot/pkg/cellref"
	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/aretw0/sheetpilot/pkg/ports"
	"github.com/aretw0/sheetpilot/pkg/registry"
)

// skipReasons are the malformed-action conditions that make an action a no-op
// instead of failing the batch.
var skipReasons = []error{
	domain.ErrNoSelection,
	domain.ErrEmptyClipboard,
	domain.ErrUnknownTool,
	domain.ErrToolFailed,
	domain.ErrUnknownStyle,
	domain.ErrMissingParameter,
	domain.ErrNoFormula,
	domain.ErrInvalidFilter,
	domain.ErrInvalidRange,
	domain.ErrUnknownAction,
}

func isSkip(err error) bool {
	for _, reason := range skipReasons {
		if errors.Is(err, reason) {
			return true
		}
	}
	return false
}

// Interpreter runs batches in order against one grid.
// It is not safe for concurrent use with the same grid; callers serialize.
type Interpreter struct {
	grid   ports.Grid
	tools  *registry.Registry
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// New creates an interpreter bound to grid.
func New(grid ports.Grid, opts ...Option) *Interpreter {
	in := &Interpreter{grid: grid}
	defaults(in)
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// batchState is the per-batch cursor and message log. The selection never
// outlives one Execute call.
type batchState struct {
	selection *domain.Range
	user      []string
	reads     []string
	hadRead   bool
}

// Execute runs the batch in order. Actions needing a selection that is not set,
// or carrying an unknown style, tool or type, are skipped. Terminate stops the
// batch. A grid failure aborts the batch and is returned with the outcome so far.
// clip is the session clipboard; copy replaces its contents.
func (in *Interpreter) Execute(ctx context.Context, batch domain.Batch, clip *domain.Clipboard) (domain.Outcome, error) {
	if clip == nil {
		clip = &domain.Clipboard{}
	}
	st := &batchState{}
	var out domain.Outcome

	finish := func() domain.Outcome {
		out.Message = strings.Join(st.user, " ")
		out.ReadMessages = st.reads
		out.HadRead = st.hadRead
		return out
	}

	for i, action := range batch {
		if err := ctx.Err(); err != nil {
			return finish(), err
		}
		if _, ok := action.(domain.Terminate); ok {
			in.logger.DebugContext(ctx, "processing terminated", "index", i, "remaining", len(batch)-i-1)
			out.Terminated = true
			out.Applied++
			in.emitApplied(ctx, i, action)
			break
		}

		err := in.apply(ctx, st, clip, action)
		switch {
		case err == nil:
			out.Applied++
			in.emitApplied(ctx, i, action)
		case isSkip(err):
			out.Skipped++
			in.emitSkipped(ctx, i, action, err)
		default:
			return finish(), fmt.Errorf("action %d (%s): %w", i, action.Type(), err)
		}
	}
	return finish(), nil
}

func (in *Interpreter) apply(ctx context.Context, st *batchState, clip *domain.Clipboard, action domain.Action) error {
	switch a := action.(type) {
	case domain.Select:
		r, err := in.resolve(ctx, a.Span)
		if err != nil {
			return err
		}
		st.selection = &r
		in.logger.DebugContext(ctx, "selected range", "range", cellref.FormatRange(r))
		return nil
	case domain.SelectAndDrag:
		return in.selectAndDrag(ctx, st, a)
	case domain.ToolAction:
		return in.toolAction(ctx, st, clip, a)
	case domain.Set:
		return in.set(ctx, st, a)
	case domain.Format:
		return in.format(ctx, st, a)
	case domain.Read:
		st.hadRead = true
		return in.read(ctx, st, a)
	case domain.TellUser:
		if a.Message != "" {
			st.user = append(st.user, a.Message)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", domain.ErrUnknownAction, action.Type())
}

// resolve turns a span into a range, recomputing the last row on every call.
func (in *Interpreter) resolve(ctx context.Context, span domain.Span) (domain.Range, error) {
	return cellref.Resolve(span, func() (int, error) {
		return in.grid.LastRow(ctx)
	})
}

func (in *Interpreter) selectAndDrag(ctx context.Context, st *batchState, a domain.SelectAndDrag) error {
	if st.selection == nil {
		return domain.ErrNoSelection
	}
	if !a.Span.IsZero() {
		r, err := in.resolve(ctx, a.Span)
		if err != nil {
			return err
		}
		st.selection = &r
	}
	r := *st.selection

	formula, err := in.grid.Cell(r.Row1, r.Col1).FormulaR1C1(ctx)
	if err != nil {
		return err
	}
	if formula == "" {
		return domain.ErrNoFormula
	}
	in.logger.DebugContext(ctx, "dragging formula", "formula", formula, "rows", r.Rows(), "cols", r.Cols())

	for i := 0; i < r.Rows(); i++ {
		for j := 0; j < r.Cols(); j++ {
			if i == 0 && j == 0 {
				continue
			}
			row, col := r.Cell(i, j)
			if err := in.grid.Cell(row, col).SetFormulaR1C1(ctx, formula); err != nil {
				return err
			}
		}
	}
	return nil
}

func (in *Interpreter) toolAction(ctx context.Context, st *batchState, clip *domain.Clipboard, a domain.ToolAction) error {
	if st.selection == nil {
		return domain.ErrNoSelection
	}
	filter, err := domain.CompileMatcher(a.Reg)
	if err != nil {
		return err
	}
	r := *st.selection
	values, err := in.grid.Values(ctx, r)
	if err != nil {
		return err
	}

	inv := &registry.Invocation{Values: values, Filter: filter, Clipboard: clip}
	if err := in.tools.Execute(ctx, a.Tool, inv); err != nil {
		return err
	}
	for _, c := range inv.Changes() {
		row, col := r.Cell(c.Row, c.Col)
		if err := in.grid.Cell(row, col).SetValue(ctx, c.Value); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) set(ctx context.Context, st *batchState, a domain.Set) error {
	if st.selection == nil {
		return domain.ErrNoSelection
	}
	filter, err := domain.CompileMatcher(a.Reg)
	if err != nil {
		return err
	}
	r := *st.selection
	// The filter sees the values as they were before this action wrote anything.
	before, err := in.grid.Values(ctx, r)
	if err != nil {
		return err
	}

	formula := strings.TrimSpace(a.Text)
	isFormula := strings.HasPrefix(formula, "=")

	for i := range before {
		for j, v := range before[i] {
			if !filter.Match(v) {
				continue
			}
			cell := in.grid.Cell(r.Cell(i, j))
			if isFormula {
				err = cell.SetFormula(ctx, formula)
			} else {
				err = cell.SetValue(ctx, a.Text)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (in *Interpreter) format(ctx context.Context, st *batchState, a domain.Format) error {
	if st.selection == nil {
		return domain.ErrNoSelection
	}
	op, err := a.StyleOp()
	if err != nil {
		return fmt.Errorf("style %q: %w", a.Style, err)
	}
	filter, err := domain.CompileMatcher(a.Reg)
	if err != nil {
		return err
	}
	r := *st.selection
	values, err := in.grid.Values(ctx, r)
	if err != nil {
		return err
	}
	for i := range values {
		for j, v := range values[i] {
			if !filter.Match(v) {
				continue
			}
			if err := in.grid.Cell(r.Cell(i, j)).ApplyStyle(ctx, op); err != nil {
				return err
			}
		}
	}
	return nil
}

// read collects the matching values of the action's own region, row-major.
// Without a filter empty cells are left out; with one, an empty cell is
// reported when the filter matches the empty string. The selection is left
// untouched.
func (in *Interpreter) read(ctx context.Context, st *batchState, a domain.Read) error {
	filter, err := domain.CompileMatcher(a.Reg)
	if err != nil {
		return err
	}
	r, err := in.resolve(ctx, a.Span)
	if err != nil {
		return err
	}
	values, err := in.grid.Values(ctx, r)
	if err != nil {
		return err
	}
	var matched []string
	for _, row := range values {
		for _, v := range row {
			text := domain.FormatValue(v)
			if (text != "" || a.Reg != "") && filter.Match(v) {
				matched = append(matched, text)
			}
		}
	}
	st.reads = append(st.reads, strings.Join(matched, ReadSeparator))
	return nil
}

// ReadSeparator joins the values collected by one Read action.
const ReadSeparator = ", "

func (in *Interpreter) emitApplied(ctx context.Context, index int, action domain.Action) {
	if in.hooks.OnAction == nil {
		return
	}
	in.hooks.OnAction(ctx, &domain.ActionEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      domain.EventActionApplied,
			SessionID: domain.SessionIDFrom(ctx),
		},
		Index:  index,
		Action: action.Type(),
	})
}

func (in *Interpreter) emitSkipped(ctx context.Context, index int, action domain.Action, reason error) {
	in.logger.DebugContext(ctx, "action skipped", "action", action.Type(), "index", index, "reason", reason.Error())
	if in.hooks.OnSkip == nil {
		return
	}
	in.hooks.OnSkip(ctx, &domain.SkipEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      domain.EventActionSkipped,
			SessionID: domain.SessionIDFrom(ctx),
		},
		Index:  index,
		Action: action.Type(),
		Reason: reason,
	})
}
