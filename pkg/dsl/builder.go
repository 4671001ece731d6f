package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/sheetpilot/pkg/cellref"
	"github.com/aretw0/sheetpilot/pkg/domain"
)

// BatchBuilder accumulates actions in order.
// Parse errors are collected and reported by Build.
type BatchBuilder struct {
	actions domain.Batch
	errs    []error
}

// NewBatch creates an empty batch builder.
func NewBatch() *BatchBuilder {
	return &BatchBuilder{actions: domain.Batch{}}
}

// Add appends an already built action.
func (b *BatchBuilder) Add(a domain.Action) *BatchBuilder {
	b.actions = append(b.actions, a)
	return b
}

// Select replaces the selection with the A1 range ("A1:B3", "C1:C-1" or "A1").
func (b *BatchBuilder) Select(a1 string) *BatchBuilder {
	return b.Add(domain.Select{Span: b.span(a1)})
}

// Drag fills the A1 range with the relative formula of its top-left cell.
// An empty range drags over the current selection.
func (b *BatchBuilder) Drag(a1 string) *BatchBuilder {
	var span domain.Span
	if a1 != "" {
		span = b.span(a1)
	}
	return b.Add(domain.SelectAndDrag{Span: span})
}

// Set writes text (or a formula) into the selection.
func (b *BatchBuilder) Set(text string) *BatchBuilder {
	return b.Add(domain.Set{Text: text})
}

// Format applies a parameterless style (bold, italic, underline, strikethrough).
func (b *BatchBuilder) Format(style string) *BatchBuilder {
	return b.Add(domain.Format{Style: style})
}

// FormatWith applies a fully specified style.
func (b *BatchBuilder) FormatWith(f domain.Format) *BatchBuilder {
	return b.Add(f)
}

// Tool runs a clipboard tool over the selection.
func (b *BatchBuilder) Tool(name string) *BatchBuilder {
	return b.Add(domain.ToolAction{Tool: name})
}

// Read collects the values of the A1 range.
func (b *BatchBuilder) Read(a1 string) *BatchBuilder {
	return b.Add(domain.Read{Span: b.span(a1)})
}

// TellUser adds a message for the user.
func (b *BatchBuilder) TellUser(msg string) *BatchBuilder {
	return b.Add(domain.TellUser{Message: msg})
}

// Terminate stops the batch.
func (b *BatchBuilder) Terminate() *BatchBuilder {
	return b.Add(domain.Terminate{})
}

// Where sets the regex filter of the last added action.
func (b *BatchBuilder) Where(reg string) *BatchBuilder {
	if len(b.actions) == 0 {
		b.errs = append(b.errs, errors.New("where: no action to filter"))
		return b
	}
	i := len(b.actions) - 1
	filtered, err := withFilter(b.actions[i], reg)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.actions[i] = filtered
	return b
}

// Build returns the batch, or the joined errors of every malformed step.
func (b *BatchBuilder) Build() (domain.Batch, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	out := make(domain.Batch, len(b.actions))
	copy(out, b.actions)
	return out, nil
}

// MustBuild is like Build but panics on error. Intended for static scenario tables.
func (b *BatchBuilder) MustBuild() domain.Batch {
	batch, err := b.Build()
	if err != nil {
		panic(err)
	}
	return batch
}

func (b *BatchBuilder) span(a1 string) domain.Span {
	span, err := cellref.ParseSpan(a1)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("action %d: %w", len(b.actions), err))
	}
	return span
}

func withFilter(a domain.Action, reg string) (domain.Action, error) {
	switch v := a.(type) {
	case domain.Select:
		v.Reg = reg
		return v, nil
	case domain.SelectAndDrag:
		v.Reg = reg
		return v, nil
	case domain.ToolAction:
		v.Reg = reg
		return v, nil
	case domain.Set:
		v.Reg = reg
		return v, nil
	case domain.Format:
		v.Reg = reg
		return v, nil
	case domain.Read:
		v.Reg = reg
		return v, nil
	}
	return a, fmt.Errorf("where: %s actions take no filter", a.Type())
}

func numberFormat(format string) domain.Format {
	return domain.Format{Style: string(domain.StyleNumberFormat), NumberFormat: format}
}
