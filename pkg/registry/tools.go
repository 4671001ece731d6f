package registry

import (
	"context"

	"github.com/aretw0/sheetpilot/pkg/domain"
)

// Copy replaces the clipboard with the selection. Cells rejected by the filter
// become nil placeholders so the copied block stays rectangular.
func Copy(ctx context.Context, inv *Invocation) error {
	cells := make([][]any, len(inv.Values))
	for i, row := range inv.Values {
		cells[i] = make([]any, len(row))
		for j, v := range row {
			if inv.Filter.Match(v) {
				cells[i][j] = v
			}
		}
	}
	inv.Clipboard.Cells = cells
	return nil
}

// Paste writes clipboard values at the same offsets of the selection, skipping
// placeholders and target cells rejected by the filter. Formats are never
// copied, so paste and pasteasvalues behave the same.
func Paste(ctx context.Context, inv *Invocation) error {
	if inv.Clipboard.Empty() {
		return domain.ErrEmptyClipboard
	}
	for i, row := range inv.Values {
		for j, target := range row {
			v, ok := inv.Clipboard.At(i, j)
			if ok && inv.Filter.Match(target) {
				inv.Put(i, j, v)
			}
		}
	}
	return nil
}

// Delete clears the cells of the selection accepted by the filter.
func Delete(ctx context.Context, inv *Invocation) error {
	for i, row := range inv.Values {
		for j, v := range row {
			if inv.Filter.Match(v) {
				inv.Put(i, j, "")
			}
		}
	}
	return nil
}
