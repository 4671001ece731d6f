package sheetpilot

import (
	"context"

	"github.com/aretw0/sheetpilot/pkg/domain"
)

// workspace binds the shared grid to one session clipboard for the planner loop.
type workspace struct {
	agent *Agent
	clip  *domain.Clipboard
}

func (w *workspace) Execute(ctx context.Context, batch domain.Batch) (domain.Outcome, error) {
	return w.agent.execute(ctx, batch, w.clip)
}

func (w *workspace) Snapshot(ctx context.Context) ([][]string, error) {
	return w.agent.Snapshot(ctx)
}
