package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/sheetpilot/pkg/domain"
)

// LogHooks returns lifecycle hooks that write every event to logger.
// Applied actions go to Debug, the rest to Info.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnAction: func(ctx context.Context, e *domain.ActionEvent) {
			logger.DebugContext(ctx, "action_applied", "session_id", e.SessionID, "index", e.Index, "action", e.Action)
		},
		OnSkip: func(ctx context.Context, e *domain.SkipEvent) {
			logger.InfoContext(ctx, "action_skipped", "session_id", e.SessionID, "index", e.Index, "action", e.Action, "reason", e.Reason)
		},
		OnRoundStart: func(ctx context.Context, e *domain.RoundEvent) {
			logger.InfoContext(ctx, "round_start", "session_id", e.SessionID, "round", e.Round)
		},
		OnRoundEnd: func(ctx context.Context, e *domain.RoundEvent) {
			args := []any{"session_id", e.SessionID, "round", e.Round, "actions", e.Actions, "had_read", e.HadRead}
			if e.Err != nil {
				args = append(args, "error", e.Err)
			}
			logger.InfoContext(ctx, "round_end", args...)
		},
	}
}
