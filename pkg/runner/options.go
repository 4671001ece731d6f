package runner

import (
	"log/slog"

	"github.com/aretw0/sheetpilot/pkg/domain"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.Logger = logger
		}
	}
}

// WithMaxRounds bounds the number of planner round trips per request.
// Values below 1 keep the default.
func WithMaxRounds(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.MaxRounds = n
		}
	}
}

// WithLifecycleHooks registers round start/end callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runner) {
		r.Hooks = hooks
	}
}
