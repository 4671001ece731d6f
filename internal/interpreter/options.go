package interpreter

import (
	"log/slog"

	"github.com/aretw0/sheetpilot/internal/logging"
	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/aretw0/sheetpilot/pkg/registry"
)

// Option configures the Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger. Skipped actions are logged at Debug.
func WithLogger(logger *slog.Logger) Option {
	return func(in *Interpreter) {
		if logger != nil {
			in.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(in *Interpreter) {
		in.hooks = hooks
	}
}

// WithTools replaces the ToolAction registry.
func WithTools(tools *registry.Registry) Option {
	return func(in *Interpreter) {
		if tools != nil {
			in.tools = tools
		}
	}
}

func defaults(in *Interpreter) {
	in.logger = logging.NewNop()
	in.tools = registry.Default()
}
