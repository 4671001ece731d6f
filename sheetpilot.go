package sheetpilot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/aretw0/sheetpilot/internal/interpreter"
	"github.com/aretw0/sheetpilot/internal/logging"
	"github.com/aretw0/sheetpilot/pkg/adapters/memory"
	"github.com/aretw0/sheetpilot/pkg/cellref"
	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/aretw0/sheetpilot/pkg/dsl"
	"github.com/aretw0/sheetpilot/pkg/observability"
	"github.com/aretw0/sheetpilot/pkg/ports"
	"github.com/aretw0/sheetpilot/pkg/registry"
	"github.com/aretw0/sheetpilot/pkg/runner"
	"github.com/aretw0/sheetpilot/pkg/session"
	"github.com/google/uuid"
)

// GenericErrorReply is what the user sees when a request fails outside the planner loop.
const GenericErrorReply = "An error occurred while processing your request. Please try again."

// DefaultSessionID is used when a caller does not name a session.
const DefaultSessionID = "default"

// Agent is the high-level entry point: it owns the grid, the session
// clipboards and the planner loop.
type Agent struct {
	grid         ports.Grid
	planner      ports.Planner
	store        ports.SessionStore
	locker       ports.DistributedLocker
	sessions     *session.Manager
	scenarios    ports.ScenarioLoader
	extra        []ports.ScenarioLoader
	tools        *registry.Registry
	interp       *interpreter.Interpreter
	hooks        domain.LifecycleHooks
	metrics      *observability.Metrics
	logger       *slog.Logger
	maxRounds    int
	snapshotRows int
}

// Option defines a functional option for configuring the Agent.
type Option func(*Agent)

// WithSessionStore persists clipboards in store instead of memory.
func WithSessionStore(store ports.SessionStore) Option {
	return func(a *Agent) {
		a.store = store
	}
}

// WithLocker shares sessions and the grid with other replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(a *Agent) {
		a.locker = locker
	}
}

// WithScenarios adds scenario sources after the built-in ones.
func WithScenarios(loaders ...ports.ScenarioLoader) Option {
	return func(a *Agent) {
		a.extra = append(a.extra, loaders...)
	}
}

// WithTools replaces the ToolAction registry.
func WithTools(tools *registry.Registry) Option {
	return func(a *Agent) {
		a.tools = tools
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Agent) {
		a.hooks = a.hooks.Merge(hooks)
	}
}

// WithMetrics records requests and lifecycle events on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *Agent) {
		a.metrics = m
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithMaxRounds bounds the planner loop.
func WithMaxRounds(n int) Option {
	return func(a *Agent) {
		a.maxRounds = n
	}
}

// WithSnapshotRows sets how many leading rows go with every planner request.
func WithSnapshotRows(n int) Option {
	return func(a *Agent) {
		a.snapshotRows = n
	}
}

// New creates an Agent over grid. planner may be nil, in which case only
// direct execution and simulation are available.
func New(grid ports.Grid, planner ports.Planner, opts ...Option) (*Agent, error) {
	if grid == nil {
		return nil, fmt.Errorf("grid is required")
	}
	a := &Agent{
		grid:         grid,
		planner:      planner,
		maxRounds:    domain.DefaultMaxRounds,
		snapshotRows: domain.DefaultSnapshotRows,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = logging.NewNop()
	}
	if a.store == nil {
		a.store = memory.NewStore()
	}
	if a.metrics != nil {
		a.hooks = a.hooks.Merge(a.metrics.Hooks())
	}

	sessionOpts := []session.Option{session.WithLogger(a.logger)}
	if a.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(a.locker))
	}
	a.sessions = session.NewManager(a.store, sessionOpts...)
	a.scenarios = ports.ChainScenarios(append([]ports.ScenarioLoader{BuiltinScenarios()}, a.extra...)...)
	a.interp = interpreter.New(grid,
		interpreter.WithLogger(a.logger),
		interpreter.WithLifecycleHooks(a.hooks),
		interpreter.WithTools(a.tools),
	)
	return a, nil
}

// BuiltinScenarios serves the scenarios shipped with the agent.
func BuiltinScenarios() ports.ScenarioLoader {
	loader, err := memory.NewLoader(dsl.Builtins()...)
	if err != nil {
		panic(err)
	}
	return loader
}

// NewSessionID returns a fresh random session ID.
func NewSessionID() string {
	return uuid.NewString()
}

// Grid returns the grid the agent mutates.
func (a *Agent) Grid() ports.Grid { return a.grid }

// Sessions returns the session manager.
func (a *Agent) Sessions() *session.Manager { return a.sessions }

// Scenarios returns the built-in and configured scenarios.
func (a *Agent) Scenarios() ports.ScenarioLoader { return a.scenarios }

// ProcessUserMessage answers one chat message. The message picks the mode:
// "api" runs the planner echo, "sim" replays a scenario, anything else goes
// through the planner loop. Failures and panics become GenericErrorReply.
func (a *Agent) ProcessUserMessage(ctx context.Context, sessionID, text string) (reply domain.Reply) {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	mode, scenario := DetectMode(text)
	started := time.Now()
	logger := a.logger.With("session_id", sessionID, "mode", mode)
	logger.InfoContext(ctx, "received message", "length", len(text))

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "request panicked", "panic", r, "stack", string(debug.Stack()))
			reply = domain.Reply{Text: GenericErrorReply}
		}
		if a.metrics != nil {
			a.metrics.ObserveRequest(string(mode), started)
		}
	}()

	var (
		answer string
		err    error
	)
	switch mode {
	case ModeEcho:
		answer, err = a.Echo(ctx, text)
	case ModeSimulate:
		var out domain.Outcome
		out, err = a.RunScenario(ctx, sessionID, scenario)
		answer = out.Message
	default:
		answer, err = a.Ask(ctx, sessionID, text)
	}
	if err != nil {
		logger.ErrorContext(ctx, "request failed", "error", err)
		return domain.Reply{Text: GenericErrorReply}
	}
	return domain.Reply{Text: answer}
}

// Ask runs the planner loop for one message. Planner and grid failures are
// already folded into the reply text; the error is only set when the session
// could not be loaded or saved.
func (a *Agent) Ask(ctx context.Context, sessionID, message string) (string, error) {
	if a.planner == nil {
		return "", fmt.Errorf("no planner configured")
	}
	var res runner.Result
	err := a.sessions.WithSession(ctx, sessionID, func(ctx context.Context, s *domain.Session) error {
		r := runner.New(a.planner, &workspace{agent: a, clip: &s.Clipboard},
			runner.WithLogger(a.logger),
			runner.WithMaxRounds(a.maxRounds),
			runner.WithLifecycleHooks(a.hooks),
		)
		res = r.Run(ctx, message)
		return nil
	})
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Execute runs a batch directly against the grid using the session clipboard.
func (a *Agent) Execute(ctx context.Context, sessionID string, batch domain.Batch) (domain.Outcome, error) {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	var out domain.Outcome
	err := a.sessions.WithSession(ctx, sessionID, func(ctx context.Context, s *domain.Session) error {
		var err error
		out, err = a.execute(ctx, batch, &s.Clipboard)
		return err
	})
	return out, err
}

// RunScenario executes a named scenario in the session.
func (a *Agent) RunScenario(ctx context.Context, sessionID, id string) (domain.Outcome, error) {
	s, err := a.scenarios.Scenario(ctx, id)
	if err != nil {
		return domain.Outcome{}, err
	}
	a.logger.InfoContext(ctx, "running scenario", "scenario", s.ID, "actions", len(s.Batch))
	return a.Execute(ctx, sessionID, s.Batch)
}

// Echo sends payload to the planner's connectivity diagnostic.
func (a *Agent) Echo(ctx context.Context, payload string) (string, error) {
	echoer, ok := a.planner.(ports.Echoer)
	if !ok {
		return "", fmt.Errorf("planner does not support echo")
	}
	return echoer.Echo(ctx, payload)
}

// ReadRange returns the stringified values of an A1 range. "C1:C-1" reaches
// the last used row.
func (a *Agent) ReadRange(ctx context.Context, a1 string) ([][]string, error) {
	span, err := cellref.ParseSpan(a1)
	if err != nil {
		return nil, err
	}
	var rows [][]string
	err = a.withGrid(ctx, func(ctx context.Context) error {
		r, err := cellref.Resolve(span, func() (int, error) { return a.grid.LastRow(ctx) })
		if err != nil {
			return err
		}
		values, err := a.grid.Values(ctx, r)
		if err != nil {
			return err
		}
		rows = domain.FormatRows(values)
		return nil
	})
	return rows, err
}

// Snapshot returns the leading rows that go with every planner request.
func (a *Agent) Snapshot(ctx context.Context) ([][]string, error) {
	var rows [][]string
	err := a.withGrid(ctx, func(ctx context.Context) error {
		var err error
		rows, err = ports.Snapshot(ctx, a.grid, a.snapshotRows)
		return err
	})
	return rows, err
}

func (a *Agent) execute(ctx context.Context, batch domain.Batch, clip *domain.Clipboard) (domain.Outcome, error) {
	var out domain.Outcome
	err := a.withGrid(ctx, func(ctx context.Context) error {
		var err error
		out, err = a.interp.Execute(ctx, batch, clip)
		if err != nil {
			return err
		}
		if f, ok := a.grid.(ports.Flusher); ok {
			if err := f.Flush(ctx); err != nil {
				return fmt.Errorf("failed to flush grid: %w", err)
			}
		}
		return nil
	})
	return out, err
}

// withGrid serializes grid access within the process and, with a locker,
// across replicas.
func (a *Agent) withGrid(ctx context.Context, fn func(context.Context) error) error {
	return a.sessions.WithLock(ctx, ports.GridLockKey, fn)
}
