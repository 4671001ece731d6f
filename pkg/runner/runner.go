package runner

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/sheetpilot/internal/logging"
	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/aretw0/sheetpilot/pkg/ports"
)

// ErrorReply is the only text a user sees when a round fails.
const ErrorReply = "An error occurred while contacting the API."

// Workspace is where a batch runs: the grid, its lock and the session clipboard.
type Workspace interface {
	// Execute runs one batch to completion.
	Execute(ctx context.Context, batch domain.Batch) (domain.Outcome, error)

	// Snapshot returns the leading rows attached to every planner request.
	Snapshot(ctx context.Context) ([][]string, error)
}

// Result is the outcome of one Run.
type Result struct {
	// Text is the user-facing reply.
	Text string
	// Rounds is how many planner round trips were made.
	Rounds int
	// Exhausted is set when the loop stopped at the round cap.
	Exhausted bool
	// Err holds the failure behind an ErrorReply.
	Err error
}

// Runner drives the planner loop for one workspace.
type Runner struct {
	Planner   ports.Planner
	Workspace Workspace
	MaxRounds int
	Logger    *slog.Logger
	Hooks     domain.LifecycleHooks
}

// New creates a Runner.
func New(planner ports.Planner, ws Workspace, opts ...Option) *Runner {
	r := &Runner{
		Planner:   planner,
		Workspace: ws,
		MaxRounds: domain.DefaultMaxRounds,
		Logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run sends message to the planner and executes what comes back until a round
// produces no readable content, the planner stops sending actions, or MaxRounds
// is reached.
func (r *Runner) Run(ctx context.Context, message string) Result {
	outbound := message
	var readContext, latest string

	for round := 1; round <= r.MaxRounds; round++ {
		r.roundStart(ctx, round)
		r.Logger.InfoContext(ctx, "planner round", "round", round, "has_read_context", readContext != "")

		snapshot, err := r.Workspace.Snapshot(ctx)
		if err != nil {
			return r.fail(ctx, round, err)
		}
		resp, err := r.Planner.Plan(ctx, domain.PlannerRequest{
			Role:        domain.RoleUser,
			Message:     outbound,
			FirstRows:   snapshot,
			ReadContext: readContext,
		})
		if err != nil {
			return r.fail(ctx, round, err)
		}

		if !resp.HasActions() {
			r.roundEnd(ctx, round, 0, false, nil)
			text := resp.Message
			if text == "" {
				text = domain.NoMessageReply
			}
			return Result{Text: text, Rounds: round}
		}

		out, err := r.Workspace.Execute(ctx, resp.Actions)
		if err != nil {
			return r.fail(ctx, round, err)
		}
		r.roundEnd(ctx, round, len(resp.Actions), out.HadRead, nil)

		// TellUser text wins; otherwise the planner's own message is shown.
		if msg := firstNonEmpty(out.Message, resp.Message); msg != "" {
			latest = msg
		}
		if !out.HadRead {
			return Result{Text: latest, Rounds: round}
		}

		reads := nonBlank(out.ReadMessages)
		if len(reads) == 0 {
			r.Logger.DebugContext(ctx, "read produced no content, stopping", "round", round)
			return Result{Text: latest, Rounds: round}
		}

		joined := strings.Join(reads, "\n")
		if readContext != "" {
			readContext += "\n\n" + joined
		} else {
			readContext = joined
		}
		outbound = domain.ReadContextPlaceholder
	}

	r.Logger.WarnContext(ctx, "planner loop reached the round cap", "max_rounds", r.MaxRounds)
	return Result{Text: latest, Rounds: r.MaxRounds, Exhausted: true}
}

func (r *Runner) fail(ctx context.Context, round int, err error) Result {
	r.Logger.ErrorContext(ctx, "planner round failed", "round", round, "error", err)
	r.roundEnd(ctx, round, 0, false, err)
	return Result{Text: ErrorReply, Rounds: round, Err: err}
}

func (r *Runner) roundStart(ctx context.Context, round int) {
	if r.Hooks.OnRoundStart == nil {
		return
	}
	r.Hooks.OnRoundStart(ctx, &domain.RoundEvent{
		EventBase: r.event(ctx, domain.EventRoundStart),
		Round:     round,
	})
}

func (r *Runner) roundEnd(ctx context.Context, round, actions int, hadRead bool, err error) {
	if r.Hooks.OnRoundEnd == nil {
		return
	}
	r.Hooks.OnRoundEnd(ctx, &domain.RoundEvent{
		EventBase: r.event(ctx, domain.EventRoundEnd),
		Round:     round,
		Actions:   actions,
		HadRead:   hadRead,
		Err:       err,
	})
}

func (r *Runner) event(ctx context.Context, t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      t,
		SessionID: domain.SessionIDFrom(ctx),
	}
}

func nonBlank(msgs []string) []string {
	var out []string
	for _, m := range msgs {
		if strings.TrimSpace(m) != "" {
			out = append(out, m)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
