package runner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/sheetpilot/internal/interpreter"
	"github.com/aretw0/sheetpilot/pkg/adapters/memory"
	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/aretw0/sheetpilot/pkg/dsl"
	"github.com/aretw0/sheetpilot/pkg/planner/scripted"
	"github.com/aretw0/sheetpilot/pkg/ports"
	"github.com/aretw0/sheetpilot/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type workspace struct {
	grid  *memory.Grid
	in    *interpreter.Interpreter
	clip  domain.Clipboard
	fails error
}

func newWorkspace(rows [][]any) *workspace {
	g := memory.NewGridFromRows(rows)
	return &workspace{grid: g, in: interpreter.New(g)}
}

func (w *workspace) Execute(ctx context.Context, batch domain.Batch) (domain.Outcome, error) {
	if w.fails != nil {
		return domain.Outcome{}, w.fails
	}
	return w.in.Execute(ctx, batch, &w.clip)
}

func (w *workspace) Snapshot(ctx context.Context) ([][]string, error) {
	return ports.Snapshot(ctx, w.grid, domain.DefaultSnapshotRows)
}

func TestRun_ReadFeedsNextRound(t *testing.T) {
	ws := newWorkspace([][]any{{"Total"}, {"42"}})
	planner := scripted.New(
		scripted.Reply("", dsl.NewBatch().Read("A2:A2").MustBuild()),
		scripted.Reply("The total is 42.", nil),
	)

	res := runner.New(planner, ws).Run(context.Background(), "what is the total?")

	require.NoError(t, res.Err)
	assert.Equal(t, "The total is 42.", res.Text)
	assert.Equal(t, 2, res.Rounds)

	reqs := planner.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, domain.RoleUser, reqs[0].Role)
	assert.Equal(t, "what is the total?", reqs[0].Message)
	assert.Empty(t, reqs[0].ReadContext)
	assert.Equal(t, [][]string{{"Total"}, {"42"}}, reqs[0].FirstRows)

	assert.Equal(t, domain.ReadContextPlaceholder, reqs[1].Message)
	assert.Equal(t, "42", reqs[1].ReadContext)
}

func TestRun_ReadContextAccumulates(t *testing.T) {
	ws := newWorkspace([][]any{{"a"}, {"b"}})
	planner := scripted.New(
		scripted.Reply("", dsl.NewBatch().Read("A1:A1").MustBuild()),
		scripted.Reply("", dsl.NewBatch().Read("A2:A2").MustBuild()),
		scripted.Reply("done", nil),
	)

	res := runner.New(planner, ws).Run(context.Background(), "go")

	assert.Equal(t, "done", res.Text)
	reqs := planner.Requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, "a", reqs[1].ReadContext)
	assert.Equal(t, "a\n\nb", reqs[2].ReadContext)
}

func TestRun_NoReadReturnsInterpreterMessage(t *testing.T) {
	ws := newWorkspace([][]any{{"x"}})
	planner := scripted.New(scripted.Reply("planner text",
		dsl.NewBatch().Select("A1:A1").Format("bold").TellUser("Bolded A1.").MustBuild()))

	res := runner.New(planner, ws).Run(context.Background(), "bold it")

	assert.Equal(t, "Bolded A1.", res.Text)
	assert.Equal(t, 1, res.Rounds)
	assert.Len(t, planner.Requests(), 1)
}

func TestRun_FallsBackToPlannerMessage(t *testing.T) {
	ws := newWorkspace(nil)
	planner := scripted.New(scripted.Reply("Working on it.",
		dsl.NewBatch().Select("A1:A1").Set("1").MustBuild()))

	res := runner.New(planner, ws).Run(context.Background(), "write 1")

	assert.Equal(t, "Working on it.", res.Text)
}

func TestRun_NoActions(t *testing.T) {
	t.Run("message", func(t *testing.T) {
		planner := scripted.New(scripted.Reply("Hi there", nil))
		res := runner.New(planner, newWorkspace(nil)).Run(context.Background(), "hello")
		assert.Equal(t, "Hi there", res.Text)
	})
	t.Run("empty", func(t *testing.T) {
		planner := scripted.New(scripted.Reply("", nil))
		res := runner.New(planner, newWorkspace(nil)).Run(context.Background(), "hello")
		assert.Equal(t, domain.NoMessageReply, res.Text)
	})
}

func TestRun_BlankReadStops(t *testing.T) {
	ws := newWorkspace([][]any{{"a"}})
	planner := scripted.New(
		scripted.Reply("nothing here", dsl.NewBatch().Read("C1:C3").MustBuild()),
		scripted.Reply("should not be reached", nil),
	)

	res := runner.New(planner, ws).Run(context.Background(), "look")

	assert.Equal(t, "nothing here", res.Text)
	assert.Len(t, planner.Requests(), 1)
}

func TestRun_RoundCap(t *testing.T) {
	ws := newWorkspace([][]any{{"loop"}})
	planner := scripted.New(scripted.Reply("still reading", dsl.NewBatch().Read("A1:A1").MustBuild()))

	res := runner.New(planner, ws).Run(context.Background(), "forever")

	assert.True(t, res.Exhausted)
	assert.Equal(t, domain.DefaultMaxRounds, res.Rounds)
	assert.Equal(t, "still reading", res.Text)
	assert.Len(t, planner.Requests(), domain.DefaultMaxRounds)
}

func TestRun_CustomRoundCap(t *testing.T) {
	ws := newWorkspace([][]any{{"loop"}})
	planner := scripted.New(scripted.Reply("", dsl.NewBatch().Read("A1:A1").MustBuild()))

	res := runner.New(planner, ws, runner.WithMaxRounds(3)).Run(context.Background(), "forever")

	assert.True(t, res.Exhausted)
	assert.Len(t, planner.Requests(), 3)
}

func TestRun_Failures(t *testing.T) {
	boom := errors.New("boom")

	t.Run("planner", func(t *testing.T) {
		planner := scripted.New(scripted.Fail(boom))
		res := runner.New(planner, newWorkspace(nil)).Run(context.Background(), "hi")
		assert.Equal(t, runner.ErrorReply, res.Text)
		assert.ErrorIs(t, res.Err, boom)
	})

	t.Run("workspace", func(t *testing.T) {
		ws := newWorkspace(nil)
		ws.fails = boom
		planner := scripted.New(scripted.Reply("", dsl.NewBatch().Select("A1").MustBuild()))
		res := runner.New(planner, ws).Run(context.Background(), "hi")
		assert.Equal(t, runner.ErrorReply, res.Text)
		assert.ErrorIs(t, res.Err, boom)
	})
}

func TestRun_RoundHooks(t *testing.T) {
	ws := newWorkspace([][]any{{"v"}})
	planner := scripted.New(
		scripted.Reply("", dsl.NewBatch().Read("A1:A1").MustBuild()),
		scripted.Reply("ok", nil),
	)
	var started, ended []int
	hooks := domain.LifecycleHooks{
		OnRoundStart: func(_ context.Context, e *domain.RoundEvent) { started = append(started, e.Round) },
		OnRoundEnd:   func(_ context.Context, e *domain.RoundEvent) { ended = append(ended, e.Round) },
	}

	runner.New(planner, ws, runner.WithLifecycleHooks(hooks)).Run(context.Background(), "hi")

	assert.Equal(t, []int{1, 2}, started)
	assert.Equal(t, []int{1, 2}, ended)
}
