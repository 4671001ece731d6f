package observability_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/aretw0/sheetpilot/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsHooks(t *testing.T) {
	m := observability.NewMetrics(nil)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnAction(ctx, &domain.ActionEvent{Action: domain.ActionSelect})
	hooks.OnAction(ctx, &domain.ActionEvent{Action: domain.ActionSelect})
	hooks.OnAction(ctx, &domain.ActionEvent{Action: domain.ActionFormat})
	hooks.OnSkip(ctx, &domain.SkipEvent{Action: domain.ActionToolAction, Reason: fmt.Errorf("%w: paste", domain.ErrEmptyClipboard)})
	hooks.OnSkip(ctx, &domain.SkipEvent{Action: "Explode", Reason: domain.ErrUnknownAction})
	hooks.OnRoundStart(ctx, &domain.RoundEvent{Round: 1})
	hooks.OnRoundEnd(ctx, &domain.RoundEvent{Round: 1})
	hooks.OnRoundStart(ctx, &domain.RoundEvent{Round: 2})
	hooks.OnRoundEnd(ctx, &domain.RoundEvent{Round: 2, Err: domain.ErrPlannerTransport})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ActionsApplied.WithLabelValues("Select")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActionsApplied.WithLabelValues("Format")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActionsSkipped.WithLabelValues("ToolAction", "empty_clipboard")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActionsSkipped.WithLabelValues("unknown", "unknown_action")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Rounds))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoundFailures))
}

func TestMetrics_ObserveRequest(t *testing.T) {
	m := observability.NewMetrics(nil)
	m.ObserveRequest("planner", time.Now().Add(-time.Second))
	m.ObserveRequest("sim", time.Now())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("planner")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration))

	count, err := testutil.GatherAndCount(m.Registry, "sheetpilot_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSkipReason(t *testing.T) {
	assert.Equal(t, "no_selection", observability.SkipReason(domain.ErrNoSelection))
	assert.Equal(t, "invalid_filter", observability.SkipReason(fmt.Errorf("wrap: %w", domain.ErrInvalidFilter)))
	assert.Equal(t, "other", observability.SkipReason(errors.New("boom")))
	assert.Equal(t, "other", observability.SkipReason(nil))
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hooks := observability.LogHooks(logger)
	ctx := context.Background()

	hooks.OnSkip(ctx, &domain.SkipEvent{EventBase: domain.EventBase{SessionID: "s1"}, Index: 3, Action: domain.ActionToolAction, Reason: domain.ErrEmptyClipboard})
	hooks.OnRoundEnd(ctx, &domain.RoundEvent{Round: 2, Err: domain.ErrPlannerResponse})

	out := buf.String()
	assert.Contains(t, out, "action_skipped")
	assert.Contains(t, out, "session_id=s1")
	assert.Contains(t, out, "index=3")
	assert.Contains(t, out, "round_end")
	assert.Contains(t, out, "planner returned an invalid response")
}
