package observability

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sheetpilot"

// Metrics holds the agent collectors.
type Metrics struct {
	Registry *prometheus.Registry

	ActionsApplied  *prometheus.CounterVec
	ActionsSkipped  *prometheus.CounterVec
	Rounds          prometheus.Counter
	RoundFailures   prometheus.Counter
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg gets a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		Registry: reg,
		ActionsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_applied_total",
			Help:      "Actions executed against the grid.",
		}, []string{"action"}),
		ActionsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_skipped_total",
			Help:      "Actions ignored by the interpreter.",
		}, []string{"action", "reason"}),
		Rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "planner_rounds_total",
			Help:      "Planner round trips.",
		}),
		RoundFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "planner_round_failures_total",
			Help:      "Planner rounds that ended in an error.",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "User requests by dispatch mode.",
		}, []string{"mode"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time to answer a user request.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
	}
	reg.MustRegister(m.ActionsApplied, m.ActionsSkipped, m.Rounds, m.RoundFailures, m.Requests, m.RequestDuration)
	return m
}

// Hooks returns lifecycle hooks that update the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnAction: func(_ context.Context, e *domain.ActionEvent) {
			m.ActionsApplied.WithLabelValues(actionLabel(e.Action)).Inc()
		},
		OnSkip: func(_ context.Context, e *domain.SkipEvent) {
			m.ActionsSkipped.WithLabelValues(actionLabel(e.Action), SkipReason(e.Reason)).Inc()
		},
		OnRoundStart: func(context.Context, *domain.RoundEvent) {
			m.Rounds.Inc()
		},
		OnRoundEnd: func(_ context.Context, e *domain.RoundEvent) {
			if e.Err != nil {
				m.RoundFailures.Inc()
			}
		},
	}
}

// ObserveRequest records one answered request.
func (m *Metrics) ObserveRequest(mode string, started time.Time) {
	m.Requests.WithLabelValues(mode).Inc()
	m.RequestDuration.WithLabelValues(mode).Observe(time.Since(started).Seconds())
}

var skipReasons = []struct {
	err   error
	label string
}{
	{domain.ErrNoSelection, "no_selection"},
	{domain.ErrEmptyClipboard, "empty_clipboard"},
	{domain.ErrUnknownTool, "unknown_tool"},
	{domain.ErrToolFailed, "tool_failed"},
	{domain.ErrUnknownStyle, "unknown_style"},
	{domain.ErrMissingParameter, "missing_parameter"},
	{domain.ErrNoFormula, "no_formula"},
	{domain.ErrInvalidFilter, "invalid_filter"},
	{domain.ErrUnknownAction, "unknown_action"},
	{domain.ErrInvalidRange, "invalid_range"},
}

// SkipReason maps a skip error to a bounded label value.
func SkipReason(err error) string {
	for _, r := range skipReasons {
		if errors.Is(err, r.err) {
			return r.label
		}
	}
	return "other"
}

func actionLabel(t domain.ActionType) string {
	switch t {
	case domain.ActionSelect, domain.ActionSelectAndDrag, domain.ActionToolAction, domain.ActionSet,
		domain.ActionFormat, domain.ActionRead, domain.ActionTellUser, domain.ActionTerminate:
		return string(t)
	}
	return "unknown"
}
