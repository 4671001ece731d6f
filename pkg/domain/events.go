package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventActionApplied EventType = "action_applied"
	EventActionSkipped EventType = "action_skipped"
	EventRoundStart    EventType = "round_start"
	EventRoundEnd      EventType = "round_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// ActionEvent reports an action that ran.
type ActionEvent struct {
	EventBase
	Index  int        `json:"index"`
	Action ActionType `json:"action"`
}

// SkipEvent reports an action that was ignored and why.
type SkipEvent struct {
	EventBase
	Index  int        `json:"index"`
	Action ActionType `json:"action"`
	Reason error      `json:"-"`
}

// RoundEvent reports the boundaries of a planner round.
type RoundEvent struct {
	EventBase
	Round   int   `json:"round"`
	Actions int   `json:"actions"`
	HadRead bool  `json:"had_read"`
	Err     error `json:"-"`
}

// LifecycleHooks defines callbacks for agent observability.
type LifecycleHooks struct {
	OnAction     func(context.Context, *ActionEvent)
	OnSkip       func(context.Context, *SkipEvent)
	OnRoundStart func(context.Context, *RoundEvent)
	OnRoundEnd   func(context.Context, *RoundEvent)
}

// Merge combines hooks so that both sets fire, h first.
func (h LifecycleHooks) Merge(o LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnAction:     chain(h.OnAction, o.OnAction),
		OnSkip:       chain(h.OnSkip, o.OnSkip),
		OnRoundStart: chain(h.OnRoundStart, o.OnRoundStart),
		OnRoundEnd:   chain(h.OnRoundEnd, o.OnRoundEnd),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}

type sessionKey struct{}

// WithSessionID attaches the session ID to ctx so events can carry it.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionIDFrom returns the session ID attached by WithSessionID, or "".
func SessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
