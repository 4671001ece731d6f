// Package scripted provides an in-process planner that replays canned responses.
// It backs offline demos and the tests of everything that talks to a planner.
package scripted

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/sheetpilot/pkg/domain"
)

// Step is one canned answer.
type Step struct {
	Response domain.PlannerResponse
	Err      error
}

// Reply answers with a message and, when batch is non-nil, an action batch.
func Reply(message string, batch domain.Batch) Step {
	return Step{Response: domain.PlannerResponse{Message: message, Actions: batch}}
}

// Fail answers with an error.
func Fail(err error) Step {
	return Step{Err: err}
}

// Planner replays its steps in order and repeats the last one once they run out.
// Safe for concurrent use.
type Planner struct {
	mu       sync.Mutex
	steps    []Step
	next     int
	requests []domain.PlannerRequest
}

// New creates a planner with the given script.
func New(steps ...Step) *Planner {
	return &Planner{steps: steps}
}

// Plan records the request and returns the next step.
func (p *Planner) Plan(ctx context.Context, req domain.PlannerRequest) (domain.PlannerResponse, error) {
	if err := ctx.Err(); err != nil {
		return domain.PlannerResponse{}, fmt.Errorf("%w: %v", domain.ErrPlannerTransport, err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, req)
	if len(p.steps) == 0 {
		return domain.PlannerResponse{}, fmt.Errorf("%w: empty script", domain.ErrPlannerResponse)
	}
	step := p.steps[min(p.next, len(p.steps)-1)]
	p.next++
	return step.Response, step.Err
}

// Echo mirrors the diagnostic endpoint of the planning service.
func (p *Planner) Echo(ctx context.Context, payload string) (string, error) {
	return domain.EchoGreeting + payload, nil
}

// Requests returns a copy of every request received so far.
func (p *Planner) Requests() []domain.PlannerRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.PlannerRequest(nil), p.requests...)
}

// Func adapts a function to ports.Planner.
type Func func(ctx context.Context, req domain.PlannerRequest) (domain.PlannerResponse, error)

// Plan calls f.
func (f Func) Plan(ctx context.Context, req domain.PlannerRequest) (domain.PlannerResponse, error) {
	return f(ctx, req)
}
