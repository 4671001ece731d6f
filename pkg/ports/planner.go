package ports

import (
	"context"

	"github.com/aretw0/sheetpilot/pkg/domain"
)

// Planner is the planning service consulted once per round.
type Planner interface {
	// Plan sends one request and returns the decoded response.
	// Failures wrap domain.ErrPlannerTransport or domain.ErrPlannerResponse.
	Plan(ctx context.Context, req domain.PlannerRequest) (domain.PlannerResponse, error)
}

// Echoer is implemented by planners exposing the connectivity diagnostic.
type Echoer interface {
	Echo(ctx context.Context, payload string) (string, error)
}
