package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/sheetpilot/pkg/domain"
)

// Loader implements ports.ScenarioLoader using an in-memory map.
type Loader struct {
	scenarios map[string]domain.Scenario
}

// NewLoader creates a loader from domain scenarios.
func NewLoader(scenarios ...domain.Scenario) (*Loader, error) {
	data := make(map[string]domain.Scenario, len(scenarios))
	for _, s := range scenarios {
		if s.ID == "" {
			return nil, fmt.Errorf("scenario missing ID")
		}
		if _, dup := data[s.ID]; dup {
			return nil, fmt.Errorf("duplicate scenario %s", s.ID)
		}
		data[s.ID] = s
	}
	return &Loader{scenarios: data}, nil
}

// Scenario retrieves a scenario by ID.
func (l *Loader) Scenario(ctx context.Context, id string) (domain.Scenario, error) {
	s, ok := l.scenarios[id]
	if !ok {
		return domain.Scenario{}, fmt.Errorf("%w: %s", domain.ErrScenarioNotFound, id)
	}
	return s, nil
}

// ListScenarios returns all available scenario IDs.
func (l *Loader) ListScenarios(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(l.scenarios))
	for k := range l.scenarios {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
