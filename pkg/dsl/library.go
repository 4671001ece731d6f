package dsl

import (
	"fmt"
	"sort"

	"github.com/aretw0/sheetpilot/pkg/domain"
)

// Library manages the construction of a scenario set.
type Library struct {
	scenarios map[string]*ScenarioBuilder
}

// NewLibrary creates an empty scenario library.
func NewLibrary() *Library {
	return &Library{
		scenarios: make(map[string]*ScenarioBuilder),
	}
}

// ScenarioBuilder describes one scenario. Its embedded BatchBuilder carries the actions.
type ScenarioBuilder struct {
	*BatchBuilder
	id          string
	title       string
	description string
}

// Add creates a scenario in the library.
// If the scenario already exists, it returns the existing builder.
func (l *Library) Add(id string) *ScenarioBuilder {
	if sb, ok := l.scenarios[id]; ok {
		return sb
	}
	sb := &ScenarioBuilder{BatchBuilder: NewBatch(), id: id}
	l.scenarios[id] = sb
	return sb
}

// Describe sets the human readable title and description.
func (s *ScenarioBuilder) Describe(title, description string) *ScenarioBuilder {
	s.title = title
	s.description = description
	return s
}

// Build compiles the library into scenarios, ordered by ID.
func (l *Library) Build() ([]domain.Scenario, error) {
	scenarios := make([]domain.Scenario, 0, len(l.scenarios))
	for id, sb := range l.scenarios {
		batch, err := sb.Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build scenario %s: %w", id, err)
		}
		scenarios = append(scenarios, domain.Scenario{
			ID:          id,
			Title:       sb.title,
			Description: sb.description,
			Batch:       batch,
		})
	}
	sort.Slice(scenarios, func(i, j int) bool { return scenarios[i].ID < scenarios[j].ID })
	return scenarios, nil
}
