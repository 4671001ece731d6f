package ports

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/sheetpilot/pkg/domain"
)

// ScenarioLoader provides the canned batches replayed by simulation mode.
type ScenarioLoader interface {
	// Scenario returns the scenario with the given ID or domain.ErrScenarioNotFound.
	Scenario(ctx context.Context, id string) (domain.Scenario, error)

	// ListScenarios returns the available scenario IDs, sorted.
	ListScenarios(ctx context.Context) ([]string, error)
}

// ChainScenarios returns a loader that asks each loader in turn.
// The first loader holding an ID wins; listing merges and deduplicates IDs.
func ChainScenarios(loaders ...ScenarioLoader) ScenarioLoader {
	return chainLoader(loaders)
}

type chainLoader []ScenarioLoader

func (c chainLoader) Scenario(ctx context.Context, id string) (domain.Scenario, error) {
	for _, l := range c {
		s, err := l.Scenario(ctx, id)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, domain.ErrScenarioNotFound) {
			return domain.Scenario{}, err
		}
	}
	return domain.Scenario{}, fmt.Errorf("%w: %s", domain.ErrScenarioNotFound, id)
}

func (c chainLoader) ListScenarios(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, l := range c {
		list, err := l.ListScenarios(ctx)
		if err != nil {
			return nil, err
		}
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}
