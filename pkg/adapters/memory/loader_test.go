package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/sheetpilot/pkg/adapters/memory"
	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLoader(t *testing.T) {
	ctx := context.Background()
	loader, err := memory.NewLoader(
		domain.Scenario{ID: "b", Batch: domain.Batch{domain.Terminate{}}},
		domain.Scenario{ID: "a", Title: "First"},
	)
	require.NoError(t, err)

	ids, err := loader.ListScenarios(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	s, err := loader.Scenario(ctx, "b")
	require.NoError(t, err)
	assert.Len(t, s.Batch, 1)

	_, err = loader.Scenario(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrScenarioNotFound)
}

func TestInMemoryLoader_RejectsBadIDs(t *testing.T) {
	_, err := memory.NewLoader(domain.Scenario{})
	assert.Error(t, err)

	_, err = memory.NewLoader(domain.Scenario{ID: "x"}, domain.Scenario{ID: "x"})
	assert.Error(t, err)
}
