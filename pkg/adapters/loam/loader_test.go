package loam

import (
	"context"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/sheetpilot/internal/testutils"
	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, files map[string]string) *Loader {
	t.Helper()
	_, repo := testutils.SeedRepo(t, files)
	return New(loam.NewTypedRepository[ScenarioMetadata](repo))
}

func TestLoader_MarkdownActions(t *testing.T) {
	loader := seed(t, map[string]string{
		"highlight.md": `---
id: highlight
title: Highlight questions
actions:
  - type: Select
    col1: A
    row1: 1
    col2: A
    row2: -1
  - type: Format
    reg: '^\?.*$'
    style: backgroundcolor
    color: yellow
---
Marks question rows.`,
	})

	s, err := loader.Scenario(context.Background(), "highlight")
	require.NoError(t, err)
	assert.Equal(t, "Highlight questions", s.Title)
	assert.Equal(t, "Marks question rows.", s.Description)
	require.Len(t, s.Batch, 2)
	assert.Equal(t, domain.Select{Span: domain.Span{Col1: "A", Row1: 1, Col2: "A", Row2: domain.LastRow}}, s.Batch[0])
	assert.Equal(t, `^\?.*$`, domain.FilterOf(s.Batch[1]))
}

func TestLoader_ProgramAndImplicitID(t *testing.T) {
	loader := seed(t, map[string]string{
		"italic.md": `---
title: Italic header
program: "REGEX ^.*$ | SELECT A1:C1 ; REGEX ^.*$ | FORMAT style: italic"
---`,
	})

	s, err := loader.Scenario(context.Background(), "italic")
	require.NoError(t, err)
	require.Len(t, s.Batch, 2)
	assert.Equal(t, domain.ActionFormat, s.Batch[1].Type())
}

func TestLoader_List(t *testing.T) {
	loader := seed(t, map[string]string{
		"b.md":   "---\nid: b\nprogram: TERMINATE\n---",
		"a.json": `{"id": "a.json", "program": "TELLUSER hi"}`,
		"c.md":   "---\nprogram: TERMINATE\n---",
	})

	ids, err := loader.ListScenarios(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestLoader_Errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		loader := seed(t, map[string]string{"x.md": "---\nprogram: TERMINATE\n---"})
		_, err := loader.Scenario(context.Background(), "missing")
		assert.ErrorIs(t, err, domain.ErrScenarioNotFound)
	})

	t.Run("collision", func(t *testing.T) {
		loader := seed(t, map[string]string{
			"foo.md":   "---\nid: foo\nprogram: TERMINATE\n---",
			"foo.json": `{"id": "foo", "program": "TERMINATE"}`,
		})
		_, err := loader.ListScenarios(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "collision detected")
	})

	t.Run("no batch", func(t *testing.T) {
		loader := seed(t, map[string]string{"empty.md": "---\ntitle: nothing\n---"})
		_, err := loader.Scenario(context.Background(), "empty")
		assert.ErrorIs(t, err, domain.ErrMissingParameter)
	})

	t.Run("bad action", func(t *testing.T) {
		loader := seed(t, map[string]string{"bad.md": "---\nactions:\n  - type: Select\n    row1: nope\n---"})
		_, err := loader.Scenario(context.Background(), "bad")
		assert.Error(t, err)
	})
}
