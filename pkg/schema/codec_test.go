package schema_test

import (
	"errors"
	"testing"

	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/aretw0/sheetpilot/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalBatch_LooseRows(t *testing.T) {
	batch, err := schema.UnmarshalBatch([]byte(`[
		{"type": "Select", "col1": "c", "row1": 1, "col2": null, "row2": "-1"},
		{"type": "Select", "col1": "A", "row1": "2", "row2": -1, "reg": "^.*$"},
		{"type": "Read", "col1": "A", "row1": 1, "col2": "A", "row2": 1}
	]`))
	require.NoError(t, err)

	assert.Equal(t, domain.Select{Span: domain.Span{Col1: "C", Row1: 1, Row2: -1}}, batch[0])
	assert.Equal(t, domain.Select{Span: domain.Span{Col1: "A", Row1: 2, Row2: -1}}, batch[1])
	assert.Equal(t, domain.Read{Span: domain.Span{Col1: "A", Row1: 1, Col2: "A", Row2: 1}}, batch[2])
}

func TestUnmarshalBatch_Aliases(t *testing.T) {
	batch, err := schema.UnmarshalBatch([]byte(`[
		{"type": "Select", "range": "A1:A10"},
		{"type": "Set", "value": "Test Data"},
		{"type": "Set", "value": 20},
		{"type": "Format", "style": "numberFormat", "value_format": "$#,##0.00"},
		{"type": "SelectAndDrag"}
	]`))
	require.NoError(t, err)

	assert.Equal(t, domain.Select{Span: domain.Span{Col1: "A", Row1: 1, Col2: "A", Row2: 10}}, batch[0])
	assert.Equal(t, domain.Set{Text: "Test Data"}, batch[1])
	assert.Equal(t, domain.Set{Text: "20"}, batch[2])
	assert.Equal(t, "$#,##0.00", batch[3].(domain.Format).NumberFormat)
	assert.Equal(t, domain.SelectAndDrag{}, batch[4])
}

func TestDecode_Format(t *testing.T) {
	a, err := schema.Decode(map[string]any{
		"type":   "Format",
		"style":  "border",
		"size":   "12",
		"wrap":   "True",
		"border": map[string]any{"top": true, "left": "False"},
	})
	require.NoError(t, err)
	f := a.(domain.Format)

	assert.Equal(t, 12, f.Size)
	require.NotNil(t, f.Wrap)
	assert.True(t, *f.Wrap)
	require.NotNil(t, f.Border)
	assert.True(t, *f.Border.Top)
	assert.False(t, *f.Border.Left)
	assert.Nil(t, f.Border.Right)
}

func TestDecode_UnknownTypeIsKept(t *testing.T) {
	a, err := schema.Decode(map[string]any{"type": "Dance"})
	require.NoError(t, err)
	assert.Equal(t, domain.Unknown{Kind: "Dance"}, a)
}

func TestDecodeBatch_ReportsEveryBadEntry(t *testing.T) {
	_, err := schema.DecodeBatch([]any{
		map[string]any{"type": "Select", "col1": "A", "row1": "one"},
		"not an object",
		map[string]any{"type": "Set", "value": []any{1, 2}},
		map[string]any{"type": "Terminate"},
	})
	require.Error(t, err)

	errs := schema.ValidationErrors(err)
	require.Len(t, errs, 3)
	var ve *schema.ValidationError
	require.True(t, errors.As(errs[0], &ve))
	assert.Equal(t, "actions[0].row1", ve.Key)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	yes := true
	batch := domain.Batch{
		domain.Select{Span: domain.Span{Col1: "C", Row1: 1, Col2: "C", Row2: -1}, Reg: `^\?`},
		domain.SelectAndDrag{},
		domain.ToolAction{Tool: "copy"},
		domain.Set{Text: "=B1*0.9"},
		domain.Format{Style: "border", Border: &domain.Border{Top: &yes}, Wrap: &yes, NumberFormat: "0%"},
		domain.Read{Span: domain.Span{Col1: "A", Row1: 1}},
		domain.TellUser{Message: "done"},
		domain.Terminate{},
		domain.Unknown{Kind: "Dance"},
	}
	data, err := schema.MarshalBatch(batch)
	require.NoError(t, err)

	back, err := schema.UnmarshalBatch(data)
	require.NoError(t, err)
	assert.Equal(t, batch, back)
}
