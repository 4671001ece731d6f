package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/sheetpilot/pkg/cellref"
	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// wireAction is the loose JSON shape of any action.
type wireAction struct {
	Type        string         `mapstructure:"type"`
	Reg         string         `mapstructure:"reg"`
	Col1        string         `mapstructure:"col1"`
	Row1        string         `mapstructure:"row1"`
	Col2        string         `mapstructure:"col2"`
	Row2        string         `mapstructure:"row2"`
	Range       string         `mapstructure:"range"`
	Text        string         `mapstructure:"text"`
	Value       any            `mapstructure:"value"`
	Tool        string         `mapstructure:"tool"`
	Style       string         `mapstructure:"style"`
	Color       string         `mapstructure:"color"`
	Size        int            `mapstructure:"size"`
	Alignment   string         `mapstructure:"alignment"`
	Border      *domain.Border `mapstructure:"border"`
	Wrap        *bool          `mapstructure:"wrap"`
	Format      string         `mapstructure:"format"`
	ValueFormat string         `mapstructure:"value_format"`
	Message     string         `mapstructure:"message"`
}

// Decode converts one loosely typed action into a domain.Action.
func Decode(raw map[string]any) (domain.Action, error) {
	return decodeAt("action", raw)
}

func decodeAt(path string, raw map[string]any) (domain.Action, error) {
	var w wireAction
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &w,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, &ValidationError{Key: path, Reason: err.Error()}
	}

	// The reg field may be null or the match-all pattern; both mean no filter.
	reg := strings.TrimSpace(w.Reg)
	if reg == "^.*$" {
		reg = ""
	}

	switch domain.ActionType(w.Type) {
	case domain.ActionSelect:
		span, err := w.span(path)
		return domain.Select{Span: span, Reg: reg}, err
	case domain.ActionSelectAndDrag:
		span, err := w.span(path)
		return domain.SelectAndDrag{Span: span, Reg: reg}, err
	case domain.ActionRead:
		span, err := w.span(path)
		return domain.Read{Span: span, Reg: reg}, err
	case domain.ActionToolAction:
		return domain.ToolAction{Tool: w.Tool, Reg: reg}, nil
	case domain.ActionSet:
		text, err := w.text(path)
		return domain.Set{Text: text, Reg: reg}, err
	case domain.ActionFormat:
		format := w.Format
		if format == "" {
			format = w.ValueFormat
		}
		return domain.Format{
			Style:        w.Style,
			Color:        w.Color,
			Size:         w.Size,
			Alignment:    w.Alignment,
			Border:       w.Border,
			Wrap:         w.Wrap,
			NumberFormat: format,
			Reg:          reg,
		}, nil
	case domain.ActionTellUser:
		return domain.TellUser{Message: w.Message}, nil
	case domain.ActionTerminate:
		return domain.Terminate{}, nil
	}
	return domain.Unknown{Kind: w.Type}, nil
}

func (w wireAction) span(path string) (domain.Span, error) {
	if w.Range != "" && w.Col1 == "" {
		span, err := cellref.ParseSpan(w.Range)
		if err != nil {
			return span, &ValidationError{Key: path + ".range", Reason: err.Error(), Value: w.Range}
		}
		return span, nil
	}
	row1, err := parseRow(w.Row1)
	if err != nil {
		return domain.Span{}, &ValidationError{Key: path + ".row1", Reason: err.Error(), Value: w.Row1}
	}
	row2, err := parseRow(w.Row2)
	if err != nil {
		return domain.Span{}, &ValidationError{Key: path + ".row2", Reason: err.Error(), Value: w.Row2}
	}
	return domain.Span{
		Col1: strings.ToUpper(strings.TrimSpace(w.Col1)),
		Row1: row1,
		Col2: strings.ToUpper(strings.TrimSpace(w.Col2)),
		Row2: row2,
	}, nil
}

func (w wireAction) text(path string) (string, error) {
	if w.Text != "" || w.Value == nil {
		return w.Text, nil
	}
	switch v := w.Value.(type) {
	case string, float64, float32, int, int64, bool:
		return domain.FormatValue(v), nil
	}
	return "", &ValidationError{Key: path + ".value", Reason: "expected a scalar", Value: w.Value}
}

func parseRow(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// Weak decoding renders JSON numbers like 3.0 as "3", but be tolerant of "3.0".
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("row must be an integer")
		}
		n = int(f)
	}
	if n < domain.LastRow {
		return 0, fmt.Errorf("row must be positive or -1")
	}
	return n, nil
}

// DecodeBatch converts a list of loosely typed actions, reporting every bad entry.
func DecodeBatch(raw []any) (domain.Batch, error) {
	batch := make(domain.Batch, 0, len(raw))
	var errs []error
	for i, item := range raw {
		path := fmt.Sprintf("actions[%d]", i)
		m, ok := item.(map[string]any)
		if !ok {
			errs = append(errs, &ValidationError{Key: path, Reason: "expected an object", Value: item})
			continue
		}
		action, err := decodeAt(path, m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		batch = append(batch, action)
	}
	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}
	return batch, nil
}

// UnmarshalBatch decodes a JSON array of actions.
func UnmarshalBatch(data []byte) (domain.Batch, error) {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode actions: %w", err)
	}
	return DecodeBatch(raw)
}

// Encode renders an action in canonical wire form.
func Encode(a domain.Action) map[string]any {
	m := map[string]any{"type": string(a.Type())}
	if reg := domain.FilterOf(a); reg != "" {
		m["reg"] = reg
	}
	putSpan := func(s domain.Span) {
		if s.Col1 != "" {
			m["col1"] = s.Col1
		}
		if s.Row1 != 0 {
			m["row1"] = s.Row1
		}
		if s.Col2 != "" {
			m["col2"] = s.Col2
		}
		if s.Row2 != 0 {
			m["row2"] = s.Row2
		}
	}
	switch v := a.(type) {
	case domain.Select:
		putSpan(v.Span)
	case domain.SelectAndDrag:
		putSpan(v.Span)
	case domain.Read:
		putSpan(v.Span)
	case domain.ToolAction:
		m["tool"] = v.Tool
	case domain.Set:
		m["text"] = v.Text
	case domain.Format:
		m["style"] = v.Style
		if v.Color != "" {
			m["color"] = v.Color
		}
		if v.Size != 0 {
			m["size"] = v.Size
		}
		if v.Alignment != "" {
			m["alignment"] = v.Alignment
		}
		if v.Border != nil {
			m["border"] = v.Border
		}
		if v.Wrap != nil {
			m["wrap"] = *v.Wrap
		}
		if v.NumberFormat != "" {
			m["format"] = v.NumberFormat
		}
	case domain.TellUser:
		m["message"] = v.Message
	}
	return m
}

// EncodeBatch renders a batch in canonical wire form.
func EncodeBatch(batch domain.Batch) []map[string]any {
	out := make([]map[string]any, len(batch))
	for i, a := range batch {
		out[i] = Encode(a)
	}
	return out
}

// MarshalBatch encodes a batch as a JSON array.
func MarshalBatch(batch domain.Batch) ([]byte, error) {
	return json.Marshal(EncodeBatch(batch))
}
