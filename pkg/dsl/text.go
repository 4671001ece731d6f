package dsl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/sheetpilot/pkg/cellref"
	"github.com/aretw0/sheetpilot/pkg/domain"
)

// MatchAll is the pattern printed for actions without a filter.
const MatchAll = "^.*$"

var (
	entrySeparator = regexp.MustCompile(`;|\n`)
	regexPrefix    = regexp.MustCompile(`(?i)^REGEX\s+([^|]+?)\s*\|\s*(.*)$`)
)

// ParseError reports the entry that could not be parsed.
type ParseError struct {
	Entry int
	Text  string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("entry %d %q: %v", e.Entry, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse reads a program in the text action language.
// The REGEX prefix is optional; an entry without it has no filter.
func Parse(program string) (domain.Batch, error) {
	batch := domain.Batch{}
	for i, entry := range entrySeparator.Split(program, -1) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		action, err := parseEntry(entry)
		if err != nil {
			return nil, &ParseError{Entry: i, Text: entry, Err: err}
		}
		batch = append(batch, action)
	}
	return batch, nil
}

func parseEntry(entry string) (domain.Action, error) {
	reg, body := "", entry
	if m := regexPrefix.FindStringSubmatch(entry); m != nil {
		reg, body = strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	if reg == MatchAll {
		reg = ""
	}

	verb, params, _ := strings.Cut(body, " ")
	params = strings.TrimSpace(params)

	switch strings.ToUpper(verb) {
	case "SELECT":
		span, err := shortSpan(params)
		return domain.Select{Span: span, Reg: reg}, err
	case "SELECTANDDRAG":
		var span domain.Span
		var err error
		if params != "" {
			span, err = cellref.ParseSpan(params)
		}
		return domain.SelectAndDrag{Span: span, Reg: reg}, err
	case "READ":
		span, err := shortSpan(params)
		return domain.Read{Span: span, Reg: reg}, err
	case "FORMAT":
		f, err := parseFormat(params)
		f.Reg = reg
		return f, err
	case "SET":
		return domain.Set{Text: params, Reg: reg}, nil
	case "TOOLACTION":
		if params == "" {
			return nil, fmt.Errorf("%w: tool name", domain.ErrMissingParameter)
		}
		return domain.ToolAction{Tool: params, Reg: reg}, nil
	case "TELLUSER":
		return domain.TellUser{Message: params}, nil
	case "TERMINATE":
		return domain.Terminate{}, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAction, verb)
}

// shortSpan parses a range where a lone cell "C1" means "C1 down to the last row".
func shortSpan(text string) (domain.Span, error) {
	span, err := cellref.ParseSpan(text)
	if err != nil {
		return span, err
	}
	if !strings.Contains(text, ":") {
		span.Col2, span.Row2 = span.Col1, domain.LastRow
	}
	return span, nil
}

func parseFormat(params string) (domain.Format, error) {
	var f domain.Format
	for _, part := range splitTopLevel(params) {
		key, value, ok := strings.Cut(part, ":")
		if !ok {
			return f, fmt.Errorf("format parameter %q: expected key: value", part)
		}
		key, value = strings.ToLower(strings.TrimSpace(key)), strings.TrimSpace(value)
		switch key {
		case "style":
			f.Style = value
		case "color":
			f.Color = value
		case "size":
			n, err := strconv.Atoi(value)
			if err != nil {
				return f, fmt.Errorf("format size %q: %w", value, err)
			}
			f.Size = n
		case "alignment":
			f.Alignment = value
		case "wrap":
			w := isTrue(value)
			f.Wrap = &w
		case "value_format", "format":
			f.NumberFormat = value
		case "border":
			b, err := parseBorder(value)
			if err != nil {
				return f, err
			}
			f.Border = &b
		default:
			return f, fmt.Errorf("unknown format parameter %q", key)
		}
	}
	if f.Style == "" {
		return f, fmt.Errorf("%w: style", domain.ErrMissingParameter)
	}
	return f, nil
}

func parseBorder(value string) (domain.Border, error) {
	var b domain.Border
	inner := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(value, "{"), "}"))
	if inner == "" {
		return b, nil
	}
	for _, side := range strings.Split(inner, ",") {
		name, val, ok := strings.Cut(side, ":")
		if !ok {
			return b, fmt.Errorf("border %q: expected side: bool", side)
		}
		v := isTrue(strings.TrimSpace(val))
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "top":
			b.Top = &v
		case "left":
			b.Left = &v
		case "bottom":
			b.Bottom = &v
		case "right":
			b.Right = &v
		case "vertical":
			b.Vertical = &v
		case "horizontal":
			b.Horizontal = &v
		default:
			return b, fmt.Errorf("unknown border side %q", name)
		}
	}
	return b, nil
}

// splitTopLevel splits on commas that are not inside braces.
// A piece without a key belongs to the previous value, so "value_format: #,##0" survives.
func splitTopLevel(s string) []string {
	var parts []string
	push := func(p string) {
		p = strings.TrimSpace(p)
		if p == "" {
			return
		}
		if !strings.Contains(p, ":") && len(parts) > 0 {
			parts[len(parts)-1] += "," + p
			return
		}
		parts = append(parts, p)
	}
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				push(s[start:i])
				start = i + 1
			}
		}
	}
	push(s[start:])
	return parts
}

func isTrue(s string) bool {
	return strings.EqualFold(s, "true")
}

// Print renders a batch in the text action language, one entry per line.
func Print(batch domain.Batch) (string, error) {
	lines := make([]string, 0, len(batch))
	for i, a := range batch {
		body, err := printBody(a)
		if err != nil {
			return "", fmt.Errorf("action %d: %w", i, err)
		}
		if strings.ContainsAny(body, ";\n") {
			return "", fmt.Errorf("action %d: text contains an entry separator", i)
		}
		reg := domain.FilterOf(a)
		if reg == "" {
			reg = MatchAll
		}
		lines = append(lines, "REGEX "+reg+" | "+body)
	}
	return strings.Join(lines, "\n"), nil
}

func printBody(a domain.Action) (string, error) {
	switch v := a.(type) {
	case domain.Select:
		return "SELECT " + v.Span.String(), nil
	case domain.SelectAndDrag:
		return strings.TrimSpace("SELECTANDDRAG " + v.Span.String()), nil
	case domain.Read:
		return "READ " + v.Span.String(), nil
	case domain.Format:
		return "FORMAT " + formatParams(v), nil
	case domain.Set:
		return "SET " + v.Text, nil
	case domain.ToolAction:
		return "TOOLACTION " + v.Tool, nil
	case domain.TellUser:
		return "TELLUSER " + v.Message, nil
	case domain.Terminate:
		return "TERMINATE", nil
	}
	return "", fmt.Errorf("%w: %s", domain.ErrUnknownAction, a.Type())
}

func formatParams(f domain.Format) string {
	params := []string{"style: " + f.Style}
	if f.Color != "" {
		params = append(params, "color: "+f.Color)
	}
	if f.Size != 0 {
		params = append(params, "size: "+strconv.Itoa(f.Size))
	}
	if f.Alignment != "" {
		params = append(params, "alignment: "+f.Alignment)
	}
	if f.Border != nil {
		var sides []string
		add := func(name string, v *bool) {
			if v != nil {
				sides = append(sides, name+": "+pyBool(*v))
			}
		}
		add("top", f.Border.Top)
		add("left", f.Border.Left)
		add("bottom", f.Border.Bottom)
		add("right", f.Border.Right)
		add("vertical", f.Border.Vertical)
		add("horizontal", f.Border.Horizontal)
		params = append(params, "border: { "+strings.Join(sides, ", ")+" }")
	}
	if f.Wrap != nil {
		params = append(params, "wrap: "+pyBool(*f.Wrap))
	}
	if f.NumberFormat != "" {
		params = append(params, "value_format: "+f.NumberFormat)
	}
	return strings.Join(params, ", ")
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
