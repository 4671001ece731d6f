package domain

import "strings"

// StyleKind names a style operation understood by Format.
type StyleKind string

const (
	StyleBold                StyleKind = "bold"
	StyleItalic              StyleKind = "italic"
	StyleUnderline           StyleKind = "underline"
	StyleStrikethrough       StyleKind = "strikethrough"
	StyleBackgroundColor     StyleKind = "backgroundcolor"
	StyleFontColor           StyleKind = "fontcolor"
	StyleFontSize            StyleKind = "fontsize"
	StyleHorizontalAlignment StyleKind = "horizontalalignment"
	StyleVerticalAlignment   StyleKind = "verticalalignment"
	StyleBorder              StyleKind = "border"
	StyleWrapText            StyleKind = "wraptext"
	StyleNumberFormat        StyleKind = "numberformat"
)

// Border carries the six edge/line switches of a border operation.
// A nil field leaves that line unchanged.
type Border struct {
	Top        *bool `json:"top,omitempty" mapstructure:"top"`
	Left       *bool `json:"left,omitempty" mapstructure:"left"`
	Bottom     *bool `json:"bottom,omitempty" mapstructure:"bottom"`
	Right      *bool `json:"right,omitempty" mapstructure:"right"`
	Vertical   *bool `json:"vertical,omitempty" mapstructure:"vertical"`
	Horizontal *bool `json:"horizontal,omitempty" mapstructure:"horizontal"`
}

// StyleOp is a validated style operation ready to be applied to a cell.
type StyleOp struct {
	Kind         StyleKind
	Color        string
	Size         int
	Alignment    string
	Border       Border
	Wrap         bool
	NumberFormat string
}

// StyleOp resolves the Format action into an operation.
// It fails with ErrUnknownStyle or ErrMissingParameter, in which case no cell is touched.
func (f Format) StyleOp() (StyleOp, error) {
	kind := StyleKind(strings.ToLower(strings.TrimSpace(f.Style)))
	op := StyleOp{Kind: kind}
	switch kind {
	case StyleBold, StyleItalic, StyleUnderline, StyleStrikethrough:
	case StyleBackgroundColor, StyleFontColor:
		if f.Color == "" {
			return op, ErrMissingParameter
		}
		op.Color = f.Color
	case StyleFontSize:
		if f.Size == 0 {
			return op, ErrMissingParameter
		}
		op.Size = f.Size
	case StyleHorizontalAlignment, StyleVerticalAlignment:
		if f.Alignment == "" {
			return op, ErrMissingParameter
		}
		op.Alignment = f.Alignment
	case StyleBorder:
		if f.Border == nil {
			return op, ErrMissingParameter
		}
		op.Border = *f.Border
	case StyleWrapText:
		// an absent wrap flag clears wrapping
		if f.Wrap != nil {
			op.Wrap = *f.Wrap
		}
	case StyleNumberFormat:
		if f.NumberFormat == "" {
			return op, ErrMissingParameter
		}
		op.NumberFormat = f.NumberFormat
	default:
		return op, ErrUnknownStyle
	}
	return op, nil
}

// CellStyle is the accumulated formatting of one cell.
type CellStyle struct {
	Bold          bool   `json:"bold,omitempty"`
	Italic        bool   `json:"italic,omitempty"`
	Underline     bool   `json:"underline,omitempty"`
	Strikethrough bool   `json:"strikethrough,omitempty"`
	Background    string `json:"background,omitempty"`
	FontColor     string `json:"font_color,omitempty"`
	FontSize      int    `json:"font_size,omitempty"`
	Horizontal    string `json:"horizontal,omitempty"`
	Vertical      string `json:"vertical,omitempty"`
	Border        Border `json:"border,omitempty"`
	Wrap          bool   `json:"wrap,omitempty"`
	NumberFormat  string `json:"number_format,omitempty"`
}

// Apply returns the style with op applied.
// Underline and strikethrough share the font line, so setting one clears the other.
func (s CellStyle) Apply(op StyleOp) CellStyle {
	switch op.Kind {
	case StyleBold:
		s.Bold = true
	case StyleItalic:
		s.Italic = true
	case StyleUnderline:
		s.Underline, s.Strikethrough = true, false
	case StyleStrikethrough:
		s.Strikethrough, s.Underline = true, false
	case StyleBackgroundColor:
		s.Background = op.Color
	case StyleFontColor:
		s.FontColor = op.Color
	case StyleFontSize:
		s.FontSize = op.Size
	case StyleHorizontalAlignment:
		s.Horizontal = op.Alignment
	case StyleVerticalAlignment:
		s.Vertical = op.Alignment
	case StyleBorder:
		s.Border = s.Border.Merge(op.Border)
	case StyleWrapText:
		s.Wrap = op.Wrap
	case StyleNumberFormat:
		s.NumberFormat = op.NumberFormat
	}
	return s
}

// Merge overlays the non-nil lines of o onto b.
func (b Border) Merge(o Border) Border {
	pick := func(cur, next *bool) *bool {
		if next != nil {
			v := *next
			return &v
		}
		return cur
	}
	return Border{
		Top:        pick(b.Top, o.Top),
		Left:       pick(b.Left, o.Left),
		Bottom:     pick(b.Bottom, o.Bottom),
		Right:      pick(b.Right, o.Right),
		Vertical:   pick(b.Vertical, o.Vertical),
		Horizontal: pick(b.Horizontal, o.Horizontal),
	}
}
