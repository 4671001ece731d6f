package xlsx

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/xuri/excelize/v2"
)

var hexColor = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}$`)

// namedColors covers the color names planners commonly emit.
var namedColors = map[string]string{
	"black":     "000000",
	"white":     "FFFFFF",
	"red":       "FF0000",
	"green":     "00FF00",
	"blue":      "0000FF",
	"yellow":    "FFFF00",
	"orange":    "FFA500",
	"purple":    "800080",
	"pink":      "FFC0CB",
	"gray":      "808080",
	"grey":      "808080",
	"lightgray": "D3D3D3",
	"cyan":      "00FFFF",
	"magenta":   "FF00FF",
	"brown":     "A52A2A",
}

// rgb normalizes a color name or hex value to "#RRGGBB".
func rgb(color string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(color))
	if hex, ok := namedColors[c]; ok {
		return "#" + hex, nil
	}
	if hexColor.MatchString(c) {
		return "#" + strings.ToUpper(strings.TrimPrefix(c, "#")), nil
	}
	return "", fmt.Errorf("%w: color %q", domain.ErrUnknownStyle, color)
}

var horizontal = map[string]string{
	"left": "left", "center": "center", "centre": "center", "right": "right",
	"justify": "justify", "general": "general", "normal": "general",
}

var vertical = map[string]string{
	"top": "top", "middle": "center", "center": "center", "bottom": "bottom",
}

func applyOp(s *excelize.Style, op domain.StyleOp) error {
	font := func() *excelize.Font {
		if s.Font == nil {
			s.Font = &excelize.Font{}
		}
		return s.Font
	}
	align := func() *excelize.Alignment {
		if s.Alignment == nil {
			s.Alignment = &excelize.Alignment{}
		}
		return s.Alignment
	}

	switch op.Kind {
	case domain.StyleBold:
		font().Bold = true
	case domain.StyleItalic:
		font().Italic = true
	case domain.StyleUnderline:
		font().Underline, font().Strike = "single", false
	case domain.StyleStrikethrough:
		font().Strike, font().Underline = true, ""
	case domain.StyleBackgroundColor:
		c, err := rgb(op.Color)
		if err != nil {
			return err
		}
		s.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{c}}
	case domain.StyleFontColor:
		c, err := rgb(op.Color)
		if err != nil {
			return err
		}
		font().Color = c
	case domain.StyleFontSize:
		if op.Size < 1 || op.Size > excelize.MaxFontSize {
			return fmt.Errorf("%w: font size %d", domain.ErrUnknownStyle, op.Size)
		}
		font().Size = float64(op.Size)
	case domain.StyleHorizontalAlignment:
		a, ok := horizontal[strings.ToLower(op.Alignment)]
		if !ok {
			return fmt.Errorf("%w: alignment %q", domain.ErrUnknownStyle, op.Alignment)
		}
		align().Horizontal = a
	case domain.StyleVerticalAlignment:
		a, ok := vertical[strings.ToLower(op.Alignment)]
		if !ok {
			return fmt.Errorf("%w: alignment %q", domain.ErrUnknownStyle, op.Alignment)
		}
		align().Vertical = a
	case domain.StyleBorder:
		s.Border = applyBorder(s.Border, op.Border)
	case domain.StyleWrapText:
		align().WrapText = op.Wrap
	case domain.StyleNumberFormat:
		f := op.NumberFormat
		s.CustomNumFmt = &f
	default:
		return domain.ErrUnknownStyle
	}
	return nil
}

// applyBorder switches the outer lines of a single cell. The vertical and
// horizontal switches address inner lines of a range and do not apply to one cell.
func applyBorder(lines []excelize.Border, b domain.Border) []excelize.Border {
	set := map[string]*bool{"top": b.Top, "left": b.Left, "bottom": b.Bottom, "right": b.Right}
	out := lines[:0:0]
	for _, l := range lines {
		if on, ok := set[l.Type]; ok && on != nil {
			continue
		}
		out = append(out, l)
	}
	for _, side := range []string{"left", "top", "right", "bottom"} {
		if on := set[side]; on != nil && *on {
			out = append(out, excelize.Border{Type: side, Color: "000000", Style: 1})
		}
	}
	return out
}

func cellStyle(s *excelize.Style) domain.CellStyle {
	var cs domain.CellStyle
	if s == nil {
		return cs
	}
	if f := s.Font; f != nil {
		cs.Bold = f.Bold
		cs.Italic = f.Italic
		cs.Underline = f.Underline != ""
		cs.Strikethrough = f.Strike
		cs.FontSize = int(f.Size)
		if f.Color != "" {
			cs.FontColor = "#" + strings.ToUpper(f.Color)
		}
	}
	if len(s.Fill.Color) > 0 && s.Fill.Color[0] != "" {
		cs.Background = "#" + strings.ToUpper(strings.TrimPrefix(s.Fill.Color[0], "#"))
	}
	if a := s.Alignment; a != nil {
		cs.Horizontal = a.Horizontal
		cs.Vertical = a.Vertical
		cs.Wrap = a.WrapText
	}
	for _, l := range s.Border {
		on := true
		switch l.Type {
		case "top":
			cs.Border.Top = &on
		case "left":
			cs.Border.Left = &on
		case "bottom":
			cs.Border.Bottom = &on
		case "right":
			cs.Border.Right = &on
		}
	}
	if s.CustomNumFmt != nil {
		cs.NumberFormat = *s.CustomNumFmt
	}
	return cs
}
