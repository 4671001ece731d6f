package cellref

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	a1Ref   = regexp.MustCompile(`(\$?)([A-Za-z]{1,3})(\$?)([0-9]+)`)
	r1c1Ref = regexp.MustCompile(`[Rr](\[-?[0-9]+\]|[0-9]+)?[Cc](\[-?[0-9]+\]|[0-9]+)?`)
)

// ToR1C1 rewrites the A1 references of a formula written at (row, col) into
// R1C1 notation. Relative parts become bracketed offsets, "$" parts stay absolute.
func ToR1C1(formula string, row, col int) string {
	return outsideQuotes(formula, func(seg string) string {
		return replaceRefs(seg, a1Ref, func(m []string) (string, bool) {
			c, err := Column(m[2])
			if err != nil {
				return "", false
			}
			r, err := strconv.Atoi(m[4])
			if err != nil || r < 1 {
				return "", false
			}
			return "R" + part(m[3] == "$", r, row) + "C" + part(m[1] == "$", c, col), true
		})
	})
}

// FromR1C1 rewrites an R1C1 formula into A1 references relative to (row, col).
func FromR1C1(formula string, row, col int) string {
	return outsideQuotes(formula, func(seg string) string {
		return replaceRefs(seg, r1c1Ref, func(m []string) (string, bool) {
			r, rAbs, ok := unpart(m[1], row)
			if !ok {
				return "", false
			}
			c, cAbs, ok := unpart(m[2], col)
			if !ok {
				return "", false
			}
			name := ColumnName(c)
			if name == "" {
				return "", false
			}
			var b strings.Builder
			if cAbs {
				b.WriteByte('$')
			}
			b.WriteString(name)
			if rAbs {
				b.WriteByte('$')
			}
			b.WriteString(strconv.Itoa(r))
			return b.String(), true
		})
	})
}

func part(abs bool, target, origin int) string {
	if abs {
		return strconv.Itoa(target)
	}
	return "[" + strconv.Itoa(target-origin) + "]"
}

func unpart(text string, origin int) (int, bool, bool) {
	switch {
	case text == "":
		return origin, false, true
	case strings.HasPrefix(text, "["):
		off, err := strconv.Atoi(strings.Trim(text, "[]"))
		if err != nil || origin+off < 1 {
			return 0, false, false
		}
		return origin + off, false, true
	default:
		n, err := strconv.Atoi(text)
		if err != nil || n < 1 {
			return 0, false, false
		}
		return n, true, true
	}
}

// replaceRefs substitutes every match that stands alone as a reference:
// not glued to an identifier on the left and not followed by a name or "(".
func replaceRefs(seg string, re *regexp.Regexp, conv func([]string) (string, bool)) string {
	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringSubmatchIndex(seg, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && isWordByte(seg[start-1]) {
			continue
		}
		if end < len(seg) && (isWordByte(seg[end]) || seg[end] == '(') {
			continue
		}
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = seg[loc[2*i]:loc[2*i+1]]
			}
		}
		out, ok := conv(groups)
		if !ok {
			continue
		}
		b.WriteString(seg[last:start])
		b.WriteString(out)
		last = end
	}
	b.WriteString(seg[last:])
	return b.String()
}

func isWordByte(c byte) bool {
	return c == '_' || c == '.' || c == '$' ||
		(c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// outsideQuotes applies fn to the parts of a formula that are not string literals.
func outsideQuotes(formula string, fn func(string) string) string {
	var b strings.Builder
	for i, seg := range strings.Split(formula, `"`) {
		if i > 0 {
			b.WriteByte('"')
		}
		if i%2 == 0 {
			b.WriteString(fn(seg))
		} else {
			b.WriteString(seg)
		}
	}
	return b.String()
}
