package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

// Matcher is the optional regex predicate shared by Set, Format, ToolAction and Read.
// The zero value matches everything.
type Matcher struct {
	re *regexp.Regexp
}

// CompileMatcher compiles pattern. An empty pattern yields a matcher that always matches.
func CompileMatcher(pattern string) (Matcher, error) {
	if pattern == "" {
		return Matcher{}, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Matcher{}, fmt.Errorf("%w: %q: %v", ErrInvalidFilter, pattern, err)
	}
	return Matcher{re: re}, nil
}

// Match tests the stringified cell value. The pattern is searched for anywhere
// in the value unless it is anchored.
func (m Matcher) Match(v any) bool {
	if m.re == nil {
		return true
	}
	return m.re.MatchString(FormatValue(v))
}

// Matches is the one-shot form of CompileMatcher + Match.
func Matches(pattern, candidate string) (bool, error) {
	m, err := CompileMatcher(pattern)
	if err != nil {
		return false, err
	}
	return m.Match(candidate), nil
}

// FormatValue renders a cell value the way it is shown to the planner and matched by filters.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// FormatRows stringifies a block of values.
func FormatRows(values [][]any) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = FormatValue(v)
		}
	}
	return out
}
