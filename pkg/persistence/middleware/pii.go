package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/aretw0/sheetpilot/pkg/ports"
)

type piiMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that drops clipboard values matching
// any of the patterns before they reach the store. A dropped value is stored
// as a nil placeholder, which a later paste leaves alone. The in-memory
// session is untouched, so a paste within the same batch still sees the real
// value.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, session *domain.Session) error {
	cloned := *session
	cloned.Clipboard = domain.Clipboard{Cells: maskCells(session.Clipboard.Cells, m.patterns)}
	return m.next.Save(ctx, &cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func maskCells(cells [][]any, patterns []*regexp.Regexp) [][]any {
	if cells == nil {
		return nil
	}
	out := make([][]any, len(cells))
	for i, row := range cells {
		out[i] = make([]any, len(row))
		for j, v := range row {
			out[i][j] = maskValue(v, patterns)
		}
	}
	return out
}

func maskValue(v any, patterns []*regexp.Regexp) any {
	if v == nil {
		return nil
	}
	text := domain.FormatValue(v)
	for _, p := range patterns {
		if p.MatchString(text) {
			return nil
		}
	}
	return v
}
