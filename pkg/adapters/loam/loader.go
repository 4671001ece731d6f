// Package loam loads simulation scenarios from a Loam document repository.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/aretw0/sheetpilot/pkg/dsl"
	"github.com/aretw0/sheetpilot/pkg/schema"
)

// Loader implements ports.ScenarioLoader over a Loam repository.
// Documents are read on every call, so edits show up without a restart.
type Loader struct {
	Repo *loam.TypedRepository[ScenarioMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[ScenarioMetadata]) *Loader {
	return &Loader{Repo: repo}
}

// Open initializes a read-only repository rooted at dir.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	// Strict mode keeps numbers as json.Number across markdown, yaml and json documents.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[ScenarioMetadata](repo)), nil
}

// Scenario returns the scenario with the given ID.
func (l *Loader) Scenario(ctx context.Context, id string) (domain.Scenario, error) {
	all, err := l.load(ctx)
	if err != nil {
		return domain.Scenario{}, err
	}
	s, ok := all[id]
	if !ok {
		return domain.Scenario{}, fmt.Errorf("%w: %s", domain.ErrScenarioNotFound, id)
	}
	return s, nil
}

// ListScenarios returns the scenario IDs, sorted.
func (l *Loader) ListScenarios(ctx context.Context) ([]string, error) {
	all, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (l *Loader) load(ctx context.Context) (map[string]domain.Scenario, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	out := make(map[string]domain.Scenario, len(docs))
	for _, doc := range docs {
		// Use the ID from metadata if available, otherwise filename ID
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID

		s, err := scenario(id, doc.Data, doc.Content)
		if err != nil {
			return nil, fmt.Errorf("scenario %s (%s): %w", id, doc.ID, err)
		}
		out[id] = s
	}
	return out, nil
}

func scenario(id string, meta ScenarioMetadata, content string) (domain.Scenario, error) {
	s := domain.Scenario{
		ID:          id,
		Title:       meta.Title,
		Description: meta.Description,
	}
	if s.Description == "" {
		s.Description = strings.TrimSpace(content)
	}

	var err error
	switch {
	case len(meta.Actions) > 0:
		s.Batch, err = schema.DecodeBatch(meta.Actions)
	case strings.TrimSpace(meta.Program) != "":
		s.Batch, err = dsl.Parse(meta.Program)
	default:
		err = fmt.Errorf("%w: actions or program", domain.ErrMissingParameter)
	}
	return s, err
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch reports the IDs of documents that change on disk.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}
