package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aretw0/sheetpilot/pkg/adapters/loam"
	"github.com/aretw0/sheetpilot/pkg/dsl"
	"github.com/aretw0/sheetpilot/pkg/ports"
)

// ListScenarios prints every scenario id and title. Verbose adds the
// program in action language.
func ListScenarios(ctx context.Context, loader ports.ScenarioLoader, w io.Writer, verbose bool) error {
	ids, err := loader.ListScenarios(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, id := range ids {
		s, err := loader.Scenario(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\n", s.ID, s.Title)
		if verbose {
			program, err := dsl.Print(s.Batch)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", id, err)
			}
			fmt.Fprintf(tw, "\t%s\n", program)
		}
	}
	return tw.Flush()
}

// WatchScenarios reports scenario files as they change and reloads the whole
// library after each change. It returns when ctx is cancelled.
func WatchScenarios(ctx context.Context, loader *loam.Loader, w io.Writer) error {
	changes, err := loader.Watch(ctx)
	if err != nil {
		return err
	}
	printSystemMessage(w, "Watching scenarios. Press Ctrl+C to stop.")
	for id := range changes {
		ids, err := loader.ListScenarios(ctx)
		if err != nil {
			printSystemMessage(w, "Change in '%s' broke the library: %v", id, err)
			continue
		}
		printSystemMessage(w, "Scenario '%s' changed, %d scenarios loaded.", id, len(ids))
	}
	return nil
}
