package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/sheetpilot"
	"github.com/aretw0/sheetpilot/internal/presentation/tui"
	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/aretw0/sheetpilot/pkg/dsl"
	"github.com/aretw0/sheetpilot/pkg/schema"
	"gopkg.in/yaml.v3"
)

// RunOptions configures a one-shot batch execution.
type RunOptions struct {
	// File holds the batch: .json and .yaml/.yml as action lists, anything
	// else as action language text. "-" reads stdin.
	File string
	// Scenario runs a named scenario instead of a file.
	Scenario  string
	SessionID string
	// Diff prints the grid rows that changed.
	Diff bool
	// JSON prints the outcome as JSON.
	JSON bool
	In   io.Reader
	Out  io.Writer
}

// LoadBatch reads a batch file.
func LoadBatch(path string, stdin io.Reader) (domain.Batch, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read batch: %w", err)
	}
	return ParseBatch(data, filepath.Ext(path))
}

// ParseBatch decodes data according to a file extension.
func ParseBatch(data []byte, ext string) (domain.Batch, error) {
	switch strings.ToLower(ext) {
	case ".json":
		return schema.UnmarshalBatch(data)
	case ".yaml", ".yml":
		var raw []any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode actions: %w", err)
		}
		return schema.DecodeBatch(raw)
	default:
		return dsl.Parse(string(data))
	}
}

// Run executes a batch or scenario once and reports the outcome.
func Run(ctx context.Context, agent *sheetpilot.Agent, opts RunOptions) error {
	var before [][]string
	if opts.Diff {
		var err error
		if before, err = gridRows(ctx, agent); err != nil {
			return err
		}
	}

	var (
		out domain.Outcome
		err error
	)
	switch {
	case opts.Scenario != "":
		out, err = agent.RunScenario(ctx, opts.SessionID, opts.Scenario)
	case opts.File != "":
		var batch domain.Batch
		if batch, err = LoadBatch(opts.File, opts.In); err != nil {
			return err
		}
		out, err = agent.Execute(ctx, opts.SessionID, batch)
	default:
		return fmt.Errorf("nothing to run: pass a batch file or --scenario")
	}
	if err != nil {
		return err
	}

	if opts.JSON {
		enc := json.NewEncoder(opts.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		printOutcome(opts.Out, out)
	}

	if opts.Diff {
		after, err := gridRows(ctx, agent)
		if err != nil {
			return err
		}
		lines := tui.GridDiff(before, after)
		if !tui.Changed(lines) {
			printSystemMessage(opts.Out, "No cells changed.")
			return nil
		}
		fmt.Fprint(opts.Out, tui.FormatDiff(lines, colorProfile(opts.Out)))
	}
	return nil
}

func printOutcome(w io.Writer, out domain.Outcome) {
	if out.Message != "" {
		fmt.Fprintln(w, out.Message)
	}
	for _, r := range out.ReadMessages {
		fmt.Fprintln(w, r)
	}
	status := "completed"
	if out.Terminated {
		status = "terminated"
	}
	printSystemMessage(w, "Batch %s: %d applied, %d skipped.", status, out.Applied, out.Skipped)
}
