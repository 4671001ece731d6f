package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/aretw0/sheetpilot"
	"github.com/aretw0/sheetpilot/internal/logging"
	"github.com/aretw0/sheetpilot/pkg/ports"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// NewLogger configures the application logger. Debug forces the debug level;
// otherwise level is parsed from configuration.
func NewLogger(level string, debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.New(logging.ParseLevel(level))
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// colorProfile only colors output bound for a terminal.
func colorProfile(w io.Writer) termenv.Profile {
	if f, ok := w.(*os.File); ok && IsTerminal(f) {
		return termenv.ColorProfile()
	}
	return termenv.Ascii
}

// gridRows snapshots every used row of the grid.
func gridRows(ctx context.Context, agent *sheetpilot.Agent) ([][]string, error) {
	return ports.Snapshot(ctx, agent.Grid(), math.MaxInt32)
}
