package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/sheetpilot"
	"github.com/aretw0/sheetpilot/internal/presentation/tui"
)

// Chat commands understood by the REPL itself.
const (
	cmdQuit  = "/quit"
	cmdSheet = "/sheet"
	cmdHelp  = "/help"
)

// ChatOptions configures the chat REPL.
type ChatOptions struct {
	SessionID string
	In        io.Reader
	Out       io.Writer
	// Interactive shows the banner and prompt and renders replies as markdown.
	Interactive bool
	Version     string
}

// Chat reads one message per line and prints the agent's reply until the
// input ends, the user quits or ctx is cancelled.
func Chat(ctx context.Context, agent *sheetpilot.Agent, opts ChatOptions) error {
	render := tui.Plain
	if opts.Interactive {
		tui.PrintBanner(opts.Out, opts.Version)
		render = tui.NewRenderer()
		printSystemMessage(opts.Out, "Session '%s' active. Type %s for commands.", opts.SessionID, cmdHelp)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := readLines(ctx, opts.In)
	for {
		if opts.Interactive {
			fmt.Fprint(opts.Out, "> ")
		}

		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			return nil
		}

		line = strings.TrimSpace(line)
		switch strings.ToLower(line) {
		case "":
			continue
		case cmdQuit, "exit", "quit":
			return nil
		case cmdHelp:
			printSystemMessage(opts.Out, "%s shows the first rows of the sheet, %s leaves.", cmdSheet, cmdQuit)
			continue
		case cmdSheet:
			rows, err := agent.Snapshot(ctx)
			if err != nil {
				return err
			}
			show(opts.Out, render, tui.Table(rows))
			continue
		}

		reply := agent.ProcessUserMessage(ctx, opts.SessionID, line)
		show(opts.Out, render, reply.Text)
	}
}

func show(w io.Writer, render tui.Renderer, markdown string) {
	out, err := render(markdown)
	if err != nil {
		out = markdown
	}
	fmt.Fprintln(w, strings.TrimRight(out, "\n"))
}

// readLines pumps lines from r so a blocked read never holds up cancellation.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case ch <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
