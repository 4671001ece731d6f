package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/sheetpilot"
	"github.com/aretw0/sheetpilot/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [batch-file]",
	Short: "Execute an action batch or scenario once",
	Long: `Executes a batch without the planner. The file may be a JSON or YAML action
list, or a program in the action language. Use "-" to read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, _, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		opts := cli.RunOptions{In: os.Stdin, Out: os.Stdout}
		if len(args) > 0 {
			opts.File = args[0]
		}
		opts.Scenario, _ = cmd.Flags().GetString("scenario")
		opts.SessionID, _ = cmd.Flags().GetString("session")
		opts.Diff, _ = cmd.Flags().GetBool("diff")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		if opts.SessionID == "" {
			opts.SessionID = sheetpilot.DefaultSessionID
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return cli.Run(ctx, rt.Agent, opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("scenario", "", "Run a named scenario instead of a file")
	runCmd.Flags().StringP("session", "s", "", "Session ID")
	runCmd.Flags().Bool("diff", false, "Print the rows that changed")
	runCmd.Flags().Bool("json", false, "Print the outcome as JSON")
}
