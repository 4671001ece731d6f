package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/sheetpilot/internal/cli"
	"github.com/spf13/cobra"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the available scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, _, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		verbose, _ := cmd.Flags().GetBool("verbose")
		if err := cli.ListScenarios(cmd.Context(), rt.Agent.Scenarios(), cmd.OutOrStdout(), verbose); err != nil {
			return err
		}

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			if rt.Loader == nil {
				return fmt.Errorf("--watch needs a scenarios directory")
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return cli.WatchScenarios(ctx, rt.Loader, cmd.OutOrStdout())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scenariosCmd)
	scenariosCmd.Flags().BoolP("verbose", "v", false, "Print each scenario's actions")
	scenariosCmd.Flags().Bool("watch", false, "Report scenario file changes until interrupted")
}
