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

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the agent in the terminal",
	Long: `Reads one message per line and prints the reply. Messages containing "api"
test the planner connection, messages containing "sim" replay a scenario.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, _, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID == "" {
			sessionID = sheetpilot.NewSessionID()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return cli.Chat(ctx, rt.Agent, cli.ChatOptions{
			SessionID:   sessionID,
			In:          os.Stdin,
			Out:         os.Stdout,
			Interactive: cli.IsTerminal(os.Stdin) && cli.IsTerminal(os.Stdout),
			Version:     sheetpilot.Version,
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("session", "s", "", "Session ID (keeps the clipboard between runs with a persistent store)")

	// chat is the default command
	rootCmd.RunE = chatCmd.RunE
	rootCmd.Flags().AddFlagSet(chatCmd.Flags())
}
