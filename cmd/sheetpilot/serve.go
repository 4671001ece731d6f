package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/sheetpilot/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Exposes the agent over HTTP: chat, direct execution, range reads, metrics and a websocket chat.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, cfg, logger, err := setupWithConfig(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return cli.Serve(ctx, rt, port, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
}
