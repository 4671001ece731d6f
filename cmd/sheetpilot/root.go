package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/sheetpilot/internal/cli"
	"github.com/aretw0/sheetpilot/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sheetpilot",
	Short: "sheetpilot applies planner-driven actions to a spreadsheet",
	Long: `sheetpilot forwards chat messages to a planning service and applies the
returned actions (select, set, format, drag-fill, read, copy/paste) to a workbook.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Config file (default: sheetpilot.yaml or sheetpilot.toml in the working directory)")
	flags.String("planner-url", "", "Base URL of the planning service")
	flags.StringP("workbook", "w", "", "Workbook (.xlsx) to operate on; empty keeps the sheet in memory")
	flags.String("sheet", "", "Sheet name inside the workbook")
	flags.String("scenarios", "", "Directory with scenario documents")
	flags.String("tools", "", "Tools file (YAML or JSON) of external commands usable as ToolAction tools")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.Bool("debug", false, "Enable verbose logging")
}

// loadConfig reads the config file and environment, then applies flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	overrides := map[string]*string{
		"planner-url": &cfg.Planner.URL,
		"workbook":    &cfg.Workbook.Path,
		"sheet":       &cfg.Workbook.Sheet,
		"scenarios":   &cfg.Scenarios.Dir,
		"tools":       &cfg.Tools.File,
		"log-level":   &cfg.Log.Level,
	}
	for name, dst := range overrides {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
	return cfg, cfg.Validate()
}

// setup builds the runtime the command works with.
func setup(cmd *cobra.Command) (*cli.Runtime, *slog.Logger, error) {
	rt, _, logger, err := setupWithConfig(cmd)
	return rt, logger, err
}

func setupWithConfig(cmd *cobra.Command) (*cli.Runtime, config.Config, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, nil, err
	}
	debug, _ := cmd.Flags().GetBool("debug")
	logger := cli.NewLogger(cfg.Log.Level, debug)

	rt, err := cli.NewRuntime(cfg, logger)
	if err != nil {
		return nil, cfg, nil, fmt.Errorf("error initializing sheetpilot: %w", err)
	}
	return rt, cfg, logger, nil
}
