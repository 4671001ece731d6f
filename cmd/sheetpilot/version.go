package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/sheetpilot"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of sheetpilot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sheetpilot version %s\n", strings.TrimSpace(sheetpilot.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
