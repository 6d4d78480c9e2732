// Package cli implements the taskmgr commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagDB      string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "taskmgr",
	Short: "Personal task tracker ordered by urgency",
	Long: `taskmgr keeps a list of tasks in a single file and orders them by urgency.
Urgency rises with age, or with the fraction of time used up before the due date.
Task IDs are positions in that order and are recomputed on every run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render("error:"), err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.taskmgr/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Task database path (overrides config and $TASKMGR_DB)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log recompute details to stderr")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(viewCmd)
}
