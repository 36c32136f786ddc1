package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sei",
	Short: "Show files excluded and ignored by filter rules",
	Long: `sei scans a directory tree against an rclone-style filter list and
reports which files and folders the rules would exclude. Results can
be exported for scripting or stored as SQLite snapshots and browsed
in a TUI.`,
}

func init() {
	rootCmd.Version = version
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(rulesCmd)
}
