package main

import (
	"fmt"
	"time"

	"github.com/seitool/sei/internal/db"
	"github.com/seitool/sei/internal/snapshot"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display snapshot metadata",
	Long:  `Print metadata about a snapshot including timestamps and statistics.`,
	RunE:  runInfo,
}

var infoDB string

func init() {
	infoCmd.Flags().StringVarP(&infoDB, "db", "d", "./data/latest.db", "Path to snapshot database")
}

func runInfo(cmd *cobra.Command, args []string) error {
	conn, err := snapshot.Open(infoDB)
	if err != nil {
		return err
	}
	defer conn.Close()

	meta, err := db.LoadMeta(conn)
	if err != nil {
		return err
	}
	ruleList, err := db.LoadRules(conn)
	if err != nil {
		return err
	}
	stats := meta.Stats

	mode := "insensitive"
	if meta.CaseSensitive {
		mode = "sensitive"
	}

	fmt.Printf("Scan Information\n")
	fmt.Printf("================\n\n")
	fmt.Printf("Root Path:    %s\n", meta.RootPath)
	fmt.Printf("Case:         %s\n", mode)
	fmt.Printf("Rules:        %d\n", len(ruleList))
	fmt.Printf("Start Time:   %s\n", stats.StartTime.Format(time.RFC3339))
	if !stats.EndTime.IsZero() {
		fmt.Printf("End Time:     %s\n", stats.EndTime.Format(time.RFC3339))
		fmt.Printf("Duration:     %s\n", stats.Duration().Round(time.Millisecond))
	}
	fmt.Printf("\nStatistics\n")
	fmt.Printf("----------\n")
	fmt.Printf("Scanned:      %s\n", humanize.Comma(stats.Scanned))
	fmt.Printf("Matched:      %s\n", humanize.Comma(stats.Matched))
	fmt.Printf("Matched Size: %s\n", humanize.Bytes(uint64(stats.MatchedBytes)))
	fmt.Printf("Files:        %s\n", humanize.Comma(stats.Files))
	fmt.Printf("Folders:      %s\n", humanize.Comma(stats.Folders))
	if stats.Skipped > 0 {
		fmt.Printf("Skipped:      %s\n", humanize.Comma(stats.Skipped))
	}

	return nil
}
