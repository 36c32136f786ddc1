package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/seitool/sei/internal/export"
	"github.com/seitool/sei/internal/pathutil"
	"github.com/seitool/sei/internal/rules"
	"github.com/seitool/sei/internal/scan"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Scan and export the matches",
	Long: `Scan a directory tree against a filter list and write the matched
entries to a file or stdout. Formats: lines, csv, json, jsonl.`,
	RunE: runExport,
}

var (
	exportRoot          string
	exportFilter        string
	exportFormat        string
	exportOutput        string
	exportCaseSensitive bool
	exportAll           bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportRoot, "root", "r", ".", "Root directory to scan")
	exportCmd.Flags().StringVarP(&exportFilter, "filter", "f", "", "Path to the filter list file (required)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "t", "lines", "Output format: lines, csv, json, jsonl")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (empty = stdout)")
	exportCmd.Flags().BoolVar(&exportCaseSensitive, "case-sensitive", false, "Match patterns case-sensitively")
	exportCmd.Flags().BoolVar(&exportAll, "include-unmatched", false, "Include unmatched entries")
	exportCmd.MarkFlagRequired("filter")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	root, err := filepath.Abs(exportRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve root path: %w", err)
	}
	root = pathutil.Normalize(root)

	ruleList, err := rules.ParseFile(exportFilter)
	if err != nil {
		return err
	}

	opts := scan.DefaultOptions().
		WithCaseSensitive(exportCaseSensitive).
		WithIncludeUnmatched(exportAll)

	scanner := scan.NewScanner(opts)
	payload, err := scanner.Run(context.Background(), root, ruleList)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	out := os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := export.Write(out, format, payload.Nodes, ruleList); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if exportOutput != "" {
		fmt.Fprintf(os.Stderr, "Exported %d matched entries to %s\n", payload.Stats.Matched, exportOutput)
	}
	return nil
}
