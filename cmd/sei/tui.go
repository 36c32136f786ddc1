package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/seitool/sei/internal/db"
	"github.com/seitool/sei/internal/pathutil"
	"github.com/seitool/sei/internal/rules"
	"github.com/seitool/sei/internal/scan"
	"github.com/seitool/sei/internal/snapshot"
	"github.com/seitool/sei/internal/tui"
	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse scan results interactively",
	Long: `Open an interactive browser over scan results. By default a stored
snapshot is loaded; with --root and --filter a fresh scan runs first.`,
	RunE: runTUI,
}

var (
	tuiDB            string
	tuiRoot          string
	tuiFilter        string
	tuiCaseSensitive bool
	tuiAll           bool
)

func init() {
	tuiCmd.Flags().StringVarP(&tuiDB, "db", "d", "./data/latest.db", "Path to snapshot database")
	tuiCmd.Flags().StringVarP(&tuiRoot, "root", "r", "", "Root directory to scan instead of loading a snapshot")
	tuiCmd.Flags().StringVarP(&tuiFilter, "filter", "f", "", "Path to the filter list file (required with --root)")
	tuiCmd.Flags().BoolVar(&tuiCaseSensitive, "case-sensitive", false, "Match patterns case-sensitively")
	tuiCmd.Flags().BoolVar(&tuiAll, "include-unmatched", false, "Keep unmatched entries when scanning")
}

func runTUI(cmd *cobra.Command, args []string) error {
	var model *tui.Model
	if tuiRoot != "" {
		if tuiFilter == "" {
			return fmt.Errorf("--filter is required with --root")
		}
		m, err := scanModel()
		if err != nil {
			return err
		}
		model = m
	} else {
		m, err := snapshotModel()
		if err != nil {
			return err
		}
		model = m
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func scanModel() (*tui.Model, error) {
	root, err := filepath.Abs(tuiRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}
	root = pathutil.Normalize(root)

	ruleList, err := rules.ParseFile(tuiFilter)
	if err != nil {
		return nil, err
	}

	opts := scan.DefaultOptions().
		WithCaseSensitive(tuiCaseSensitive).
		WithIncludeUnmatched(tuiAll)

	scanner := scan.NewScanner(opts)
	payload, err := scanner.Run(context.Background(), root, ruleList)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	meta := &db.Meta{RootPath: root, CaseSensitive: tuiCaseSensitive, Stats: payload.Stats}
	return tui.NewModel(meta, ruleList, payload.Nodes), nil
}

func snapshotModel() (*tui.Model, error) {
	conn, err := snapshot.Open(tuiDB)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	meta, err := db.LoadMeta(conn)
	if err != nil {
		return nil, err
	}
	ruleList, err := db.LoadRules(conn)
	if err != nil {
		return nil, err
	}
	nodes, err := db.LoadNodes(conn)
	if err != nil {
		return nil, err
	}
	return tui.NewModel(meta, ruleList, nodes), nil
}
