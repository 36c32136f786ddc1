package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/seitool/sei/internal/db"
	"github.com/seitool/sei/internal/entry"
	"github.com/seitool/sei/internal/pathutil"
	"github.com/seitool/sei/internal/rules"
	"github.com/seitool/sei/internal/scan"
	"github.com/seitool/sei/internal/snapshot"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a directory against a filter list",
	Long: `Scan a directory tree, match every entry against the filter rules,
and print the matches. With --out, the result is also stored as a
SQLite snapshot.`,
	RunE: runScan,
}

var (
	scanRoot          string
	scanFilter        string
	scanOut           string
	scanRetention     int
	scanCaseSensitive bool
	scanAll           bool
	scanQuiet         bool
	scanProgress      time.Duration
)

func init() {
	scanCmd.Flags().StringVarP(&scanRoot, "root", "r", ".", "Root directory to scan")
	scanCmd.Flags().StringVarP(&scanFilter, "filter", "f", "", "Path to the filter list file (required)")
	scanCmd.Flags().StringVarP(&scanOut, "out", "o", "", "Output directory for snapshot database (empty = no snapshot)")
	scanCmd.Flags().IntVar(&scanRetention, "retention", 5, "Number of snapshots to retain (0 = unlimited)")
	scanCmd.Flags().BoolVar(&scanCaseSensitive, "case-sensitive", false, "Match patterns case-sensitively")
	scanCmd.Flags().BoolVar(&scanAll, "include-unmatched", false, "Keep unmatched entries in the result tree")
	scanCmd.Flags().BoolVarP(&scanQuiet, "quiet", "q", false, "Suppress the per-match listing")
	scanCmd.Flags().DurationVar(&scanProgress, "progress-interval", 30*time.Second, "Emit progress lines to stderr at this interval when not a TTY (0 to disable)")
	scanCmd.MarkFlagRequired("filter")
}

func runScan(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(scanRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve root path: %w", err)
	}
	root = pathutil.Normalize(root)

	ruleList, err := rules.ParseFile(scanFilter)
	if err != nil {
		return err
	}
	if len(ruleList) == 0 {
		fmt.Fprintln(os.Stderr, "warning: filter list contains no rules")
	}

	fmt.Fprintf(os.Stderr, "Scanning %s against %d rules...\n", root, len(ruleList))

	opts := scan.DefaultOptions().
		WithCaseSensitive(scanCaseSensitive).
		WithIncludeUnmatched(scanAll)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nCancelling... (press Ctrl+C again to force)")
		cancel()
		<-sigCh
		os.Exit(130)
	}()
	startTime := time.Now()

	var lastFiles, lastFolders, lastMatched, lastBytes int64
	onProgress := func(p entry.Progress) {
		atomic.StoreInt64(&lastFiles, p.Files)
		atomic.StoreInt64(&lastFolders, p.Folders)
		atomic.StoreInt64(&lastMatched, p.Matched)
		atomic.StoreInt64(&lastBytes, p.MatchedBytes)
	}

	ctrl := scan.NewController()
	outcomeCh := ctrl.Start(ctx, root, ruleList, opts, onProgress)

	// Progress display goroutine
	isTTY := isTerminal()
	progressDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		var spinnerIdx int
		lastNonTTY := time.Now()
		for {
			select {
			case <-progressDone:
				return
			case <-ticker.C:
				files := atomic.LoadInt64(&lastFiles)
				folders := atomic.LoadInt64(&lastFolders)
				matched := atomic.LoadInt64(&lastMatched)
				bytes := atomic.LoadInt64(&lastBytes)
				elapsed := time.Since(startTime).Round(time.Millisecond)

				if isTTY {
					spinner := spinnerFrames[spinnerIdx%len(spinnerFrames)]
					spinnerIdx++
					fmt.Fprintf(os.Stderr, "\r\033[K%s Scanning... %d files | %d folders | %d matched | %s | %s",
						spinner, files, folders, matched, humanize.Bytes(uint64(bytes)), elapsed)
				} else if scanProgress > 0 && time.Since(lastNonTTY) >= scanProgress {
					fmt.Fprintf(os.Stderr, "PROGRESS files=%d folders=%d matched=%d bytes=%s elapsed=%s\n",
						files, folders, matched, humanize.Bytes(uint64(bytes)), elapsed)
					lastNonTTY = time.Now()
				}
			}
		}
	}()

	outcome := <-outcomeCh
	close(progressDone)

	// Clear progress line
	if isTTY {
		fmt.Fprintf(os.Stderr, "\r\033[K")
	}

	if outcome.Cancelled() {
		fmt.Fprintln(os.Stderr, "Scan cancelled.")
		return nil
	}
	if outcome.Err != nil {
		return fmt.Errorf("scan failed: %w", outcome.Err)
	}

	payload := outcome.Payload
	stats := payload.Stats

	if !scanQuiet {
		printMatches(payload.Nodes, ruleList)
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Scanned:       %s entries\n", humanize.Comma(stats.Scanned))
	fmt.Printf("  Matched:       %s entries\n", humanize.Comma(stats.Matched))
	fmt.Printf("  Matched size:  %s\n", humanize.Bytes(uint64(stats.MatchedBytes)))
	fmt.Printf("  Files:         %s\n", humanize.Comma(stats.Files))
	fmt.Printf("  Folders:       %s\n", humanize.Comma(stats.Folders))
	if stats.Skipped > 0 {
		fmt.Printf("  Skipped:       %s\n", humanize.Comma(stats.Skipped))
	}
	fmt.Printf("  Duration:      %s\n", stats.Duration().Round(time.Millisecond))

	if scanOut != "" {
		outDir, err := filepath.Abs(scanOut)
		if err != nil {
			return fmt.Errorf("failed to resolve output path: %w", err)
		}
		mgr := snapshot.NewManager(outDir, scanRetention)
		meta := db.Meta{RootPath: root, CaseSensitive: scanCaseSensitive, Stats: stats}
		dbPath, err := mgr.Save(meta, ruleList, payload.Nodes)
		if err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		fmt.Printf("\nSnapshot: %s\n", dbPath)
	}

	return nil
}

// printMatches lists matched entries one per line, in tree order:
// the matching rule's action and index, then the relative path.
func printMatches(nodes []*entry.Node, ruleList []rules.Rule) {
	for _, root := range nodes {
		root.Walk(func(n *entry.Node) {
			if !n.Matched() {
				return
			}
			action := "-"
			if n.RuleIndex < len(ruleList) {
				action = string(ruleList[n.RuleIndex].Action)
			}
			fmt.Printf("%s (%d)\t%s\n", action, n.RuleIndex, n.RelPath)
		})
	}
}

func isTerminal() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
