package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/seitool/sei/internal/entry"
	"github.com/seitool/sei/internal/match"
	"github.com/seitool/sei/internal/pathutil"
	"github.com/seitool/sei/internal/rules"
)

// ProgressFunc is called periodically with current scan progress.
type ProgressFunc func(entry.Progress)

// Payload is the result of a completed scan: the root-level nodes of
// the reconstructed tree plus final statistics. Ownership passes to
// the caller on return; the scanner keeps no reference.
type Payload struct {
	Nodes []*entry.Node
	Stats entry.Stats
}

// Scanner walks a filesystem subtree, evaluates every entry against a
// rule set, and builds a hierarchical result tree. A Scanner runs one
// scan at a time on the calling goroutine; cancel via the context,
// pause via the Pauser.
type Scanner struct {
	opts     *Options
	pauser   *Pauser
	progress ProgressFunc
}

// NewScanner creates a new scanner.
func NewScanner(opts *Options) *Scanner {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Scanner{
		opts:   opts,
		pauser: NewPauser(),
	}
}

// SetProgressFunc sets a callback for progress updates during the scan.
func (s *Scanner) SetProgressFunc(f ProgressFunc) {
	s.progress = f
}

// Pauser returns the scan's pause token.
func (s *Scanner) Pauser() *Pauser {
	return s.pauser
}

// Run executes the scan starting from root. A missing root is the
// only fatal error; unreadable entries and directories are counted as
// skipped and the scan continues. On cancellation Run returns the
// context error and no partial payload.
func (s *Scanner) Run(ctx context.Context, root string, ruleList []rules.Rule) (*Payload, error) {
	root = pathutil.Normalize(root)
	rootInfo, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root path does not exist: %w", err)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf("root path is not a directory: %s", root)
	}

	engine := match.NewEngine(ruleList, s.opts.CaseSensitive)
	stats := entry.Stats{StartTime: time.Now()}

	nodes := map[string]*entry.Node{
		"": {
			AbsPath:   root,
			RelPath:   "",
			Kind:      entry.KindDir,
			Size:      entry.SizeUnknown,
			RuleIndex: -1,
		},
	}

	stack := []string{root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		dirEntries, err := os.ReadDir(dir)
		if err != nil {
			// Unreadable subtree; skip it and keep scanning.
			stats.Skipped++
			continue
		}

		for _, de := range dirEntries {
			if err := s.waitIfPaused(ctx); err != nil {
				return nil, err
			}

			childPath := filepath.Join(dir, de.Name())
			result, err := engine.Evaluate(childPath, root)
			if err != nil {
				stats.Skipped++
				continue
			}

			stats.Scanned++
			if de.IsDir() {
				stats.Folders++
			} else {
				stats.Files++
			}

			node := s.buildNode(result, de)
			if result.Decision.Matched {
				stats.Matched++
				if node.Kind == entry.KindFile && node.Size != entry.SizeUnknown {
					stats.MatchedBytes += node.Size
				}
			}
			if result.Decision.Matched || s.opts.IncludeUnmatched {
				nodes[result.RelPath] = node
			}

			if stats.Scanned == 1 || stats.Scanned%int64(s.opts.EmitEvery) == 0 {
				s.emit(stats, childPath)
			}

			if de.IsDir() {
				stack = append(stack, childPath)
			}
		}
	}

	stats.EndTime = time.Now()
	s.emit(stats, entry.DoneSentinel)

	return &Payload{
		Nodes: buildTree(nodes, root),
		Stats: stats,
	}, nil
}

// waitIfPaused checks for cancellation, then blocks cooperatively
// while the scan is paused, re-checking cancellation every poll so a
// cancel during a pause is honored without a resume.
func (s *Scanner) waitIfPaused(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for s.pauser.Paused() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.opts.PausePoll):
		}
	}
	return nil
}

// buildNode stats the entry for size and mtime. A stat failure leaves
// those fields unset; the entry is still recorded.
func (s *Scanner) buildNode(result match.Result, de os.DirEntry) *entry.Node {
	node := &entry.Node{
		AbsPath:   result.AbsPath,
		RelPath:   result.RelPath,
		Kind:      entry.KindFile,
		Size:      entry.SizeUnknown,
		RuleIndex: result.Decision.RuleIndex,
		RuleIDs:   result.AllRules,
	}
	if de.IsDir() {
		node.Kind = entry.KindDir
	}

	info, err := os.Lstat(result.AbsPath)
	if err != nil {
		return node
	}
	node.ModTime = info.ModTime()
	if node.Kind == entry.KindFile {
		node.Size = info.Size()
	}
	return node
}

func (s *Scanner) emit(stats entry.Stats, currentPath string) {
	if s.progress == nil {
		return
	}
	s.progress(entry.Progress{
		Files:        stats.Files,
		Folders:      stats.Folders,
		Matched:      stats.Matched,
		MatchedBytes: stats.MatchedBytes,
		Elapsed:      time.Since(stats.StartTime),
		CurrentPath:  currentPath,
	})
}
