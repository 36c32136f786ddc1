package entry

import (
	"path"
	"time"
)

// Kind represents the type of filesystem entry.
type Kind uint8

const (
	KindFile Kind = 0
	KindDir  Kind = 1
)

func (k Kind) String() string {
	switch k {
	case KindDir:
		return "dir"
	default:
		return "file"
	}
}

// SizeUnknown marks a node whose size could not be read, and all
// directory nodes.
const SizeUnknown int64 = -1

// TagVirtual marks directory nodes synthesized to preserve tree
// structure when the directory itself was not recorded by the scan.
const TagVirtual = "virtual"

// Node represents one filesystem entry in a scan result tree.
// RelPath is always POSIX-style, relative to the scan root; the root
// itself is the node with RelPath "".
type Node struct {
	AbsPath   string
	RelPath   string
	Kind      Kind
	Size      int64 // SizeUnknown for directories and stat failures
	ModTime   time.Time
	RuleIndex int // first matching rule, -1 when unmatched
	RuleIDs   []int
	Tags      []string
	Children  []*Node
}

// Name returns the display name for the node.
func (n *Node) Name() string {
	if base := path.Base(n.RelPath); base != "." && base != "/" && base != "" {
		return base
	}
	return n.RelPath
}

// Matched reports whether any rule matched the node.
func (n *Node) Matched() bool {
	return n.RuleIndex >= 0
}

// Virtual reports whether the node was synthesized during tree
// reconstruction rather than observed on disk.
func (n *Node) Virtual() bool {
	for _, tag := range n.Tags {
		if tag == TagVirtual {
			return true
		}
	}
	return false
}

// Walk visits the node and all of its descendants depth-first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Stats holds aggregate counters for a single scan run.
type Stats struct {
	Scanned      int64
	Matched      int64
	MatchedBytes int64
	Files        int64
	Folders      int64
	Skipped      int64
	StartTime    time.Time
	EndTime      time.Time
}

// Duration returns the elapsed scan time, or zero if the scan has not
// finished.
func (s Stats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// Progress is a point-in-time snapshot emitted during a scan.
// CurrentPath is "done" on the final event.
type Progress struct {
	Files        int64
	Folders      int64
	Matched      int64
	MatchedBytes int64
	Elapsed      time.Duration
	CurrentPath  string
}

// DoneSentinel is the CurrentPath value of the final progress event.
const DoneSentinel = "done"

// ScanError records a non-fatal error encountered during scanning.
type ScanError struct {
	Path    string
	Message string
}
