// Package rollup aggregates per-directory statistics over a scan
// result tree, bottom-up.
package rollup

import "github.com/seitool/sei/internal/entry"

// Rollup holds aggregated statistics for one directory subtree.
type Rollup struct {
	MatchedFiles int64
	MatchedBytes int64
	TotalFiles   int64
	TotalDirs    int64
}

// Build computes a rollup per directory node, keyed by relative path,
// by walking the tree depth-first. File nodes contribute to their
// ancestors but get no rollup of their own.
func Build(nodes []*entry.Node) map[string]Rollup {
	out := make(map[string]Rollup)
	for _, node := range nodes {
		compute(node, out)
	}
	return out
}

func compute(node *entry.Node, out map[string]Rollup) Rollup {
	if node.Kind == entry.KindFile {
		r := Rollup{TotalFiles: 1}
		if node.Matched() {
			r.MatchedFiles = 1
			if node.Size != entry.SizeUnknown {
				r.MatchedBytes = node.Size
			}
		}
		return r
	}

	var total Rollup
	for _, child := range node.Children {
		childRollup := compute(child, out)
		total.MatchedFiles += childRollup.MatchedFiles
		total.MatchedBytes += childRollup.MatchedBytes
		total.TotalFiles += childRollup.TotalFiles
		total.TotalDirs += childRollup.TotalDirs
		if child.Kind == entry.KindDir {
			total.TotalDirs++
		}
	}
	out[node.RelPath] = total
	return total
}
