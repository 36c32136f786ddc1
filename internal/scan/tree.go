package scan

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/seitool/sei/internal/entry"
	"github.com/seitool/sei/internal/pathutil"
)

// buildTree attaches recorded nodes to their parents, synthesizing
// virtual directory nodes for ancestors that were not recorded, and
// returns the root-level nodes. The map must contain the root under
// the "" key.
func buildTree(nodes map[string]*entry.Node, rootAbs string) []*entry.Node {
	keys := make([]string, 0, len(nodes))
	for key := range nodes {
		if key != "" {
			keys = append(keys, key)
		}
	}
	// Parents before children, siblings in lexicographic order.
	sort.Slice(keys, func(i, j int) bool {
		return pathutil.SegmentLess(keys[i], keys[j])
	})

	for _, key := range keys {
		node := nodes[key]
		parent := ensureDir(nodes, pathutil.ParentKey(key), rootAbs)
		parent.Children = append(parent.Children, node)
	}

	root := nodes[""]
	sortChildren(root)
	return root.Children
}

// ensureDir returns the node for a relative path, creating a virtual
// directory (and any missing ancestors, each linked to its own
// parent) when the path was not recorded by the scan.
func ensureDir(nodes map[string]*entry.Node, relPath, rootAbs string) *entry.Node {
	if node, ok := nodes[relPath]; ok {
		return node
	}
	node := &entry.Node{
		AbsPath:   filepath.Join(rootAbs, filepath.FromSlash(relPath)),
		RelPath:   relPath,
		Kind:      entry.KindDir,
		Size:      entry.SizeUnknown,
		RuleIndex: -1,
		Tags:      []string{entry.TagVirtual},
	}
	nodes[relPath] = node

	parent := ensureDir(nodes, pathutil.ParentKey(relPath), rootAbs)
	parent.Children = append(parent.Children, node)
	return node
}

// sortChildren orders each node's children directories-first, then by
// case-insensitive name, recursively.
func sortChildren(node *entry.Node) {
	sort.SliceStable(node.Children, func(i, j int) bool {
		a, b := node.Children[i], node.Children[j]
		if (a.Kind == entry.KindDir) != (b.Kind == entry.KindDir) {
			return a.Kind == entry.KindDir
		}
		return strings.ToLower(a.Name()) < strings.ToLower(b.Name())
	})
	for _, child := range node.Children {
		sortChildren(child)
	}
}
