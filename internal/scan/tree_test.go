package scan

import (
	"testing"

	"github.com/seitool/sei/internal/entry"
)

func dirNode(rel string) *entry.Node {
	return &entry.Node{RelPath: rel, Kind: entry.KindDir, Size: entry.SizeUnknown, RuleIndex: -1}
}

func fileNode(rel string, ruleIndex int) *entry.Node {
	return &entry.Node{RelPath: rel, Kind: entry.KindFile, RuleIndex: ruleIndex}
}

func TestBuildTreeSynthesizesAncestorChain(t *testing.T) {
	nodes := map[string]*entry.Node{
		"":          dirNode(""),
		"a/b/c.txt": fileNode("a/b/c.txt", 0),
	}

	roots := buildTree(nodes, "/root")
	if len(roots) != 1 {
		t.Fatalf("expected one root child, got %d", len(roots))
	}

	a := roots[0]
	if a.RelPath != "a" || !a.Virtual() {
		t.Fatalf("expected virtual 'a', got %+v", a)
	}
	if len(a.Children) != 1 || a.Children[0].RelPath != "a/b" || !a.Children[0].Virtual() {
		t.Fatalf("expected virtual 'a/b' under 'a', got %+v", a.Children)
	}
	b := a.Children[0]
	if len(b.Children) != 1 || b.Children[0].RelPath != "a/b/c.txt" {
		t.Fatalf("leaf not attached: %+v", b.Children)
	}
	if a.AbsPath == "" || b.AbsPath == "" {
		t.Error("virtual nodes should carry absolute paths")
	}
}

func TestBuildTreePrefersRecordedNodes(t *testing.T) {
	nodes := map[string]*entry.Node{
		"":        dirNode(""),
		"a":       dirNode("a"),
		"a/x.txt": fileNode("a/x.txt", 1),
	}
	nodes["a"].RuleIndex = 2

	roots := buildTree(nodes, "/root")
	if len(roots) != 1 {
		t.Fatalf("expected one root child, got %d", len(roots))
	}
	if roots[0].Virtual() {
		t.Error("recorded directory replaced by a virtual one")
	}
	if roots[0].RuleIndex != 2 {
		t.Errorf("recorded node lost data: %+v", roots[0])
	}
}

func TestBuildTreeNoDuplicates(t *testing.T) {
	nodes := map[string]*entry.Node{
		"":        dirNode(""),
		"a":       dirNode("a"),
		"a/b":     dirNode("a/b"),
		"a/b/one": fileNode("a/b/one", 0),
		"a/b/two": fileNode("a/b/two", 0),
	}

	roots := buildTree(nodes, "/root")
	seen := make(map[string]int)
	for _, r := range roots {
		r.Walk(func(n *entry.Node) { seen[n.RelPath]++ })
	}
	for rel, count := range seen {
		if count != 1 {
			t.Errorf("%q appears %d times", rel, count)
		}
	}
	if len(seen) != 4 {
		t.Errorf("expected 4 nodes, got %v", seen)
	}
}

func TestSortChildrenDirsFirstCaseInsensitive(t *testing.T) {
	root := dirNode("")
	root.Children = []*entry.Node{
		fileNode("beta.txt", -1),
		dirNode("Zoo"),
		fileNode("Alpha.txt", -1),
		dirNode("apps"),
	}

	sortChildren(root)

	want := []string{"apps", "Zoo", "Alpha.txt", "beta.txt"}
	for i, n := range root.Children {
		if n.RelPath != want[i] {
			t.Fatalf("order = %v, want %v", names(root.Children), want)
		}
	}
}

func names(nodes []*entry.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.RelPath
	}
	return out
}
