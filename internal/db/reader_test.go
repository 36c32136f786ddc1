package db

import (
	"testing"

	"github.com/seitool/sei/internal/entry"
)

func TestFindNode(t *testing.T) {
	conn := openTestDB(t)
	if err := SaveScan(conn, testMeta(), testRules(), testTree()); err != nil {
		t.Fatalf("SaveScan failed: %v", err)
	}

	n, err := FindNode(conn, "project/cache.tmp")
	if err != nil {
		t.Fatalf("FindNode failed: %v", err)
	}
	if n == nil {
		t.Fatal("expected node, got nil")
	}
	if n.Kind != entry.KindFile || n.Size != 2048 {
		t.Errorf("unexpected node: %+v", n)
	}
	if n.RuleIndex != 0 {
		t.Errorf("expected rule index 0, got %d", n.RuleIndex)
	}
}

func TestFindNodeMissing(t *testing.T) {
	conn := openTestDB(t)
	if err := SaveScan(conn, testMeta(), nil, testTree()); err != nil {
		t.Fatalf("SaveScan failed: %v", err)
	}

	n, err := FindNode(conn, "no/such/path")
	if err != nil {
		t.Fatalf("FindNode failed: %v", err)
	}
	if n != nil {
		t.Errorf("expected nil for missing path, got %+v", n)
	}
}

func TestLoadNodesPreservesChildOrder(t *testing.T) {
	conn := openTestDB(t)

	tree := testTree()
	tree[0].Children = append(tree[0].Children, &entry.Node{
		AbsPath:   "/data/project/zz.log",
		RelPath:   "project/zz.log",
		Kind:      entry.KindFile,
		Size:      1,
		RuleIndex: 1,
	})
	if err := SaveScan(conn, testMeta(), nil, tree); err != nil {
		t.Fatalf("SaveScan failed: %v", err)
	}

	roots, err := LoadNodes(conn)
	if err != nil {
		t.Fatalf("LoadNodes failed: %v", err)
	}
	if len(roots) != 1 || len(roots[0].Children) != 2 {
		t.Fatalf("unexpected tree shape: %+v", roots)
	}
	if roots[0].Children[0].RelPath != "project/cache.tmp" {
		t.Errorf("expected insertion order preserved, got %q first", roots[0].Children[0].RelPath)
	}
	if roots[0].Children[1].RelPath != "project/zz.log" {
		t.Errorf("expected zz.log second, got %q", roots[0].Children[1].RelPath)
	}
}
