package pathutil

import "testing"

func TestParentKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"a/b/c", "a/b"},
		{"a", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := ParentKey(c.in); got != c.want {
			t.Errorf("ParentKey(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDepth(t *testing.T) {
	if d := Depth(""); d != 0 {
		t.Errorf("Depth of root = %d, want 0", d)
	}
	if d := Depth("a"); d != 1 {
		t.Errorf("Depth(a) = %d, want 1", d)
	}
	if d := Depth("a/b/c"); d != 3 {
		t.Errorf("Depth(a/b/c) = %d, want 3", d)
	}
}

func TestSegmentLess(t *testing.T) {
	if !SegmentLess("a", "a/b") {
		t.Error("parent should sort before child")
	}
	if !SegmentLess("a/b", "a/c") {
		t.Error("siblings should sort lexicographically")
	}
	if SegmentLess("b", "a/b") {
		t.Error("b should not sort before a/b")
	}
}
