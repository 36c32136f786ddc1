package pathutil

import (
	"path/filepath"
	"strings"
)

// Normalize returns a canonical filesystem path string.
// It removes trailing slashes, collapses "." and "..", and
// preserves relative paths when provided.
func Normalize(path string) string {
	if path == "" {
		return path
	}
	return filepath.Clean(path)
}

// ToPosix converts a host path to forward-slash form.
func ToPosix(path string) string {
	return filepath.ToSlash(path)
}

// Rel computes the POSIX relative path of target under root.
func Rel(root, target string) (string, error) {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// ParentKey returns the parent of a POSIX relative path, with ""
// denoting the root.
func ParentKey(relPath string) string {
	idx := strings.LastIndex(relPath, "/")
	if idx < 0 {
		return ""
	}
	return relPath[:idx]
}

// Depth returns the number of path segments in a POSIX relative path.
// The root ("") has depth zero.
func Depth(relPath string) int {
	if relPath == "" {
		return 0
	}
	return strings.Count(relPath, "/") + 1
}

// SegmentLess compares two POSIX relative paths segment by segment.
// It orders parents before children and siblings lexicographically.
func SegmentLess(a, b string) bool {
	as := strings.Split(a, "/")
	bs := strings.Split(b, "/")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] != bs[i] {
			return as[i] < bs[i]
		}
	}
	return len(as) < len(bs)
}
