package match

import (
	"sort"
	"strings"
)

// expandTokens are removed from patterns, in priority order.
var expandTokens = [...]string{"**/", "/**", "**"}

// Expand generates the variants of an rclone-style glob pattern that
// treat "**" components as optional. "**/node_modules/**" must also
// match a bare "node_modules" sitting directly at the root, so the
// engine needs variants with each "**/", "/**", or "**" token removed.
//
// The expansion is a fixed point over all removable tokens; it
// terminates because every reduction strictly shortens the string.
// Variants are returned longest-first with a lexicographic tiebreak,
// so more specific patterns are tried first.
func Expand(pattern string) []string {
	variants := map[string]struct{}{pattern: {}}
	queue := []string{pattern}

	for len(queue) > 0 {
		current := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		for _, token := range expandTokens {
			start := strings.Index(current, token)
			for start != -1 {
				reduced := current[:start] + current[start+len(token):]
				if reduced != "" {
					if _, seen := variants[reduced]; !seen {
						variants[reduced] = struct{}{}
						queue = append(queue, reduced)
					}
				}
				next := strings.Index(current[start+1:], token)
				if next == -1 {
					break
				}
				start += 1 + next
			}
		}
	}

	out := make([]string, 0, len(variants))
	for v := range variants {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}
