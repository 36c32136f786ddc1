// Package match evaluates relative paths against ordered filter rules
// with first-match-wins semantics.
package match

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/seitool/sei/internal/pathutil"
	"github.com/seitool/sei/internal/rules"
)

// PreparedRule wraps a rule with its compiled pattern variants. The
// index refers to the rule's position in the original rule list.
type PreparedRule struct {
	Rule     rules.Rule
	Index    int
	Globs    []glob.Glob
	GlobsLow []glob.Glob
}

// Decision is the outcome of testing a path against the first
// matching rule only. RuleIndex is -1 when nothing matched.
type Decision struct {
	Matched   bool
	RuleIndex int
}

// Result is the full evaluation of one filesystem entry, including
// every rule index that matched.
type Result struct {
	AbsPath  string
	RelPath  string
	Decision Decision
	AllRules []int
}

// Engine matches paths against a fixed, ordered rule list.
type Engine struct {
	caseSensitive bool
	prepared      []PreparedRule
}

// NewEngine prepares the rule list for matching. Rules with empty
// patterns keep their index but can never match. Pattern variants
// that fail to compile are dropped silently, so a malformed pattern
// degrades to never-matching instead of failing the engine.
func NewEngine(ruleList []rules.Rule, caseSensitive bool) *Engine {
	e := &Engine{caseSensitive: caseSensitive}
	for idx, rule := range ruleList {
		if rule.Pattern == "" {
			continue
		}
		prepared := PreparedRule{
			Rule:     rule,
			Index:    idx,
			Globs:    compileVariants(Expand(rule.Pattern)),
			GlobsLow: compileVariants(Expand(strings.ToLower(rule.Pattern))),
		}
		if len(prepared.Globs) == 0 && len(prepared.GlobsLow) == 0 {
			continue
		}
		e.prepared = append(e.prepared, prepared)
	}
	return e
}

func compileVariants(variants []string) []glob.Glob {
	out := make([]glob.Glob, 0, len(variants))
	for _, v := range variants {
		g, err := glob.Compile(v, '/')
		if err != nil {
			continue
		}
		out = append(out, g)
	}
	return out
}

// MatchPath tests a POSIX relative path against the rules in order
// and returns the first match.
func (e *Engine) MatchPath(relPath string) Decision {
	candidates := e.candidates(relPath)
	for i := range e.prepared {
		if e.ruleMatches(&e.prepared[i], candidates) {
			return Decision{Matched: true, RuleIndex: e.prepared[i].Index}
		}
	}
	return Decision{Matched: false, RuleIndex: -1}
}

// MatchingRules returns every rule index that matches the path, in
// ascending order.
func (e *Engine) MatchingRules(relPath string) []int {
	candidates := e.candidates(relPath)
	var out []int
	for i := range e.prepared {
		if e.ruleMatches(&e.prepared[i], candidates) {
			out = append(out, e.prepared[i].Index)
		}
	}
	return out
}

// Evaluate computes the relative path of absPath under root and
// bundles the first-match decision with all matching rule indexes.
func (e *Engine) Evaluate(absPath, root string) (Result, error) {
	rel, err := pathutil.Rel(root, absPath)
	if err != nil {
		return Result{}, err
	}
	decision := e.MatchPath(rel)
	return Result{
		AbsPath:  absPath,
		RelPath:  rel,
		Decision: decision,
		AllRules: e.MatchingRules(rel),
	}, nil
}

// Scan walks every file and directory beneath root (excluding root
// itself) and calls fn with the evaluation of each. Unreadable
// subtrees are skipped.
func (e *Engine) Scan(root string, fn func(Result)) error {
	root = pathutil.Normalize(root)
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}
		result, evalErr := e.Evaluate(path, root)
		if evalErr != nil {
			return nil
		}
		fn(result)
		return nil
	})
}

// candidates returns the normalized path plus every segment-boundary
// suffix, lowercased when the engine is case-insensitive. Patterns
// are right-anchored: a bare "junk.txt" pattern matches
// "Foo/junk.txt", so each suffix is tested as well.
func (e *Engine) candidates(relPath string) []string {
	normalized := strings.Trim(relPath, "/")
	if normalized == "" {
		normalized = "."
	}
	if !e.caseSensitive {
		normalized = strings.ToLower(normalized)
	}

	out := []string{normalized}
	for i := 0; i < len(normalized); i++ {
		if normalized[i] == '/' {
			out = append(out, normalized[i+1:])
		}
	}
	return out
}

func (e *Engine) ruleMatches(prepared *PreparedRule, candidates []string) bool {
	globs := prepared.Globs
	if !e.caseSensitive {
		globs = prepared.GlobsLow
	}
	for _, g := range globs {
		for _, candidate := range candidates {
			if g.Match(candidate) {
				return true
			}
		}
	}
	return false
}
