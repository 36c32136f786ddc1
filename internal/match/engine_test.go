package match

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/seitool/sei/internal/rules"
)

func makeRule(action rules.Action, pattern string, lineNo int) rules.Rule {
	return rules.Rule{Action: action, Pattern: pattern, LineNo: lineNo, Enabled: true}
}

func TestFirstMatchWins(t *testing.T) {
	ruleList := []rules.Rule{
		makeRule(rules.ActionExclude, "**/*.tmp", 1),
		makeRule(rules.ActionExclude, "**/cache/**", 2),
	}
	engine := NewEngine(ruleList, false)

	decision := engine.MatchPath("notes.tmp")
	if !decision.Matched {
		t.Fatal("expected notes.tmp to match")
	}
	if decision.RuleIndex != 0 {
		t.Errorf("RuleIndex = %d, want 0", decision.RuleIndex)
	}

	// A path matching both rules still reports the lowest index.
	decision = engine.MatchPath("cache/scratch.tmp")
	if !decision.Matched || decision.RuleIndex != 0 {
		t.Errorf("expected first-match-wins, got %+v", decision)
	}
}

func TestNonMatchingPath(t *testing.T) {
	engine := NewEngine([]rules.Rule{makeRule(rules.ActionExclude, "**/*.tmp", 1)}, false)
	decision := engine.MatchPath("readme.md")
	if decision.Matched {
		t.Errorf("readme.md should not match, got %+v", decision)
	}
	if decision.RuleIndex != -1 {
		t.Errorf("RuleIndex = %d, want -1", decision.RuleIndex)
	}
}

func TestCaseInsensitiveDefault(t *testing.T) {
	engine := NewEngine([]rules.Rule{makeRule(rules.ActionExclude, "**/junk.txt", 1)}, false)
	if !engine.MatchPath("Foo/JUNK.TXT").Matched {
		t.Error("case-insensitive engine should match Foo/JUNK.TXT")
	}

	sensitive := NewEngine([]rules.Rule{makeRule(rules.ActionExclude, "**/junk.txt", 1)}, true)
	if sensitive.MatchPath("Foo/JUNK.TXT").Matched {
		t.Error("case-sensitive engine should not match Foo/JUNK.TXT")
	}
	if !sensitive.MatchPath("Foo/junk.txt").Matched {
		t.Error("case-sensitive engine should match Foo/junk.txt")
	}
}

func TestDirectoryWildcardMatchesAnyDepth(t *testing.T) {
	engine := NewEngine([]rules.Rule{makeRule(rules.ActionExclude, "**/node_modules/**", 1)}, false)

	for _, path := range []string{
		"project/node_modules/left-pad",
		"node_modules",
		"node_modules/pkg",
		"a/b/c/node_modules",
	} {
		if !engine.MatchPath(path).Matched {
			t.Errorf("expected %q to match **/node_modules/**", path)
		}
	}
	if engine.MatchPath("node_modules_backup").Matched {
		t.Error("node_modules_backup should not match")
	}
}

func TestMatchingRulesCollectsAll(t *testing.T) {
	ruleList := []rules.Rule{
		makeRule(rules.ActionExclude, "**/*.tmp", 1),
		makeRule(rules.ActionExclude, "**/cache/**", 2),
		makeRule(rules.ActionExclude, "**/scratch.*", 3),
	}
	engine := NewEngine(ruleList, false)

	got := engine.MatchingRules("cache/scratch.tmp")
	want := []int{0, 1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MatchingRules = %v, want %v", got, want)
	}
}

func TestEmptyPatternNeverMatches(t *testing.T) {
	ruleList := []rules.Rule{
		makeRule(rules.ActionExclude, "", 1),
		makeRule(rules.ActionExclude, "**/*.tmp", 2),
	}
	engine := NewEngine(ruleList, false)

	decision := engine.MatchPath("notes.tmp")
	if !decision.Matched || decision.RuleIndex != 1 {
		t.Errorf("empty-pattern rule should keep its index out of matching: %+v", decision)
	}
}

func TestMalformedPatternDegrades(t *testing.T) {
	ruleList := []rules.Rule{
		makeRule(rules.ActionExclude, "[", 1),
		makeRule(rules.ActionExclude, "**/*.tmp", 2),
	}
	engine := NewEngine(ruleList, false)

	decision := engine.MatchPath("notes.tmp")
	if !decision.Matched || decision.RuleIndex != 1 {
		t.Errorf("malformed pattern should never match: %+v", decision)
	}
	if engine.MatchPath("[").Matched {
		t.Error("malformed pattern matched literally")
	}
}

func TestPathNormalization(t *testing.T) {
	engine := NewEngine([]rules.Rule{makeRule(rules.ActionExclude, "**/*.tmp", 1)}, false)
	if !engine.MatchPath("/sub/notes.tmp/").Matched {
		t.Error("leading and trailing slashes should be stripped before matching")
	}
	if engine.MatchPath("").Matched {
		t.Error("empty path normalizes to '.' and should not match *.tmp")
	}
}

func TestNotPrefixActsAsExclude(t *testing.T) {
	engine := NewEngine([]rules.Rule{makeRule(rules.ActionNotPrefix, "**/junk.txt", 1)}, false)
	if !engine.MatchPath("a/junk.txt").Matched {
		t.Error("! rules should match like - rules")
	}
}

func TestEvaluate(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "sub", "notes.tmp")

	ruleList := []rules.Rule{
		makeRule(rules.ActionExclude, "**/*.tmp", 1),
		makeRule(rules.ActionExclude, "sub/**", 2),
	}
	engine := NewEngine(ruleList, false)

	result, err := engine.Evaluate(target, root)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.RelPath != "sub/notes.tmp" {
		t.Errorf("RelPath = %q", result.RelPath)
	}
	if !result.Decision.Matched || result.Decision.RuleIndex != 0 {
		t.Errorf("Decision = %+v", result.Decision)
	}
	if !reflect.DeepEqual(result.AllRules, []int{0, 1}) {
		t.Errorf("AllRules = %v", result.AllRules)
	}
}

func TestScanWalksAllEntries(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "notes.tmp"))
	mustWrite(t, filepath.Join(root, "sub", "keep.md"))

	engine := NewEngine([]rules.Rule{makeRule(rules.ActionExclude, "**/*.tmp", 1)}, false)

	seen := make(map[string]bool)
	err := engine.Scan(root, func(r Result) {
		seen[r.RelPath] = r.Decision.Matched
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(seen) != 3 {
		t.Fatalf("expected 3 entries (file, dir, nested file), got %v", seen)
	}
	if !seen["notes.tmp"] {
		t.Error("notes.tmp should be matched")
	}
	if seen["sub"] || seen["sub/keep.md"] {
		t.Error("unmatched entries reported as matched")
	}
}

func mustWrite(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}
