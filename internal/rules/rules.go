// Package rules parses rclone-style filter lists into ordered rules.
package rules

import (
	"fmt"
	"os"
	"strings"
)

// Action is the leading token of a rule line.
type Action string

const (
	ActionExclude   Action = "-"
	ActionInclude   Action = "+"
	ActionNotPrefix Action = "!"
)

// Rule represents a single filter rule. Rules are immutable once
// parsed; their position in the parsed slice is their identity.
type Rule struct {
	Action  Action
	Pattern string
	LineNo  int
	Enabled bool
	Label   string
	Color   string
}

// DisplayLabel returns the user-facing label for the rule, falling
// back to the pattern.
func (r Rule) DisplayLabel() string {
	label := r.Label
	if label == "" {
		label = r.Pattern
	}
	return fmt.Sprintf("%s %s", r.Action, label)
}

// ParseFile reads and parses a filter file.
func ParseFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read filter file: %w", err)
	}
	return Parse(string(data)), nil
}

// Parse parses filter-list text into rules. Any text is tolerated:
// lines that do not form a rule are skipped, never an error.
//
// A comment of the form "# label: ..." or "# color: ..." stashes
// metadata for the next rule; a blank line discards pending metadata.
// Include ("+") lines also discard pending metadata but produce no
// rule. This deviates from rclone, where includes short-circuit
// matching; here only exclusions are reported.
func Parse(text string) []Rule {
	var out []Rule
	var pendingLabel, pendingColor string

	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)

		if line == "" {
			pendingLabel, pendingColor = "", ""
			continue
		}

		if strings.HasPrefix(line, "#") {
			if key, value, ok := parseMetadataComment(line); ok {
				switch key {
				case "label":
					pendingLabel = value
				case "color":
					pendingColor = value
				}
			}
			continue
		}

		action, pattern, ok := parseRuleLine(line)
		if !ok {
			continue
		}
		if action == ActionInclude {
			pendingLabel, pendingColor = "", ""
			continue
		}

		out = append(out, Rule{
			Action:  action,
			Pattern: pattern,
			LineNo:  lineNo,
			Enabled: true,
			Label:   pendingLabel,
			Color:   pendingColor,
		})
		pendingLabel, pendingColor = "", ""
	}

	return out
}

func parseRuleLine(line string) (Action, string, bool) {
	switch line[0] {
	case '+', '-', '!':
		return Action(line[:1]), stripInlineComment(line[1:]), true
	}
	return "", "", false
}

// stripInlineComment removes a trailing comment introduced by
// whitespace followed by '#', then trims the pattern.
func stripInlineComment(s string) string {
	for i := 1; i < len(s); i++ {
		if s[i] == '#' && (s[i-1] == ' ' || s[i-1] == '\t') {
			s = s[:i]
			break
		}
	}
	return strings.TrimSpace(s)
}

func parseMetadataComment(line string) (key, value string, ok bool) {
	stripped := strings.TrimSpace(strings.TrimLeft(line, "#"))
	key, value, found := strings.Cut(stripped, ":")
	if !found {
		return "", "", false
	}
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	if key != "label" && key != "color" {
		return "", "", false
	}
	return key, value, true
}
