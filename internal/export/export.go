// Package export renders scan result trees as plain text, CSV, JSON,
// or JSON-Lines.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/seitool/sei/internal/entry"
	"github.com/seitool/sei/internal/rules"
)

// Format identifies an export output format.
type Format string

const (
	FormatLines Format = "lines"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatLines, FormatCSV, FormatJSON, FormatJSONL:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported export format %q (expected lines|csv|json|jsonl)", s)
}

// Payload is the JSON-serializable representation of one node.
type Payload struct {
	AbsPath   string   `json:"abs_path"`
	RelPath   string   `json:"rel_path"`
	Type      string   `json:"type"`
	Size      *int64   `json:"size"`
	MTime     *string  `json:"mtime"`
	FirstRule *string  `json:"first_rule"`
	AllRules  []string `json:"all_rules"`
	Tags      []string `json:"tags"`
}

// Write flattens the node trees depth-first and renders them to w in
// the requested format. Rule labels are resolved against ruleList by
// index, falling back to the pattern.
func Write(w io.Writer, format Format, nodes []*entry.Node, ruleList []rules.Rule) error {
	flat := flatten(nodes)
	switch format {
	case FormatLines:
		return writeLines(w, flat)
	case FormatCSV:
		return writeCSV(w, flat, ruleList)
	case FormatJSON:
		return writeJSON(w, flat, ruleList)
	case FormatJSONL:
		return writeJSONL(w, flat, ruleList)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

func flatten(nodes []*entry.Node) []*entry.Node {
	var out []*entry.Node
	for _, n := range nodes {
		n.Walk(func(node *entry.Node) {
			out = append(out, node)
		})
	}
	return out
}

func writeLines(w io.Writer, nodes []*entry.Node) error {
	for _, n := range nodes {
		if _, err := fmt.Fprintln(w, n.AbsPath); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(w io.Writer, nodes []*entry.Node, ruleList []rules.Rule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"path", "type", "size", "mtime", "first_rule", "all_rules"}); err != nil {
		return err
	}
	for _, n := range nodes {
		first, all := ruleLabels(n, ruleList)
		size := ""
		if n.Size != entry.SizeUnknown {
			size = fmt.Sprintf("%d", n.Size)
		}
		record := []string{
			n.AbsPath,
			n.Kind.String(),
			size,
			formatMTime(n.ModTime),
			first,
			joinLabels(all),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, nodes []*entry.Node, ruleList []rules.Rule) error {
	payloads := make([]Payload, 0, len(nodes))
	for _, n := range nodes {
		payloads = append(payloads, nodePayload(n, ruleList))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payloads)
}

func writeJSONL(w io.Writer, nodes []*entry.Node, ruleList []rules.Rule) error {
	enc := json.NewEncoder(w)
	for _, n := range nodes {
		if err := enc.Encode(nodePayload(n, ruleList)); err != nil {
			return err
		}
	}
	return nil
}

func nodePayload(n *entry.Node, ruleList []rules.Rule) Payload {
	first, all := ruleLabels(n, ruleList)
	p := Payload{
		AbsPath:  n.AbsPath,
		RelPath:  n.RelPath,
		Type:     n.Kind.String(),
		AllRules: all,
		Tags:     append([]string{}, n.Tags...),
	}
	if n.Size != entry.SizeUnknown {
		size := n.Size
		p.Size = &size
	}
	if mtime := formatMTime(n.ModTime); mtime != "" {
		p.MTime = &mtime
	}
	if first != "" {
		p.FirstRule = &first
	}
	return p
}

// ruleLabels resolves the primary label and the deduplicated labels
// of every matching rule, primary first.
func ruleLabels(n *entry.Node, ruleList []rules.Rule) (string, []string) {
	label := func(index int) string {
		if index < 0 || index >= len(ruleList) {
			return ""
		}
		if ruleList[index].Label != "" {
			return ruleList[index].Label
		}
		return ruleList[index].Pattern
	}

	first := ""
	if n.RuleIndex >= 0 {
		first = label(n.RuleIndex)
	}

	all := []string{}
	seen := make(map[string]bool)
	if first != "" {
		all = append(all, first)
		seen[first] = true
	}
	for _, idx := range n.RuleIDs {
		if l := label(idx); l != "" && !seen[l] {
			all = append(all, l)
			seen[l] = true
		}
	}
	return first, all
}

func joinLabels(labels []string) string {
	out := ""
	for i, l := range labels {
		if i > 0 {
			out += "; "
		}
		out += l
	}
	return out
}

func formatMTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02T15:04:05")
}
