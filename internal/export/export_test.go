package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/seitool/sei/internal/entry"
	"github.com/seitool/sei/internal/rules"
)

func fixtureTree() ([]*entry.Node, []rules.Rule) {
	ruleList := rules.Parse("# label: Temp files\n- **/*.tmp\n- **/cache/**\n")

	file := &entry.Node{
		AbsPath:   "/data/cache/notes.tmp",
		RelPath:   "cache/notes.tmp",
		Kind:      entry.KindFile,
		Size:      12,
		ModTime:   time.Date(2025, 3, 14, 9, 30, 0, 0, time.Local),
		RuleIndex: 0,
		RuleIDs:   []int{0, 1},
	}
	dir := &entry.Node{
		AbsPath:   "/data/cache",
		RelPath:   "cache",
		Kind:      entry.KindDir,
		Size:      entry.SizeUnknown,
		RuleIndex: -1,
		Tags:      []string{entry.TagVirtual},
		Children:  []*entry.Node{file},
	}
	return []*entry.Node{dir}, ruleList
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"lines", "csv", "json", "jsonl"} {
		if _, err := ParseFormat(name); err != nil {
			t.Errorf("ParseFormat(%q): %v", name, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestWriteLines(t *testing.T) {
	nodes, ruleList := fixtureTree()
	var buf bytes.Buffer
	if err := Write(&buf, FormatLines, nodes, ruleList); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "/data/cache\n/data/cache/notes.tmp\n"
	if buf.String() != want {
		t.Errorf("lines output = %q, want %q", buf.String(), want)
	}
}

func TestWriteCSV(t *testing.T) {
	nodes, ruleList := fixtureTree()
	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, nodes, ruleList); err != nil {
		t.Fatalf("Write: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "path,type,size,mtime,first_rule,all_rules" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[2], "Temp files") {
		t.Errorf("file row missing rule label: %q", lines[2])
	}
	if !strings.Contains(lines[2], "12") {
		t.Errorf("file row missing size: %q", lines[2])
	}
	if !strings.Contains(lines[1], ",dir,,") {
		t.Errorf("dir row should have empty size: %q", lines[1])
	}
}

func TestWriteJSON(t *testing.T) {
	nodes, ruleList := fixtureTree()
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, nodes, ruleList); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var payloads []Payload
	if err := json.Unmarshal(buf.Bytes(), &payloads); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(payloads) != 2 {
		t.Fatalf("expected 2 payloads, got %d", len(payloads))
	}

	dir, file := payloads[0], payloads[1]
	if dir.Type != "dir" || dir.Size != nil || dir.FirstRule != nil {
		t.Errorf("dir payload = %+v", dir)
	}
	if len(dir.Tags) != 1 || dir.Tags[0] != entry.TagVirtual {
		t.Errorf("dir tags = %v", dir.Tags)
	}
	if file.Size == nil || *file.Size != 12 {
		t.Errorf("file size = %v", file.Size)
	}
	if file.FirstRule == nil || *file.FirstRule != "Temp files" {
		t.Errorf("file first_rule = %v", file.FirstRule)
	}
	if len(file.AllRules) != 2 || file.AllRules[1] != "**/cache/**" {
		t.Errorf("file all_rules = %v", file.AllRules)
	}
	if file.MTime == nil || !strings.HasPrefix(*file.MTime, "2025-03-14T09:30:00") {
		t.Errorf("file mtime = %v", file.MTime)
	}
}

func TestWriteJSONL(t *testing.T) {
	nodes, ruleList := fixtureTree()
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSONL, nodes, ruleList); err != nil {
		t.Fatalf("Write: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSONL lines, got %d", len(lines))
	}
	for i, line := range lines {
		var p Payload
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			t.Errorf("line %d invalid JSON: %v", i, err)
		}
	}
}
