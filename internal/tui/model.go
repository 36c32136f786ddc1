package tui

import (
	"sort"
	"strings"

	"github.com/seitool/sei/internal/db"
	"github.com/seitool/sei/internal/entry"
	"github.com/seitool/sei/internal/rollup"
	"github.com/seitool/sei/internal/rules"

	tea "github.com/charmbracelet/bubbletea"
)

// SortColumn represents the current sort field.
type SortColumn int

const (
	SortByMatched SortColumn = iota
	SortByName
	SortByFiles
)

func (s SortColumn) String() string {
	switch s {
	case SortByName:
		return "name"
	case SortByFiles:
		return "files"
	default:
		return "matched"
	}
}

// Model holds the TUI state. The full result tree is in memory, so
// navigation and sorting are synchronous.
type Model struct {
	meta    *db.Meta
	rules   []rules.Rule
	rollups map[string]rollup.Rollup

	root  *entry.Node
	stack []*entry.Node
	rows  []*entry.Node

	cursor       int
	sort         SortColumn
	width        int
	height       int
	filter       string
	filterActive bool
	matchedOnly  bool
}

// NewModel creates a TUI model over a scan result.
func NewModel(meta *db.Meta, ruleList []rules.Rule, nodes []*entry.Node) *Model {
	root := &entry.Node{
		AbsPath:   meta.RootPath,
		RelPath:   "",
		Kind:      entry.KindDir,
		Size:      entry.SizeUnknown,
		RuleIndex: -1,
		Children:  nodes,
	}

	m := &Model{
		meta:    meta,
		rules:   ruleList,
		rollups: rollup.Build([]*entry.Node{root}),
		root:    root,
		stack:   []*entry.Node{root},
		sort:    SortByMatched,
	}
	m.refreshRows()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) current() *entry.Node {
	return m.stack[len(m.stack)-1]
}

func (m *Model) enter(n *entry.Node) {
	m.stack = append(m.stack, n)
	m.filter = ""
	m.filterActive = false
	m.refreshRows()
}

func (m *Model) back() {
	if len(m.stack) > 1 {
		m.stack = m.stack[:len(m.stack)-1]
		m.filter = ""
		m.filterActive = false
		m.refreshRows()
	}
}

// matchedBytes returns the matched byte total a row displays: the
// file's own size when it matched, or the subtree aggregate for a
// directory.
func (m *Model) matchedBytes(n *entry.Node) int64 {
	if n.Kind == entry.KindFile {
		if n.Matched() && n.Size != entry.SizeUnknown {
			return n.Size
		}
		return 0
	}
	return m.rollups[n.RelPath].MatchedBytes
}

func (m *Model) matchedFiles(n *entry.Node) int64 {
	if n.Kind == entry.KindFile {
		if n.Matched() {
			return 1
		}
		return 0
	}
	return m.rollups[n.RelPath].MatchedFiles
}

// ruleFor returns the first-match rule for a node, if any.
func (m *Model) ruleFor(n *entry.Node) *rules.Rule {
	if n.RuleIndex < 0 || n.RuleIndex >= len(m.rules) {
		return nil
	}
	return &m.rules[n.RuleIndex]
}

// hasMatches reports whether the node or anything beneath it matched.
func (m *Model) hasMatches(n *entry.Node) bool {
	if n.Matched() {
		return true
	}
	return n.Kind == entry.KindDir && m.rollups[n.RelPath].MatchedFiles > 0
}

func (m *Model) refreshRows() {
	children := m.current().Children

	needle := strings.ToLower(m.filter)
	rows := make([]*entry.Node, 0, len(children))
	for _, n := range children {
		if m.matchedOnly && !m.hasMatches(n) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(n.Name()), needle) {
			continue
		}
		rows = append(rows, n)
	}

	switch m.sort {
	case SortByName:
		sort.SliceStable(rows, func(i, j int) bool {
			return strings.ToLower(rows[i].Name()) < strings.ToLower(rows[j].Name())
		})
	case SortByFiles:
		sort.SliceStable(rows, func(i, j int) bool {
			return m.matchedFiles(rows[i]) > m.matchedFiles(rows[j])
		})
	default:
		sort.SliceStable(rows, func(i, j int) bool {
			return m.matchedBytes(rows[i]) > m.matchedBytes(rows[j])
		})
	}

	m.rows = rows
	m.cursor = 0
}

func (m *Model) helpLine() string {
	if m.filterActive {
		return "Type to filter | Enter: apply | Esc: clear | q: quit"
	}
	return "↑/↓ move | Enter: open | Backspace: close | m/n/f: sort | u: matched only | /: filter | q: quit"
}
