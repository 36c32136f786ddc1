package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/seitool/sei/internal/entry"
	"github.com/seitool/sei/internal/pathutil"
	"github.com/seitool/sei/internal/rules"
)

// LoadMeta retrieves the scan metadata stored in a snapshot.
func LoadMeta(db *sql.DB) (*Meta, error) {
	var m Meta
	var caseSensitive int
	var startTime, endTime int64

	err := db.QueryRow(`
		SELECT root_path, case_sensitive, start_time, COALESCE(end_time, 0),
		       scanned, matched, matched_bytes, file_count, folder_count, skipped
		FROM scan_meta WHERE id = 1
	`).Scan(&m.RootPath, &caseSensitive, &startTime, &endTime,
		&m.Stats.Scanned, &m.Stats.Matched, &m.Stats.MatchedBytes,
		&m.Stats.Files, &m.Stats.Folders, &m.Stats.Skipped)
	if err != nil {
		return nil, fmt.Errorf("failed to read scan metadata: %w", err)
	}

	m.CaseSensitive = caseSensitive != 0
	m.Stats.StartTime = timeFromUnix(startTime)
	m.Stats.EndTime = timeFromUnix(endTime)
	return &m, nil
}

// LoadRules retrieves the rule list in original order.
func LoadRules(db *sql.DB) ([]rules.Rule, error) {
	rows, err := db.Query(`SELECT action, pattern, lineno, enabled, label, color FROM rules ORDER BY idx`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	var out []rules.Rule
	for rows.Next() {
		var r rules.Rule
		var action string
		var enabled int
		if err := rows.Scan(&action, &r.Pattern, &r.LineNo, &enabled, &r.Label, &r.Color); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		r.Action = rules.Action(action)
		r.Enabled = enabled != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadNodes reconstructs the node tree and returns its root-level
// nodes. Node IDs are assigned depth-first at save time, so loading
// in ID order reproduces the scanner's child ordering.
func LoadNodes(db *sql.DB) ([]*entry.Node, error) {
	rows, err := db.Query(`
		SELECT id, COALESCE(parent_id, 0), abs_path, rel_path, kind, size, mtime, rule_index, rule_ids, tags
		FROM nodes ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*entry.Node)
	parents := make(map[int64]int64)
	var order []int64

	for rows.Next() {
		var id, parentID, mtime int64
		var kind int
		var ruleIDs, tags string
		n := &entry.Node{}
		if err := rows.Scan(&id, &parentID, &n.AbsPath, &n.RelPath, &kind, &n.Size,
			&mtime, &n.RuleIndex, &ruleIDs, &tags); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		n.Kind = entry.Kind(kind)
		n.ModTime = timeFromUnix(mtime)
		n.RuleIDs = splitInts(ruleIDs)
		if tags != "" {
			n.Tags = strings.Split(tags, ",")
		}
		byID[id] = n
		parents[id] = parentID
		order = append(order, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var roots []*entry.Node
	for _, id := range order {
		n := byID[id]
		if parent, ok := byID[parents[id]]; ok {
			parent.Children = append(parent.Children, n)
		} else {
			roots = append(roots, n)
		}
	}
	return roots, nil
}

// FindNode looks up a single node by relative path. Returns nil when
// the path is not in the snapshot.
func FindNode(db *sql.DB, relPath string) (*entry.Node, error) {
	relPath = pathutil.ToPosix(relPath)
	row := db.QueryRow(`
		SELECT abs_path, rel_path, kind, size, mtime, rule_index, rule_ids, tags
		FROM nodes WHERE rel_path = ?
	`, relPath)

	var kind int
	var mtime int64
	var ruleIDs, tags string
	n := &entry.Node{}
	err := row.Scan(&n.AbsPath, &n.RelPath, &kind, &n.Size, &mtime, &n.RuleIndex, &ruleIDs, &tags)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	n.Kind = entry.Kind(kind)
	n.ModTime = timeFromUnix(mtime)
	n.RuleIDs = splitInts(ruleIDs)
	if tags != "" {
		n.Tags = strings.Split(tags, ",")
	}
	return n, nil
}
