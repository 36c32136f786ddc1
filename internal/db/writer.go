package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/seitool/sei/internal/entry"
	"github.com/seitool/sei/internal/rules"
)

const insertMetaSQL = `INSERT INTO scan_meta (id, root_path, case_sensitive, start_time, end_time, scanned, matched, matched_bytes, file_count, folder_count, skipped)
VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
const insertRuleSQL = `INSERT INTO rules (idx, action, pattern, lineno, enabled, label, color) VALUES (?, ?, ?, ?, ?, ?, ?)`
const insertNodeSQL = `INSERT INTO nodes (id, parent_id, abs_path, rel_path, kind, size, mtime, rule_index, rule_ids, tags) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Meta describes a scan run stored alongside its nodes and rules.
type Meta struct {
	RootPath      string
	CaseSensitive bool
	Stats         entry.Stats
}

// SaveScan persists a completed scan (metadata, rule list, and node
// tree) in a single transaction.
func SaveScan(db *sql.DB, meta Meta, ruleList []rules.Rule, nodes []*entry.Node) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	endTime := int64(0)
	if !meta.Stats.EndTime.IsZero() {
		endTime = meta.Stats.EndTime.Unix()
	}
	if _, err := tx.Exec(insertMetaSQL,
		meta.RootPath, boolToInt(meta.CaseSensitive),
		meta.Stats.StartTime.Unix(), endTime,
		meta.Stats.Scanned, meta.Stats.Matched, meta.Stats.MatchedBytes,
		meta.Stats.Files, meta.Stats.Folders, meta.Stats.Skipped,
	); err != nil {
		return fmt.Errorf("failed to insert scan metadata: %w", err)
	}

	ruleStmt, err := tx.Prepare(insertRuleSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare rule statement: %w", err)
	}
	defer ruleStmt.Close()

	for idx, rule := range ruleList {
		if _, err := ruleStmt.Exec(idx, string(rule.Action), rule.Pattern, rule.LineNo,
			boolToInt(rule.Enabled), rule.Label, rule.Color); err != nil {
			return fmt.Errorf("failed to insert rule %d: %w", idx, err)
		}
	}

	nodeStmt, err := tx.Prepare(insertNodeSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare node statement: %w", err)
	}
	defer nodeStmt.Close()

	nextID := int64(1)
	var insertNode func(n *entry.Node, parentID int64) error
	insertNode = func(n *entry.Node, parentID int64) error {
		id := nextID
		nextID++

		mtime := int64(0)
		if !n.ModTime.IsZero() {
			mtime = n.ModTime.Unix()
		}
		var parent interface{}
		if parentID > 0 {
			parent = parentID
		}
		if _, err := nodeStmt.Exec(id, parent, n.AbsPath, n.RelPath, n.Kind, n.Size,
			mtime, n.RuleIndex, joinInts(n.RuleIDs), strings.Join(n.Tags, ",")); err != nil {
			return fmt.Errorf("failed to insert node %q: %w", n.RelPath, err)
		}
		for _, child := range n.Children {
			if err := insertNode(child, id); err != nil {
				return err
			}
		}
		return nil
	}
	for _, n := range nodes {
		if err := insertNode(n, 0); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func splitInts(s string) []int {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func timeFromUnix(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}
