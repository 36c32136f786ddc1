package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/seitool/sei/internal/entry"
)

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	headerLines := 0

	writeLine := func(line string) {
		b.WriteString(line)
		b.WriteString("\n")
		headerLines++
	}

	// Header
	writeLine(titleStyle.Render("sei - Excluded & Ignored Browser"))

	stats := m.meta.Stats
	scanInfo := fmt.Sprintf("Scan: %s | Matched: %s in %s files | Scanned: %s | Skipped: %s",
		stats.StartTime.Format("2006-01-02 15:04"),
		FormatSize(stats.MatchedBytes),
		FormatCount(stats.Matched),
		FormatCount(stats.Scanned),
		FormatCount(stats.Skipped),
	)
	writeLine(statsStyle.Render(scanInfo))

	// Breadcrumbs / path
	pathLabel := fmt.Sprintf("Path: %s", truncateMiddle(m.current().AbsPath, max(10, m.width-6)))
	writeLine(breadcrumbStyle.Render(pathLabel))

	// Current directory stats
	dirRollup := m.rollups[m.current().RelPath]
	dirInfo := fmt.Sprintf("Matched: %s in %s files | %s files | %s subdirs",
		FormatSize(dirRollup.MatchedBytes),
		FormatCount(dirRollup.MatchedFiles),
		FormatCount(dirRollup.TotalFiles),
		FormatCount(dirRollup.TotalDirs),
	)

	// Status line
	status := fmt.Sprintf("Items: %s | Sort: %s", FormatCount(int64(len(m.rows))), m.sort)
	if m.matchedOnly {
		status += " | Matched only"
	}
	if m.filter != "" {
		status += fmt.Sprintf(" | Filter: %q", m.filter)
	}
	if len(m.rows) > 0 && m.cursor < len(m.rows) {
		sel := m.rows[m.cursor]
		status += fmt.Sprintf(" | Sel: %s (%s)", sel.Name(), FormatSize(m.matchedBytes(sel)))
	}
	writeLine(statusStyle.Render(status))

	// Filter input
	if m.filterActive {
		writeLine(filterStyle.Render(fmt.Sprintf("Filter: %s_", m.filter)))
	} else if m.filter != "" {
		writeLine(filterStyle.Render(fmt.Sprintf("Filter: %s", m.filter)))
	}

	// Column headers with sort indicator
	matchedLabel := headerLabel("MATCHED", m.sort == SortByMatched, "v")
	filesLabel := headerLabel("FILES", m.sort == SortByFiles, "v")
	nameLabel := headerLabel("NAME", m.sort == SortByName, "^")

	// Calculate visible rows
	footerLines := 3
	visibleRows := m.height - headerLines - footerLines
	if visibleRows < 5 {
		visibleRows = 5
	}

	// Determine scroll offset
	startIdx := 0
	if m.cursor >= visibleRows {
		startIdx = m.cursor - visibleRows + 1
	}
	endIdx := min(len(m.rows), startIdx+visibleRows)

	widths := m.calcColumnWidths(startIdx, endIdx, matchedLabel, filesLabel)
	nameWidth := calcNameWidth(m.width, widths)
	gap := strings.Repeat(" ", colGap)

	nameLabel = truncateRight(nameLabel, nameWidth)
	namePad := nameWidth - len(nameLabel)
	if namePad < 0 {
		namePad = 0
	}
	header := fmt.Sprintf("%*s%s%*s%s%-*s%s%s%s%s%*s",
		widths.matched, matchedLabel,
		gap,
		widths.files, filesLabel,
		gap,
		widths.rule, "RULE",
		gap,
		nameLabel,
		strings.Repeat(" ", namePad),
		gap,
		barColWidth, "SHARE",
	)
	writeLine(headerStyle.Render(header))

	// Rows
	parentTotal := m.rollups[m.current().RelPath].MatchedBytes
	for i := startIdx; i < endIdx; i++ {
		line := m.formatRow(m.rows[i], i == m.cursor, widths, nameWidth, parentTotal)
		b.WriteString(line)
		b.WriteString("\n")
	}

	// Pad if needed
	displayedRows := min(len(m.rows)-startIdx, visibleRows)
	for i := displayedRows; i < visibleRows; i++ {
		b.WriteString("\n")
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(statsStyle.Render(dirInfo))
	b.WriteString("\n")
	help := m.helpLine()
	if len(m.rows) > 0 {
		help = fmt.Sprintf("%s [%d/%d]", help, m.cursor+1, len(m.rows))
	}
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

type columnWidths struct {
	matched int
	files   int
	rule    int
}

const (
	colGap        = 2
	minNameWidth  = 10
	maxRuleWidth  = 24
	barBlockWidth = 10                                        // number of block characters
	barPctWidth   = 4                                         // " 78%" or "100%"
	barGapWidth   = 1                                         // space between blocks and pct
	barColWidth   = barBlockWidth + barGapWidth + barPctWidth // 15
)

func (m *Model) calcColumnWidths(startIdx, endIdx int, matchedLabel, filesLabel string) columnWidths {
	w := columnWidths{
		matched: len(matchedLabel),
		files:   len(filesLabel),
		rule:    len("RULE"),
	}

	for i := startIdx; i < endIdx; i++ {
		n := m.rows[i]
		matched := len(FormatSize(m.matchedBytes(n)))
		files := len(FormatCount(m.matchedFiles(n)))
		rule := len(m.ruleText(n))

		if matched > w.matched {
			w.matched = matched
		}
		if files > w.files {
			w.files = files
		}
		if rule > w.rule {
			w.rule = rule
		}
	}

	if w.rule > maxRuleWidth {
		w.rule = maxRuleWidth
	}
	return w
}

func calcNameWidth(totalWidth int, w columnWidths) int {
	used := w.matched + w.files + w.rule + (colGap * 4) + barColWidth
	nameWidth := totalWidth - used
	if nameWidth < minNameWidth {
		nameWidth = minNameWidth
	}
	return nameWidth
}

func truncateRight(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// ruleText is the unstyled RULE cell content for a row.
func (m *Model) ruleText(n *entry.Node) string {
	if n.Virtual() {
		return ""
	}
	r := m.ruleFor(n)
	if r == nil {
		return ""
	}
	return r.DisplayLabel()
}

func (m *Model) formatRow(n *entry.Node, selected bool, widths columnWidths, nameWidth int, parentTotal int64) string {
	matched := FormatSize(m.matchedBytes(n))
	files := FormatCount(m.matchedFiles(n))

	ruleText := truncateRight(m.ruleText(n), widths.rule)
	rulePad := widths.rule - len(ruleText)
	if rulePad < 0 {
		rulePad = 0
	}
	styledRule := ruleText
	if r := m.ruleFor(n); r != nil && !n.Virtual() {
		styledRule = ruleStyle(r.Color).Render(ruleText)
	}

	rawName := n.Name()
	if n.Kind == entry.KindDir {
		rawName += "/"
	}
	rawName = truncateRight(rawName, nameWidth)

	var styledName string
	switch {
	case n.Virtual():
		styledName = virtualStyle.Render(rawName)
	case n.Kind == entry.KindDir:
		styledName = dirStyle.Render(rawName)
	default:
		styledName = fileStyle.Render(rawName)
	}

	// Pad name to fixed width so bar column aligns
	namePad := nameWidth - len(rawName)
	if namePad < 0 {
		namePad = 0
	}

	bar := formatBar(m.matchedBytes(n), parentTotal)

	gap := strings.Repeat(" ", colGap)
	line := fmt.Sprintf("%*s%s%*s%s%s%s%s%s%s%s%s",
		widths.matched, matched,
		gap,
		widths.files, files,
		gap,
		styledRule, strings.Repeat(" ", rulePad),
		gap,
		styledName, strings.Repeat(" ", namePad),
		gap,
		bar,
	)

	if selected {
		return selectedStyle.Render(line)
	}
	return line
}

func formatBar(entryVal, parentTotal int64) string {
	if parentTotal <= 0 || entryVal <= 0 {
		empty := strings.Repeat("░", barBlockWidth)
		return barEmptyStyle.Render(empty) + fmt.Sprintf("  %3d%%", 0)
	}

	pct := float64(entryVal) / float64(parentTotal) * 100
	if pct > 100 {
		pct = 100
	}

	filled := int(math.Round(pct / 100 * float64(barBlockWidth)))
	if filled < 1 && entryVal > 0 {
		filled = 1
	}
	if filled > barBlockWidth {
		filled = barBlockWidth
	}

	filledStr := barFilledStyle.Render(strings.Repeat("█", filled))
	emptyStr := barEmptyStyle.Render(strings.Repeat("░", barBlockWidth-filled))
	return filledStr + emptyStr + fmt.Sprintf("  %3d%%", int(math.Round(pct)))
}

func headerLabel(label string, active bool, dir string) string {
	if active {
		return label + dir
	}
	return label
}

func truncateMiddle(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	head := (maxLen - 3) / 2
	tail := maxLen - 3 - head
	return s[:head] + "..." + s[len(s)-tail:]
}
