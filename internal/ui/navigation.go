package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/erpdesk/internal/menu"
)

// menuRow is one visible line of the navigation tree.
type menuRow struct {
	item  menu.Item
	depth int
}

// buildMenuRows flattens the enabled part of the tree in pre-order. A
// disabled node hides its whole subtree.
func buildMenuRows(tree []menu.Item) []menuRow {
	var rows []menuRow
	var walk func(nodes []menu.Item, depth int)
	walk = func(nodes []menu.Item, depth int) {
		for _, n := range nodes {
			if !n.Enabled() {
				continue
			}
			rows = append(rows, menuRow{item: n, depth: depth})
			walk(n.Children, depth+1)
		}
	}
	walk(tree, 0)
	return rows
}

// renderMenu renders the navigation pane.
func (m Model) renderMenu(width, height int) string {
	styles := m.theme.Styles()
	title := styles.AccentText.Bold(true).Render("Menu")
	if m.focus == focusMenu {
		title = lipgloss.NewStyle().
			Background(lipgloss.Color(m.theme.FocusBg)).
			Foreground(lipgloss.Color(m.theme.Accent)).
			Bold(true).
			Width(width).
			Render("Menu")
	}
	lines := []string{title}

	if len(m.menuRows) == 0 {
		lines = append(lines, styles.FaintText.Render("(no menus)"))
	}

	visible := max(height-1, 1)
	start := scrollStart(m.menuPos, len(m.menuRows), visible)
	end := min(start+visible, len(m.menuRows))
	active := m.tabs.ActiveTabKey()
	for i := start; i < end; i++ {
		row := m.menuRows[i]
		marker := "  "
		if !row.item.IsLeaf() {
			marker = "▾ "
		}
		label := fit(strings.Repeat("  ", row.depth)+marker+row.item.ProgramName, width, false)
		switch {
		case i == m.menuPos && m.focus == focusMenu:
			label = styles.Selected.Render(label)
		case row.item.Path != "" && m.resolver.NormalizeRoute(row.item.Path) == active:
			label = styles.AccentText.Render(label)
		case row.item.IsLeaf():
			label = styles.Text.Render(label)
		default:
			label = styles.MutedText.Render(label)
		}
		lines = append(lines, label)
	}
	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

// scrollStart returns the first visible index that keeps pos on screen.
func scrollStart(pos, n, visible int) int {
	if n <= visible {
		return 0
	}
	start := pos - visible/2
	return clamp(start, 0, n-visible)
}
