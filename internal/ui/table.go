package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/erpdesk/internal/screens"
)

// renderContent renders the active tab, or a hint when none is open.
func (m Model) renderContent(width, height int) string {
	styles := m.theme.Styles()
	box := lipgloss.NewStyle().Width(width).Height(height).PaddingLeft(1)

	tab, ok := m.activeScreen()
	if !ok {
		return box.Render(styles.FaintText.Render("Select a program from the menu and press enter."))
	}
	st := tab.Element
	if !st.known || st.store == nil {
		lines := []string{
			styles.Text.Bold(true).Render(tab.Meta.Title),
			styles.WarningText.Render("No screen is registered for " + tab.Path),
		}
		if p := tab.Meta.Extra["menuPath"]; p != "" && p != tab.Path {
			lines = append(lines, styles.FaintText.Render("menu path "+p))
		}
		return box.Render(strings.Join(lines, "\n"))
	}

	inner := width - 1
	lines := []string{
		styles.Text.Bold(true).Render(tab.Meta.Title) + "  " + styles.FaintText.Render(tab.Path),
		m.renderActions(st.def),
		st.input.View(),
	}
	gridHeight := max(height-len(lines)-1, 2)
	lines = append(lines, m.renderGrid(st, inner, gridHeight)...)
	lines = append(lines, m.renderGridStatus(st))
	return box.Render(strings.Join(lines, "\n"))
}

// renderActions lists the buttons the loaded permissions allow.
func (m Model) renderActions(def screens.Definition) string {
	styles := m.theme.Styles()
	actions := m.visibleActions(def)
	if len(actions) == 0 {
		return styles.FaintText.Render("no actions")
	}
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		parts = append(parts, styles.AccentText.Render("["+a.Key+"]")+" "+styles.Text.Render(a.Label))
	}
	if m.perms != nil && m.perms.Loading() {
		parts = append(parts, styles.FaintText.Render("…"))
	}
	return strings.Join(parts, "  ")
}

// renderGrid renders the column header and the visible window of rows.
func (m Model) renderGrid(st *screenTab, width, height int) []string {
	styles := m.theme.Styles()
	cols := st.def.Columns

	header := make([]string, 0, len(cols))
	for _, c := range cols {
		header = append(header, fit(c.Title, c.Width, c.Right))
	}
	lines := []string{styles.GridHeader.Render(fit(strings.Join(header, " "), width, false))}

	rows := st.store.Rows()
	visible := max(height-1, 1)
	start := scrollStart(st.cursor, len(rows), visible)
	end := min(start+visible, len(rows))
	for i := start; i < end; i++ {
		cells := make([]string, 0, len(cols))
		for _, c := range cols {
			cells = append(cells, fit(screens.Cell(rows[i], c.Key), c.Width, c.Right))
		}
		line := fit(strings.Join(cells, " "), width, false)
		if i == st.cursor && m.focus == focusGrid {
			line = styles.Selected.Render(line)
		} else {
			line = styles.Text.Render(line)
		}
		lines = append(lines, line)
	}
	return lines
}

func (m Model) renderGridStatus(st *screenTab) string {
	styles := m.theme.Styles()
	snap := st.store.Snapshot()
	switch {
	case snap.Loading:
		return styles.WarningText.Render("Loading...")
	case !snap.HasLastRequest:
		return styles.FaintText.Render("press / to search")
	}
	status := fmt.Sprintf("%d rows", len(snap.Rows))
	if q := snap.LastRequest.String(); q != "" {
		status += "  last: " + q
	}
	return styles.MutedText.Render(status)
}
