package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/erpdesk/internal/screens"
)

// renderDialog renders the open dialog box, or "" when none is open. The
// validation alert stacks above the others.
func (m Model) renderDialog() string {
	styles := m.theme.Styles()
	switch {
	case m.alert.IsOpen():
		st := m.alert.State()
		body := styles.WarningText.Render(st.Props) + "\n\n" + styles.FaintText.Render("enter/esc to dismiss")
		return m.dialogBox(m.alert.Options().Title, m.alert.Options().Width, body)

	case m.confirm.IsOpen():
		st := m.confirm.State()
		body := styles.Text.Render(fmt.Sprintf("Run %s?", st.Props.Label)) + "\n\n" +
			styles.FaintText.Render("y confirm · n/esc cancel")
		return m.dialogBox(m.confirm.Options().Title, m.confirm.Options().Width, body)

	case m.detail.IsOpen():
		body := m.detailView.View() + "\n" + styles.FaintText.Render("enter select · esc close · j/k scroll")
		return m.dialogBox(m.detail.Options().Title, m.detail.Options().Width, body)
	}
	return ""
}

func (m Model) dialogBox(title string, width int, body string) string {
	styles := m.theme.Styles()
	if m.width > 0 {
		width = min(width, max(m.width-4, 20))
	}
	content := styles.AccentText.Bold(true).Render(title) + "\n" +
		styles.FaintText.Render(strings.Repeat("─", max(width-6, 1))) + "\n\n" + body
	return styles.Dialog.Width(width).Render(content)
}

// renderDetailBody lists the row's columns in grid order, then any extra
// fields the backend sent.
func (m Model) renderDetailBody(def screens.Definition, row screens.Row) string {
	styles := m.theme.Styles()
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Muted)).Width(16)

	seen := make(map[string]struct{}, len(def.Columns))
	var b strings.Builder
	for _, c := range def.Columns {
		seen[c.Key] = struct{}{}
		b.WriteString(labelStyle.Render(c.Title))
		b.WriteString(styles.Text.Render(screens.Cell(row, c.Key)))
		b.WriteString("\n")
	}

	extra := make([]string, 0, len(row))
	for k := range row {
		if _, ok := seen[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		b.WriteString(labelStyle.Render(k))
		b.WriteString(styles.FaintText.Render(screens.Cell(row, k)))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
