package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/erpdesk/internal/notice"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if box := m.renderDialog(); box != "" {
		return lipgloss.Place(
			m.width,
			m.height,
			lipgloss.Center,
			lipgloss.Center,
			box,
			lipgloss.WithWhitespaceChars(" "),
			lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
		)
	}
	return m.renderMain()
}

// renderMain renders header, tab bar, panes, notices and command bar.
func (m Model) renderMain() string {
	body := m.renderBody()
	parts := []string{m.renderHeader(), m.renderTabBar(), body}
	if toasts := m.renderNotices(); toasts != "" {
		parts = append(parts, toasts)
	}
	parts = append(parts, m.renderCommandBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderBody() string {
	h := m.bodyHeight()
	contentWidth := m.width
	var columns []string
	if m.showMenuPane() {
		columns = append(columns, m.renderMenu(MenuPaneWidth, h))
		contentWidth = max(m.width-MenuPaneWidth-1, 10)
		sep := lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.theme.Border)).
			Render(strings.TrimSuffix(strings.Repeat("│\n", h), "\n"))
		columns = append(columns, sep)
	}
	columns = append(columns, m.renderContent(contentWidth, h))
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

// renderNotices renders the active toasts, newest last.
func (m Model) renderNotices() string {
	active := m.notices.Active()
	if len(active) == 0 {
		return ""
	}
	styles := m.theme.Styles()
	lines := make([]string, 0, len(active))
	for _, n := range active {
		icon := "•"
		switch n.Level {
		case notice.LevelSuccess:
			icon = "✓"
		case notice.LevelWarning:
			icon = "!"
		case notice.LevelError:
			icon = "✗"
		}
		lines = append(lines, styles.LevelStyle(n.Level).Render(truncate(icon+" "+n.Message, m.width)))
	}
	return strings.Join(lines, "\n")
}

// renderCommandBar lists the short help bindings.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	bindings := m.keys.ShortHelp()
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, bg.Render(h.Key, styles.AccentText)+bg.Spaces(1)+bg.Render(h.Desc, styles.MutedText))
	}
	return bg.FillLine(bg.Spaces(1)+bg.Join(parts, "  "), m.width)
}
