package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/five82/erpdesk/internal/menu"
)

// renderHeader renders the status bar: login, menu source and the program
// whose permissions are loaded.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{bg.Render("erpdesk", styles.Logo)}
	if login := m.prefs.RememberedLoginID(); login != "" {
		parts = append(parts, bg.Render(login, styles.Text))
	}
	parts = append(parts, m.menuStatus(styles, bg))

	if m.perms != nil {
		st := m.perms.State()
		program := st.ProgramNo
		if program == "" {
			program = "-"
		}
		seg := bg.Render("program ", styles.MutedText) + bg.Render(program, styles.AccentText)
		if item, ok := menu.Find(m.snapshot.Menus, st.ProgramNo); ok && item.ProgramName != "" {
			seg += bg.Spaces(1) + bg.Render(item.ProgramName, styles.Text)
		}
		if st.Loading {
			seg += bg.Spaces(1) + bg.Render("loading permissions", styles.WarningText)
		}
		parts = append(parts, seg)
	}

	left := bg.Join(parts, "  ")
	if !m.snapshot.LastUpdated.IsZero() {
		left += bg.Spaces(2) + bg.Render("updated "+m.snapshot.LastUpdated.Format(time.TimeOnly), styles.FaintText)
	}
	return bg.FillLine(bg.Spaces(1)+left, m.width)
}

func (m Model) menuStatus(styles Styles, bg BgStyle) string {
	snap := m.snapshot
	switch {
	case !snap.HasMenus && snap.LastError != nil:
		return bg.Render("menus unavailable", styles.DangerText)
	case !snap.HasMenus:
		return bg.Render("loading menus", styles.MutedText)
	}
	status := fmt.Sprintf("%d programs", len(m.menuRows))
	if snap.FromCache {
		status += " (cached)"
	}
	out := bg.Render(status, styles.MutedText)
	if snap.IsOffline() {
		out += bg.Spaces(1) + bg.Render("OFFLINE", styles.DangerText)
	}
	return out
}

// renderTabBar renders one label per open tab.
func (m Model) renderTabBar() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)
	snap := m.tabs.Snapshot()
	if len(snap.Tabs) == 0 {
		return bg.FillLine(bg.Render(" no open tabs", styles.FaintText.Background(bg.bg)), m.width)
	}
	labels := make([]string, 0, len(snap.Tabs))
	for _, t := range snap.Tabs {
		title := t.Meta.Title
		if title == "" {
			title = t.Path
		}
		if t.Path == snap.ActiveKey {
			labels = append(labels, styles.ActiveTab.Render(truncate(title, 24)))
		} else {
			labels = append(labels, styles.InactiveTab.Render(truncate(title, 24)))
		}
	}
	return bg.FillLine(strings.Join(labels, bg.Spaces(1)), m.width)
}
