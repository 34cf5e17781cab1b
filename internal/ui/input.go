package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/erpdesk/internal/notice"
	"github.com/five82/erpdesk/internal/prefs"
	"github.com/five82/erpdesk/internal/screens"
)

// handleKey processes keyboard input. Open dialogs take every key first.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch {
	case m.alert.IsOpen():
		return m.handleAlertKey(msg)
	case m.confirm.IsOpen():
		return m.handleConfirmKey(msg)
	case m.detail.IsOpen():
		return m.handleDetailKey(msg)
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Escape) {
			m.showHelp = false
		}
		return m, nil
	}

	if m.focus == focusSearch {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
			m.logger.Warn("save prefs failed", "error", err)
		}
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusMenu && m.tabs.Len() > 0 {
			m.focus = focusGrid
		} else {
			m.focus = focusMenu
		}
		return m, nil

	case key.Matches(msg, m.keys.PrevTab):
		if _, ok := m.tabs.Cycle(-1); ok {
			return m, m.syncPermissionsCmd()
		}
		return m, nil

	case key.Matches(msg, m.keys.NextTab):
		if _, ok := m.tabs.Cycle(1); ok {
			return m, m.syncPermissionsCmd()
		}
		return m, nil

	case key.Matches(msg, m.keys.CloseTab):
		if m.tabs.RemoveTab(m.tabs.ActiveTabKey()) {
			if m.tabs.Len() == 0 {
				m.focus = focusMenu
			}
			return m, m.syncPermissionsCmd()
		}
		return m, nil

	case key.Matches(msg, m.keys.CloseAll):
		m.tabs.CloseAllTabs()
		m.focus = focusMenu
		return m, m.syncPermissionsCmd()

	case key.Matches(msg, m.keys.SearchBox):
		tab, ok := m.activeScreen()
		if !ok || tab.Element.store == nil {
			return m, nil
		}
		m.focus = focusSearch
		return m, tab.Element.input.Focus()

	case key.Matches(msg, m.keys.Refresh):
		if tab, ok := m.activeScreen(); ok && tab.Element.store != nil {
			return m, refreshCmd(tab)
		}
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		if active := m.notices.Active(); len(active) > 0 {
			m.notices.Dismiss(active[0].ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Reset):
		if tab, ok := m.activeScreen(); ok && tab.Element.store != nil {
			tab.Element.store.Reset()
			tab.Element.cursor = 0
		}
		return m, nil
	}

	if m.focus == focusMenu {
		return m.handleMenuKey(msg)
	}
	return m.handleGridKey(msg)
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Confirm) {
		if m.menuPos < len(m.menuRows) {
			return m.openMenu(m.menuRows[m.menuPos].item)
		}
		return m, nil
	}
	m.menuPos = m.moveCursor(msg, m.menuPos, len(m.menuRows))
	return m, nil
}

func (m Model) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tab, ok := m.activeScreen()
	if !ok || tab.Element.store == nil {
		return m, nil
	}
	st := tab.Element
	rows := st.store.Rows()

	if key.Matches(msg, m.keys.Confirm) {
		if st.cursor >= 0 && st.cursor < len(rows) {
			row := rows[st.cursor]
			if err := m.detail.Open(row); err == nil {
				m.detailView.SetContent(m.renderDetailBody(st.def, row))
				m.detailView.GotoTop()
			}
		}
		return m, nil
	}

	for _, a := range m.visibleActions(st.def) {
		if msg.String() == a.Key {
			_ = m.confirm.Open(a)
			return m, nil
		}
	}

	st.cursor = m.moveCursor(msg, st.cursor, len(rows))
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tab, ok := m.activeScreen()
	if !ok || tab.Element.store == nil {
		m.focus = focusGrid
		return m, nil
	}
	st := tab.Element

	switch {
	case key.Matches(msg, m.keys.Escape):
		st.input.Blur()
		m.focus = focusGrid
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		st.input.Blur()
		m.focus = focusGrid
		q := screens.ParseQuery(st.input.Value())
		if err := st.def.Validate(q); err != nil {
			m.showValidation(err.Error())
			return m, nil
		}
		st.cursor = 0
		return m, searchCmd(tab, q)
	}

	var cmd tea.Cmd
	st.input, cmd = st.input.Update(msg)
	return m, cmd
}

// showValidation raises the input warning dialog unless one is already
// showing or tearing down.
func (m Model) showValidation(message string) {
	if !m.gate.TryAcquire() {
		m.logger.Debug("validation dialog suppressed", "message", message)
		return
	}
	if err := m.alert.Open(message); err != nil {
		m.gate.Release()
		m.notices.Notify(notice.LevelWarning, message)
	}
}

func (m Model) handleAlertKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Confirm) || key.Matches(msg, m.keys.Escape) {
		m.dismissAlert()
	}
	return m, nil
}

func (m Model) dismissAlert() {
	_ = m.alert.Close()
	m.gate.ReleaseAfter(m.teardown)
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes), key.Matches(msg, m.keys.Confirm):
		if st := m.confirm.State(); st.HasProps {
			_ = m.confirm.Return(st.Props)
		}
	case key.Matches(msg, m.keys.No):
		_ = m.confirm.HandleClose()
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		st := m.detail.State()
		value := ""
		if tab, ok := m.activeScreen(); ok && st.HasProps && len(tab.Element.def.Columns) > 0 {
			value = screens.Cell(st.Props, tab.Element.def.Columns[0].Key)
		}
		if m.detail.Return(value) == nil {
			m.detailHidden()
		}
		return m, nil
	case key.Matches(msg, m.keys.Escape):
		if m.detail.HandleClose() == nil {
			m.detailHidden()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.detailView, cmd = m.detailView.Update(msg)
	return m, cmd
}

// handleMouse treats a left click outside an open dialog as a mask click.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	box := m.renderDialog()
	if box == "" {
		return m, nil
	}
	w, h := lipgloss.Width(box), lipgloss.Height(box)
	x0, y0 := (m.width-w)/2, (m.height-h)/2
	if msg.X >= x0 && msg.X < x0+w && msg.Y >= y0 && msg.Y < y0+h {
		return m, nil
	}
	switch {
	case m.confirm.IsOpen():
		_, _ = m.confirm.HandleMaskClick()
	case m.detail.IsOpen():
		if closed, _ := m.detail.HandleMaskClick(); closed {
			m.detailHidden()
		}
	}
	return m, nil
}

// detailHidden drops the rendered detail page once the dialog is hidden,
// when the dialog asks for it.
func (m *Model) detailHidden() {
	if m.detail.Options().DestroyOnHidden {
		m.detailView.SetContent("")
	}
}

// moveCursor applies a navigation key to pos within n entries.
func (m Model) moveCursor(msg tea.KeyMsg, pos, n int) int {
	page := max(m.bodyHeight()-4, 1)
	switch {
	case key.Matches(msg, m.keys.Up):
		pos--
	case key.Matches(msg, m.keys.Down):
		pos++
	case key.Matches(msg, m.keys.Top):
		pos = 0
	case key.Matches(msg, m.keys.Bottom):
		pos = n - 1
	case key.Matches(msg, m.keys.PageUp):
		pos -= page
	case key.Matches(msg, m.keys.PageDown):
		pos += page
	}
	return clamp(pos, 0, n-1)
}

// visibleActions filters the screen buttons through the loaded permissions.
func (m Model) visibleActions(def screens.Definition) []screens.Action {
	out := make([]screens.Action, 0, len(def.Actions))
	for _, a := range def.Actions {
		if m.perms == nil || m.perms.HasPermission(a.ObjectID) {
			out = append(out, a)
		}
	}
	return out
}
