package ui

// Layout constants.
const (
	// MenuPaneWidth is the width of the navigation pane.
	MenuPaneWidth = 30

	// LayoutCompactWidth is the threshold below which the menu pane is
	// hidden while a tab has focus.
	LayoutCompactWidth = 90

	// chromeLines counts header, tab bar and command bar.
	chromeLines = 3
)

// bodyHeight is the number of lines left for the panes.
func (m Model) bodyHeight() int {
	return max(m.height-chromeLines-len(m.notices.Active()), 1)
}

// showMenuPane reports whether the navigation pane is drawn.
func (m Model) showMenuPane() bool {
	return m.width >= LayoutCompactWidth || m.focus == focusMenu || m.tabs.Len() == 0
}
