package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/tally/internal/core/styles"
)

// tabBarHeight is the tab row plus its bottom border.
const tabBarHeight = 2

func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	content := lipgloss.JoinVertical(lipgloss.Left, m.renderTabBar(), m.renderBody())

	switch {
	case m.editor != nil:
		content = overlayCenter(content, m.editor.View(), m.width, m.height)
	case m.help != nil:
		content = m.help.Overlay(content, m.width, m.height)
	case m.info != nil:
		content = m.info.Overlay(content, m.width, m.height)
	}
	if m.alert != nil {
		content = m.alert.Overlay(content, m.width, m.height)
	}
	if m.confirm != nil {
		content = m.confirm.modal.Overlay(content, m.width, m.height)
	}
	content = m.toastView.Overlay(content, m.width, m.height)

	v := tea.NewView(content)
	v.AltScreen = true
	return v
}

func (m Model) renderTabBar() string {
	tabs := make([]string, 0, len(m.tabs)+1)
	for i, tab := range m.tabs {
		label := tab.Title()
		if tab.Controller().DialogConfig() != nil {
			label = styles.IconDialog + " " + label
		}
		if i == m.active {
			tabs = append(tabs, styles.TabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, styles.TabInactiveStyle.Render(label))
		}
	}

	left := strings.Join(tabs, " ")
	right := styles.TextMutedStyle.Render(m.identity.String())
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return styles.TabBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderBody() string {
	tab := m.activeTab()
	if tab == nil {
		msg := "Role " + m.identity.Role + " has no grids to show. Check the roles section of your config."
		return lipgloss.Place(m.width, max(m.height-tabBarHeight, 1), lipgloss.Center, lipgloss.Center,
			styles.GridEmptyStyle.Render(msg))
	}
	return tab.View(m.spinner.View())
}
