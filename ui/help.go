package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) renderHelp() string {
	title := titleStyle.Render("HELP")
	helpView := m.help.View(m.keys)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		paneStyle.Render(fmt.Sprintf("%s\n\n%s", title, helpView)),
	)
}

func (m Model) renderFooter() string {
	if m.notice != nil {
		if m.notice.isErr {
			return noticeErrorStyle.Render(m.notice.text)
		}
		return noticeStyle.Render(m.notice.text)
	}
	return statusStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}
