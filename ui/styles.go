package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#626262"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	warning   = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F55081"}
	caution   = lipgloss.AdaptiveColor{Light: "#D4A017", Dark: "#F2C94C"}
	muted     = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#A0A0A0"}

	// Borders
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(subtle).
			Padding(0, 1)

	activePaneStyle = paneStyle.
			BorderForeground(highlight)

	// Text
	titleStyle = lipgloss.NewStyle().
			Foreground(highlight).
			Bold(true).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(subtle).
			Padding(0, 1)

	runningStyle = lipgloss.NewStyle().
			Foreground(caution).
			Bold(true)

	passStyle  = lipgloss.NewStyle().Foreground(special)
	failStyle  = lipgloss.NewStyle().Foreground(warning)
	errorStyle = lipgloss.NewStyle().Foreground(caution)
	dimStyle   = lipgloss.NewStyle().Foreground(muted)

	// Tabs
	activeTabStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(highlight).
			Padding(0, 1).
			Foreground(highlight)

	inactiveTabStyle = lipgloss.NewStyle().
				Border(lipgloss.HiddenBorder()).
				BorderForeground(subtle).
				Padding(0, 1).
				Foreground(subtle)

	// Notices
	noticeStyle = lipgloss.NewStyle().
			Foreground(special).
			Padding(0, 1)

	noticeErrorStyle = lipgloss.NewStyle().
				Foreground(warning).
				Bold(true).
				Padding(0, 1)

	// Confirmation modal
	modalBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(caution).
			Padding(1, 3).
			Width(56)

	modalTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Align(lipgloss.Center).
			Width(50)

	modalConfirmStyle = lipgloss.NewStyle().
				Foreground(special).
				Bold(true)

	modalCancelStyle = lipgloss.NewStyle().
				Foreground(muted)
)
