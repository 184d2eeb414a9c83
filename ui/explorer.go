package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jesspatton/lazyremote/report"
)

func (m Model) renderHeader() string {
	title := titleStyle.Render("LAZYREMOTE")
	server := statusStyle.Render(m.server)

	var state string
	if m.engine.State.Running {
		label := m.engine.State.CurrentTestLabel
		if label == "" {
			label = "tests"
		}
		state = m.spinner.View() + " " + runningStyle.Render("Running: "+label)
	} else {
		state = dimStyle.Render("Idle")
	}
	if n := m.engine.PollFailures(); n > 0 {
		state += failStyle.Render(fmt.Sprintf("  (%d failed polls)", n))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, title, server, " ", state)
}

func (m Model) renderTabs() string {
	c := m.engine.Catalog().Catalog()
	rendered := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		label := fmt.Sprintf("%s (%d)", tab, c.Len())
		if i > 0 {
			label = fmt.Sprintf("%s (%d)", tab, c.Suites[tab])
		}
		if i == m.activeTab {
			rendered = append(rendered, activeTabStyle.Render(label))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, rendered...)
}

func (m Model) renderTests(paneWidth, paneHeight int) string {
	var explorerView strings.Builder

	explorerView.WriteString(m.renderTabs() + "\n\n")

	// Calculate available height for the list
	listHeight := paneHeight - 4
	if m.searchMode {
		listHeight -= 3 // 1 line text + 2 lines border
	}

	store := m.engine.Catalog()
	switch {
	case store.Loading() && !store.Loaded():
		explorerView.WriteString("Loading tests...")
	case store.Err() != nil:
		explorerView.WriteString(failStyle.Render("Could not load tests.") + "\nPress 'R' to retry.")
	case len(m.rows) == 0 && m.searchMode:
		explorerView.WriteString("No matching tests.")
	case len(m.rows) == 0:
		explorerView.WriteString("No tests found.")
	default:
		start, end := m.calculateVisibleRange(listHeight / 2)
		for i := start; i < end; i++ {
			m.renderRow(&explorerView, m.rows[i], i, paneWidth-4)
		}
	}

	// Fill remaining space to push search bar to bottom
	currentView := explorerView.String()
	currentHeight := lipgloss.Height(currentView)
	if target := paneHeight - 3; m.searchMode && currentHeight < target {
		currentView += strings.Repeat("\n", target-currentHeight)
	}

	if m.searchMode {
		searchStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(highlight).
			Width(paneWidth - 4) // Account for border width

		searchContent := m.searchInput.View()
		if !m.searchFocus {
			hints := "enter: run • /: edit • esc: exit"
			hintsStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

			availableWidth := paneWidth - 6
			contentWidth := lipgloss.Width(searchContent)
			hintsWidth := lipgloss.Width(hints)

			if contentWidth+hintsWidth+1 < availableWidth {
				padding := strings.Repeat(" ", availableWidth-contentWidth-hintsWidth)
				searchContent += padding + hintsStyle.Render(hints)
			}
		}
		currentView += searchStyle.Render(searchContent)
	}

	explorerStyle := paneStyle
	if m.activePane == PaneTests {
		explorerStyle = activePaneStyle
	}

	return explorerStyle.
		Width(paneWidth).
		Height(paneHeight).
		Render(currentView)
}

// calculateVisibleRange returns the window of rows around the cursor that
// fits in visible entries.
func (m Model) calculateVisibleRange(visible int) (int, int) {
	start := 0
	end := len(m.rows)

	if visible > 0 && len(m.rows) > visible {
		if m.cursor < visible/2 {
			start = 0
			end = visible
		} else if m.cursor > len(m.rows)-visible/2 {
			start = len(m.rows) - visible
			end = len(m.rows)
		} else {
			start = m.cursor - visible/2
			end = start + visible
		}
	}
	return start, end
}

// renderRow writes the two-line card of a test: name and status, then the
// message and duration.
func (m Model) renderRow(b *strings.Builder, row TestRow, index, width int) {
	cursor := " "
	if m.cursor == index {
		cursor = ">"
	}

	name := row.Test.Name
	if m.searchMode && m.searchInput.Value() != "" {
		name = highlightMatch(name, m.searchInput.Value())
	}

	suite := ""
	if m.activeTab == 0 {
		suite = dimStyle.Render(" [" + row.Test.Suite + "]")
	}

	line := fmt.Sprintf("%s %s %s%s", cursor, row.Icon(), name, suite)
	if m.cursor == index {
		line = lipgloss.NewStyle().Foreground(highlight).Render(line)
	}
	b.WriteString(line + "\n")

	detail := fmt.Sprintf("    %s · %s", row.Duration(), row.Message())
	b.WriteString(dimStyle.Render(report.Truncate(detail, width)) + "\n")
}

// highlightMatch marks every case-insensitive occurrence of query in name.
func highlightMatch(name, query string) string {
	lowerName := strings.ToLower(name)
	lowerQuery := strings.ToLower(query)
	if lowerQuery == "" || len(lowerName) != len(name) || !strings.Contains(lowerName, lowerQuery) {
		return name
	}

	var sb strings.Builder
	lastIdx := 0
	for {
		idx := strings.Index(lowerName[lastIdx:], lowerQuery)
		if idx == -1 {
			sb.WriteString(name[lastIdx:])
			break
		}
		idx += lastIdx
		sb.WriteString(name[lastIdx:idx])
		sb.WriteString(lipgloss.NewStyle().Background(lipgloss.Color("212")).Foreground(lipgloss.Color("0")).Render(name[idx : idx+len(lowerQuery)]))
		lastIdx = idx + len(lowerQuery)
	}
	return sb.String()
}
