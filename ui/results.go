package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jesspatton/lazyremote/api"
	"github.com/jesspatton/lazyremote/report"
)

func (m Model) renderResultsPane(paneWidth, paneHeight int) string {
	var view strings.Builder

	agg := m.engine.Aggregate()
	counts := fmt.Sprintf("%s %s %s",
		passStyle.Render(fmt.Sprintf("%d passed", agg.Passed)),
		failStyle.Render(fmt.Sprintf("%d failed", agg.Failed)),
		errorStyle.Render(fmt.Sprintf("%d errors", agg.Errors)),
	)
	view.WriteString(titleStyle.Render("RESULTS") + dimStyle.Render("["+m.filter.String()+"] ") + counts + "\n\n")

	if !m.ready {
		view.WriteString("Initializing...")
	} else {
		view.WriteString(m.viewport.View())
	}

	style := paneStyle
	if m.activePane == PaneResults {
		style = activePaneStyle
	}
	return style.
		Width(paneWidth).
		Height(paneHeight).
		Render(view.String())
}

// renderResults lays out the filtered results, one block per result.
func (m Model) renderResults(width int) string {
	results := filterResults(m.engine.State.Results, m.filter)
	if len(m.engine.State.Results) == 0 {
		return dimStyle.Render("No results yet.")
	}
	if len(results) == 0 {
		return dimStyle.Render(fmt.Sprintf("No %s results.", m.filter))
	}

	var b strings.Builder
	for _, r := range results {
		line := fmt.Sprintf("%s %s %s", statusIcon(r.Status), r.TestName, statusLabel(r.Status))
		b.WriteString(report.Truncate(line, width) + "\n")

		detail := "   " + report.FormatDuration(r.Duration)
		if r.Timestamp != nil {
			detail += " · " + r.Timestamp.Format("15:04:05")
		}
		b.WriteString(dimStyle.Render(detail) + "\n")

		if r.Message != "" {
			msg := report.FormatMessage(r.Message)
			b.WriteString(lipgloss.NewStyle().Width(max(width-3, 1)).Render("   "+msg) + "\n")
		}
	}
	return b.String()
}

func statusLabel(s api.TestStatus) string {
	text := report.StatusText(s)
	switch s {
	case api.StatusPass:
		return passStyle.Render(text)
	case api.StatusFail:
		return failStyle.Render(text)
	case api.StatusError:
		return errorStyle.Render(text)
	default:
		return dimStyle.Render(text)
	}
}
