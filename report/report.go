// Package report renders catalogs and run results as text tables for the
// headless commands, plus the small formatting helpers the TUI shares.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/acarl005/stripansi"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"

	"github.com/jesspatton/lazyremote/api"
	"github.com/jesspatton/lazyremote/engine"
)

const (
	// NotExecuted stands in for the message of a test without a result.
	NotExecuted = "Not executed"
	// NotRun stands in for the duration of a test without a result.
	NotRun = "Not run"

	messageWidth = 80
)

// Options control table rendering.
type Options struct {
	// Color enables the colored table styles.
	Color bool
}

// FormatDuration renders a result duration in seconds.
func FormatDuration(d *float64) string {
	if d == nil {
		return NotRun
	}
	return fmt.Sprintf("%.2fs", *d)
}

// FormatMessage flattens a server message to one plain line.
func FormatMessage(msg string) string {
	msg = strings.TrimSpace(stripansi.Strip(msg))
	if msg == "" {
		return NotExecuted
	}
	return strings.Join(strings.Fields(msg), " ")
}

// Truncate cuts s to at most width terminal cells, marking the cut with an
// ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// StatusText is the upper-case label for a status. Statuses outside the
// documented set are shown as reported, marked with a question mark.
func StatusText(s api.TestStatus) string {
	switch {
	case s == "":
		return "UNKNOWN"
	case !s.Known():
		return strings.ToUpper(string(s)) + "?"
	}
	return strings.ToUpper(string(s))
}

func newTable(title string, opts Options) table.Writer {
	t := table.NewWriter()
	if title != "" {
		t.SetTitle(title)
	}
	if opts.Color {
		t.SetStyle(table.StyleColoredBright)
	} else {
		t.SetStyle(table.StyleLight)
	}
	return t
}

// Catalog writes the test catalog grouped by suite.
func Catalog(w io.Writer, c api.Catalog, opts Options) error {
	t := newTable(fmt.Sprintf("Test Catalog (%d tests)", c.Len()), opts)

	t.AppendHeader(table.Row{"Suite", "Name", "Method"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Suite", AutoMerge: true},
		{Name: "Name", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, suite := range c.SuiteNames() {
		for _, tc := range c.Tests(suite) {
			t.AppendRow(table.Row{suite, tc.Name, tc.Method})
		}
	}

	// Tests whose suite has no positive count still belong in the listing.
	listed := make(map[string]bool)
	for _, suite := range c.SuiteNames() {
		listed[suite] = true
	}
	for _, tc := range c.TestCases {
		if !listed[tc.Suite] {
			t.AppendRow(table.Row{tc.Suite, tc.Name, tc.Method})
		}
	}

	t.AppendFooter(table.Row{"TOTAL", c.Len(), ""})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// Results writes one row per result in server order, followed by the
// aggregate.
func Results(w io.Writer, results []api.TestResult, opts Options) error {
	agg := engine.Summarize(results)

	t := newTable(fmt.Sprintf("Test Results (%d)", agg.Total), opts)
	if opts.Color {
		switch {
		case agg.Failing():
			t.SetStyle(table.StyleColoredBlackOnRedWhite)
		case agg.Total > 0 && agg.Passed == agg.Total:
			t.SetStyle(table.StyleColoredBlackOnGreenWhite)
		default:
			t.SetStyle(table.StyleColoredBlackOnYellowWhite)
		}
	}

	t.AppendHeader(table.Row{"Test", "Status", "Duration", "Message"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Test", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
	})

	for _, r := range results {
		t.AppendRow(table.Row{
			r.TestName,
			StatusText(r.Status),
			FormatDuration(r.Duration),
			Truncate(FormatMessage(r.Message), messageWidth),
		})
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		fmt.Sprintf("%d/%d passed", agg.Passed, agg.Total),
		"",
		fmt.Sprintf("%d failed, %d errors", agg.Failed, agg.Errors),
	})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// Status writes a one-line description of a run status.
func Status(w io.Writer, status api.RunStatus) error {
	var line string
	switch {
	case status.Running && status.CurrentTest != "":
		line = fmt.Sprintf("Running: %s", status.CurrentTest)
	case status.Running:
		line = "Running"
	default:
		line = "Idle"
	}
	if status.HasResults {
		line += fmt.Sprintf(" (%d results)", len(status.Results))
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// Summary writes the completion line for agg.
func Summary(w io.Writer, agg engine.Aggregate) error {
	_, err := fmt.Fprintln(w, agg.String())
	return err
}
