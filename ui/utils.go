package ui

import (
	"strings"

	"github.com/jesspatton/lazyremote/api"
	"github.com/jesspatton/lazyremote/engine"
	"github.com/jesspatton/lazyremote/report"
)

// AllTab is the first suite tab; it lists the whole catalog.
const AllTab = "all"

// TestRow is one line of the test list: a catalog entry and the result the
// server reported for it, if any.
type TestRow struct {
	Test      api.TestCase
	Result    api.TestResult
	HasResult bool
}

// Message is the result message, or a placeholder when the test has none.
func (r TestRow) Message() string {
	if !r.HasResult {
		return report.NotExecuted
	}
	return report.FormatMessage(r.Result.Message)
}

// Duration is the formatted result duration, or a placeholder.
func (r TestRow) Duration() string {
	if !r.HasResult {
		return report.NotRun
	}
	return report.FormatDuration(r.Result.Duration)
}

// Icon reflects the matched result status.
func (r TestRow) Icon() string {
	if !r.HasResult {
		return "📄"
	}
	return statusIcon(r.Result.Status)
}

func statusIcon(s api.TestStatus) string {
	switch s {
	case api.StatusPass:
		return "✅"
	case api.StatusFail:
		return "❌"
	case api.StatusError:
		return "💥"
	case api.StatusRunning:
		return "⏳"
	case api.StatusPending:
		return "🕒"
	default:
		return "❔"
	}
}

// suiteTabs returns the tab labels: AllTab followed by every suite with at
// least one test.
func suiteTabs(c api.Catalog) []string {
	return append([]string{AllTab}, c.SuiteNames()...)
}

// tabSuite maps a tab index to the suite filter, "" meaning every test.
// Tabs are keyed by position so a suite named like AllTab keeps its own tab.
func tabSuite(tabs []string, i int) string {
	if i <= 0 || i >= len(tabs) {
		return ""
	}
	return tabs[i]
}

// buildRows lists the tests of suite whose name or method contains query,
// each paired with its matching result.
func buildRows(c api.Catalog, suite string, results []api.TestResult, query string) []TestRow {
	rows := []TestRow{}
	q := strings.ToLower(query)
	for _, tc := range c.Tests(suite) {
		if q != "" &&
			!strings.Contains(strings.ToLower(tc.Name), q) &&
			!strings.Contains(strings.ToLower(tc.Method), q) {
			continue
		}
		row := TestRow{Test: tc}
		row.Result, row.HasResult = engine.MatchResult(results, tc.Method)
		rows = append(rows, row)
	}
	return rows
}

// ResultFilter narrows the results pane to one status.
type ResultFilter int

const (
	FilterAll ResultFilter = iota
	FilterPass
	FilterFail
	FilterError
)

func (f ResultFilter) String() string {
	switch f {
	case FilterPass:
		return "pass"
	case FilterFail:
		return "fail"
	case FilterError:
		return "error"
	default:
		return "all"
	}
}

// Next cycles all → pass → fail → error → all.
func (f ResultFilter) Next() ResultFilter {
	return (f + 1) % 4
}

// Match reports whether a result with status s is shown under f.
func (f ResultFilter) Match(s api.TestStatus) bool {
	switch f {
	case FilterPass:
		return s == api.StatusPass
	case FilterFail:
		return s == api.StatusFail
	case FilterError:
		return s == api.StatusError
	default:
		return true
	}
}

func filterResults(results []api.TestResult, f ResultFilter) []api.TestResult {
	out := []api.TestResult{}
	for _, r := range results {
		if f.Match(r.Status) {
			out = append(out, r)
		}
	}
	return out
}
