package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesspatton/lazyremote/api"
	"github.com/jesspatton/lazyremote/report"
)

var testCatalog = api.Catalog{
	TestCases: []api.TestCase{
		{Name: "Login", Suite: "auth", Method: "test_login"},
		{Name: "Signup", Suite: "auth", Method: "test_signup"},
		{Name: "Search", Suite: "catalog", Method: "test_search"},
	},
	Suites: map[string]int{"auth": 2, "catalog": 1, "payments": 0},
}

func dur(v float64) *float64 { return &v }

func TestSuiteTabs(t *testing.T) {
	assert.Equal(t, []string{AllTab, "auth", "catalog"}, suiteTabs(testCatalog))
	assert.Equal(t, []string{AllTab}, suiteTabs(api.Catalog{}))
	tabs := suiteTabs(testCatalog)
	assert.Equal(t, "", tabSuite(tabs, 0))
	assert.Equal(t, "auth", tabSuite(tabs, 1))
	assert.Equal(t, "", tabSuite(tabs, 5))

	// A suite sharing the all tab's label still filters to its own tests.
	clash := api.Catalog{
		TestCases: []api.TestCase{
			{Name: "Login", Suite: "auth", Method: "test_login"},
			{Name: "Smoke", Suite: AllTab, Method: "test_smoke"},
		},
		Suites: map[string]int{"auth": 1, AllTab: 1},
	}
	tabs = suiteTabs(clash)
	require.Equal(t, []string{AllTab, AllTab, "auth"}, tabs)
	assert.Equal(t, "", tabSuite(tabs, 0))
	assert.Equal(t, AllTab, tabSuite(tabs, 1))
	rows := buildRows(clash, tabSuite(tabs, 1), nil, "")
	require.Len(t, rows, 1)
	assert.Equal(t, "Smoke", rows[0].Test.Name)
}

func TestBuildRows(t *testing.T) {
	results := []api.TestResult{
		{TestName: "tests/test_login.py::test_login", Status: api.StatusPass, Duration: dur(0.5)},
		{TestName: "test_search", Status: api.StatusFail, Message: "\x1b[31mno hits\x1b[0m"},
	}

	rows := buildRows(testCatalog, "", results, "")
	require.Len(t, rows, 3)

	assert.True(t, rows[0].HasResult)
	assert.Equal(t, "✅", rows[0].Icon())
	assert.Equal(t, "0.50s", rows[0].Duration())
	assert.Equal(t, report.NotExecuted, rows[0].Message())

	assert.False(t, rows[1].HasResult)
	assert.Equal(t, "📄", rows[1].Icon())
	assert.Equal(t, report.NotExecuted, rows[1].Message())
	assert.Equal(t, report.NotRun, rows[1].Duration())

	assert.Equal(t, "❌", rows[2].Icon())
	assert.Equal(t, "no hits", rows[2].Message())
	assert.Equal(t, report.NotRun, rows[2].Duration())
}

func TestBuildRowsBySuiteAndQuery(t *testing.T) {
	rows := buildRows(testCatalog, "auth", nil, "")
	require.Len(t, rows, 2)
	assert.Equal(t, "Login", rows[0].Test.Name)
	assert.Equal(t, "Signup", rows[1].Test.Name)

	rows = buildRows(testCatalog, "", nil, "SIGN")
	require.Len(t, rows, 1)
	assert.Equal(t, "Signup", rows[0].Test.Name)

	// Methods are searched too.
	rows = buildRows(testCatalog, "", nil, "test_sea")
	require.Len(t, rows, 1)
	assert.Equal(t, "Search", rows[0].Test.Name)

	assert.Empty(t, buildRows(testCatalog, "payments", nil, ""))
	assert.NotNil(t, buildRows(api.Catalog{}, "", nil, ""))
}

func TestResultFilter(t *testing.T) {
	assert.Equal(t, FilterPass, FilterAll.Next())
	assert.Equal(t, FilterFail, FilterPass.Next())
	assert.Equal(t, FilterError, FilterFail.Next())
	assert.Equal(t, FilterAll, FilterError.Next())

	results := []api.TestResult{
		{TestName: "a", Status: api.StatusPass},
		{TestName: "b", Status: api.StatusFail},
		{TestName: "c", Status: api.StatusError},
		{TestName: "d", Status: "skipped"},
	}

	assert.Len(t, filterResults(results, FilterAll), 4)
	assert.Equal(t, []api.TestResult{results[0]}, filterResults(results, FilterPass))
	assert.Equal(t, []api.TestResult{results[1]}, filterResults(results, FilterFail))
	assert.Equal(t, []api.TestResult{results[2]}, filterResults(results, FilterError))
	assert.Equal(t, "error", FilterError.String())
}

func TestHighlightMatch(t *testing.T) {
	assert.Equal(t, "Login", highlightMatch("Login", ""))
	assert.Equal(t, "Login", highlightMatch("Login", "zzz"))
	assert.Contains(t, highlightMatch("Login", "gin"), "Lo")
}
