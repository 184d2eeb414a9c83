package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesspatton/lazyremote/api"
)

func dur(v float64) *float64 { return &v }

func TestReconcileIsIdempotent(t *testing.T) {
	status := api.RunStatus{
		Running:    false,
		HasResults: true,
		Results: []api.TestResult{
			{TestName: "test_login", Status: api.StatusPass, Duration: dur(1.2)},
			{TestName: "test_signup", Status: api.StatusFail, Message: "expected 200"},
		},
	}

	st := NewRunState()
	first := Reconcile(&st, status)
	afterFirst := append([]api.TestResult(nil), st.Results...)
	second := Reconcile(&st, status)

	assert.Equal(t, afterFirst, st.Results)
	assert.Equal(t, first.Aggregate, second.Aggregate)
	assert.Equal(t, Aggregate{Total: 2, Passed: 1, Failed: 1}, second.Aggregate)
}

func TestReconcileReplacesResults(t *testing.T) {
	st := NewRunState()
	st.Results = []api.TestResult{
		{TestName: "test_login", Status: api.StatusFail},
		{TestName: "test_search", Status: api.StatusPass},
	}

	Reconcile(&st, api.RunStatus{
		HasResults: true,
		Results:    []api.TestResult{{TestName: "test_login", Status: api.StatusPass}},
	})

	assert.Equal(t, []api.TestResult{{TestName: "test_login", Status: api.StatusPass}}, st.Results)
}

func TestReconcileDoesNotAliasPayload(t *testing.T) {
	payload := []api.TestResult{{TestName: "test_login", Status: api.StatusPass}}
	st := NewRunState()
	Reconcile(&st, api.RunStatus{HasResults: true, Results: payload})

	payload[0].Status = api.StatusError
	assert.Equal(t, api.StatusPass, st.Results[0].Status)
}

func TestReconcileAbsentVersusEmptyResults(t *testing.T) {
	prior := []api.TestResult{{TestName: "test_login", Status: api.StatusPass}}

	st := RunState{Running: true, Results: prior}
	out := Reconcile(&st, api.RunStatus{Running: true})
	assert.False(t, out.ResultsUpdated)
	assert.Equal(t, prior, st.Results)

	out = Reconcile(&st, api.RunStatus{Running: true, HasResults: true, Results: []api.TestResult{}})
	assert.True(t, out.ResultsUpdated)
	assert.Empty(t, st.Results)
	assert.NotNil(t, st.Results)
}

func TestReconcileProgressLabel(t *testing.T) {
	st := RunState{Running: true, CurrentTestLabel: "auth"}

	out := Reconcile(&st, api.RunStatus{Running: true})
	assert.Empty(t, out.Progress)
	assert.Equal(t, "auth", st.CurrentTestLabel)

	out = Reconcile(&st, api.RunStatus{Running: true, CurrentTest: "Signup"})
	assert.Equal(t, "Signup", out.Progress)
	assert.Equal(t, "Signup", st.CurrentTestLabel)

	Reconcile(&st, api.RunStatus{Running: false, CurrentTest: "Signup"})
	assert.Empty(t, st.CurrentTestLabel)
}

func TestReconcileCompletionFiresOnce(t *testing.T) {
	st := RunState{Running: true}
	done := api.RunStatus{
		HasResults: true,
		Results: []api.TestResult{
			{TestName: "test_a", Status: api.StatusPass},
			{TestName: "test_b", Status: api.StatusError},
		},
	}

	out := Reconcile(&st, api.RunStatus{Running: true})
	assert.False(t, out.Completed)
	assert.Nil(t, out.Summary)

	out = Reconcile(&st, done)
	require.True(t, out.Completed)
	require.NotNil(t, out.Summary)
	assert.True(t, out.Summary.Failing())
	assert.Equal(t, "Done: 1 passed, 0 failed, 1 errors", out.Summary.String())

	out = Reconcile(&st, done)
	assert.False(t, out.Completed)
	assert.Nil(t, out.Summary)
}

func TestSummarizeCountsAddUp(t *testing.T) {
	statuses := []api.TestStatus{
		api.StatusPass, api.StatusFail, api.StatusError, api.StatusRunning, api.StatusPending, "skipped", "",
	}

	for n := 0; n < 40; n++ {
		results := make([]api.TestResult, n)
		for i := range results {
			results[i] = api.TestResult{
				TestName: fmt.Sprintf("test_%d", i),
				Status:   statuses[(i*7+n)%len(statuses)],
			}
		}

		agg := Summarize(results)
		assert.Equal(t, n, agg.Total)
		assert.Equal(t, agg.Total, agg.Passed+agg.Failed+agg.Errors+agg.Other)
	}
}

func TestSummarize(t *testing.T) {
	agg := Summarize([]api.TestResult{
		{Status: api.StatusPass},
		{Status: api.StatusPass},
		{Status: api.StatusFail},
		{Status: "skipped"},
	})
	assert.Equal(t, Aggregate{Total: 4, Passed: 2, Failed: 1, Other: 1}, agg)
	assert.True(t, agg.Failing())

	assert.Equal(t, Aggregate{}, Summarize(nil))
	assert.False(t, Summarize(nil).Failing())
}

func TestMatchResult(t *testing.T) {
	results := []api.TestResult{
		{TestName: "tests/test_login.py::TestLogin::test_login_ok", Status: api.StatusPass},
		{TestName: "test_login", Status: api.StatusFail},
		{TestName: "", Status: api.StatusError},
		{TestName: "TEST_SIGNUP", Status: api.StatusError},
	}

	tests := []struct {
		method string
		want   api.TestStatus
		found  bool
	}{
		{"test_login", api.StatusPass, true},
		{"test_login_ok", api.StatusPass, true},
		{"test_signup", api.StatusError, true},
		{"test_search", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			got, ok := MatchResult(results, tt.method)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got.Status)
		})
	}
}
