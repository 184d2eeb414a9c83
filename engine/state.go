package engine

import (
	"fmt"
	"strings"

	"github.com/jesspatton/lazyremote/api"
)

// RunState mirrors what the server reported at the last successful poll.
// It is owned by the Engine and only changed by dispatch and reconciliation.
type RunState struct {
	Running          bool
	CurrentTestLabel string
	Results          []api.TestResult
}

// NewRunState returns the state at process start: idle, no results.
func NewRunState() RunState {
	return RunState{
		Results: []api.TestResult{},
	}
}

// Aggregate holds counts derived from a result set.
// Other counts everything that is not pass, fail or error.
type Aggregate struct {
	Total  int
	Passed int
	Failed int
	Errors int
	Other  int
}

// Summarize counts results by status.
func Summarize(results []api.TestResult) Aggregate {
	agg := Aggregate{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case api.StatusPass:
			agg.Passed++
		case api.StatusFail:
			agg.Failed++
		case api.StatusError:
			agg.Errors++
		default:
			agg.Other++
		}
	}
	return agg
}

// Failing reports whether any result failed or errored.
func (a Aggregate) Failing() bool {
	return a.Failed > 0 || a.Errors > 0
}

func (a Aggregate) String() string {
	return fmt.Sprintf("Done: %d passed, %d failed, %d errors", a.Passed, a.Failed, a.Errors)
}

// MatchResult returns the first result whose test name contains method,
// ignoring case. Two tests whose methods are substrings of one another can
// match the same result.
func MatchResult(results []api.TestResult, method string) (api.TestResult, bool) {
	if method == "" {
		return api.TestResult{}, false
	}
	needle := strings.ToLower(method)
	for _, r := range results {
		if r.TestName != "" && strings.Contains(strings.ToLower(r.TestName), needle) {
			return r, true
		}
	}
	return api.TestResult{}, false
}
