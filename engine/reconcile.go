package engine

import (
	"github.com/jesspatton/lazyremote/api"
)

// Outcome describes what a reconciliation changed.
type Outcome struct {
	// Progress is the server's current test label, empty when none was reported.
	Progress string
	// ResultsUpdated is set when the payload carried a results field, even an empty one.
	ResultsUpdated bool
	Aggregate      Aggregate
	// Completed marks the running to not-running transition that ends a run.
	Completed bool
	// Summary is set together with Completed and counts the final results.
	Summary *Aggregate
}

// Reconcile applies a status poll to st. Results are replaced, never merged,
// so applying the same status twice leaves st unchanged the second time.
func Reconcile(st *RunState, status api.RunStatus) Outcome {
	var out Outcome

	wasRunning := st.Running
	st.Running = status.Running

	if status.CurrentTest != "" {
		out.Progress = status.CurrentTest
		st.CurrentTestLabel = status.CurrentTest
	}
	if !status.Running {
		st.CurrentTestLabel = ""
	}

	if status.HasResults {
		// Copy so the state never aliases the decoded payload.
		results := make([]api.TestResult, len(status.Results))
		copy(results, status.Results)
		st.Results = results
		out.ResultsUpdated = true
	}
	out.Aggregate = Summarize(st.Results)

	if wasRunning && !status.Running {
		out.Completed = true
		summary := out.Aggregate
		out.Summary = &summary
	}
	return out
}
