// Package exitcodes defines the exit codes of the headless commands.
//
// * Success (0): the command finished and every test passed
// * TestFailure (1): a run finished with failed or errored tests
// * RuntimeErr (2): the server could not be reached, rejected a request,
// or the command was interrupted
package exitcodes

const (
	Success     = 0
	TestFailure = 1
	RuntimeErr  = 2
)
