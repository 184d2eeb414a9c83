package engine

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jesspatton/lazyremote/api"
)

var (
	// ErrAlreadyRunning is returned when a run is requested while one is in flight.
	ErrAlreadyRunning = errors.New("tests are already running, please wait")
	// ErrEmptyCatalog is returned when running everything with no known tests.
	ErrEmptyCatalog = errors.New("no tests available, refresh the catalog first")
	// ErrUnknownConfirmation is returned for a token that is not pending.
	ErrUnknownConfirmation = errors.New("unknown or expired confirmation")
)

// DispatchKind selects which run endpoint a dispatch uses.
type DispatchKind int

const (
	DispatchTest DispatchKind = iota
	DispatchSuite
	DispatchAll
)

func (k DispatchKind) String() string {
	switch k {
	case DispatchTest:
		return "test"
	case DispatchSuite:
		return "suite"
	case DispatchAll:
		return "all"
	}
	return fmt.Sprintf("DispatchKind(%d)", int(k))
}

// Dispatch describes one run request.
type Dispatch struct {
	Kind  DispatchKind
	Test  api.TestCase // DispatchTest
	Suite string       // DispatchSuite
}

// Label is the progress text shown until the server names a current test.
func (d Dispatch) Label() string {
	switch d.Kind {
	case DispatchTest:
		return d.Test.Name
	case DispatchSuite:
		return d.Suite
	default:
		return "all tests"
	}
}

// DispatchedMsg reports that the server accepted a run.
type DispatchedMsg struct {
	Dispatch Dispatch
}

// DispatchFailedMsg reports that a run request was rejected or never arrived.
type DispatchFailedMsg struct {
	Dispatch Dispatch
	Err      error
}

// guard enforces that at most one run is in flight.
func (e *Engine) guard() error {
	if e.State.Running {
		return ErrAlreadyRunning
	}
	return nil
}

// RunOne starts a single test. Prior results are kept; the server returns
// them along with the new one.
func (e *Engine) RunOne(tc api.TestCase) (tea.Cmd, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	return e.dispatch(Dispatch{Kind: DispatchTest, Test: tc}), nil
}

// RunSuite starts every test in suite without asking for confirmation.
// Interactive callers go through RequestSuite and Confirm instead.
func (e *Engine) RunSuite(suite string) (tea.Cmd, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	return e.dispatch(Dispatch{Kind: DispatchSuite, Suite: suite}), nil
}

// RunAll starts the full catalog without asking for confirmation and clears
// the current results.
func (e *Engine) RunAll() (tea.Cmd, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	if e.catalog.Catalog().Len() == 0 {
		return nil, ErrEmptyCatalog
	}
	return e.dispatch(Dispatch{Kind: DispatchAll}), nil
}

// ClearResults empties the result set. It is refused while a run is in flight.
func (e *Engine) ClearResults() error {
	if err := e.guard(); err != nil {
		return err
	}
	e.State.Results = []api.TestResult{}
	log.Info().Msg("Results cleared")
	return nil
}

func (e *Engine) dispatch(d Dispatch) tea.Cmd {
	e.State.Running = true
	e.State.CurrentTestLabel = d.Label()
	if d.Kind == DispatchAll {
		e.State.Results = []api.TestResult{}
	}

	log.Info().Str("kind", d.Kind.String()).Str("label", d.Label()).Msg("Dispatching run")

	ctx, svc := e.ctx, e.service
	return func() tea.Msg {
		var err error
		switch d.Kind {
		case DispatchTest:
			err = svc.RunTest(ctx, d.Test)
		case DispatchSuite:
			err = svc.RunSuite(ctx, d.Suite)
		case DispatchAll:
			err = svc.RunAll(ctx)
		}
		if err != nil {
			return DispatchFailedMsg{Dispatch: d, Err: err}
		}
		return DispatchedMsg{Dispatch: d}
	}
}

func (e *Engine) handleDispatched(msg DispatchedMsg) tea.Cmd {
	log.Info().Str("kind", msg.Dispatch.Kind.String()).Msg("Run accepted, polling status")
	return e.poller.arm()
}

func (e *Engine) handleDispatchFailed(msg DispatchFailedMsg) tea.Cmd {
	log.Error().Err(msg.Err).Str("kind", msg.Dispatch.Kind.String()).Msg("Run request failed")
	e.State.Running = false
	e.State.CurrentTestLabel = ""
	e.poller.disarm()
	return nil
}

// ConfirmKind identifies an operation waiting for operator confirmation.
type ConfirmKind int

const (
	ConfirmSuite ConfirmKind = iota
	ConfirmAll
	ConfirmClear
)

// Confirmation is a pending, not yet executed operation.
type Confirmation struct {
	Token  string
	Kind   ConfirmKind
	Suite  string
	Prompt string
}

// RequestSuite prepares a suite run. The run starts on Confirm.
func (e *Engine) RequestSuite(suite string) (Confirmation, error) {
	if err := e.guard(); err != nil {
		return Confirmation{}, err
	}
	return e.request(Confirmation{
		Kind:   ConfirmSuite,
		Suite:  suite,
		Prompt: fmt.Sprintf("Run all tests in %s?", suite),
	}), nil
}

// RequestAll prepares a full run. The run starts on Confirm.
func (e *Engine) RequestAll() (Confirmation, error) {
	if err := e.guard(); err != nil {
		return Confirmation{}, err
	}
	n := e.catalog.Catalog().Len()
	if n == 0 {
		return Confirmation{}, ErrEmptyCatalog
	}
	return e.request(Confirmation{
		Kind:   ConfirmAll,
		Prompt: fmt.Sprintf("Run all %d tests? This may take several minutes.", n),
	}), nil
}

// RequestClear prepares clearing the results.
func (e *Engine) RequestClear() (Confirmation, error) {
	if err := e.guard(); err != nil {
		return Confirmation{}, err
	}
	return e.request(Confirmation{
		Kind:   ConfirmClear,
		Prompt: "Clear all results?",
	}), nil
}

// request replaces any pending confirmation with c.
func (e *Engine) request(c Confirmation) Confirmation {
	c.Token = uuid.NewString()
	e.pending = &c
	return c
}

// Pending returns the confirmation waiting for an answer, if any.
func (e *Engine) Pending() (Confirmation, bool) {
	if e.pending == nil {
		return Confirmation{}, false
	}
	return *e.pending, true
}

// Cancel drops the pending confirmation if token matches it.
func (e *Engine) Cancel(token string) {
	if e.pending != nil && e.pending.Token == token {
		e.pending = nil
	}
}

// Confirm executes the pending operation identified by token. Guards are
// checked again since the state may have changed while the prompt was open.
func (e *Engine) Confirm(token string) (tea.Cmd, error) {
	if e.pending == nil || e.pending.Token != token {
		return nil, ErrUnknownConfirmation
	}
	c := *e.pending
	e.pending = nil

	switch c.Kind {
	case ConfirmSuite:
		return e.RunSuite(c.Suite)
	case ConfirmAll:
		return e.RunAll()
	case ConfirmClear:
		return nil, e.ClearResults()
	}
	return nil, ErrUnknownConfirmation
}
