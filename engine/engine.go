package engine

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/jesspatton/lazyremote/api"
	"github.com/jesspatton/lazyremote/filesystem"
)

// Service is the remote test server. *api.Client implements it.
type Service interface {
	Catalog(ctx context.Context) (api.Catalog, error)
	RunTest(ctx context.Context, tc api.TestCase) error
	RunSuite(ctx context.Context, suite string) error
	RunAll(ctx context.Context) error
	Status(ctx context.Context) (api.RunStatus, error)
}

// Options tune an Engine.
type Options struct {
	// PollInterval defaults to DefaultPollInterval.
	PollInterval time.Duration
	// WatchPaths, when set, reload the catalog on file changes under them.
	WatchPaths []string
	// NoProbe skips the startup status probe.
	NoProbe bool
}

// Messages

// CatalogLoadedMsg carries a freshly fetched catalog.
type CatalogLoadedMsg struct {
	gen     uint64
	Catalog api.Catalog
}

// CatalogFailedMsg reports a failed catalog fetch.
type CatalogFailedMsg struct {
	gen uint64
	Err error
}

// ReconciledMsg is emitted after a poll result was applied to the state.
type ReconciledMsg struct {
	Outcome Outcome
}

// AttachedMsg is emitted when the startup probe found a run already in progress.
type AttachedMsg struct {
	Outcome Outcome
}

// PollFailedMsg is emitted when a status poll failed. Polling continues.
type PollFailedMsg struct {
	Err error
}

// WatcherReadyMsg carries the initialized watcher.
type WatcherReadyMsg struct {
	watcher *filesystem.Watcher
}

// WatcherMsg indicates a change under one of the watch paths.
type WatcherMsg string

type statusMsg struct {
	gen    uint64
	probe  bool
	status api.RunStatus
	err    error
}

// Engine owns the catalog, the run state and the poller. All of its methods
// must be called from the bubbletea update loop.
type Engine struct {
	State RunState

	ctx        context.Context
	service    Service
	catalog    CatalogStore
	catalogGen uint64
	poller     poller
	pending    *Confirmation

	pollFailures int
	probe        bool
	watchPaths   []string
	watcher      *filesystem.Watcher
}

// New creates an Engine talking to svc. ctx bounds every request it makes.
func New(ctx context.Context, svc Service, opts Options) *Engine {
	return &Engine{
		State:      NewRunState(),
		ctx:        ctx,
		service:    svc,
		catalog:    newCatalogStore(),
		poller:     newPoller(opts.PollInterval),
		probe:      !opts.NoProbe,
		watchPaths: opts.WatchPaths,
	}
}

// Init loads the catalog, probes for a run in progress and starts the watcher.
func (e *Engine) Init() tea.Cmd {
	cmds := []tea.Cmd{e.LoadCatalog()}
	if e.probe {
		cmds = append(cmds, e.fetchStatus(0, true))
	}
	if len(e.watchPaths) > 0 {
		cmds = append(cmds, e.startWatcher)
	}
	return tea.Batch(cmds...)
}

// Update handles incoming messages and updates the engine state.
func (e *Engine) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case CatalogLoadedMsg:
		if msg.gen != e.catalogGen {
			return nil
		}
		e.catalog.replace(msg.Catalog)
		log.Info().Int("tests", msg.Catalog.Len()).Int("suites", len(msg.Catalog.SuiteNames())).Msg("Catalog loaded")
		return nil

	case CatalogFailedMsg:
		if msg.gen != e.catalogGen {
			return nil
		}
		e.catalog.fail(msg.Err)
		log.Error().Err(msg.Err).Msg("Catalog load failed")
		return nil

	case DispatchedMsg:
		return e.handleDispatched(msg)

	case DispatchFailedMsg:
		return e.handleDispatchFailed(msg)

	case pollTickMsg:
		if !e.poller.current(msg.gen) {
			return nil
		}
		return e.fetchStatus(msg.gen, false)

	case statusMsg:
		if msg.probe {
			return e.handleProbe(msg)
		}
		return e.handleStatus(msg)

	case WatcherReadyMsg:
		e.watcher = msg.watcher
		return waitForWatcherEvents(msg.watcher)

	case WatcherMsg:
		log.Debug().Str("path", string(msg)).Msg("Watched path changed, reloading catalog")
		return tea.Batch(e.LoadCatalog(), waitForWatcherEvents(e.watcher))
	}

	return nil
}

func (e *Engine) handleStatus(msg statusMsg) tea.Cmd {
	// A response for a cancelled timer. Applying it could flip a finished
	// run back to running.
	if !e.poller.current(msg.gen) {
		log.Debug().Uint64("gen", msg.gen).Msg("Dropping stale status response")
		return nil
	}

	if msg.err != nil {
		e.pollFailures++
		log.Warn().Err(msg.err).Int("failures", e.pollFailures).Msg("Status poll failed")
		return tea.Batch(emit(PollFailedMsg{Err: msg.err}), e.poller.schedule())
	}

	out := Reconcile(&e.State, msg.status)
	if !e.State.Running {
		e.poller.disarm()
	}
	if out.Completed {
		log.Info().
			Int("passed", out.Summary.Passed).
			Int("failed", out.Summary.Failed).
			Int("errors", out.Summary.Errors).
			Msg("Run completed")
	}
	return tea.Batch(emit(ReconciledMsg{Outcome: out}), e.poller.schedule())
}

func (e *Engine) handleProbe(msg statusMsg) tea.Cmd {
	if msg.err != nil {
		log.Debug().Err(msg.err).Msg("Startup status probe failed")
		return nil
	}
	// Only adopt when nothing was dispatched in the meantime.
	if !msg.status.Running || e.State.Running || e.poller.armed {
		return nil
	}
	out := Reconcile(&e.State, msg.status)
	log.Info().Str("current", e.State.CurrentTestLabel).Msg("Attached to run in progress")
	return tea.Batch(emit(AttachedMsg{Outcome: out}), e.poller.arm())
}

// Commands

// LoadCatalog fetches the catalog. A newer load supersedes an older one
// still in flight.
func (e *Engine) LoadCatalog() tea.Cmd {
	e.catalogGen++
	e.catalog.loading = true
	gen, ctx, svc := e.catalogGen, e.ctx, e.service
	return func() tea.Msg {
		c, err := svc.Catalog(ctx)
		if err != nil {
			return CatalogFailedMsg{gen: gen, Err: err}
		}
		return CatalogLoadedMsg{gen: gen, Catalog: c}
	}
}

func (e *Engine) fetchStatus(gen uint64, probe bool) tea.Cmd {
	ctx, svc := e.ctx, e.service
	return func() tea.Msg {
		status, err := svc.Status(ctx)
		return statusMsg{gen: gen, probe: probe, status: status, err: err}
	}
}

func (e *Engine) startWatcher() tea.Msg {
	w, err := filesystem.NewWatcher(e.watchPaths...)
	if err != nil {
		log.Error().Err(err).Strs("paths", e.watchPaths).Msg("Could not start watcher")
		return nil
	}
	return WatcherReadyMsg{watcher: w}
}

// waitForWatcherEvents blocks on w only, never on the Engine, so Close can
// run on the update loop while the command is waiting.
func waitForWatcherEvents(w *filesystem.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	events := w.Events
	return func() tea.Msg {
		eventPath, ok := <-events
		if !ok {
			return nil
		}
		return WatcherMsg(eventPath)
	}
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// Close stops the watcher, if any.
func (e *Engine) Close() {
	if e.watcher != nil {
		e.watcher.Close()
		e.watcher = nil
	}
}

// Accessors

// Catalog returns the catalog store.
func (e *Engine) Catalog() *CatalogStore {
	return &e.catalog
}

// ResultFor returns the current result matching tc, if any.
func (e *Engine) ResultFor(tc api.TestCase) (api.TestResult, bool) {
	return MatchResult(e.State.Results, tc.Method)
}

// Aggregate counts the current results.
func (e *Engine) Aggregate() Aggregate {
	return Summarize(e.State.Results)
}

// Polling reports whether the poller is armed.
func (e *Engine) Polling() bool {
	return e.poller.armed
}

// PollFailures returns how many status polls have failed since start.
func (e *Engine) PollFailures() int {
	return e.pollFailures
}
