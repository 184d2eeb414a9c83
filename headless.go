package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/jesspatton/lazyremote/api"
	"github.com/jesspatton/lazyremote/config"
	"github.com/jesspatton/lazyremote/engine"
	"github.com/jesspatton/lazyremote/report"
)

var (
	errRunCancelled = errors.New("run cancelled")
	errInterrupted  = errors.New("interrupted")
)

// runTarget selects what a headless run dispatches.
type runTarget struct {
	Kind   engine.DispatchKind
	Target string // test method or suite name
}

type runOptions struct {
	Yes   bool
	Color bool
	In    io.Reader
	Out   io.Writer
}

// runHeadless loads the catalog, dispatches target and polls until the run
// completes. The final results are written to opts.Out.
func runHeadless(ctx context.Context, cfg *config.Config, target runTarget, opts runOptions) (engine.Aggregate, error) {
	client, err := api.NewClient(cfg.Server, cfg.RequestTimeout)
	if err != nil {
		return engine.Aggregate{}, err
	}

	e := engine.New(ctx, client, engine.Options{PollInterval: cfg.PollInterval, NoProbe: true})
	defer e.Close()

	e.Update(e.LoadCatalog()())
	if err := e.Catalog().Err(); err != nil {
		return engine.Aggregate{}, err
	}

	start, err := startRun(e, target, opts)
	if err != nil {
		return engine.Aggregate{}, err
	}

	m := &runModel{engine: e, start: start}
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return engine.Aggregate{}, errInterrupted
		}
		return engine.Aggregate{}, err
	}
	if m.err != nil {
		return engine.Aggregate{}, m.err
	}

	if err := report.Results(opts.Out, e.State.Results, report.Options{Color: opts.Color}); err != nil {
		return engine.Aggregate{}, err
	}
	summary := e.Aggregate()
	if m.summary != nil {
		summary = *m.summary
	}
	if err := report.Summary(opts.Out, summary); err != nil {
		return engine.Aggregate{}, err
	}
	return summary, nil
}

// startRun resolves target against the catalog and returns the dispatch
// command, asking for confirmation where the dashboard would.
func startRun(e *engine.Engine, target runTarget, opts runOptions) (tea.Cmd, error) {
	switch target.Kind {
	case engine.DispatchTest:
		tc, ok := e.Catalog().Catalog().Find(target.Target)
		if !ok {
			return nil, fmt.Errorf("unknown test %q", target.Target)
		}
		return e.RunOne(tc)
	case engine.DispatchSuite:
		if !hasSuite(e.Catalog().Catalog(), target.Target) {
			log.Warn().Str("suite", target.Target).Msg("Suite is not in the catalog")
		}
		if opts.Yes {
			return e.RunSuite(target.Target)
		}
		c, err := e.RequestSuite(target.Target)
		if err != nil {
			return nil, err
		}
		return confirm(e, c, opts)
	case engine.DispatchAll:
		if opts.Yes {
			return e.RunAll()
		}
		c, err := e.RequestAll()
		if err != nil {
			return nil, err
		}
		return confirm(e, c, opts)
	}
	return nil, fmt.Errorf("unknown run kind %s", target.Kind)
}

func hasSuite(c api.Catalog, suite string) bool {
	for _, name := range c.SuiteNames() {
		if name == suite {
			return true
		}
	}
	return false
}

func confirm(e *engine.Engine, c engine.Confirmation, opts runOptions) (tea.Cmd, error) {
	fmt.Fprintf(opts.Out, "%s [y/N] ", c.Prompt)
	answer, err := bufio.NewReader(opts.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		e.Cancel(c.Token)
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return e.Confirm(c.Token)
	}
	e.Cancel(c.Token)
	return nil, errRunCancelled
}

// runModel drives the engine without a renderer and quits once the run
// has finished or its dispatch failed.
type runModel struct {
	engine   *engine.Engine
	start    tea.Cmd
	progress string
	summary  *engine.Aggregate
	err      error
}

func (m *runModel) Init() tea.Cmd {
	return m.start
}

func (m *runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.engine.Update(msg)

	switch msg := msg.(type) {
	case engine.DispatchFailedMsg:
		m.err = msg.Err
		return m, tea.Quit
	case engine.ReconciledMsg:
		if p := msg.Outcome.Progress; p != "" && p != m.progress {
			m.progress = p
			log.Info().Str("test", p).Msg("Running")
		}
		if msg.Outcome.Completed {
			m.summary = msg.Outcome.Summary
			return m, tea.Quit
		}
	}
	return m, cmd
}

func (m *runModel) View() string {
	return ""
}
