package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/jesspatton/lazyremote/engine"
)

// Pane represents a distinct section of the UI.
type Pane int

const (
	// PaneTests is the test list pane.
	PaneTests Pane = iota
	// PaneResults is the results pane.
	PaneResults
)

// noticeTTL is how long a notice stays in the footer.
const noticeTTL = 3 * time.Second

type notice struct {
	id    int
	text  string
	isErr bool
}

type noticeExpiredMsg struct{ id int }

// Model represents the application state for the Bubbletea program.
type Model struct {
	// UI State
	activePane Pane
	width      int
	height     int
	ready      bool
	showHelp   bool
	cursor     int
	viewport   viewport.Model
	spinner    spinner.Model

	// Tab State
	tabs      []string
	activeTab int
	rows      []TestRow
	filter    ResultFilter

	// Search State
	searchMode  bool
	searchFocus bool
	searchInput textinput.Model

	notice    *notice
	noticeSeq int

	// Components
	keys KeyMap
	help help.Model

	server string
	engine *engine.Engine
}

// NewModel creates and initializes a new Model driving e. server is only
// shown in the header.
func NewModel(e *engine.Engine, server string) Model {
	h := help.New()
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#909090", Dark: "#A0A0A0"})
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B0B0B0", Dark: "#808080"})
	h.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#606060"})
	h.Styles.FullKey = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#909090", Dark: "#A0A0A0"})
	h.Styles.FullDesc = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B0B0B0", Dark: "#808080"})
	h.Styles.FullSeparator = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#606060"})

	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.Prompt = "/"
	ti.CharLimit = 156
	ti.Width = 20

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = runningStyle

	m := Model{
		activePane:  PaneTests,
		spinner:     sp,
		keys:        NewKeyMap(),
		help:        h,
		searchInput: ti,
		server:      server,
		engine:      e,
	}
	m.refresh()
	return m
}

// Init initializes the Bubbletea program.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.engine.Init(),
		m.spinner.Tick,
	)
}

// Update handles incoming messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case noticeExpiredMsg:
		if m.notice != nil && m.notice.id == msg.id {
			m.notice = nil
		}
		return m, nil
	}

	cmds := []tea.Cmd{m.engine.Update(msg)}

	switch msg := msg.(type) {
	case engine.CatalogLoadedMsg:
		m.refresh()

	case engine.CatalogFailedMsg:
		m.refresh()
		cmds = append(cmds, m.flash(fmt.Sprintf("Failed to load tests: %v (R to retry)", msg.Err), true))

	case engine.DispatchedMsg:
		cmds = append(cmds, m.flash("Started "+msg.Dispatch.Label(), false))

	case engine.DispatchFailedMsg:
		m.refresh()
		cmds = append(cmds, m.flash(msg.Err.Error(), true))

	case engine.ReconciledMsg:
		m.refresh()
		if msg.Outcome.Completed {
			cmds = append(cmds, m.flash(msg.Outcome.Summary.String(), msg.Outcome.Summary.Failing()))
		}

	case engine.AttachedMsg:
		m.refresh()
		cmds = append(cmds, m.flash("Attached to run in progress", false))
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if c, ok := m.engine.Pending(); ok {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			cmd, err := m.engine.Confirm(c.Token)
			if err != nil {
				return m, m.flash(err.Error(), true)
			}
			m.refresh()
			if c.Kind == engine.ConfirmClear {
				return m, m.flash("Results cleared", false)
			}
			return m, cmd
		case key.Matches(msg, m.keys.Cancel):
			m.engine.Cancel(c.Token)
		}
		return m, nil
	}

	if m.searchMode {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.engine.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		if m.activePane == PaneTests {
			m.activePane = PaneResults
		} else {
			m.activePane = PaneTests
		}
		return m, nil
	case key.Matches(msg, m.keys.Filter):
		m.filter = m.filter.Next()
		m.refresh()
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.engine.LoadCatalog()
	case key.Matches(msg, m.keys.RunAll):
		_, err := m.engine.RequestAll()
		return m, m.flashErr(err)
	case key.Matches(msg, m.keys.Clear):
		_, err := m.engine.RequestClear()
		return m, m.flashErr(err)
	}

	if m.activePane == PaneResults {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchFocus = true
		return m, m.searchInput.Focus()
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.NextTab):
		m.activeTab = (m.activeTab + 1) % len(m.tabs)
		m.cursor = 0
		m.refresh()
	case key.Matches(msg, m.keys.PrevTab):
		m.activeTab = (m.activeTab - 1 + len(m.tabs)) % len(m.tabs)
		m.cursor = 0
		m.refresh()
	case key.Matches(msg, m.keys.Enter):
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		cmd, err := m.engine.RunOne(row.Test)
		if err != nil {
			return m, m.flashErr(err)
		}
		return m, cmd
	case key.Matches(msg, m.keys.RunSuite):
		suite := m.currentSuite()
		if suite == "" {
			return m, m.flash("No suite selected", true)
		}
		_, err := m.engine.RequestSuite(suite)
		return m, m.flashErr(err)
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchFocus {
		switch {
		case key.Matches(msg, m.keys.ExitSearch):
			m.exitSearch()
			return m, nil
		case key.Matches(msg, m.keys.Enter):
			// Keep the filter, navigate the matches.
			m.searchFocus = false
			m.searchInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		m.cursor = 0
		m.refresh()
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.ExitSearch):
		m.exitSearch()
	case key.Matches(msg, m.keys.Search):
		m.searchFocus = true
		return m, m.searchInput.Focus()
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Enter):
		row, ok := m.selected()
		m.exitSearch()
		if !ok {
			return m, nil
		}
		// Keep the cursor on the chosen test in the unfiltered list.
		for i, r := range m.rows {
			if r.Test == row.Test {
				m.cursor = i
				break
			}
		}
		cmd, err := m.engine.RunOne(row.Test)
		if err != nil {
			return m, m.flashErr(err)
		}
		return m, cmd
	}
	return m, nil
}

func (m *Model) exitSearch() {
	m.searchMode = false
	m.searchFocus = false
	m.searchInput.Blur()
	m.searchInput.Reset()
	m.refresh()
}

// flash shows text in the footer until noticeTTL passes or another notice
// replaces it.
func (m *Model) flash(text string, isErr bool) tea.Cmd {
	m.noticeSeq++
	id := m.noticeSeq
	m.notice = &notice{id: id, text: text, isErr: isErr}
	if isErr {
		log.Debug().Str("notice", text).Msg("Error shown")
	}
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

func (m *Model) flashErr(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	if errors.Is(err, engine.ErrEmptyCatalog) && m.engine.Catalog().Err() != nil {
		return m.flash("No tests loaded, press R to retry", true)
	}
	return m.flash(err.Error(), true)
}

// refresh rebuilds everything derived from the engine state.
func (m *Model) refresh() {
	m.tabs = suiteTabs(m.engine.Catalog().Catalog())
	if m.activeTab >= len(m.tabs) {
		m.activeTab = 0
	}

	query := ""
	if m.searchMode {
		query = m.searchInput.Value()
	}
	m.rows = buildRows(m.engine.Catalog().Catalog(), tabSuite(m.tabs, m.activeTab), m.engine.State.Results, query)
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}

	if m.ready {
		m.viewport.SetContent(m.renderResults(m.viewport.Width))
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width

	// Two panes side by side, each with border and padding.
	paneWidth := (m.width / 2) - 4
	// Header, footer and borders.
	viewportHeight := m.height - 8

	if !m.ready {
		m.viewport = viewport.New(paneWidth, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = paneWidth
		m.viewport.Height = viewportHeight
	}
	m.refresh()
}

func (m Model) selected() (TestRow, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return TestRow{}, false
	}
	return m.rows[m.cursor], true
}

// currentSuite is the active tab's suite, or the selected test's suite on
// the all tab.
func (m Model) currentSuite() string {
	if suite := tabSuite(m.tabs, m.activeTab); suite != "" {
		return suite
	}
	if row, ok := m.selected(); ok {
		return row.Test.Suite
	}
	return ""
}

// View renders the UI based on the current state.
func (m Model) View() string {
	if m.showHelp {
		return m.renderHelp()
	}

	if m.width == 0 {
		return "Loading..."
	}

	if c, ok := m.engine.Pending(); ok {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, renderConfirm(c))
	}

	paneWidth := (m.width / 2) - 2
	paneHeight := m.height - 5

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderTests(paneWidth, paneHeight),
		m.renderResultsPane(paneWidth, paneHeight),
	)

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), panes, m.renderFooter())
}
