package engine

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultPollInterval is the status polling period.
const DefaultPollInterval = 2 * time.Second

// pollTickMsg fires when the poll timer of generation gen elapses.
type pollTickMsg struct {
	gen uint64
}

// poller is a single repeating timer expressed as a chain of tea.Tick
// commands. Every arm or disarm starts a new generation; messages tagged
// with an older generation are ignored, which is how a previous timer is
// cancelled.
type poller struct {
	interval time.Duration
	gen      uint64
	armed    bool
}

func newPoller(interval time.Duration) poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return poller{interval: interval}
}

// arm cancels any running timer and schedules the first tick.
func (p *poller) arm() tea.Cmd {
	p.gen++
	p.armed = true
	return p.schedule()
}

func (p *poller) disarm() {
	if !p.armed {
		return
	}
	p.gen++
	p.armed = false
}

// schedule queues the next tick of the current generation. It is only
// called after the previous tick's fetch was handled, so polls never overlap.
func (p *poller) schedule() tea.Cmd {
	if !p.armed {
		return nil
	}
	gen := p.gen
	return tea.Tick(p.interval, func(time.Time) tea.Msg {
		return pollTickMsg{gen: gen}
	})
}

// current reports whether gen belongs to the armed timer.
func (p *poller) current(gen uint64) bool {
	return p.armed && gen == p.gen
}
