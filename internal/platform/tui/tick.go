// Package tui is the Bubble Tea host: it runs the startup pipeline, feeds
// key events to the input aggregator and drives the frame loop with ticks.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/recwars/internal/driver"
)

// DefaultFrameRate is the refresh rate the host asks ticks for.
const DefaultFrameRate = 60

// FrameMsg is one scheduled frame callback firing.
type FrameMsg struct {
	Handle driver.Handle
	Time   time.Time
}

// tickScheduler implements driver.Scheduler on top of tea.Tick.
// Schedule only queues a handle; the model turns the queue into commands
// after each Update so the tick is started by the event loop.
type tickScheduler struct {
	interval  time.Duration
	last      driver.Handle
	queued    []driver.Handle
	cancelled map[driver.Handle]struct{}
}

func newTickScheduler(rate int) *tickScheduler {
	if rate <= 0 {
		rate = DefaultFrameRate
	}
	return &tickScheduler{
		interval:  time.Second / time.Duration(rate),
		cancelled: make(map[driver.Handle]struct{}),
	}
}

// Schedule implements driver.Scheduler.
func (s *tickScheduler) Schedule() driver.Handle {
	s.last++
	s.queued = append(s.queued, s.last)
	return s.last
}

// Cancel implements driver.Scheduler. A queued handle is dropped before it
// becomes a tick; an in-flight one is dropped when it fires.
func (s *tickScheduler) Cancel(h driver.Handle) {
	for i, q := range s.queued {
		if q == h {
			s.queued = append(s.queued[:i], s.queued[i+1:]...)
			return
		}
	}
	if h != 0 && h <= s.last {
		s.cancelled[h] = struct{}{}
	}
}

// Fire reports whether a tick should reach the driver.
func (s *tickScheduler) Fire(msg FrameMsg) bool {
	if _, ok := s.cancelled[msg.Handle]; ok {
		delete(s.cancelled, msg.Handle)
		return false
	}
	return true
}

// Cmd drains the queue into tick commands.
func (s *tickScheduler) Cmd() tea.Cmd {
	if len(s.queued) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(s.queued))
	for _, h := range s.queued {
		cmds = append(cmds, tickCmd(s.interval, h))
	}
	s.queued = s.queued[:0]
	return tea.Batch(cmds...)
}

// tickCmd returns a Bubble Tea command that fires one frame after interval.
func tickCmd(interval time.Duration, h driver.Handle) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg{Handle: h, Time: t}
	})
}

// wallMillis converts a tick time to the millisecond clock the driver reads.
func wallMillis(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Millisecond)
}
