package driver

import "sort"

// Handle identifies one scheduled frame callback. Zero is never issued.
type Handle uint64

// Scheduler requests per-refresh frame callbacks from the host.
// When a scheduled callback fires, the host calls Driver.Frame with its handle.
type Scheduler interface {
	Schedule() Handle
	Cancel(h Handle)
}

// ManualScheduler is a Scheduler whose callbacks fire only when asked.
// It backs headless runs and tests.
type ManualScheduler struct {
	last      Handle
	pending   map[Handle]struct{}
	scheduled int
	cancelled []Handle
}

// NewManualScheduler creates an empty scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{pending: make(map[Handle]struct{})}
}

// Schedule implements Scheduler.
func (m *ManualScheduler) Schedule() Handle {
	m.last++
	m.scheduled++
	m.pending[m.last] = struct{}{}
	return m.last
}

// Cancel implements Scheduler.
func (m *ManualScheduler) Cancel(h Handle) {
	if _, ok := m.pending[h]; !ok {
		return
	}
	delete(m.pending, h)
	m.cancelled = append(m.cancelled, h)
}

// Next removes and returns the oldest pending handle.
func (m *ManualScheduler) Next() (Handle, bool) {
	p := m.Pending()
	if len(p) == 0 {
		return 0, false
	}
	delete(m.pending, p[0])
	return p[0], true
}

// Pending returns the handles that are scheduled and not yet fired or cancelled.
func (m *ManualScheduler) Pending() []Handle {
	out := make([]Handle, 0, len(m.pending))
	for h := range m.pending {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Scheduled returns how many callbacks were ever requested.
func (m *ManualScheduler) Scheduled() int {
	return m.scheduled
}

// Cancelled returns the handles cancelled so far, in order.
func (m *ManualScheduler) Cancelled() []Handle {
	return append([]Handle(nil), m.cancelled...)
}
