package input

import (
	"sort"
	"strings"
	"time"
)

// DefaultHoldWindow covers the initial auto-repeat delay of most terminals,
// so a held key keeps producing presses before its hold expires.
const DefaultHoldWindow = 500 * time.Millisecond

// HoldTracker synthesizes key-up events for hosts that only report presses.
// A key counts as held until no press for it has been seen within the window.
type HoldTracker struct {
	window time.Duration
	last   map[string]time.Time
}

// NewHoldTracker creates a tracker. A non-positive window uses DefaultHoldWindow.
func NewHoldTracker(window time.Duration) *HoldTracker {
	if window <= 0 {
		window = DefaultHoldWindow
	}
	return &HoldTracker{
		window: window,
		last:   make(map[string]time.Time),
	}
}

// Press records a press at now. It returns a down event only when the key
// was not already held; auto-repeat presses just extend the hold.
func (h *HoldTracker) Press(k string, now time.Time) (KeyEvent, bool) {
	k = strings.ToLower(k)
	_, held := h.last[k]
	h.last[k] = now
	if held {
		return KeyEvent{}, false
	}
	return KeyEvent{Key: k, Pressed: true}, true
}

// Expire returns up events for every key whose hold ran out, sorted by key.
func (h *HoldTracker) Expire(now time.Time) []KeyEvent {
	var released []KeyEvent
	for k, at := range h.last {
		if now.Sub(at) >= h.window {
			released = append(released, KeyEvent{Key: k})
			delete(h.last, k)
		}
	}
	sort.Slice(released, func(i, j int) bool { return released[i].Key < released[j].Key })
	return released
}

// ReleaseAll drops every held key and returns the matching up events.
func (h *HoldTracker) ReleaseAll() []KeyEvent {
	released := make([]KeyEvent, 0, len(h.last))
	for k := range h.last {
		released = append(released, KeyEvent{Key: k})
	}
	clear(h.last)
	sort.Slice(released, func(i, j int) bool { return released[i].Key < released[j].Key })
	return released
}

// Held reports how many keys are currently held.
func (h *HoldTracker) Held() int {
	return len(h.last)
}
