package input

import "strings"

// KeyEvent is a single key transition delivered by the host.
type KeyEvent struct {
	Key     string
	Pressed bool
}

// Aggregator folds key events into an ActionState through a binding table.
// It is owned by the host's single event loop; handlers and frames never
// run concurrently, so it carries no locks.
type Aggregator struct {
	bindings Bindings
	state    ActionState
	down     map[string]bool
	paused   bool
}

// NewAggregator creates an aggregator with every action released.
func NewAggregator(b Bindings) *Aggregator {
	return &Aggregator{
		bindings: b,
		down:     make(map[string]bool),
	}
}

// OnKeyEvent applies one key transition and returns the actions it touched.
// Unknown keys are ignored. The pause flag flips only on the down-edge of a
// pause key; repeated presses of a key already held don't toggle it again.
func (g *Aggregator) OnKeyEvent(ev KeyEvent) []Action {
	k := strings.ToLower(ev.Key)
	wasDown := g.down[k]
	if ev.Pressed {
		g.down[k] = true
	} else {
		delete(g.down, k)
	}

	matched := g.bindings.Lookup(k)
	for _, a := range matched {
		g.state.set(a, ev.Pressed)
		if a == ActionPause && ev.Pressed && !wasDown {
			g.paused = !g.paused
		}
	}
	return matched
}

// State returns a snapshot of the current action state.
func (g *Aggregator) State() ActionState {
	return g.state
}

// Paused reports the pause flag.
func (g *Aggregator) Paused() bool {
	return g.paused
}

// SetPaused forces the pause flag, e.g. when the host loses focus.
func (g *Aggregator) SetPaused(paused bool) {
	g.paused = paused
}

// ReleaseAll clears every held key and action without touching the pause flag.
// Hosts call it when they can no longer observe key releases.
func (g *Aggregator) ReleaseAll() {
	g.state = ActionState{}
	clear(g.down)
}

// Bindings returns the table this aggregator resolves keys with.
func (g *Aggregator) Bindings() Bindings {
	return g.bindings
}
