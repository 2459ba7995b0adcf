package input

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionNames(t *testing.T) {
	for _, a := range Actions() {
		parsed, ok := ParseAction(a.String())
		require.True(t, ok, "action %d should parse back", a)
		assert.Equal(t, a, parsed)
	}

	_, ok := ParseAction("jump")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Action(99).String())
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	b := DefaultBindings()

	assert.Equal(t, []Action{ActionLeft}, b.Lookup("A"))
	assert.Equal(t, []Action{ActionLeft}, b.Lookup("left"))
	assert.Equal(t, []Action{ActionPause}, b.Lookup("P"))
	assert.Empty(t, b.Lookup("f12"))
}

func TestCollidingKeysDriveBothActions(t *testing.T) {
	b := NewBindings(map[Action][]string{
		ActionFire: {"space"},
		ActionHorn: {"SPACE", "h"},
	})
	g := NewAggregator(b)

	matched := g.OnKeyEvent(KeyEvent{Key: "space", Pressed: true})
	assert.ElementsMatch(t, []Action{ActionFire, ActionHorn}, matched)

	st := g.State()
	assert.True(t, st.Held(ActionFire))
	assert.True(t, st.Held(ActionHorn))
	assert.Equal(t, map[string][]Action{"space": {ActionFire, ActionHorn}}, b.Collisions())
}

func TestUnknownKeyIsIgnored(t *testing.T) {
	g := NewAggregator(DefaultBindings())

	matched := g.OnKeyEvent(KeyEvent{Key: "f9", Pressed: true})

	assert.Empty(t, matched)
	assert.False(t, g.State().Any())
	assert.False(t, g.Paused())
}

func TestStateReflectsMostRecentEvent(t *testing.T) {
	b := DefaultBindings()
	rng := rand.New(rand.NewSource(7))
	keys := b.Keys()

	g := NewAggregator(b)
	want := make(map[Action]bool)

	for range 2000 {
		k := keys[rng.Intn(len(keys))]
		pressed := rng.Intn(2) == 0
		g.OnKeyEvent(KeyEvent{Key: k, Pressed: pressed})
		for _, a := range b.Lookup(k) {
			want[a] = pressed
		}

		st := g.State()
		for _, a := range Actions() {
			if st.Held(a) != want[a] {
				t.Fatalf("after %q pressed=%v: %s held=%v, want %v", k, pressed, a, st.Held(a), want[a])
			}
		}
	}
}

func TestPauseTogglesOnDownEdgeOnly(t *testing.T) {
	g := NewAggregator(DefaultBindings())

	g.OnKeyEvent(KeyEvent{Key: "p", Pressed: true})
	require.True(t, g.Paused())

	// Auto-repeat keeps delivering presses while held.
	for range 10 {
		g.OnKeyEvent(KeyEvent{Key: "p", Pressed: true})
	}
	assert.True(t, g.Paused(), "holding pause must not retoggle")

	g.OnKeyEvent(KeyEvent{Key: "p", Pressed: false})
	assert.True(t, g.Paused(), "release must not toggle")

	g.OnKeyEvent(KeyEvent{Key: "P", Pressed: true})
	assert.False(t, g.Paused())
}

func TestPauseAliasesHaveIndependentEdges(t *testing.T) {
	g := NewAggregator(DefaultBindings())

	g.OnKeyEvent(KeyEvent{Key: "p", Pressed: true})
	g.OnKeyEvent(KeyEvent{Key: "pause", Pressed: true})

	assert.False(t, g.Paused(), "a second pause key going down is a new edge")
}

func TestReleaseAllKeepsPause(t *testing.T) {
	g := NewAggregator(DefaultBindings())
	g.OnKeyEvent(KeyEvent{Key: "w", Pressed: true})
	g.OnKeyEvent(KeyEvent{Key: "p", Pressed: true})

	g.ReleaseAll()

	assert.False(t, g.State().Any())
	assert.True(t, g.Paused())

	// The pause key is considered up again, so the next press is an edge.
	g.OnKeyEvent(KeyEvent{Key: "p", Pressed: true})
	assert.False(t, g.Paused())
}

func TestActionStateString(t *testing.T) {
	var st ActionState
	st.set(ActionLeft, true)
	st.set(ActionFire, true)

	assert.Equal(t, "Input { left fire }", st.String())
	assert.Equal(t, -1, st.Axis())
}

func TestHoldTracker(t *testing.T) {
	start := time.Unix(100, 0)
	h := NewHoldTracker(100 * time.Millisecond)

	ev, ok := h.Press("W", start)
	require.True(t, ok)
	assert.Equal(t, KeyEvent{Key: "w", Pressed: true}, ev)

	_, ok = h.Press("w", start.Add(50*time.Millisecond))
	assert.False(t, ok, "repeat within the window is not a new press")

	assert.Empty(t, h.Expire(start.Add(120*time.Millisecond)))

	released := h.Expire(start.Add(150 * time.Millisecond))
	assert.Equal(t, []KeyEvent{{Key: "w"}}, released)
	assert.Zero(t, h.Held())
}

func TestHoldTrackerReleaseAll(t *testing.T) {
	now := time.Unix(0, 0)
	h := NewHoldTracker(0)
	h.Press("d", now)
	h.Press("a", now)

	assert.Equal(t, []KeyEvent{{Key: "a"}, {Key: "d"}}, h.ReleaseAll())
	assert.Zero(t, h.Held())
}
