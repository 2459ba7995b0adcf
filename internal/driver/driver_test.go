package driver

import (
	"bytes"
	"errors"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/recwars/internal/config"
	"github.com/vovakirdan/recwars/internal/input"
)

type update struct {
	t  float64
	in input.ActionState
}

type fakeEngine struct {
	updates   []update
	draws     int
	failAt    int // fail the Nth Update, 1-based; 0 never
	panicAt   int // panic in the Nth Draw, 1-based; 0 never
	failErr   error
	drawCvars *config.Cvars
}

func (e *fakeEngine) Update(t float64, in input.ActionState, _ *config.Cvars) error {
	e.updates = append(e.updates, update{t: t, in: in})
	if e.failAt != 0 && len(e.updates) == e.failAt {
		return e.failErr
	}
	return nil
}

func (e *fakeEngine) Draw(c *config.Cvars) error {
	e.draws++
	e.drawCvars = c
	if e.panicAt != 0 && e.draws == e.panicAt {
		panic("draw exploded")
	}
	return nil
}

func newTestDriver(t *testing.T, eng *fakeEngine) (*Driver, *ManualScheduler, *Session) {
	t.Helper()
	c := config.DefaultCvars()
	s := &Session{
		Cvars:   &c,
		Input:   input.NewAggregator(input.DefaultBindings()),
		Engine:  eng,
		MapPath: "maps/Atrium.map",
		Balance: config.DefaultBalance,
	}
	sched := NewManualScheduler()
	return New(s, sched), sched, s
}

// fire runs the pending frame at wallMillis.
func fire(t *testing.T, d *Driver, sched *ManualScheduler, wallMillis float64) error {
	t.Helper()
	h, ok := sched.Next()
	require.True(t, ok, "no frame pending")
	return d.Frame(h, wallMillis)
}

func TestStartSchedulesFirstFrame(t *testing.T) {
	d, sched, _ := newTestDriver(t, &fakeEngine{})
	assert.Equal(t, StateIdle, d.State())
	assert.Empty(t, sched.Pending())

	require.NoError(t, d.Start())
	assert.Equal(t, StateRunning, d.State())
	assert.Len(t, sched.Pending(), 1)

	assert.ErrorIs(t, d.Start(), ErrNotIdle)
}

func TestFrameRegistersNextBeforeEngine(t *testing.T) {
	eng := &fakeEngine{}
	d, sched, _ := newTestDriver(t, eng)
	require.NoError(t, d.Start())

	for i := range 5 {
		require.NoError(t, fire(t, d, sched, float64(i)*16))
		assert.Len(t, sched.Pending(), 1, "exactly one frame pending after frame %d", i)
	}
	assert.Len(t, eng.updates, 5)
	assert.Equal(t, 5, eng.draws)
	assert.Equal(t, 6, sched.Scheduled())
}

func TestEngineSeesScaledTimeAndInput(t *testing.T) {
	eng := &fakeEngine{}
	d, sched, s := newTestDriver(t, eng)
	require.NoError(t, d.Start())
	s.Cvars.DSpeed = 2

	require.NoError(t, fire(t, d, sched, 1000))
	s.Input.OnKeyEvent(input.KeyEvent{Key: "W", Pressed: true})
	require.NoError(t, fire(t, d, sched, 1500))

	require.Len(t, eng.updates, 2)
	assert.Zero(t, eng.updates[0].t)
	assert.InDelta(t, 1.0, eng.updates[1].t, 1e-9)
	assert.True(t, eng.updates[1].in.Held(input.ActionUp))
	assert.False(t, eng.updates[0].in.Held(input.ActionUp))
	assert.Same(t, s.Cvars, eng.drawCvars)
}

func TestEngineFailureAbortsWithOneCancel(t *testing.T) {
	boom := errors.New("entity index out of range")
	eng := &fakeEngine{failAt: 3, failErr: boom}
	d, sched, _ := newTestDriver(t, eng)
	require.NoError(t, d.Start())

	require.NoError(t, fire(t, d, sched, 0))
	require.NoError(t, fire(t, d, sched, 16))
	err := fire(t, d, sched, 32)

	var fe *FrameError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, uint64(3), fe.Frame)

	assert.Equal(t, StateAborted, d.State())
	assert.Len(t, sched.Cancelled(), 1, "exactly one cancellation")
	assert.Empty(t, sched.Pending(), "nothing scheduled after abort")
	scheduled := sched.Scheduled()
	draws := eng.draws

	// A stale callback firing anyway does nothing.
	assert.NoError(t, d.Frame(sched.Cancelled()[0], 48))
	assert.Equal(t, scheduled, sched.Scheduled())
	assert.Equal(t, draws, eng.draws)
	assert.Equal(t, err, d.Err())
}

func TestEnginePanicAborts(t *testing.T) {
	eng := &fakeEngine{panicAt: 2}
	d, sched, _ := newTestDriver(t, eng)
	require.NoError(t, d.Start())

	require.NoError(t, fire(t, d, sched, 0))
	err := fire(t, d, sched, 16)

	var fe *FrameError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Error(), "draw exploded")
	assert.NotEmpty(t, fe.Stack)
	assert.Equal(t, StateAborted, d.State())
	assert.Len(t, sched.Cancelled(), 1)
	assert.Empty(t, sched.Pending())
}

func TestEarlyFrameIsSkipped(t *testing.T) {
	eng := &fakeEngine{}
	d, sched, s := newTestDriver(t, eng)
	s.Cvars.RMinFrameDelay = 0.020
	require.NoError(t, d.Start())

	require.NoError(t, fire(t, d, sched, 0))
	require.NoError(t, fire(t, d, sched, 10))
	require.NoError(t, fire(t, d, sched, 25))

	assert.Len(t, eng.updates, 2)
	assert.Equal(t, uint64(1), d.Debug().Skipped)
	assert.Len(t, sched.Pending(), 1, "a skipped frame still keeps the loop going")
}

func TestPausedFrameDoesNotDriveEngine(t *testing.T) {
	eng := &fakeEngine{}
	d, sched, s := newTestDriver(t, eng)
	require.NoError(t, d.Start())

	require.NoError(t, fire(t, d, sched, 0))
	s.Input.OnKeyEvent(input.KeyEvent{Key: "p", Pressed: true})
	require.NoError(t, fire(t, d, sched, 500))
	require.NoError(t, fire(t, d, sched, 1000))
	assert.Len(t, eng.updates, 1)

	s.Input.OnKeyEvent(input.KeyEvent{Key: "p", Pressed: false})
	s.Input.OnKeyEvent(input.KeyEvent{Key: "p", Pressed: true})
	require.NoError(t, fire(t, d, sched, 1100))

	require.Len(t, eng.updates, 2)
	assert.InDelta(t, 0.1, eng.updates[1].t, 1e-9, "paused time is not replayed")
}

func TestStaleHandleIgnored(t *testing.T) {
	eng := &fakeEngine{}
	d, sched, _ := newTestDriver(t, eng)
	require.NoError(t, d.Start())

	pending := sched.Pending()[0]
	require.NoError(t, d.Frame(pending+100, 0))
	assert.Zero(t, eng.draws)

	require.NoError(t, fire(t, d, sched, 0))
	assert.Equal(t, 1, eng.draws)
}

func TestFixedTickrate(t *testing.T) {
	eng := &fakeEngine{}
	d, sched, s := newTestDriver(t, eng)
	s.Cvars.SvGamelogicMode = config.TickrateFixed
	s.Cvars.SvGamelogicFixedFps = 100
	require.NoError(t, d.Start())

	require.NoError(t, fire(t, d, sched, 0))
	require.NoError(t, fire(t, d, sched, 55))

	assert.Len(t, eng.updates, 5)
	assert.Equal(t, 2, eng.draws)
	assert.Equal(t, uint64(5), d.Debug().Steps)
}

func TestStop(t *testing.T) {
	d, sched, _ := newTestDriver(t, &fakeEngine{})
	require.NoError(t, d.Start())
	d.Stop()

	assert.Equal(t, StateAborted, d.State())
	assert.Empty(t, sched.Pending())
	assert.NoError(t, d.Err())
}

func TestFocusAutoPause(t *testing.T) {
	d, _, s := newTestDriver(t, &fakeEngine{})
	s.Input.OnKeyEvent(input.KeyEvent{Key: "w", Pressed: true})

	d.Focus(false)
	assert.True(t, s.Input.Paused())
	assert.False(t, s.Input.State().Any(), "keys are released on focus loss")

	d.Focus(true)
	assert.True(t, s.Input.Paused(), "no auto-unpause by default")

	s.Cvars.SvAutoUnpauseOnRestore = true
	d.Focus(true)
	assert.False(t, s.Input.Paused())

	s.Cvars.SvAutoPauseOnMinimize = false
	d.Focus(false)
	assert.False(t, s.Input.Paused())
}

func TestDebugSnapshot(t *testing.T) {
	d, sched, _ := newTestDriver(t, &fakeEngine{})
	require.NoError(t, d.Start())
	for i := range 61 {
		require.NoError(t, fire(t, d, sched, float64(i)*1000/60))
	}

	dbg := d.Debug()
	assert.Equal(t, StateRunning, dbg.State)
	assert.Equal(t, "maps/Atrium.map", dbg.MapPath)
	assert.Equal(t, uint64(61), dbg.Frames)
	assert.InDelta(t, 1.0, dbg.ScaledTime, 1e-9)
	assert.InDelta(t, 60, dbg.Fps, 1)
	assert.Nil(t, dbg.Err)
}

func TestLargeDeltaIsLogged(t *testing.T) {
	var buf bytes.Buffer
	d, sched, s := newTestDriver(t, &fakeEngine{})
	s.Logger = log.New(&buf)
	s.Cvars.DLargeDeltaWarn = 5

	require.NoError(t, d.Start())
	require.NoError(t, fire(t, d, sched, 0))
	require.NoError(t, fire(t, d, sched, 4000))
	assert.NotContains(t, buf.String(), "large frame delta")

	require.NoError(t, fire(t, d, sched, 10000))
	assert.Contains(t, buf.String(), "large frame delta")
	assert.Equal(t, StateRunning, d.State(), "a large delta is only a warning")

	buf.Reset()
	s.Cvars.DLargeDeltaWarn = 0
	require.NoError(t, fire(t, d, sched, 20000))
	assert.NotContains(t, buf.String(), "large frame delta", "zero disables the warning")
}
