// Package driver runs the per-refresh frame loop: it keeps the next frame
// scheduled, turns wall-clock samples into scaled time, feeds the current
// input and cvars to the engine and stops for good on the first failure.
package driver

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/vovakirdan/recwars/internal/timing"
)

// State is the frame loop state. Aborted is terminal.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// ErrNotIdle is returned by Start on a driver that already started.
var ErrNotIdle = errors.New("driver: already started")

// FrameError is a failure raised by the engine during a frame.
// Panics are recovered into a FrameError with the stack attached.
type FrameError struct {
	Frame uint64
	Err   error
	Stack []byte
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("driver: frame %d: %v", e.Frame, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// Driver is the frame loop state machine. It is not safe for concurrent use;
// the host calls it from its single event loop.
type Driver struct {
	session *Session
	sched   Scheduler
	clock   func() time.Time

	state   State
	pending Handle
	err     *FrameError

	scaler    *timing.Scaler
	stepper   timing.Stepper
	fps       timing.Fps
	updateDur timing.Durations
	drawDur   timing.Durations

	frames  uint64
	skipped uint64
	steps   uint64
	real    float64
}

// New creates an idle driver for a session.
func New(s *Session, sched Scheduler) *Driver {
	d := &Driver{
		session: s,
		sched:   sched,
		clock:   time.Now,
	}
	d.scaler = timing.NewScaler(
		func() float64 { return s.Cvars.DSpeed },
		func() float64 { return s.Cvars.RMinFrameDelay },
	)
	return d
}

// State returns the current state.
func (d *Driver) State() State {
	return d.state
}

// Err returns the failure that aborted the loop, or nil.
func (d *Driver) Err() error {
	if d.err == nil {
		return nil
	}
	return d.err
}

// Start moves Idle to Running and schedules the first frame.
func (d *Driver) Start() error {
	if d.state != StateIdle {
		return ErrNotIdle
	}
	d.state = StateRunning
	d.pending = d.sched.Schedule()
	d.session.logger().Info("frame loop started", "map", d.session.MapPath)
	return nil
}

// Frame runs one scheduled frame. wallMillis is the wall clock when the
// callback fired. Callbacks for anything but the pending handle, and any
// callback outside Running, are ignored.
//
// On an engine failure the already scheduled next frame is cancelled, the
// driver aborts and the failure is returned as a *FrameError.
func (d *Driver) Frame(h Handle, wallMillis float64) (err error) {
	if d.state != StateRunning || h != d.pending {
		return nil
	}

	// The next frame is registered first so a slow frame body can't stall the loop.
	d.pending = d.sched.Schedule()

	s := d.session
	sample := d.scaler.Advance(wallMillis, s.Input.Paused())
	d.real = sample.Real
	if sample.Skipped {
		d.skipped++
		return nil
	}
	d.frames++
	d.fps.Tick(s.Cvars.DFpsPeriod, sample.Real)

	if s.Input.Paused() {
		return nil
	}
	if limit := s.Cvars.DLargeDeltaWarn; limit > 0 && sample.DeltaScaled > limit {
		s.logger().Warn("large frame delta", "dt", sample.DeltaScaled, "real_dt", sample.DeltaReal)
	}

	defer func() {
		if r := recover(); r != nil {
			err = d.abort(fmt.Errorf("panic: %v", r), debug.Stack())
		}
	}()

	in := s.Input.State()
	start := d.clock()
	n, uerr := d.stepper.Advance(sample.Scaled, s.Cvars.SvGamelogicMode, s.Cvars.SvGamelogicFixedFps,
		func(gameTime, _ float64) error {
			return s.Engine.Update(gameTime, in, s.Cvars)
		})
	d.steps += uint64(n)
	if uerr != nil {
		return d.abort(uerr, nil)
	}
	mid := d.clock()
	if derr := s.Engine.Draw(s.Cvars); derr != nil {
		return d.abort(derr, nil)
	}
	end := d.clock()

	samples := int(s.Cvars.DTimingSamples)
	d.updateDur.Add(samples, mid.Sub(start).Seconds())
	d.drawDur.Add(samples, end.Sub(mid).Seconds())
	return nil
}

// Stop cancels the pending frame and aborts without an error, e.g. on quit.
func (d *Driver) Stop() {
	if d.state != StateRunning {
		return
	}
	d.sched.Cancel(d.pending)
	d.pending = 0
	d.state = StateAborted
}

// Focus applies the auto-pause cvars when the host gains or loses focus.
func (d *Driver) Focus(focused bool) {
	s := d.session
	switch {
	case !focused && s.Cvars.SvAutoPauseOnMinimize:
		s.Input.SetPaused(true)
		s.Input.ReleaseAll()
	case focused && s.Cvars.SvAutoUnpauseOnRestore:
		s.Input.SetPaused(false)
	}
}

// Debug returns a snapshot of the frame loop and its session.
func (d *Driver) Debug() Debug {
	s := d.session
	dbg := Debug{
		State:      d.state,
		MapPath:    s.MapPath,
		Balance:    s.Balance,
		Paused:     s.Input.Paused(),
		Input:      s.Input.State(),
		Frames:     d.frames,
		Skipped:    d.skipped,
		Steps:      d.steps,
		RealTime:   d.real,
		ScaledTime: d.scaler.Scaled(),
		Fps:        d.fps.Rate(),
	}
	dbg.UpdateAvg, dbg.UpdateMax, _ = d.updateDur.Stats()
	dbg.DrawAvg, dbg.DrawMax, _ = d.drawDur.Stats()
	if d.err != nil {
		dbg.Err = d.err
	}
	return dbg
}

func (d *Driver) abort(cause error, stack []byte) error {
	d.sched.Cancel(d.pending)
	d.pending = 0
	d.state = StateAborted
	d.err = &FrameError{Frame: d.frames, Err: cause, Stack: stack}
	d.session.logger().Error("frame loop aborted", "frame", d.frames, "error", cause)
	return d.err
}
