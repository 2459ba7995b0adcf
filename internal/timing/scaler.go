// Package timing converts wall-clock samples into simulation time and keeps
// frame-rate and duration statistics.
package timing

import "math"

// Sample is the outcome of one Advance call.
type Sample struct {
	Real        float64 // wall clock in seconds
	DeltaReal   float64
	Scaled      float64 // simulation clock in seconds
	DeltaScaled float64
	Skipped     bool // the frame arrived too early and must be dropped entirely
}

// Scaler accumulates scaled simulation time from wall-clock samples.
// The speed multiplier and the minimum frame delay are read through
// functions on every call because the host may change them live.
type Scaler struct {
	speed    func() float64
	minDelay func() float64

	started    bool
	lastReal   float64
	lastScaled float64
}

// NewScaler creates a scaler. Either function may be nil: a nil speed means
// 1.0 and a nil minDelay means no frames are dropped.
func NewScaler(speed, minDelay func() float64) *Scaler {
	if speed == nil {
		speed = func() float64 { return 1 }
	}
	if minDelay == nil {
		minDelay = func() float64 { return 0 }
	}
	return &Scaler{speed: speed, minDelay: minDelay}
}

// Advance folds one wall-clock sample (milliseconds) into the simulation clock.
//
// The first sample only establishes the reference point. A sample closer to
// the previous one than the minimum delay is skipped and leaves the scaler
// untouched. While paused the real clock moves on but scaled time is frozen.
// Negative or non-finite speed multipliers count as zero so scaled time never
// goes back and never becomes NaN.
func (s *Scaler) Advance(wallMillis float64, paused bool) Sample {
	real := wallMillis / 1000

	if !s.started {
		s.started = true
		s.lastReal = real
		return Sample{Real: real, Scaled: s.lastScaled}
	}

	deltaReal := real - s.lastReal
	if deltaReal < 0 || deltaReal < s.minDelay() {
		return Sample{Real: real, DeltaReal: deltaReal, Scaled: s.lastScaled, Skipped: true}
	}
	s.lastReal = real

	if paused {
		return Sample{Real: real, DeltaReal: deltaReal, Scaled: s.lastScaled}
	}

	speed := s.speed()
	if speed < 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		speed = 0
	}
	deltaScaled := deltaReal * speed
	s.lastScaled += deltaScaled
	return Sample{Real: real, DeltaReal: deltaReal, Scaled: s.lastScaled, DeltaScaled: deltaScaled}
}

// Scaled returns the last accumulated simulation time in seconds.
func (s *Scaler) Scaled() float64 {
	return s.lastScaled
}

// LastReal returns the last accepted wall-clock sample in seconds.
func (s *Scaler) LastReal() float64 {
	return s.lastReal
}
