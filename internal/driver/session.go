package driver

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/recwars/internal/config"
	"github.com/vovakirdan/recwars/internal/input"
	"github.com/vovakirdan/recwars/internal/registry"
)

// Session is the state shared by the host and the frame loop for one game.
// The host mutates Cvars and feeds Input between frames; the driver reads
// both at the start of every frame.
type Session struct {
	Cvars   *config.Cvars
	Input   *input.Aggregator
	Engine  registry.Engine
	MapPath string
	Balance config.Balance
	Logger  *log.Logger
}

func (s *Session) logger() *log.Logger {
	if s.Logger == nil {
		s.Logger = log.New(io.Discard)
	}
	return s.Logger
}

// Debug is a snapshot of the frame loop for diagnostics.
type Debug struct {
	State   State
	MapPath string
	Balance config.Balance
	Paused  bool
	Input   input.ActionState

	Frames  uint64 // frames that reached the engine or were paused
	Skipped uint64 // frames dropped for arriving too early
	Steps   uint64 // gamelogic steps run

	RealTime   float64
	ScaledTime float64
	Fps        float64

	UpdateAvg, UpdateMax float64 // seconds
	DrawAvg, DrawMax     float64 // seconds

	Err error
}
