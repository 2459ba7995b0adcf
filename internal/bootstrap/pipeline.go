package bootstrap

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// ManifestPath is the texture manifest resource.
const ManifestPath = "texture_list.txt"

// Stage identifies a pipeline step.
type Stage int

const (
	StageManifest Stage = iota + 1
	StageLevel
)

func (s Stage) String() string {
	switch s {
	case StageManifest:
		return "texture manifest"
	case StageLevel:
		return "level"
	default:
		return "unknown stage"
	}
}

// StageError is a failed startup: which stage broke and why.
type StageError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("bootstrap: failed to load %s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Result holds the two startup resources in fetch order.
type Result struct {
	Manifest string
	Level    string
	MapPath  string
}

// Msg is a fetch completion delivered back to the pipeline.
type Msg interface {
	stage() Stage
}

// ManifestLoaded completes the first stage.
type ManifestLoaded struct{ Text string }

// LevelLoaded completes the second stage.
type LevelLoaded struct{ Text string }

// Failed completes either stage unsuccessfully. Err is a *StageError.
type Failed struct{ Err error }

func (ManifestLoaded) stage() Stage { return StageManifest }
func (LevelLoaded) stage() Stage    { return StageLevel }
func (m Failed) stage() Stage {
	if se, ok := m.Err.(*StageError); ok {
		return se.Stage
	}
	return 0
}

// Step performs one fetch and returns its completion message.
// It blocks, so hosts run it off their event loop.
type Step func() Msg

// State is where the pipeline is.
type State int

const (
	StatePending State = iota
	StateManifest
	StateLevel
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateManifest:
		return "loading manifest"
	case StateLevel:
		return "loading level"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Pipeline sequences the manifest and level fetches. It is driven by
// messages: Start issues the first fetch and every completion handed to
// Handle yields at most one next fetch. The level fetch is only issued
// after the manifest arrived.
type Pipeline struct {
	fetcher Fetcher
	mapPath string
	logger  *log.Logger

	state    State
	manifest string
	result   Result
	err      error
}

// New creates a pipeline fetching the manifest and then mapPath.
func New(f Fetcher, mapPath string, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Pipeline{fetcher: f, mapPath: mapPath, logger: logger}
}

// State returns the current pipeline state.
func (p *Pipeline) State() State {
	return p.state
}

// MapPath returns the level resource this pipeline loads.
func (p *Pipeline) MapPath() string {
	return p.mapPath
}

// Start returns the manifest fetch. It returns nil if already started.
func (p *Pipeline) Start(ctx context.Context) Step {
	if p.state != StatePending {
		return nil
	}
	p.state = StateManifest
	p.logger.Debug("fetching", "stage", StageManifest, "path", ManifestPath)
	return p.fetch(ctx, StageManifest, ManifestPath, func(text string) Msg {
		return ManifestLoaded{Text: text}
	})
}

// Handle consumes a completion and returns the next fetch, or nil when the
// pipeline is finished. Messages that don't match the current stage are ignored.
func (p *Pipeline) Handle(ctx context.Context, msg Msg) Step {
	switch m := msg.(type) {
	case ManifestLoaded:
		if p.state != StateManifest {
			return nil
		}
		p.manifest = m.Text
		p.state = StateLevel
		p.logger.Debug("fetching", "stage", StageLevel, "path", p.mapPath)
		return p.fetch(ctx, StageLevel, p.mapPath, func(text string) Msg {
			return LevelLoaded{Text: text}
		})

	case LevelLoaded:
		if p.state != StateLevel {
			return nil
		}
		p.result = Result{Manifest: p.manifest, Level: m.Text, MapPath: p.mapPath}
		p.manifest = ""
		p.state = StateDone
		p.logger.Info("assets loaded", "map", p.mapPath)

	case Failed:
		if p.state != StateManifest && p.state != StateLevel {
			return nil
		}
		p.err = m.Err
		p.manifest = ""
		p.state = StateFailed
		p.logger.Error("startup aborted", "error", m.Err)
	}
	return nil
}

// Result returns the loaded resources once the pipeline is done.
// On failure it returns the *StageError.
func (p *Pipeline) Result() (Result, error) {
	switch p.state {
	case StateDone:
		return p.result, nil
	case StateFailed:
		return Result{}, p.err
	default:
		return Result{}, fmt.Errorf("bootstrap: not finished (%s)", p.state)
	}
}

// Run drives the pipeline to completion on the calling goroutine.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	for step := p.Start(ctx); step != nil; {
		step = p.Handle(ctx, step())
	}
	return p.Result()
}

func (p *Pipeline) fetch(ctx context.Context, stage Stage, path string, ok func(string) Msg) Step {
	f := p.fetcher
	return func() Msg {
		text, err := f.Fetch(ctx, path)
		if err != nil {
			return Failed{Err: &StageError{Stage: stage, Path: path, Err: err}}
		}
		return ok(text)
	}
}
