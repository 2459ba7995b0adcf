package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/recwars/internal/bootstrap"
	"github.com/vovakirdan/recwars/internal/core"
	"github.com/vovakirdan/recwars/internal/driver"
	"github.com/vovakirdan/recwars/internal/input"
	"github.com/vovakirdan/recwars/internal/registry"
)

// headlessRun is a play session without a terminal: frames fire from a
// manual scheduler on a simulated clock.
type headlessRun struct {
	Settings bootstrap.Settings
	MapPath  string
	EngineID string
	Fetcher  bootstrap.Fetcher
	Pinger   *bootstrap.Pinger
	Frames   int
	FPS      int
	Hold     []string // action names held for the whole run
	Width    int
	Height   int
	Logger   *log.Logger
	Start    time.Time // zero uses the current time
}

func runHeadless(ctx context.Context, out io.Writer, r headlessRun) error {
	info := bootstrap.PingInfo{Map: r.MapPath, Balance: string(r.Settings.Balance), Version: version}
	r.Pinger.Go(ctx, info)

	res, err := bootstrap.New(r.Fetcher, r.MapPath, r.Logger).Run(ctx)
	if err != nil {
		return err
	}

	cvars := r.Settings.Cvars
	cvars.EnsureSeed(time.Now())
	screen := core.NewScreen(r.Width, r.Height)
	engine, err := registry.Create(r.EngineID, registry.Setup{
		Cvars:    &cvars,
		Target:   screen,
		Width:    r.Width,
		Height:   r.Height,
		MapPath:  res.MapPath,
		Manifest: res.Manifest,
		Level:    res.Level,
	})
	if err != nil {
		return err
	}

	agg := input.NewAggregator(input.DefaultBindings())
	for _, name := range r.Hold {
		a, ok := input.ParseAction(name)
		if !ok {
			return fmt.Errorf("unknown action %q", name)
		}
		agg.OnKeyEvent(input.KeyEvent{Key: agg.Bindings().Binding(a).Keys()[0], Pressed: true})
	}

	sched := driver.NewManualScheduler()
	d := driver.New(&driver.Session{
		Cvars:   &cvars,
		Input:   agg,
		Engine:  engine,
		MapPath: res.MapPath,
		Balance: r.Settings.Balance,
		Logger:  r.Logger,
	}, sched)
	if err := d.Start(); err != nil {
		return err
	}

	fps := r.FPS
	if fps <= 0 {
		fps = 60
	}
	step := time.Second / time.Duration(fps)
	clock := r.Start
	if clock.IsZero() {
		clock = time.Now()
	}
	for range r.Frames {
		if err := ctx.Err(); err != nil {
			d.Stop()
			return err
		}
		h, ok := sched.Next()
		if !ok {
			break
		}
		if err := d.Frame(h, float64(clock.UnixNano())/float64(time.Millisecond)); err != nil {
			return err
		}
		clock = clock.Add(step)
	}
	d.Stop()

	dbg := d.Debug()
	fmt.Fprintln(out, screen.String())
	fmt.Fprintf(out, "%s  frames %d  steps %d  scaled %.3fs  %s\n",
		dbg.MapPath, dbg.Frames, dbg.Steps, dbg.ScaledTime, dbg.Input)
	return nil
}
