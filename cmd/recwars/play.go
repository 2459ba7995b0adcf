package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/recwars/internal/bootstrap"
	"github.com/vovakirdan/recwars/internal/engine/preview"
	"github.com/vovakirdan/recwars/internal/platform/tui"
	"github.com/vovakirdan/recwars/internal/registry"
)

var (
	flagMap          string
	flagBalance      string
	flagQuery        string
	flagEngine       string
	flagFPS          int
	flagFetchTimeout time.Duration
	flagFrames       int
	flagHold         []string
)

var playCmd = &cobra.Command{
	Use:   "play [name value ...]",
	Short: "Load a map and play",
	Long: `Fetch the texture manifest and a map, then run the frame loop.

Positional arguments are cvar overrides given as name/value pairs. Boolean
cvars only accept "true" and "false". A value that does not parse is
reported and that cvar keeps its value.

Without --map a map is picked at random from 'recwars maps'. Map names get
".map" appended and "maps/" prepended when missing.

Controls (player 1 and player 2 share one tank):
  WASD/Arrows  - Move
  Q/E  ,/.     - Turn turret
  Space/N      - Fire
  P            - Pause
  ?            - All keys
  Esc/Ctrl+C   - Quit

With --frames the loop runs headless for that many frames on a simulated
clock and prints the last frame.

Examples:
  recwars play
  recwars play --map Snow d_speed 0.5
  recwars play --balance recwar --map "extra/Ice ring"
  recwars play --query 'map=Atrium&hud_names=false'
  recwars play --assets ./assets --frames 120 --hold right`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagMap, "map", "", "Map name or path (random when empty)")
	playCmd.Flags().StringVar(&flagBalance, "balance", "", "Balance profile: recwars, recwar")
	playCmd.Flags().StringVar(&flagQuery, "query", "", "Launch parameters as a query string")
	playCmd.Flags().StringVar(&flagEngine, "engine", preview.ID, "Engine to run")
	playCmd.Flags().IntVar(&flagFPS, "fps", tui.DefaultFrameRate, "Refresh rate (frames per second)")
	playCmd.Flags().DurationVar(&flagFetchTimeout, "fetch-timeout", 0, "Give up on an asset fetch after this long (0 waits)")
	playCmd.Flags().IntVar(&flagFrames, "frames", 0, "Run this many frames headless and print the result")
	playCmd.Flags().StringSliceVar(&flagHold, "hold", nil, "Actions held during a headless run (e.g. right,fire)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	req, err := launchRequest(args)
	if err != nil {
		return err
	}

	if !registry.Exists(flagEngine) {
		return fmt.Errorf("unknown engine %q", flagEngine)
	}

	settings, err := req.Resolve(flagCvarsFile)
	if err != nil {
		return err
	}
	mapPath := bootstrap.SelectMap(req.Map, rand.New(rand.NewSource(time.Now().UnixNano())))

	fetcher, err := bootstrap.NewFetcher(flagAssets, &http.Client{Timeout: flagFetchTimeout})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flagFrames > 0 {
		logger, closeLog, err := newLogger(os.Stderr, "recwars")
		if err != nil {
			return err
		}
		defer closeLog()
		for _, w := range settings.Warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
		}
		return runHeadless(ctx, cmd.OutOrStdout(), headlessRun{
			Settings: settings,
			MapPath:  mapPath,
			EngineID: flagEngine,
			Fetcher:  fetcher,
			Pinger:   bootstrap.NewPinger(flagTelemetry, &http.Client{Timeout: 10 * time.Second}, logger),
			Frames:   flagFrames,
			FPS:      flagFPS,
			Hold:     flagHold,
			Width:    80,
			Height:   24,
			Logger:   logger,
		})
	}

	// The alt screen owns the terminal, so logs only go to --log.
	logger, closeLog, err := newLogger(io.Discard, "recwars")
	if err != nil {
		return err
	}
	defer closeLog()

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	return tui.Run(ctx, tui.Options{
		Settings:  settings,
		MapPath:   mapPath,
		EngineID:  flagEngine,
		Fetcher:   fetcher,
		Pinger:    bootstrap.NewPinger(flagTelemetry, &http.Client{Timeout: 10 * time.Second}, logger),
		Version:   version,
		Width:     width,
		Height:    height,
		FrameRate: flagFPS,
		Logger:    logger,
	})
}

// launchRequest merges --query under the flags and positional pairs, so the
// command line wins over the query string.
func launchRequest(args []string) (bootstrap.Request, error) {
	req, err := bootstrap.FromArgs(flagMap, flagBalance, args)
	if err != nil {
		return bootstrap.Request{}, err
	}
	if flagQuery == "" {
		return req, nil
	}
	q, err := bootstrap.ParseQuery(flagQuery)
	if err != nil {
		return bootstrap.Request{}, err
	}
	return q.Merge(req), nil
}
