package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/recwars/internal/bootstrap"
	"github.com/vovakirdan/recwars/internal/config"
	"github.com/vovakirdan/recwars/internal/core"
	"github.com/vovakirdan/recwars/internal/driver"
	"github.com/vovakirdan/recwars/internal/input"
	"github.com/vovakirdan/recwars/internal/registry"
)

const fakeEngineID = "tui-fake"

type fakeEngine struct {
	setup   registry.Setup
	updates []input.ActionState
	draws   int
	failAt  int
}

func (e *fakeEngine) Update(_ float64, in input.ActionState, _ *config.Cvars) error {
	e.updates = append(e.updates, in)
	if e.failAt != 0 && len(e.updates) == e.failAt {
		return errors.New("engine broke")
	}
	return nil
}

func (e *fakeEngine) Draw(_ *config.Cvars) error {
	e.draws++
	e.setup.Target.Clear()
	e.setup.Target.DrawText(0, 0, "frame")
	return nil
}

// current is the engine the next session builds.
var current *fakeEngine

func init() {
	registry.Register(fakeEngineID, "Test engine", func(s registry.Setup) (registry.Engine, error) {
		current.setup = s
		return current, nil
	})
}

func assets() fstest.MapFS {
	return fstest.MapFS{
		bootstrap.ManifestPath: {Data: []byte("g1 0 1 1\n")},
		"maps/Atrium.map":      {Data: []byte("0 0\n0 0\n")},
	}
}

func newTestModel(t *testing.T, eng *fakeEngine, fsys fstest.MapFS) Model {
	t.Helper()
	current = eng
	return NewModel(context.Background(), Options{
		Settings: bootstrap.Settings{
			Balance: config.DefaultBalance,
			Cvars:   config.DefaultCvars(),
		},
		MapPath:   "maps/Atrium.map",
		EngineID:  fakeEngineID,
		Fetcher:   bootstrap.NewFSFetcher(fsys),
		Width:     80,
		Height:    12,
		FrameRate: 60,
	})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

// load runs the manifest and level stages the way the program would.
func load(t *testing.T, m Model) Model {
	t.Helper()
	m.Init()
	m, cmd := update(t, m, bootstrap.ManifestLoaded{Text: "g1 0 1 1\n"})
	require.NotNil(t, cmd, "level fetch should follow the manifest")
	m, _ = update(t, m, cmd())
	return m
}

var t0 = time.Unix(1_700_000_000, 0)

func frame(t *testing.T, m Model, h driver.Handle, at time.Duration) Model {
	t.Helper()
	m, _ = update(t, m, FrameMsg{Handle: h, Time: t0.Add(at)})
	return m
}

func press(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLoadingThenRunning(t *testing.T) {
	eng := &fakeEngine{}
	m := newTestModel(t, eng, assets())
	assert.Equal(t, "loading", m.Phase())
	assert.Contains(t, m.View(), "loading")

	m = load(t, m)
	require.Equal(t, "running", m.Phase(), "err: %v", m.Err())
	assert.Equal(t, "0 0\n0 0\n", eng.setup.Level)
	assert.Equal(t, "g1 0 1 1\n", eng.setup.Manifest)
	assert.Equal(t, 11, eng.setup.Target.Height(), "one row is kept for the footer")
	assert.NotZero(t, m.cvars.DSeed, "seed is set before the engine is built")

	m = frame(t, m, 1, 0)
	m = frame(t, m, 2, 16*time.Millisecond)
	assert.NotEmpty(t, eng.updates)
	assert.Equal(t, 2, eng.draws)
	assert.True(t, strings.HasPrefix(m.screen.Row(0), "frame"))
}

func TestManifestFailureShowsError(t *testing.T) {
	eng := &fakeEngine{}
	m := newTestModel(t, eng, fstest.MapFS{})
	m.Init()

	m, cmd := update(t, m, bootstrap.Failed{Err: errors.New("connection refused")})
	assert.Nil(t, cmd)
	assert.Equal(t, "failed", m.Phase())
	assert.Nil(t, eng.setup.Target, "engine is never built")
	assert.Contains(t, m.View(), "startup failed")
	assert.Contains(t, m.View(), "connection refused")
}

func TestLevelFailureFromFetcher(t *testing.T) {
	fsys := assets()
	delete(fsys, "maps/Atrium.map")
	m := newTestModel(t, &fakeEngine{}, fsys)

	m = load(t, m)
	assert.Equal(t, "failed", m.Phase())
	var se *bootstrap.StageError
	require.ErrorAs(t, m.Err(), &se)
	assert.Equal(t, bootstrap.StageLevel, se.Stage)
}

func TestUnknownEngineFails(t *testing.T) {
	m := newTestModel(t, &fakeEngine{}, assets())
	m.opts.EngineID = "missing"

	m = load(t, m)
	assert.Equal(t, "failed", m.Phase())
	assert.ErrorContains(t, m.Err(), "unknown engine")
}

func TestKeysReachTheEngine(t *testing.T) {
	eng := &fakeEngine{}
	m := load(t, newTestModel(t, eng, assets()))

	m, _ = update(t, m, press("d"))
	m = frame(t, m, 1, 0)
	require.NotEmpty(t, eng.updates)
	assert.True(t, eng.updates[len(eng.updates)-1].Held(input.ActionRight))

	// Without repeats the hold runs out and the key is released.
	m = frame(t, m, 2, time.Since(t0)+time.Second)
	assert.False(t, eng.updates[len(eng.updates)-1].Held(input.ActionRight))
}

func TestPauseKeyShowsBanner(t *testing.T) {
	eng := &fakeEngine{}
	m := load(t, newTestModel(t, eng, assets()))
	m = frame(t, m, 1, 0)
	draws := eng.draws

	m, _ = update(t, m, press("p"))
	m = frame(t, m, 2, 16*time.Millisecond)
	assert.Equal(t, draws, eng.draws, "no engine work while paused")
	assert.Contains(t, m.View(), "PAUSED")
}

func TestBlurAutoPauses(t *testing.T) {
	m := load(t, newTestModel(t, &fakeEngine{}, assets()))
	m, _ = update(t, m, press("w"))

	m, _ = update(t, m, tea.BlurMsg{})
	assert.True(t, m.input.Paused())
	assert.False(t, m.input.State().Any(), "held keys are released")
	assert.Zero(t, m.holds.Held())

	m, _ = update(t, m, tea.FocusMsg{})
	assert.True(t, m.input.Paused(), "auto-unpause is off by default")
}

func TestEngineFailureStopsLoop(t *testing.T) {
	eng := &fakeEngine{failAt: 1}
	m := load(t, newTestModel(t, eng, assets()))

	m = frame(t, m, 1, 0)
	assert.Equal(t, "aborted", m.Phase())
	var fe *driver.FrameError
	require.ErrorAs(t, m.Err(), &fe)

	// The frame scheduled before the failure is cancelled.
	n := len(eng.updates)
	m = frame(t, m, 2, 16*time.Millisecond)
	assert.Len(t, eng.updates, n)
	assert.Contains(t, m.View(), "engine broke")
}

func TestQuitKey(t *testing.T) {
	m := load(t, newTestModel(t, &fakeEngine{}, assets()))

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
	assert.Empty(t, m.View())
	assert.Equal(t, driver.StateAborted, m.driver.State())
}

func TestQuitWhileLoading(t *testing.T) {
	m := newTestModel(t, &fakeEngine{}, assets())
	m.Init()

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
	assert.Error(t, m.ctx.Err(), "in-flight fetches are cancelled")
}

func TestResizeKeepsFooterRow(t *testing.T) {
	m := load(t, newTestModel(t, &fakeEngine{}, assets()))

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})
	assert.Equal(t, 60, m.screen.Width())
	assert.Equal(t, 19, m.screen.Height())
}

func TestOverlay(t *testing.T) {
	m := load(t, newTestModel(t, &fakeEngine{}, assets()))
	m.cvars.DDbg = true
	m = frame(t, m, 1, 0)

	scr := m.overlaid()
	assert.Contains(t, scr.Row(1), "fps")
	assert.Contains(t, scr.String(), "frames 1")
	assert.Equal(t, core.ColorBrightWhite, scr.GetCell(scr.Width()-2, 1).Color)
	assert.NotContains(t, m.screen.String(), "frames", "the engine frame is left untouched")
}

func TestOverlayLeavesNoTrailWhilePaused(t *testing.T) {
	m := load(t, newTestModel(t, &fakeEngine{}, assets()))
	m.cvars.DDbg = true
	m = frame(t, m, 1, 0)

	m, _ = update(t, m, press("w"))
	long := m.overlaid().String()
	require.Contains(t, long, "Input { up }")

	m, _ = update(t, m, press("p"))
	m = frame(t, m, 2, 16*time.Millisecond)
	m.input.ReleaseAll()

	scr := m.overlaid()
	assert.Contains(t, scr.String(), "in Input { }")
	assert.NotContains(t, scr.String(), "}p }", "a shorter line must not leave the old tail behind")
	assert.NotContains(t, scr.String(), "Input { up }")
	assert.Contains(t, scr.String(), "PAUSED")
}

func TestDrawBannerIsFramed(t *testing.T) {
	scr := core.NewScreen(20, 5)
	drawBanner(scr, " PAUSED ", core.ColorBrightYellow)

	assert.Equal(t, "     ┌────────┐     ", scr.Row(1))
	assert.Equal(t, "     │ PAUSED │     ", scr.Row(2))
	assert.Equal(t, "     └────────┘     ", scr.Row(3))

	tiny := core.NewScreen(4, 1)
	assert.NotPanics(t, func() { drawBanner(tiny, " PAUSED ", core.ColorBrightYellow) })
}

func TestTickScheduler(t *testing.T) {
	s := newTickScheduler(0)
	assert.Equal(t, time.Second/DefaultFrameRate, s.interval)

	a := s.Schedule()
	b := s.Schedule()
	s.Cancel(b)
	assert.Equal(t, []driver.Handle{a}, s.queued, "queued handles are dropped on cancel")

	assert.NotNil(t, s.Cmd())
	assert.Empty(t, s.queued)
	assert.Nil(t, s.Cmd())

	s.Cancel(a)
	assert.False(t, s.Fire(FrameMsg{Handle: a}), "in-flight cancelled tick is dropped")
	assert.True(t, s.Fire(FrameMsg{Handle: a}), "only once")
}

func TestKeyMap(t *testing.T) {
	k := NewKeyMap(input.DefaultBindings())

	assert.Equal(t, []string{"esc", "ctrl+c"}, k.Quit.Keys())
	for _, a := range input.Actions() {
		assert.NotContains(t, k.game.Binding(a).Keys(), "esc", "host keys never reach %s", a)
	}
	assert.Len(t, k.FullHelp(), 4)
	assert.NotEmpty(t, k.ShortHelp())
}

func TestParseLaunch(t *testing.T) {
	r, err := ParseLaunch([]string{"map=Snow&d_speed=2"})
	require.NoError(t, err)
	assert.Equal(t, "Snow", r.Map)
	assert.Equal(t, []config.Pair{{Key: "d_speed", Value: "2"}}, r.Overrides)

	r, err = ParseLaunch([]string{"balance", "recwar", "g_armor", "150"})
	require.NoError(t, err)
	assert.Equal(t, "recwar", r.Balance)
	assert.Len(t, r.Overrides, 1)

	_, err = ParseLaunch([]string{"g_armor"})
	assert.Error(t, err)

	r, err = ParseLaunch(nil)
	require.NoError(t, err)
	assert.Empty(t, r.Map)
}

func TestEnsureHostKeyDir(t *testing.T) {
	want := filepath.Join(t.TempDir(), "keys", "host_key")

	got, err := ensureHostKeyDir(want)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	info, err := os.Stat(filepath.Dir(want))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRenderScreenKeepsText(t *testing.T) {
	scr := core.NewScreen(6, 2)
	scr.DrawTextColored(0, 0, "ab", core.ColorGreen)
	scr.DrawTextColored(2, 0, "cd", core.ColorGreen)
	scr.DrawTextColored(4, 0, "ef", core.Color(200))
	scr.DrawText(0, 1, "xyz")

	out := RenderScreen(scr)
	assert.Contains(t, out, "abcd")
	assert.Contains(t, out, "ef")
	assert.Contains(t, out, "xyz")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}
