package preview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/recwars/internal/config"
	"github.com/vovakirdan/recwars/internal/core"
	"github.com/vovakirdan/recwars/internal/input"
	"github.com/vovakirdan/recwars/internal/registry"
)

const (
	manifest = "g1 0 0.5 1\r\ng_spawn 1 0.5 1\r\nbunker1 2 0 0\r\nwater 3 1 1\r\n"
	// 4x3 level: a wall column on the right and a spawn facing up at (1,1).
	level = "0 0 0 8\r\n0 5 0 8\r\n0 0 12 8\r\n"
)

func newEngine(t *testing.T, w, h int) (*Engine, *core.Screen) {
	t.Helper()
	scr := core.NewScreen(w, h)
	e, err := New(registry.Setup{
		Target:   scr,
		Width:    w,
		Height:   h,
		MapPath:  "maps/Atrium.map",
		Manifest: manifest,
		Level:    level,
	})
	require.NoError(t, err)
	return e, scr
}

func held(actions ...input.Action) input.ActionState {
	b := input.DefaultBindings()
	agg := input.NewAggregator(b)
	for _, a := range actions {
		agg.OnKeyEvent(input.KeyEvent{Key: b.Binding(a).Keys()[0], Pressed: true})
	}
	return agg.State()
}

func TestParseLevel(t *testing.T) {
	tiles, err := parseLevel("0 5 9\n7 1\n\n")
	require.NoError(t, err)
	require.Len(t, tiles, 2)
	assert.Equal(t, Tile{Surface: 1, Rotation: 1}, tiles[0][1])
	assert.Equal(t, Tile{Surface: 2, Rotation: 1}, tiles[0][2])
	assert.Len(t, tiles[1], 2)

	_, err = parseLevel("0 x 1")
	assert.Error(t, err)
	_, err = parseLevel("")
	assert.Error(t, err)
}

func TestParseManifestKeepsIndices(t *testing.T) {
	got := parseManifest("a 0 1 1\nbroken\nc 9 1 1\nd 2 0 0\n")

	require.Len(t, got, 4)
	assert.Equal(t, Surface{Name: "broken", Kind: KindNormal}, got[1])
	assert.Equal(t, KindNormal, got[2].Kind, "out-of-range kind falls back to normal")
	assert.Equal(t, KindWall, got[3].Kind)
}

func TestNewStartsOnSpawn(t *testing.T) {
	e, _ := newEngine(t, 20, 10)

	x, y := e.Cursor()
	assert.Equal(t, 1, x)
	assert.Equal(t, 1, y)
	w, h := e.Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 3, h)
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New(registry.Setup{Level: level})
	assert.Error(t, err, "target is required")

	_, err = New(registry.Setup{Target: core.NewScreen(4, 4), Level: "not a level"})
	assert.Error(t, err)
}

func TestUpdateMovesCursorInScaledTime(t *testing.T) {
	e, _ := newEngine(t, 20, 10)
	c := config.DefaultCvars()
	c.RPreviewCursorSpeed = 2

	require.NoError(t, e.Update(10, held(), &c))
	require.NoError(t, e.Update(10.5, held(input.ActionRight), &c))
	x, y := e.Cursor()
	assert.Equal(t, 2, x)
	assert.Equal(t, 1, y)

	// Clamped to the level.
	require.NoError(t, e.Update(20, held(input.ActionRight, input.ActionDown), &c))
	x, y = e.Cursor()
	assert.Equal(t, 3, x)
	assert.Equal(t, 2, y)

	assert.Error(t, e.Update(19, held(), &c))
}

func TestUpdateTurnsTurret(t *testing.T) {
	e, _ := newEngine(t, 20, 10)
	c := config.DefaultCvars()
	c.GTurretTurnSpeedDeg = 90

	require.NoError(t, e.Update(0, held(), &c))
	require.NoError(t, e.Update(1, held(input.ActionTurretLeft), &c))
	assert.InDelta(t, 270, e.Turret(), 1e-9)
	assert.Equal(t, '↑', turretArrow(e.Turret()))

	require.NoError(t, e.Update(3, held(input.ActionTurretRight), &c))
	assert.InDelta(t, 90, e.Turret(), 1e-9)
}

func TestTurretStaysInRangeOnLargeSteps(t *testing.T) {
	e, _ := newEngine(t, 20, 10)
	c := config.DefaultCvars()
	c.GTurretTurnSpeedDeg = 120

	require.NoError(t, e.Update(0, held(), &c))
	require.NoError(t, e.Update(4, held(input.ActionTurretLeft), &c))
	assert.InDelta(t, 240, e.Turret(), 1e-9)
	require.NoError(t, e.Draw(&c))

	c.GTurretTurnSpeedDeg = -500
	require.NoError(t, e.Update(5, held(input.ActionTurretRight), &c))
	assert.GreaterOrEqual(t, e.Turret(), 0.0)
	assert.Less(t, e.Turret(), 360.0)
	require.NoError(t, e.Draw(&c))
}

func TestTurretArrowAnyAngle(t *testing.T) {
	for _, deg := range []float64{-1e6, -720, -45, -0.1, 0, 359.9, 360, 1e9} {
		assert.NotPanics(t, func() { turretArrow(deg) }, "angle %v", deg)
	}
	assert.Equal(t, '↑', turretArrow(-90))
}

func TestDraw(t *testing.T) {
	e, scr := newEngine(t, 8, 4)
	c := config.DefaultCvars()

	require.NoError(t, e.Draw(&c))

	assert.True(t, strings.HasPrefix(scr.Row(0), " Atrium"), "hud line: %q", scr.Row(0))
	// Row 1 is level row 0: grass, grass, grass, wall.
	assert.Equal(t, core.Cell{Rune: '█', Color: core.ColorGray}, scr.GetCell(6, 1))
	assert.Equal(t, core.ColorGreen, scr.GetCell(0, 1).Color)
	// Cursor over the spawn at tile (1,1).
	assert.Equal(t, '◆', scr.Get(2, 2))
	assert.Equal(t, '→', scr.Get(3, 2))
	// Water at tile (2,2).
	assert.Equal(t, '≈', scr.Get(4, 3))
}

func TestDrawDisabled(t *testing.T) {
	e, scr := newEngine(t, 8, 4)
	c := config.DefaultCvars()
	c.DDraw = false

	require.NoError(t, e.Draw(&c))
	assert.Equal(t, strings.Repeat(" ", 8), scr.Row(1))
}

func TestDrawTinyScreen(t *testing.T) {
	e, _ := newEngine(t, 1, 1)
	c := config.DefaultCvars()
	assert.NoError(t, e.Draw(&c))
}

func TestRegistered(t *testing.T) {
	assert.True(t, registry.Exists(ID))

	_, err := registry.Create(ID, registry.Setup{Target: core.NewScreen(4, 4), Level: "0"})
	assert.NoError(t, err)
}
