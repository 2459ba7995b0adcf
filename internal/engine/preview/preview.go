// Package preview is a lightweight engine that draws the loaded level and a
// cursor steered by the movement and turret actions. It simulates no gameplay.
package preview

import (
	"errors"
	"fmt"
	"math"
	"path"
	"strings"

	"github.com/vovakirdan/recwars/internal/config"
	"github.com/vovakirdan/recwars/internal/core"
	"github.com/vovakirdan/recwars/internal/input"
	"github.com/vovakirdan/recwars/internal/registry"
)

// ID is the registry name of this engine.
const ID = "preview"

// cellsPerTile is how many columns one tile takes; terminal cells are about
// twice as tall as wide.
const cellsPerTile = 2

// hudRows is the space kept for the top status line.
const hudRows = 1

func init() {
	registry.Register(ID, "Level preview", func(s registry.Setup) (registry.Engine, error) {
		e, err := New(s)
		if err != nil {
			return nil, err
		}
		return e, nil
	})
}

// Engine draws a level into a screen.
type Engine struct {
	target   *core.Screen
	surfaces []Surface
	tiles    [][]Tile
	width    int // in tiles
	height   int
	name     string

	x, y   float64 // cursor, in tiles
	turret float64 // degrees clockwise from east

	last    float64
	started bool
	firing  bool
}

// New builds the engine from the startup resources.
func New(s registry.Setup) (*Engine, error) {
	if s.Target == nil {
		return nil, errors.New("preview: no render target")
	}
	tiles, err := parseLevel(s.Level)
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}

	e := &Engine{
		target:   s.Target,
		surfaces: parseManifest(s.Manifest),
		tiles:    tiles,
		height:   len(tiles),
		name:     mapName(s.MapPath),
	}
	for _, row := range tiles {
		e.width = max(e.width, len(row))
	}
	e.x, e.y = e.startPosition()
	return e, nil
}

// Update implements registry.Engine.
func (e *Engine) Update(t float64, in input.ActionState, c *config.Cvars) error {
	if !e.started {
		e.started = true
		e.last = t
	}
	dt := t - e.last
	e.last = t
	if dt < 0 {
		return fmt.Errorf("preview: time went backwards by %gs", -dt)
	}

	step := c.RPreviewCursorSpeed * dt
	e.x = core.ClampF(e.x+float64(in.Axis())*step, 0, float64(e.width-1))
	vertical := 0
	if in.Held(input.ActionDown) {
		vertical++
	}
	if in.Held(input.ActionUp) {
		vertical--
	}
	e.y = core.ClampF(e.y+float64(vertical)*step, 0, float64(e.height-1))

	turn := 0
	if in.Held(input.ActionTurretRight) {
		turn++
	}
	if in.Held(input.ActionTurretLeft) {
		turn--
	}
	e.turret = normalizeDeg(e.turret + float64(turn)*c.GTurretTurnSpeedDeg*dt)

	e.firing = in.Held(input.ActionFire)
	return nil
}

// Draw implements registry.Engine.
func (e *Engine) Draw(c *config.Cvars) error {
	scr := e.target
	scr.Clear()
	if !c.DDraw {
		return nil
	}

	top := 0
	if c.HudNames {
		top = hudRows
	}
	cols := scr.Width() / cellsPerTile
	rows := scr.Height() - top
	if cols <= 0 || rows <= 0 {
		return nil
	}

	cx, cy := e.Cursor()
	view := core.NewRect(0, 0, cols, rows).Follow(cx, cy, core.NewRect(0, 0, e.width, e.height))

	for ty := view.Y; ty < view.Bottom() && ty < e.height; ty++ {
		row := e.tiles[ty]
		for tx := view.X; tx < view.Right() && tx < len(row); tx++ {
			r, col := e.glyph(row[tx])
			sx := (tx - view.X) * cellsPerTile
			sy := top + ty - view.Y
			scr.SetColored(sx, sy, r, col)
			scr.SetColored(sx+1, sy, r, col)
		}
	}

	if view.Contains(cx, cy) {
		sx := (cx - view.X) * cellsPerTile
		sy := top + cy - view.Y
		cursor := core.ColorBrightYellow
		if e.firing {
			cursor = core.ColorBrightRed
		}
		scr.SetColored(sx, sy, '◆', cursor)
		scr.SetColored(sx+1, sy, turretArrow(e.turret), cursor)
	}

	if c.HudNames {
		hud := fmt.Sprintf(" %s  %dx%d  (%d,%d)  %s", e.name, e.width, e.height, cx, cy, e.surfaceAt(cx, cy))
		scr.DrawTextColored(0, 0, hud, core.ColorBrightWhite)
	}
	return nil
}

// Cursor returns the tile under the cursor.
func (e *Engine) Cursor() (int, int) {
	return int(math.Round(e.x)), int(math.Round(e.y))
}

// Turret returns the turret heading in degrees clockwise from east.
func (e *Engine) Turret() float64 {
	return e.turret
}

// Size returns the level size in tiles.
func (e *Engine) Size() (int, int) {
	return e.width, e.height
}

// startPosition is the first spawn tile, or the level centre without one.
func (e *Engine) startPosition() (float64, float64) {
	for y, row := range e.tiles {
		for x, t := range row {
			if e.kind(t) == KindSpawn {
				return float64(x), float64(y)
			}
		}
	}
	return float64(e.width / 2), float64(e.height / 2)
}

func (e *Engine) kind(t Tile) Kind {
	if t.Surface < len(e.surfaces) {
		return e.surfaces[t.Surface].Kind
	}
	return KindNormal
}

func (e *Engine) surfaceAt(x, y int) string {
	if y < 0 || y >= len(e.tiles) || x < 0 || x >= len(e.tiles[y]) {
		return ""
	}
	t := e.tiles[y][x]
	if t.Surface < len(e.surfaces) {
		return e.surfaces[t.Surface].Name
	}
	return fmt.Sprintf("#%d", t.Surface)
}

func (e *Engine) glyph(t Tile) (rune, core.Color) {
	if t.Surface >= len(e.surfaces) {
		return '?', core.ColorRed
	}
	s := e.surfaces[t.Surface]
	switch s.Kind {
	case KindWall:
		return '█', core.ColorGray
	case KindSpawn:
		return spawnArrow(t.Rotation), core.ColorBrightGreen
	case KindBase:
		return '◘', core.ColorMagenta
	case KindWater:
		return '≈', core.ColorBlue
	case KindSnow:
		return '░', core.ColorBrightWhite
	}

	name := strings.ToLower(s.Name)
	switch {
	case strings.Contains(name, "water"):
		return '≈', core.ColorBrightBlue
	case strings.HasPrefix(name, "ice"):
		return '░', core.ColorBrightCyan
	case strings.HasPrefix(name, "road"):
		return '▒', core.ColorGray
	case strings.HasPrefix(name, "d"):
		return '░', core.ColorSand
	default:
		return '░', core.ColorGreen
	}
}

// spawnArrow points where a vehicle spawned on the tile would face.
func spawnArrow(rotation int) rune {
	return [...]rune{'→', '↑', '←', '↓'}[rotation&3]
}

// normalizeDeg maps any finite angle into [0, 360).
func normalizeDeg(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 || math.IsNaN(deg) {
		return 0
	}
	return deg
}

func turretArrow(deg float64) rune {
	i := int(math.Round(normalizeDeg(deg)/45)) % 8
	return [...]rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}[i]
}

func mapName(p string) string {
	if p == "" {
		return "untitled"
	}
	return strings.TrimSuffix(path.Base(p), ".map")
}
