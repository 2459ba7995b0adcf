// Package core provides the render target shared by engines and the host.
// It has no terminal dependencies so engines stay testable.
package core

// Rect is an axis-aligned area in cell coordinates.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge (exclusive).
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge (exclusive).
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Follow moves r so that (x, y) is centered, then shifts it back inside
// world. A world smaller than r is pinned to its top-left corner.
func (r Rect) Follow(x, y int, world Rect) Rect {
	r.X = x - r.W/2
	r.Y = y - r.H/2
	r.X = Clamp(r.X, world.X, max(world.X, world.Right()-r.W))
	r.Y = Clamp(r.Y, world.Y, max(world.Y, world.Bottom()-r.H))
	return r
}

// Clamp restricts a value to be within [lo, hi].
func Clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// ClampF restricts a float64 value to be within [lo, hi].
func ClampF(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
