package canopy

import (
	"fmt"
	"math"
)

// boundsEpsilon is the tolerance used when deciding whether a bounds change
// is real. SetBounds with a rectangle within this distance is a no-op.
const boundsEpsilon = 1e-9

// Bounds is an axis-aligned rectangle with an explicit empty state. The zero
// value is empty. An empty Bounds keeps its stored rectangle, but that
// rectangle takes no part in geometric queries or unions.
//
// The coordinate system has its origin at the top-left, with Y increasing
// downward.
type Bounds struct {
	X, Y, Width, Height float64

	set bool // false means empty
}

// NewBounds returns a non-empty Bounds. Negative sizes are normalized by
// moving the origin, so NewBounds(10, 0, -5, 1) covers x in [5, 10].
func NewBounds(x, y, w, h float64) Bounds {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	return Bounds{X: x, Y: y, Width: w, Height: h, set: true}
}

// EmptyBounds returns an empty Bounds.
func EmptyBounds() Bounds {
	return Bounds{}
}

// IsEmpty reports whether b holds no geometry.
func (b Bounds) IsEmpty() bool {
	return !b.set
}

// Reset marks b empty without clearing the stored rectangle.
func (b *Bounds) Reset() {
	b.set = false
}

// SetRect replaces the rectangle and marks b non-empty.
func (b *Bounds) SetRect(x, y, w, h float64) {
	*b = NewBounds(x, y, w, h)
}

// Add grows b to include other. Adding an empty Bounds is a no-op.
func (b *Bounds) Add(other Bounds) {
	if !other.set {
		return
	}
	if !b.set {
		*b = other
		return
	}
	minX := math.Min(b.X, other.X)
	minY := math.Min(b.Y, other.Y)
	maxX := math.Max(b.MaxX(), other.MaxX())
	maxY := math.Max(b.MaxY(), other.MaxY())
	*b = Bounds{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY, set: true}
}

// AddPoint grows b to include (x, y). An empty b becomes a zero-size
// rectangle at the point.
func (b *Bounds) AddPoint(x, y float64) {
	if !b.set {
		*b = Bounds{X: x, Y: y, set: true}
		return
	}
	minX := math.Min(b.X, x)
	minY := math.Min(b.Y, y)
	maxX := math.Max(b.MaxX(), x)
	maxY := math.Max(b.MaxY(), y)
	*b = Bounds{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY, set: true}
}

// Union returns the smallest Bounds containing a and b.
func Union(a, b Bounds) Bounds {
	a.Add(b)
	return a
}

// Expand returns b grown by d on every side. Empty stays empty.
func (b Bounds) Expand(d float64) Bounds {
	if !b.set {
		return b
	}
	w := b.Width + 2*d
	h := b.Height + 2*d
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return Bounds{X: b.X - d, Y: b.Y - d, Width: w, Height: h, set: true}
}

// MaxX returns the right edge.
func (b Bounds) MaxX() float64 { return b.X + b.Width }

// MaxY returns the bottom edge.
func (b Bounds) MaxY() float64 { return b.Y + b.Height }

// Center returns the midpoint of the rectangle.
func (b Bounds) Center() (x, y float64) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Contains reports whether the point (x, y) lies inside b.
// Points on the edge are considered inside. Empty bounds contain nothing.
func (b Bounds) Contains(x, y float64) bool {
	return b.set &&
		x >= b.X && x <= b.X+b.Width &&
		y >= b.Y && y <= b.Y+b.Height
}

// Intersects reports whether b and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (b Bounds) Intersects(other Bounds) bool {
	return b.set && other.set &&
		b.X <= other.X+other.Width &&
		b.X+b.Width >= other.X &&
		b.Y <= other.Y+other.Height &&
		b.Y+b.Height >= other.Y
}

// Intersection returns the overlap of b and other, or an empty Bounds.
func (b Bounds) Intersection(other Bounds) Bounds {
	if !b.Intersects(other) {
		return Bounds{}
	}
	minX := math.Max(b.X, other.X)
	minY := math.Max(b.Y, other.Y)
	maxX := math.Min(b.MaxX(), other.MaxX())
	maxY := math.Min(b.MaxY(), other.MaxY())
	return Bounds{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY, set: true}
}

// Equal reports whether b and other describe the same geometry within tol.
// Two empty bounds are equal regardless of their stored rectangles.
func (b Bounds) Equal(other Bounds, tol float64) bool {
	if b.set != other.set {
		return false
	}
	if !b.set {
		return true
	}
	return math.Abs(b.X-other.X) <= tol &&
		math.Abs(b.Y-other.Y) <= tol &&
		math.Abs(b.Width-other.Width) <= tol &&
		math.Abs(b.Height-other.Height) <= tol
}

func (b Bounds) String() string {
	if !b.set {
		return "Bounds{empty}"
	}
	return fmt.Sprintf("Bounds{%g, %g, %g, %g}", b.X, b.Y, b.Width, b.Height)
}
