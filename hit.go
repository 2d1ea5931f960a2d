package canopy

// HitShape defines a custom hit testing region in local coordinates.
// When set on a node it replaces the node's own-shape test during picking.
type HitShape interface {
	// Contains reports whether the local-space point (x, y) is inside the shape.
	Contains(x, y float64) bool
	// Bounds returns the local extent of the shape. It is added to the
	// node's full bounds so picking reaches shapes outside the node's own
	// bounds.
	Bounds() Bounds
}

// --- Built-in HitShape types ---

// HitRect is an axis-aligned rectangular hit area in local coordinates.
type HitRect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r HitRect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Bounds returns the rectangle.
func (r HitRect) Bounds() Bounds {
	return NewBounds(r.X, r.Y, r.Width, r.Height)
}

// HitCircle is a circular hit area in local coordinates.
type HitCircle struct {
	CenterX, CenterY, Radius float64
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c HitCircle) Contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// Bounds returns the square enclosing the circle.
func (c HitCircle) Bounds() Bounds {
	return NewBounds(c.CenterX-c.Radius, c.CenterY-c.Radius, 2*c.Radius, 2*c.Radius)
}

// HitPolygon is a polygon hit area in local coordinates. Concave outlines
// are supported; containment uses the even-odd rule.
type HitPolygon struct {
	Points []Vec2
}

// Contains reports whether (x, y) lies inside the polygon.
func (p HitPolygon) Contains(x, y float64) bool {
	return pointInPolygon(p.Points, x, y)
}

// Bounds returns the bounding box of the outline.
func (p HitPolygon) Bounds() Bounds {
	var b Bounds
	for _, pt := range p.Points {
		b.AddPoint(pt.X, pt.Y)
	}
	return b
}
