package canopy

import (
	"image"
	"math"
	"strings"
	"unicode/utf8"
)

// FontMetrics is the fixed-advance measurement used to size text nodes.
// Hosts with real fonts can set metrics matching their face.
type FontMetrics struct {
	Advance    float64 // width of one character
	LineHeight float64 // height of one line
}

// DefaultFontMetrics matches the 6x16 bitmap debug font used by ebitenutil.
var DefaultFontMetrics = FontMetrics{Advance: 6, LineHeight: 16}

// --- Path ---

// PathPoints returns a copy of the path's points.
func (n *Node) PathPoints() []Vec2 {
	return append([]Vec2(nil), n.points...)
}

// Closed reports whether the path is closed.
func (n *Node) Closed() bool {
	return n.closed
}

// SetPathPoints replaces the path geometry; bounds follow the points.
func (n *Node) SetPathPoints(points []Vec2, closed bool) {
	n.points = append(n.points[:0], points...)
	n.closed = closed
	n.setDerivedBounds(n.pathBounds())
}

// pathBounds returns the points' bounding box grown by half the stroke width.
func (n *Node) pathBounds() Bounds {
	b := pointsBounds(n.points)
	if n.strokeWidth > 0 {
		b = b.Expand(n.strokeWidth / 2)
	}
	return b
}

func pointsBounds(points []Vec2) Bounds {
	var b Bounds
	for _, p := range points {
		b.AddPoint(p.X, p.Y)
	}
	return b
}

// fitPathPoints rescales the points so that the stroked path fills to.
func (n *Node) fitPathPoints(to Bounds) {
	raw := pointsBounds(n.points)
	if raw.IsEmpty() || to.IsEmpty() {
		return
	}
	target := to.Expand(-n.strokeWidth / 2)
	sx, sy := 1.0, 1.0
	if raw.Width > 0 {
		sx = target.Width / raw.Width
	}
	if raw.Height > 0 {
		sy = target.Height / raw.Height
	}
	for i, p := range n.points {
		n.points[i] = Vec2{
			X: target.X + (p.X-raw.X)*sx,
			Y: target.Y + (p.Y-raw.Y)*sy,
		}
	}
}

// --- Text ---

// Text returns the text of a text node.
func (n *Node) Text() string {
	return n.text
}

// SetText replaces the text; bounds are re-measured.
func (n *Node) SetText(s string) {
	if n.text == s {
		return
	}
	n.text = s
	n.setDerivedBounds(n.textBounds())
}

// FontMetrics returns the metrics used to measure the text.
func (n *Node) FontMetrics() FontMetrics {
	return n.font
}

// SetFontMetrics changes the text measurement; bounds are re-measured.
func (n *Node) SetFontMetrics(m FontMetrics) error {
	if m.Advance <= 0 || m.LineHeight <= 0 {
		return &ConfigError{Field: "font metrics", Value: m, Reason: "advance and line height must be positive"}
	}
	n.font = m
	n.setDerivedBounds(n.textBounds())
	return nil
}

func (n *Node) textBounds() Bounds {
	if n.text == "" {
		return Bounds{}
	}
	lines := strings.Split(n.text, "\n")
	widest := 0
	for _, l := range lines {
		if c := utf8.RuneCountInString(l); c > widest {
			widest = c
		}
	}
	return NewBounds(0, 0, float64(widest)*n.font.Advance, float64(len(lines))*n.font.LineHeight)
}

// --- Image ---

// Image returns the image of an image node.
func (n *Node) Image() image.Image {
	return n.image
}

// SetImage replaces the image; bounds take the image's size.
func (n *Node) SetImage(img image.Image) {
	n.image = img
	n.setDerivedBounds(imageBounds(img))
}

func imageBounds(img image.Image) Bounds {
	if img == nil {
		return Bounds{}
	}
	r := img.Bounds()
	return NewBounds(0, 0, float64(r.Dx()), float64(r.Dy()))
}

// --- Custom ---

// SetPaintFunc replaces the painter of a custom node.
func (n *Node) SetPaintFunc(fn PaintFunc) {
	n.paintFn = fn
	n.InvalidatePaint()
}

// setDerivedBounds stores bounds computed from the node's own geometry.
// Unlike SetBounds it never rescales path points.
func (n *Node) setDerivedBounds(b Bounds) bool {
	if b.Equal(n.bounds, boundsEpsilon) {
		n.InvalidatePaint()
		return false
	}
	n.bounds = b
	n.invalidateFullBounds()
	n.InvalidatePaint()
	return true
}

// --- Own-shape hit testing ---

// hitsOwnShape reports whether the local pick rectangle r touches the node's
// own geometry (children not included).
func (n *Node) hitsOwnShape(r Bounds) bool {
	if n.HitShape != nil {
		return hitShapeTouches(n.HitShape, r)
	}
	if !n.bounds.Intersects(r) {
		return false
	}
	cx, cy := r.Center()
	halo := math.Max(r.Width, r.Height) / 2
	switch n.Kind {
	case NodeKindEllipse:
		return ellipseTouches(n.bounds, r)
	case NodeKindPath:
		reach := halo + n.strokeWidth/2
		if n.closed && pointInPolygon(n.points, cx, cy) {
			return true
		}
		return polylineDistance(n.points, n.closed, cx, cy) <= reach
	default:
		return true
	}
}

// hitShapeTouches tests the centre of r and, when r has area, its corners.
func hitShapeTouches(s HitShape, r Bounds) bool {
	cx, cy := r.Center()
	if s.Contains(cx, cy) {
		return true
	}
	if r.Width == 0 && r.Height == 0 {
		return false
	}
	return s.Contains(r.X, r.Y) || s.Contains(r.MaxX(), r.Y) ||
		s.Contains(r.MaxX(), r.MaxY()) || s.Contains(r.X, r.MaxY())
}

// ellipseTouches tests the point of r nearest the ellipse centre.
func ellipseTouches(e, r Bounds) bool {
	rx, ry := e.Width/2, e.Height/2
	if rx <= 0 || ry <= 0 {
		return false
	}
	ecx, ecy := e.Center()
	px := math.Max(r.X, math.Min(ecx, r.MaxX()))
	py := math.Max(r.Y, math.Min(ecy, r.MaxY()))
	dx := (px - ecx) / rx
	dy := (py - ecy) / ry
	return dx*dx+dy*dy <= 1
}

// pointInPolygon is an even-odd ray-casting test; the polygon may be concave.
func pointInPolygon(points []Vec2, x, y float64) bool {
	n := len(points)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := points[i], points[j]
		if (pi.Y > y) != (pj.Y > y) &&
			x < (pj.X-pi.X)*(y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
	}
	return inside
}

// polylineDistance returns the distance from (x, y) to the nearest segment.
func polylineDistance(points []Vec2, closed bool, x, y float64) float64 {
	switch len(points) {
	case 0:
		return math.Inf(1)
	case 1:
		return math.Hypot(x-points[0].X, y-points[0].Y)
	}
	best := math.Inf(1)
	for i := 1; i < len(points); i++ {
		best = math.Min(best, segmentDistance(points[i-1], points[i], x, y))
	}
	if closed {
		best = math.Min(best, segmentDistance(points[len(points)-1], points[0], x, y))
	}
	return best
}

func segmentDistance(a, b Vec2, x, y float64) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(x-a.X, y-a.Y)
	}
	t := ((x-a.X)*dx + (y-a.Y)*dy) / l2
	t = clamp01(t)
	return math.Hypot(x-(a.X+t*dx), y-(a.Y+t*dy))
}
