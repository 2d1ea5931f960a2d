package ebitenhost

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/canopy"
)

// Debug font cell size used by ebitenutil.DebugPrint.
const (
	debugGlyphW = 6
	debugGlyphH = 16

	ellipseSegments = 48
	textCacheLimit  = 256
)

var whitePixel *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white image used as the
// source for solid fills.
func ensureWhitePixel() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(color.White)
	}
	return whitePixel
}

type canvasState struct {
	m       canopy.Transform
	clip    image.Rectangle
	clipped bool
}

// Canvas draws canopy primitives onto an ebiten image. Shapes are
// triangulated on the CPU and submitted with DrawTriangles32 against a white
// pixel; clips become sub-images of the target.
type Canvas struct {
	target *ebiten.Image
	canvasState
	stack []canvasState

	verts []ebiten.Vertex
	inds  []uint32
	pts   []canopy.Vec2

	text   map[string]*ebiten.Image
	images map[image.Image]*ebiten.Image
}

var _ canopy.Canvas = (*Canvas)(nil)

// NewCanvas returns a canvas; call Begin with a target before painting.
func NewCanvas() *Canvas {
	return &Canvas{
		text:   make(map[string]*ebiten.Image),
		images: make(map[image.Image]*ebiten.Image),
	}
}

// Begin resets the state stack and starts painting into target.
func (c *Canvas) Begin(target *ebiten.Image) {
	c.target = target
	c.canvasState = canvasState{m: canopy.Identity()}
	c.stack = c.stack[:0]
}

// ForgetImage drops the cached GPU copy of img.
func (c *Canvas) ForgetImage(img image.Image) {
	if e, ok := c.images[img]; ok {
		e.Deallocate()
		delete(c.images, img)
	}
}

func (c *Canvas) Save() {
	c.stack = append(c.stack, c.canvasState)
}

func (c *Canvas) Restore() {
	if n := len(c.stack); n > 0 {
		c.canvasState = c.stack[n-1]
		c.stack = c.stack[:n-1]
	}
}

func (c *Canvas) Concat(t canopy.Transform) {
	c.m = c.m.Concat(t)
}

// ClipRect clips to the device-space bounding box of b.
func (c *Canvas) ClipRect(b canopy.Bounds) {
	d := c.m.TransformBounds(b)
	r := image.Rect(
		int(math.Round(d.X)), int(math.Round(d.Y)),
		int(math.Round(d.MaxX())), int(math.Round(d.MaxY())),
	)
	if c.clipped {
		r = r.Intersect(c.clip)
	}
	c.clip = r
	c.clipped = true
}

// dst returns the image to draw into, or nil when the clip is empty.
func (c *Canvas) dst() *ebiten.Image {
	if !c.clipped {
		return c.target
	}
	r := c.clip.Intersect(c.target.Bounds())
	if r.Empty() {
		return nil
	}
	return c.target.SubImage(r).(*ebiten.Image)
}

// geoM converts the current transform into an ebiten.GeoM.
func geoM(t canopy.Transform) ebiten.GeoM {
	var m ebiten.GeoM
	m.SetElement(0, 0, t[0])
	m.SetElement(1, 0, t[1])
	m.SetElement(0, 1, t[2])
	m.SetElement(1, 1, t[3])
	m.SetElement(0, 2, t[4])
	m.SetElement(1, 2, t[5])
	return m
}

// appendVertex adds a device-space vertex with premultiplied color.
func (c *Canvas) appendVertex(x, y float64, col canopy.Color) {
	dx, dy := c.m.TransformPoint(x, y)
	a := float32(col.A)
	c.verts = append(c.verts, ebiten.Vertex{
		DstX:   float32(dx),
		DstY:   float32(dy),
		SrcX:   0.5,
		SrcY:   0.5,
		ColorR: float32(col.R) * a,
		ColorG: float32(col.G) * a,
		ColorB: float32(col.B) * a,
		ColorA: a,
	})
}

func (c *Canvas) flush(rule ebiten.FillRule) {
	defer func() {
		c.verts = c.verts[:0]
		c.inds = c.inds[:0]
	}()
	dst := c.dst()
	if dst == nil || len(c.inds) == 0 {
		return
	}
	var op ebiten.DrawTrianglesOptions
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	op.FillRule = rule
	op.AntiAlias = true
	dst.DrawTriangles32(c.verts, c.inds, ensureWhitePixel(), &op)
}

// fillFan fills a polygon as a triangle fan. Under FillRuleEvenOdd this is
// exact for concave and self-intersecting polygons.
func (c *Canvas) fillFan(points []canopy.Vec2, col canopy.Color, rule ebiten.FillRule) {
	if len(points) < 3 || col.IsTransparent() {
		return
	}
	for _, p := range points {
		c.appendVertex(p.X, p.Y, col)
	}
	for i := 1; i+1 < len(points); i++ {
		c.inds = append(c.inds, 0, uint32(i), uint32(i+1))
	}
	c.flush(rule)
}

// stroke fills a quad per segment. Overlaps at joints are drawn once.
func (c *Canvas) stroke(points []canopy.Vec2, closed bool, width float64, col canopy.Color) {
	if len(points) < 2 || width <= 0 || col.IsTransparent() {
		return
	}
	hw := width / 2
	n := len(points)
	segs := n - 1
	if closed {
		segs = n
	}
	for i := 0; i < segs; i++ {
		p, q := points[i], points[(i+1)%n]
		dx, dy := q.X-p.X, q.Y-p.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		// Extend each segment by half the width to cover the joints.
		ux, uy := dx/l*hw, dy/l*hw
		nx, ny := -uy, ux
		base := uint32(len(c.verts))
		c.appendVertex(p.X-ux+nx, p.Y-uy+ny, col)
		c.appendVertex(q.X+ux+nx, q.Y+uy+ny, col)
		c.appendVertex(p.X-ux-nx, p.Y-uy-ny, col)
		c.appendVertex(q.X+ux-nx, q.Y+uy-ny, col)
		c.inds = append(c.inds, base, base+1, base+2, base+1, base+3, base+2)
	}
	c.flush(ebiten.FillRuleNonZero)
}

func rectPoints(dst []canopy.Vec2, b canopy.Bounds) []canopy.Vec2 {
	return append(dst[:0],
		canopy.Vec2{X: b.X, Y: b.Y},
		canopy.Vec2{X: b.MaxX(), Y: b.Y},
		canopy.Vec2{X: b.MaxX(), Y: b.MaxY()},
		canopy.Vec2{X: b.X, Y: b.MaxY()},
	)
}

func ellipsePoints(dst []canopy.Vec2, b canopy.Bounds) []canopy.Vec2 {
	dst = dst[:0]
	cx, cy := b.Center()
	rx, ry := b.Width/2, b.Height/2
	for i := 0; i < ellipseSegments; i++ {
		a := 2 * math.Pi * float64(i) / ellipseSegments
		dst = append(dst, canopy.Vec2{X: cx + rx*math.Cos(a), Y: cy + ry*math.Sin(a)})
	}
	return dst
}

func (c *Canvas) FillRect(b canopy.Bounds, col canopy.Color) {
	c.pts = rectPoints(c.pts, b)
	c.fillFan(c.pts, col, ebiten.FillRuleFillAll)
}

func (c *Canvas) StrokeRect(b canopy.Bounds, width float64, col canopy.Color) {
	c.pts = rectPoints(c.pts, b)
	c.stroke(c.pts, true, width, col)
}

func (c *Canvas) FillEllipse(b canopy.Bounds, col canopy.Color) {
	c.pts = ellipsePoints(c.pts, b)
	c.fillFan(c.pts, col, ebiten.FillRuleFillAll)
}

func (c *Canvas) StrokeEllipse(b canopy.Bounds, width float64, col canopy.Color) {
	c.pts = ellipsePoints(c.pts, b)
	c.stroke(c.pts, true, width, col)
}

func (c *Canvas) FillPolygon(points []canopy.Vec2, col canopy.Color) {
	c.fillFan(points, col, ebiten.FillRuleEvenOdd)
}

func (c *Canvas) StrokePolygon(points []canopy.Vec2, closed bool, width float64, col canopy.Color) {
	c.stroke(points, closed, width, col)
}

// DrawText renders with the ebitenutil debug font, scaled from its 6x16
// cell to the node's font metrics and tinted with col.
func (c *Canvas) DrawText(s string, x, y float64, m canopy.FontMetrics, col canopy.Color) {
	dst := c.dst()
	if dst == nil || s == "" || col.IsTransparent() {
		return
	}
	img := c.textImage(s)
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(m.Advance/debugGlyphW, m.LineHeight/debugGlyphH)
	op.GeoM.Translate(x, y)
	op.GeoM.Concat(geoM(c.m))
	op.ColorScale.ScaleWithColor(col.RGBA())
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(img, &op)
}

func (c *Canvas) textImage(s string) *ebiten.Image {
	if img, ok := c.text[s]; ok {
		return img
	}
	if len(c.text) >= textCacheLimit {
		for k, img := range c.text {
			img.Deallocate()
			delete(c.text, k)
		}
	}
	img := ebiten.NewImage(max(1, len([]rune(s))*debugGlyphW), debugGlyphH)
	ebitenutil.DebugPrint(img, s)
	c.text[s] = img
	return img
}

func (c *Canvas) DrawImage(img image.Image, dst canopy.Bounds, alpha float64) {
	target := c.dst()
	if target == nil || img == nil || alpha <= 0 || dst.IsEmpty() {
		return
	}
	src, ok := img.(*ebiten.Image)
	if !ok {
		if src, ok = c.images[img]; !ok {
			src = ebiten.NewImageFromImage(img)
			c.images[img] = src
		}
	}
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(dst.Width/float64(sb.Dx()), dst.Height/float64(sb.Dy()))
	op.GeoM.Translate(dst.X, dst.Y)
	op.GeoM.Concat(geoM(c.m))
	op.ColorScale.ScaleAlpha(float32(alpha))
	op.Filter = ebiten.FilterLinear
	target.DrawImage(src, &op)
}
