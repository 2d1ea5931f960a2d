package canopy

import (
	"image"
	"strings"
)

// Canvas is the drawing surface a camera paints into. Implementations keep a
// stack of graphics states: Save pushes the current transform and clip,
// Restore pops them. Geometry is given in the current coordinate system.
// Colors arrive with node alpha already applied.
type Canvas interface {
	Save()
	Restore()
	// Concat post-multiplies the current transform: t is applied to
	// geometry before the existing transform.
	Concat(t Transform)
	// ClipRect intersects the clip with b.
	ClipRect(b Bounds)

	FillRect(b Bounds, c Color)
	StrokeRect(b Bounds, width float64, c Color)
	FillEllipse(b Bounds, c Color)
	StrokeEllipse(b Bounds, width float64, c Color)
	FillPolygon(points []Vec2, c Color)
	StrokePolygon(points []Vec2, closed bool, width float64, c Color)
	// DrawText draws one line of text with its top-left corner at (x, y).
	DrawText(text string, x, y float64, m FontMetrics, c Color)
	// DrawImage draws img scaled into dst.
	DrawImage(img image.Image, dst Bounds, alpha float64)
}

type paintState struct {
	transform Transform
	clip      Bounds
	clipped   bool
	alpha     float64
}

// PaintContext carries the resolved state of a paint traversal: the
// transform from the current node to device space, the device-space clip and
// the accumulated alpha. Custom painters receive it to draw through Canvas.
type PaintContext struct {
	canvas Canvas
	paintState
	stack []paintState

	painted int
	culled  int
}

// NewPaintContext returns a context painting into canvas with an identity
// device transform and no clip.
func NewPaintContext(canvas Canvas) *PaintContext {
	return &PaintContext{
		canvas:     canvas,
		paintState: paintState{transform: Identity(), alpha: 1},
	}
}

// Canvas returns the drawing surface.
func (ctx *PaintContext) Canvas() Canvas { return ctx.canvas }

// Transform returns the current local → device transform.
func (ctx *PaintContext) Transform() Transform { return ctx.transform }

// Clip returns the device-space clip. ok is false when nothing is clipped.
func (ctx *PaintContext) Clip() (b Bounds, ok bool) { return ctx.clip, ctx.clipped }

// Alpha returns the accumulated opacity of the node being painted.
func (ctx *PaintContext) Alpha() float64 { return ctx.alpha }

// Tint returns c with the accumulated alpha applied.
func (ctx *PaintContext) Tint(c Color) Color { return c.WithAlpha(ctx.alpha) }

// NodesPainted returns how many nodes were painted through this context.
func (ctx *PaintContext) NodesPainted() int { return ctx.painted }

// NodesCulled returns how many subtrees were skipped because they lay
// entirely outside the clip.
func (ctx *PaintContext) NodesCulled() int { return ctx.culled }

func (ctx *PaintContext) save() {
	ctx.stack = append(ctx.stack, ctx.paintState)
	ctx.canvas.Save()
}

func (ctx *PaintContext) restore() {
	last := len(ctx.stack) - 1
	ctx.paintState = ctx.stack[last]
	ctx.stack = ctx.stack[:last]
	ctx.canvas.Restore()
}

func (ctx *PaintContext) concat(t Transform) {
	if t.IsIdentity() {
		return
	}
	ctx.transform = ctx.transform.Concat(t)
	ctx.canvas.Concat(t)
}

// clipRect intersects the clip with local bounds b.
func (ctx *PaintContext) clipRect(b Bounds) {
	device := ctx.transform.TransformBounds(b)
	if ctx.clipped {
		device = ctx.clip.Intersection(device)
	}
	ctx.clip = device
	ctx.clipped = true
	ctx.canvas.ClipRect(b)
}

// visible reports whether local bounds b reach the clip.
func (ctx *PaintContext) visible(b Bounds) bool {
	if b.IsEmpty() {
		return false
	}
	if !ctx.clipped {
		return true
	}
	return ctx.transform.TransformBounds(b).Intersects(ctx.clip)
}

// --- Traversal ---

// Render paints the camera into canvas, with the camera's local coordinate
// space mapped to the canvas' current space. It clears NeedsRepaint.
func (c *Camera) Render(canvas Canvas) *PaintContext {
	ctx := NewPaintContext(canvas)
	if c.visible {
		ctx.paintLocal(c.Node)
	}
	return ctx
}

// PaintNode paints n and its subtree through n's transform. Custom painters
// may use it to draw other nodes inline.
func (ctx *PaintContext) PaintNode(n *Node) {
	ctx.paintNode(n)
}

func (ctx *PaintContext) paintNode(n *Node) {
	if !n.visible || n.alpha <= 0 {
		return
	}
	t := ctx.transform.Concat(n.transform)
	full := n.FullBoundsLocal()
	if n.camera != nil {
		// A camera's layers are clipped to its bounds, not to its full bounds.
		full = Union(full, n.bounds)
	}
	if full.IsEmpty() || (ctx.clipped && !t.TransformBounds(full).Intersects(ctx.clip)) {
		ctx.culled++
		return
	}
	ctx.save()
	ctx.concat(n.transform)
	ctx.paintLocal(n)
	ctx.restore()
}

// paintLocal paints n in the current coordinate system.
func (ctx *PaintContext) paintLocal(n *Node) {
	ctx.alpha *= n.alpha
	if c := n.camera; c != nil {
		ctx.paintCamera(c)
		return
	}
	ctx.paintSelf(n)
	for _, child := range n.children {
		ctx.paintNode(child)
	}
}

// paintCamera clips to the camera bounds, paints its background, its layers
// through the view and finally its children.
func (ctx *PaintContext) paintCamera(c *Camera) {
	if c.painting {
		return
	}
	c.painting = true
	defer func() { c.painting = false }()

	ctx.save()
	ctx.clipRect(c.bounds)
	ctx.paintSelf(c.Node)
	if len(c.layers) > 0 && !c.bounds.IsEmpty() {
		ctx.save()
		ctx.concat(c.view)
		for _, l := range c.layers {
			ctx.paintNode(l.Node)
		}
		ctx.restore()
	}
	for _, child := range c.children {
		ctx.paintNode(child)
	}
	ctx.restore()
	c.needsRepaint = false
}

// paintSelf paints the node's own geometry, without children.
func (ctx *PaintContext) paintSelf(n *Node) {
	if !ctx.visible(n.bounds) {
		return
	}
	ctx.painted++
	cv := ctx.canvas
	fill := ctx.Tint(n.paint)
	stroke := ctx.Tint(n.strokePaint)
	stroked := n.strokeWidth > 0 && !stroke.IsTransparent()

	switch n.Kind {
	case NodeKindRectangle:
		if !fill.IsTransparent() {
			cv.FillRect(n.bounds, fill)
		}
		if stroked {
			cv.StrokeRect(n.bounds, n.strokeWidth, stroke)
		}
	case NodeKindEllipse:
		if !fill.IsTransparent() {
			cv.FillEllipse(n.bounds, fill)
		}
		if stroked {
			cv.StrokeEllipse(n.bounds, n.strokeWidth, stroke)
		}
	case NodeKindPath:
		if n.closed && !fill.IsTransparent() {
			cv.FillPolygon(n.points, fill)
		}
		if stroked {
			cv.StrokePolygon(n.points, n.closed, n.strokeWidth, stroke)
		}
	case NodeKindText:
		if fill.IsTransparent() {
			return
		}
		for i, line := range strings.Split(n.text, "\n") {
			cv.DrawText(line, n.bounds.X, n.bounds.Y+float64(i)*n.font.LineHeight, n.font, fill)
		}
	case NodeKindImage:
		if n.image != nil {
			cv.DrawImage(n.image, n.bounds, ctx.alpha)
		}
	case NodeKindCustom:
		if n.paintFn != nil {
			n.paintFn(ctx, n)
		}
	default:
		if !fill.IsTransparent() {
			cv.FillRect(n.bounds, fill)
		}
	}
}
