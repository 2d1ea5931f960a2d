// Package ggcanvas paints canopy scenes into images with the gg 2D
// rasterizer. It is the headless backend: snapshots, golden-image tests and
// server-side rendering.
package ggcanvas

import (
	"image"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/phanxgames/canopy"
)

type clipState struct {
	rect    image.Rectangle // device pixels
	clipped bool
}

// Canvas adapts a gg context to canopy.Canvas.
//
// Clipping is applied per primitive: while a clip is active each primitive
// is rasterized into a scratch pixmap and only the pixels inside the
// device-space clip rectangle are composited onto the target. Clips under a
// rotating transform are clipped to their axis-aligned device bounds.
type Canvas struct {
	width, height int
	pm            *gg.Pixmap
	dc            *gg.Context
	scratchPM     *gg.Pixmap
	scratch       *gg.Context
	face          text.Face

	clipState
	stack []clipState
}

var _ canopy.Canvas = (*Canvas)(nil)

// NewImage creates a canvas backed by a fresh transparent width×height
// pixmap.
func NewImage(width, height int) *Canvas {
	pm := gg.NewPixmap(width, height)
	return &Canvas{
		width:  width,
		height: height,
		pm:     pm,
		dc:     gg.NewContext(width, height, gg.WithPixmap(pm)),
	}
}

// Context returns the gg context drawing into the target pixmap.
func (c *Canvas) Context() *gg.Context { return c.dc }

// Image returns a copy of the rendered pixels.
func (c *Canvas) Image() *image.RGBA { return c.pm.ToImage() }

// SavePNG writes the rendered pixels to a PNG file.
func (c *Canvas) SavePNG(path string) error { return c.dc.SavePNG(path) }

// SetFont sets the face used for text nodes. Without a face text is skipped.
func (c *Canvas) SetFont(face text.Face) { c.face = face }

// Close releases the contexts.
func (c *Canvas) Close() error {
	if c.scratch != nil {
		_ = c.scratch.Close()
	}
	return c.dc.Close()
}

// Matrix converts a canopy transform to a gg matrix.
func Matrix(t canopy.Transform) gg.Matrix {
	return gg.Matrix{
		A: t[0], B: t[2], C: t[4],
		D: t[1], E: t[3], F: t[5],
	}
}

func (c *Canvas) Save() {
	c.stack = append(c.stack, c.clipState)
	c.dc.Push()
}

func (c *Canvas) Restore() {
	if n := len(c.stack); n > 0 {
		c.clipState = c.stack[n-1]
		c.stack = c.stack[:n-1]
	}
	c.dc.Pop()
}

func (c *Canvas) Concat(t canopy.Transform) {
	c.dc.Transform(Matrix(t))
}

func (c *Canvas) ClipRect(b canopy.Bounds) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range [4][2]float64{
		{b.X, b.Y}, {b.MaxX(), b.Y}, {b.X, b.MaxY()}, {b.MaxX(), b.MaxY()},
	} {
		x, y := c.dc.TransformPoint(p[0], p[1])
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	r := image.Rect(
		int(math.Round(minX)), int(math.Round(minY)),
		int(math.Round(maxX)), int(math.Round(maxY)),
	).Intersect(image.Rect(0, 0, c.width, c.height))
	if c.clipped {
		r = r.Intersect(c.rect)
	}
	c.rect = r
	c.clipped = true
}

// draw runs fn against the target, or through the scratch pixmap when a
// clip is active.
func (c *Canvas) draw(fn func(dc *gg.Context) error) {
	if !c.clipped {
		if err := fn(c.dc); err != nil {
			canopy.Logger().Debug("ggcanvas draw failed", "err", err)
		}
		return
	}
	if c.rect.Empty() {
		return
	}
	if c.scratch == nil {
		c.scratchPM = gg.NewPixmap(c.width, c.height)
		c.scratch = gg.NewContext(c.width, c.height, gg.WithPixmap(c.scratchPM))
	}
	c.scratch.Clear()
	c.scratch.SetTransform(c.dc.GetTransform())
	if err := fn(c.scratch); err != nil {
		canopy.Logger().Debug("ggcanvas draw failed", "err", err)
		return
	}
	compositeOver(c.pm.Data(), c.scratchPM.Data(), c.width, c.rect)
}

// compositeOver blends premultiplied src over dst inside r.
func compositeOver(dst, src []uint8, stride int, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := (y*stride + r.Min.X) * 4
		for x := r.Min.X; x < r.Max.X; x, i = x+1, i+4 {
			sa := uint32(src[i+3])
			switch sa {
			case 0:
				continue
			case 255:
				copy(dst[i:i+4], src[i:i+4])
				continue
			}
			inv := 255 - sa
			for k := 0; k < 4; k++ {
				dst[i+k] = uint8(uint32(src[i+k]) + (uint32(dst[i+k])*inv+127)/255)
			}
		}
	}
}

func setColor(dc *gg.Context, col canopy.Color) {
	dc.SetRGBA(col.R, col.G, col.B, col.A)
}

func stroke(dc *gg.Context, width float64) error {
	dc.SetLineWidth(width)
	return dc.Stroke()
}

func (c *Canvas) FillRect(b canopy.Bounds, col canopy.Color) {
	c.draw(func(dc *gg.Context) error {
		setColor(dc, col)
		dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
		return dc.Fill()
	})
}

func (c *Canvas) StrokeRect(b canopy.Bounds, width float64, col canopy.Color) {
	c.draw(func(dc *gg.Context) error {
		setColor(dc, col)
		dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
		return stroke(dc, width)
	})
}

func (c *Canvas) FillEllipse(b canopy.Bounds, col canopy.Color) {
	cx, cy := b.Center()
	c.draw(func(dc *gg.Context) error {
		setColor(dc, col)
		dc.DrawEllipse(cx, cy, b.Width/2, b.Height/2)
		return dc.Fill()
	})
}

func (c *Canvas) StrokeEllipse(b canopy.Bounds, width float64, col canopy.Color) {
	cx, cy := b.Center()
	c.draw(func(dc *gg.Context) error {
		setColor(dc, col)
		dc.DrawEllipse(cx, cy, b.Width/2, b.Height/2)
		return stroke(dc, width)
	})
}

func polygon(dc *gg.Context, points []canopy.Vec2, closed bool) {
	for i, p := range points {
		if i == 0 {
			dc.MoveTo(p.X, p.Y)
		} else {
			dc.LineTo(p.X, p.Y)
		}
	}
	if closed {
		dc.ClosePath()
	}
}

// FillPolygon fills with the even-odd rule, matching hit testing.
func (c *Canvas) FillPolygon(points []canopy.Vec2, col canopy.Color) {
	if len(points) < 3 {
		return
	}
	c.draw(func(dc *gg.Context) error {
		setColor(dc, col)
		dc.SetFillRule(gg.FillRuleEvenOdd)
		defer dc.SetFillRule(gg.FillRuleNonZero)
		polygon(dc, points, true)
		return dc.Fill()
	})
}

func (c *Canvas) StrokePolygon(points []canopy.Vec2, closed bool, width float64, col canopy.Color) {
	if len(points) < 2 {
		return
	}
	c.draw(func(dc *gg.Context) error {
		setColor(dc, col)
		polygon(dc, points, closed)
		return stroke(dc, width)
	})
}

// DrawText draws one line with the canvas font. The baseline is placed so
// that the font's ascent and descent fill m.LineHeight. Glyphs are
// rasterized upright at the transformed origin.
func (c *Canvas) DrawText(s string, x, y float64, m canopy.FontMetrics, col canopy.Color) {
	if c.face == nil || s == "" {
		return
	}
	fm := c.face.Metrics()
	baseline := fm.Ascent
	if h := fm.Ascent + fm.Descent; h > 0 && m.LineHeight > 0 {
		baseline = m.LineHeight * fm.Ascent / h
	}
	c.draw(func(dc *gg.Context) error {
		dx, dy := dc.TransformPoint(x, y+baseline)
		dc.Push()
		defer dc.Pop()
		dc.Identity()
		setColor(dc, col)
		dc.SetFont(c.face)
		dc.DrawString(s, math.Round(dx), math.Round(dy))
		return nil
	})
}

func (c *Canvas) DrawImage(img image.Image, dst canopy.Bounds, alpha float64) {
	if img == nil || alpha <= 0 || dst.IsEmpty() {
		return
	}
	buf := gg.ImageBufFromImage(img)
	c.draw(func(dc *gg.Context) error {
		dc.DrawImageEx(buf, gg.DrawImageOptions{
			X:         dst.X,
			Y:         dst.Y,
			DstWidth:  dst.Width,
			DstHeight: dst.Height,
			Opacity:   alpha,
		})
		return nil
	})
}
