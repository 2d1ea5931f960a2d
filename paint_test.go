package canopy

import (
	"fmt"
	"image"
	"testing"
)

// recordingCanvas logs every call so tests can check paint order and state.
type recordingCanvas struct {
	ops   []string
	depth int
	clips []Bounds
	tr    Transform
	trs   []Transform
}

func (c *recordingCanvas) transform() Transform {
	if c.tr == (Transform{}) {
		return Identity()
	}
	return c.tr
}

func (c *recordingCanvas) Save() {
	c.depth++
	c.trs = append(c.trs, c.transform())
}

func (c *recordingCanvas) Restore() {
	c.depth--
	c.tr = c.trs[len(c.trs)-1]
	c.trs = c.trs[:len(c.trs)-1]
}

func (c *recordingCanvas) Concat(t Transform) { c.tr = c.transform().Concat(t) }

func (c *recordingCanvas) ClipRect(b Bounds) {
	c.clips = append(c.clips, c.transform().TransformBounds(b))
}

func (c *recordingCanvas) record(op string, b Bounds, col Color) {
	d := c.transform().TransformBounds(b)
	c.ops = append(c.ops, fmt.Sprintf("%s %g,%g,%g,%g a=%.2f", op, d.X, d.Y, d.Width, d.Height, col.A))
}

func (c *recordingCanvas) FillRect(b Bounds, col Color)                { c.record("fillRect", b, col) }
func (c *recordingCanvas) StrokeRect(b Bounds, w float64, col Color)   { c.record("strokeRect", b, col) }
func (c *recordingCanvas) FillEllipse(b Bounds, col Color)             { c.record("fillEllipse", b, col) }
func (c *recordingCanvas) StrokeEllipse(b Bounds, w float64, col Color) { c.record("strokeEllipse", b, col) }

func (c *recordingCanvas) FillPolygon(points []Vec2, col Color) {
	c.record("fillPolygon", pointsBounds(points), col)
}

func (c *recordingCanvas) StrokePolygon(points []Vec2, closed bool, w float64, col Color) {
	c.record("strokePolygon", pointsBounds(points), col)
}

func (c *recordingCanvas) DrawText(text string, x, y float64, m FontMetrics, col Color) {
	c.ops = append(c.ops, fmt.Sprintf("text %q", text))
}

func (c *recordingCanvas) DrawImage(img image.Image, dst Bounds, alpha float64) {
	c.record("image", dst, Color{A: alpha})
}

func assertOps(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("ops = %q, want %q", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("op %d = %q, want %q (all: %q)", i, got[i], want[i], got)
		}
	}
}

func paintScene(t *testing.T) (*Scene, *recordingCanvas) {
	t.Helper()
	s := NewScene()
	s.Camera().SetBoundsRect(0, 0, 100, 100)
	return s, &recordingCanvas{}
}

func TestRenderPaintOrder(t *testing.T) {
	s, cv := paintScene(t)
	a := mustRect(t, "a", 0, 0, 10, 10)
	b := mustRect(t, "b", 20, 0, 10, 10)
	_ = s.Layer().AddChild(a)
	_ = s.Layer().AddChild(b)

	ctx := s.Render(cv)
	assertOps(t, cv.ops,
		"fillRect 0,0,10,10 a=1.00",
		"fillRect 20,0,10,10 a=1.00",
	)
	if ctx.NodesPainted() != 3 { // camera, a, b
		t.Errorf("NodesPainted = %d, want 3", ctx.NodesPainted())
	}
	if cv.depth != 0 {
		t.Errorf("unbalanced Save/Restore: depth %d", cv.depth)
	}
	if len(cv.clips) == 0 {
		t.Fatal("camera did not clip")
	}
	assertBounds(t, "clip", cv.clips[0], NewBounds(0, 0, 100, 100))
}

func TestRenderThroughViewAndTransforms(t *testing.T) {
	s, cv := paintScene(t)
	p := NewNode("p")
	p.SetOffset(10, 0)
	r := mustRect(t, "r", 0, 0, 5, 5)
	_ = r.SetScale(2)
	_ = p.AddChild(r)
	_ = s.Layer().AddChild(p)
	s.Camera().TranslateView(0, 20)

	s.Render(cv)
	assertOps(t, cv.ops, "fillRect 10,20,10,10 a=1.00")
}

func TestRenderRootTransform(t *testing.T) {
	s, cv := paintScene(t)
	_ = s.Layer().AddChild(mustRect(t, "r", 0, 0, 10, 10))
	_ = s.Root().SetScale(2)
	s.Render(cv)
	assertOps(t, cv.ops, "fillRect 0,0,20,20 a=1.00")
}

func TestRenderAlphaAccumulates(t *testing.T) {
	s, cv := paintScene(t)
	p := NewNode("p")
	p.SetAlpha(0.5)
	r := mustRect(t, "r", 0, 0, 10, 10)
	r.SetAlpha(0.5)
	_ = p.AddChild(r)
	_ = s.Layer().AddChild(p)
	s.Render(cv)
	assertOps(t, cv.ops, "fillRect 0,0,10,10 a=0.25")
}

func TestRenderSkipsInvisibleAndTransparent(t *testing.T) {
	s, cv := paintScene(t)
	hidden := mustRect(t, "hidden", 0, 0, 10, 10)
	hidden.SetVisible(false)
	faded := mustRect(t, "faded", 0, 0, 10, 10)
	faded.SetAlpha(0)
	noPaint := mustRect(t, "nopaint", 0, 0, 10, 10)
	noPaint.SetPaint(ColorTransparent)
	_ = s.Layer().AddChild(hidden)
	_ = s.Layer().AddChild(faded)
	_ = s.Layer().AddChild(noPaint)
	s.Render(cv)
	assertOps(t, cv.ops)
}

func TestRenderCullsOutsideCamera(t *testing.T) {
	s, cv := paintScene(t)
	_ = s.Layer().AddChild(mustRect(t, "in", 0, 0, 10, 10))
	_ = s.Layer().AddChild(mustRect(t, "out", 500, 500, 10, 10))
	ctx := s.Render(cv)
	assertOps(t, cv.ops, "fillRect 0,0,10,10 a=1.00")
	if ctx.NodesCulled() != 1 {
		t.Errorf("NodesCulled = %d, want 1", ctx.NodesCulled())
	}
}

func TestRenderShapes(t *testing.T) {
	s, cv := paintScene(t)
	e, _ := NewEllipse("e", 0, 0, 10, 10)
	e.SetStrokePaint(ColorBlack)
	_ = e.SetStrokeWidth(1)
	open := NewPath("open", []Vec2{{0, 0}, {10, 0}}, false)
	_ = open.SetStrokeWidth(2)
	closed := NewPath("closed", []Vec2{{0, 0}, {10, 0}, {10, 10}}, true)
	text := NewText("t", "a\nb")
	img := NewImage("img", image.NewRGBA(image.Rect(0, 0, 4, 4)))
	img.SetAlpha(0.5)
	for _, n := range []*Node{e, open, closed, text, img} {
		_ = s.Layer().AddChild(n)
	}
	s.Render(cv)
	assertOps(t, cv.ops,
		"fillEllipse 0,0,10,10 a=1.00",
		"strokeEllipse 0,0,10,10 a=1.00",
		"strokePolygon 0,0,10,0 a=1.00",
		"fillPolygon 0,0,10,10 a=1.00",
		`text "a"`,
		`text "b"`,
		"image 0,0,4,4 a=0.50",
	)
}

func TestRenderCustomPainter(t *testing.T) {
	s, cv := paintScene(t)
	var seen Transform
	n := NewCustom("custom", func(ctx *PaintContext, n *Node) {
		seen = ctx.Transform()
		ctx.Canvas().FillRect(n.Bounds(), ctx.Tint(ColorWhite))
	})
	n.SetBoundsRect(0, 0, 4, 4)
	n.SetOffset(3, 3)
	_ = s.Layer().AddChild(n)
	s.Render(cv)
	assertMatrix(t, "custom transform", seen, NewTranslation(3, 3))
	assertOps(t, cv.ops, "fillRect 3,3,4,4 a=1.00")
}

func TestRenderCameraChildrenAboveLayers(t *testing.T) {
	s, cv := paintScene(t)
	_ = s.Layer().AddChild(mustRect(t, "content", 0, 0, 10, 10))
	overlay := mustRect(t, "overlay", 50, 50, 10, 10)
	_ = s.Camera().AddChild(overlay)
	// The view does not move camera children.
	s.Camera().TranslateView(5, 5)
	s.Render(cv)
	assertOps(t, cv.ops,
		"fillRect 5,5,10,10 a=1.00",
		"fillRect 50,50,10,10 a=1.00",
	)
}

func TestRenderTwoCamerasShareLayer(t *testing.T) {
	s, cv := paintScene(t)
	_ = s.Layer().AddChild(mustRect(t, "r", 0, 0, 10, 10))
	second := s.NewCamera("second", NewBounds(0, 0, 100, 100), s.Layer())
	second.SetOffset(200, 0)
	_ = second.SetViewTransform(NewScale(2, 2))
	s.Render(cv)
	assertOps(t, cv.ops,
		"fillRect 0,0,10,10 a=1.00",
		"fillRect 200,0,20,20 a=1.00",
	)
	if len(s.Cameras()) != 2 {
		t.Errorf("Cameras = %d, want 2", len(s.Cameras()))
	}
}

func TestRenderCameraBackground(t *testing.T) {
	s, cv := paintScene(t)
	s.Camera().SetPaint(Color{B: 1, A: 1})
	s.Render(cv)
	assertOps(t, cv.ops, "fillRect 0,0,100,100 a=1.00")
}
