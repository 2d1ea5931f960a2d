package canopy

import (
	"math"
	"time"

	"github.com/tanema/gween/ease"
)

// Camera is a node that paints and picks an ordered list of layers through
// its view transform. The view maps layer (parent) coordinates into the
// camera's local coordinates and is always invertible.
//
// A camera's own children are painted above its layers and are not affected
// by the view; they suit fixed overlays such as handles or status text.
type Camera struct {
	*Node

	layers  []*Layer
	view    Transform
	invView Transform

	needsRepaint bool
	repaints     uint64

	// traversal guards against a camera that (indirectly) views itself.
	painting bool
	picking  bool
}

// NewCamera creates a detached camera with empty bounds and an identity view.
// Give it bounds with SetBounds before it can paint or pick anything.
func NewCamera(name string) *Camera {
	c := &Camera{
		Node:         newNode(name, NodeKindCamera),
		view:         Identity(),
		invView:      Identity(),
		needsRepaint: true,
	}
	c.Node.camera = c
	return c
}

// --- View transform ---

// ViewTransform returns the view transform (layer space → camera local).
func (c *Camera) ViewTransform() Transform {
	return c.view
}

// InverseViewTransform returns the inverse of the view transform.
func (c *Camera) InverseViewTransform() Transform {
	return c.invView
}

// SetViewTransform replaces the view. A singular transform is rejected with
// a *NonInvertibleError and the current view is kept.
func (c *Camera) SetViewTransform(t Transform) error {
	inv, err := t.Inverse()
	if err != nil {
		return err
	}
	if t == c.view {
		return nil
	}
	c.view = t
	c.invView = inv
	c.markDirty()
	return nil
}

// TranslateView pans the view by (dx, dy) in view coordinates.
func (c *Camera) TranslateView(dx, dy float64) {
	_ = c.SetViewTransform(c.view.Translate(dx, dy))
}

// ScaleView multiplies the view scale by s about the view origin.
func (c *Camera) ScaleView(s float64) error {
	if s == 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return &ConfigError{Field: "view scale", Value: s, Reason: "must be finite and non-zero"}
	}
	return c.SetViewTransform(c.view.Scale(s))
}

// ScaleViewAboutPoint multiplies the view scale by s keeping the view point
// (x, y) fixed on screen.
func (c *Camera) ScaleViewAboutPoint(s, x, y float64) error {
	if s == 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return &ConfigError{Field: "view scale", Value: s, Reason: "must be finite and non-zero"}
	}
	return c.SetViewTransform(c.view.ScaleAbout(s, x, y))
}

// ViewScale returns the view's scale factor.
func (c *Camera) ViewScale() float64 {
	return c.view.ScaleFactor()
}

// SetViewScale rescales the view about the view origin so that ViewScale
// returns s.
func (c *Camera) SetViewScale(s float64) error {
	t, err := c.view.WithScale(s)
	if err != nil {
		return err
	}
	return c.SetViewTransform(t)
}

// SetViewOffset sets the translation component of the view.
func (c *Camera) SetViewOffset(x, y float64) {
	t := c.view
	t[4], t[5] = x, y
	_ = c.SetViewTransform(t)
}

// ViewBounds returns the region of layer space currently visible through the
// camera's bounds.
func (c *Camera) ViewBounds() Bounds {
	return c.invView.TransformBounds(c.bounds)
}

// SetViewBounds centres b in the camera and scales uniformly so that it fits.
func (c *Camera) SetViewBounds(b Bounds) error {
	t, err := c.centeringView(b, true)
	if err != nil {
		return err
	}
	return c.SetViewTransform(t)
}

// centeringView returns a view that centres b in the camera bounds, scaled
// to fit when fit is set. Rotation and shear of the current view are dropped
// when fitting.
func (c *Camera) centeringView(b Bounds, fit bool) (Transform, error) {
	if c.bounds.IsEmpty() {
		return c.view, &ConfigError{Field: "camera bounds", Value: c.bounds, Reason: "camera has no bounds to centre in"}
	}
	if b.IsEmpty() {
		return c.view, &ConfigError{Field: "view bounds", Value: b, Reason: "must not be empty"}
	}
	ccx, ccy := c.bounds.Center()
	bcx, bcy := b.Center()
	if !fit {
		// Keep the current view and move the centre of b to the camera centre.
		vx, vy := c.view.TransformPoint(bcx, bcy)
		return c.view.PreConcat(NewTranslation(ccx-vx, ccy-vy)), nil
	}
	s := c.ViewScale()
	if b.Width > 0 || b.Height > 0 {
		s = math.Inf(1)
		if b.Width > 0 {
			s = c.bounds.Width / b.Width
		}
		if b.Height > 0 {
			s = math.Min(s, c.bounds.Height/b.Height)
		}
	}
	return NewTranslation(ccx, ccy).Scale(s).Translate(-bcx, -bcy), nil
}

// LocalToView maps a camera-local point into layer space.
func (c *Camera) LocalToView(x, y float64) (vx, vy float64) {
	return c.invView.TransformPoint(x, y)
}

// ViewToLocal maps a layer-space point into camera-local coordinates.
func (c *Camera) ViewToLocal(x, y float64) (lx, ly float64) {
	return c.view.TransformPoint(x, y)
}

// --- View animation ---

// AnimateViewToTransform animates the view towards dest over duration using
// the scene's activity scheduler. A non-positive duration, or a camera not
// attached to a scene, applies dest immediately and returns a nil activity.
func (c *Camera) AnimateViewToTransform(dest Transform, duration time.Duration) (*Activity, error) {
	if !dest.IsInvertible() {
		return nil, &NonInvertibleError{Transform: dest}
	}
	sched := c.Scheduler()
	if duration <= 0 || sched == nil {
		return nil, c.SetViewTransform(dest)
	}

	var src Transform
	a, err := NewActivity(duration, DefaultStepRate, func(t float64) {
		// Intermediate views may pass through a singular matrix (e.g. a
		// half turn); those steps keep the previous view.
		_ = c.SetViewTransform(lerpTransform(src, dest, t))
	})
	if err != nil {
		return nil, err
	}
	a.begin = func() { src = c.view }
	a.SetEasing(ease.InOutQuad)
	if err := sched.Schedule(a); err != nil {
		return nil, err
	}
	return a, nil
}

// AnimateViewToCenterBounds animates the view so that b ends up centred in
// the camera, scaled to fit when fit is set.
func (c *Camera) AnimateViewToCenterBounds(b Bounds, fit bool, duration time.Duration) (*Activity, error) {
	dest, err := c.centeringView(b, fit)
	if err != nil {
		return nil, err
	}
	return c.AnimateViewToTransform(dest, duration)
}

// --- Layers ---

// AddLayer appends l to the layers this camera views. Adding a layer that is
// already viewed is a no-op.
func (c *Camera) AddLayer(l *Layer) error {
	return c.AddLayerAt(l, len(c.layers))
}

// AddLayerAt inserts l at index in the layer list.
func (c *Camera) AddLayerAt(l *Layer, index int) error {
	if l == nil {
		return &StructuralError{Op: "AddLayer", Parent: c.Node, Reason: "nil layer"}
	}
	if c.IndexOfLayer(l) >= 0 {
		return nil
	}
	if index < 0 || index > len(c.layers) {
		return &StructuralError{Op: "AddLayer", Parent: c.Node, Child: l.Node, Reason: "index out of range"}
	}
	c.layers = append(c.layers, nil)
	copy(c.layers[index+1:], c.layers[index:])
	c.layers[index] = l
	l.cameras = append(l.cameras, c)
	c.markDirty()
	return nil
}

// RemoveLayer stops viewing l. It reports whether l was viewed.
func (c *Camera) RemoveLayer(l *Layer) bool {
	i := c.IndexOfLayer(l)
	if i < 0 {
		return false
	}
	copy(c.layers[i:], c.layers[i+1:])
	c.layers[len(c.layers)-1] = nil
	c.layers = c.layers[:len(c.layers)-1]
	l.removeCamera(c)
	c.markDirty()
	return true
}

// RemoveAllLayers stops viewing every layer.
func (c *Camera) RemoveAllLayers() {
	for len(c.layers) > 0 {
		c.RemoveLayer(c.layers[len(c.layers)-1])
	}
}

// Layers returns the viewed layers in paint order. The returned slice MUST
// NOT be mutated by the caller.
func (c *Camera) Layers() []*Layer {
	return c.layers
}

// NumLayers returns the number of viewed layers.
func (c *Camera) NumLayers() int {
	return len(c.layers)
}

// IndexOfLayer returns the position of l in the layer list, or -1.
func (c *Camera) IndexOfLayer(l *Layer) int {
	for i, o := range c.layers {
		if o == l {
			return i
		}
	}
	return -1
}

// UnionOfLayerFullBounds returns the union of the viewed layers' full bounds
// in layer space.
func (c *Camera) UnionOfLayerFullBounds() Bounds {
	var u Bounds
	for _, l := range c.layers {
		u.Add(l.FullBounds())
	}
	return u
}

// --- Repaint bookkeeping ---

// NeedsRepaint reports whether anything the camera shows changed since it
// was last painted.
func (c *Camera) NeedsRepaint() bool {
	return c.needsRepaint
}

// RepaintCount returns how many times the camera went from clean to needing
// a repaint.
func (c *Camera) RepaintCount() uint64 {
	return c.repaints
}

// markDirty flags the camera for repaint and forwards the change to cameras
// that see this camera through one of its ancestors.
func (c *Camera) markDirty() {
	if c.needsRepaint {
		return
	}
	c.needsRepaint = true
	c.repaints++
	c.Node.InvalidatePaint()
}
