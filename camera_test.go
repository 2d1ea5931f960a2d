package canopy

import (
	"errors"
	"testing"
	"time"
)

func TestCameraViewTransformRejectsSingular(t *testing.T) {
	c := NewCamera("c")
	if err := c.SetViewTransform(NewTranslation(5, 5)); err != nil {
		t.Fatal(err)
	}
	if err := c.SetViewTransform(NewScale(0, 2)); !errors.Is(err, ErrNonInvertible) {
		t.Fatalf("err = %v, want ErrNonInvertible", err)
	}
	assertMatrix(t, "view kept", c.ViewTransform(), NewTranslation(5, 5))
	assertMatrix(t, "inverse", c.InverseViewTransform(), NewTranslation(-5, -5))
}

func TestCameraViewConversions(t *testing.T) {
	c := NewCamera("c")
	_ = c.SetViewTransform(NewTranslation(10, 0).Scale(2))
	lx, ly := c.ViewToLocal(5, 5)
	assertNear(t, "lx", lx, 20)
	assertNear(t, "ly", ly, 10)
	vx, vy := c.LocalToView(lx, ly)
	assertNear(t, "vx", vx, 5)
	assertNear(t, "vy", vy, 5)
	assertNear(t, "ViewScale", c.ViewScale(), 2)
}

func TestCameraScaleViewAboutPoint(t *testing.T) {
	c := NewCamera("c")
	if err := c.ScaleViewAboutPoint(3, 10, 10); err != nil {
		t.Fatal(err)
	}
	lx, ly := c.ViewToLocal(10, 10)
	assertNear(t, "fixed x", lx, 10)
	assertNear(t, "fixed y", ly, 10)
	if err := c.ScaleView(0); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestCameraSetViewBounds(t *testing.T) {
	c := NewCamera("c")
	c.SetBoundsRect(0, 0, 200, 100)
	if err := c.SetViewBounds(NewBounds(0, 0, 50, 50)); err != nil {
		t.Fatal(err)
	}
	assertNear(t, "scale", c.ViewScale(), 2)
	// The 50x50 square is 100x100 on screen, centred horizontally.
	assertBounds(t, "view bounds", c.ViewBounds(), NewBounds(-25, 0, 100, 50))

	if err := NewCamera("empty").SetViewBounds(NewBounds(0, 0, 1, 1)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("camera without bounds: err = %v, want ErrInvalidConfig", err)
	}
	if err := c.SetViewBounds(Bounds{}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("empty target: err = %v, want ErrInvalidConfig", err)
	}
}

func TestCameraLayerBookkeeping(t *testing.T) {
	c := NewCamera("c")
	l1, l2 := NewLayer("l1"), NewLayer("l2")
	_ = c.AddLayer(l1)
	_ = c.AddLayer(l2)
	_ = c.AddLayer(l1) // already viewed
	if c.NumLayers() != 2 || l1.NumCameras() != 1 {
		t.Fatalf("layers = %d, l1 cameras = %d", c.NumLayers(), l1.NumCameras())
	}
	if c.IndexOfLayer(l2) != 1 || l2.CameraAt(0) != c {
		t.Error("layer/camera links inconsistent")
	}
	if !c.RemoveLayer(l1) {
		t.Error("RemoveLayer returned false")
	}
	if c.RemoveLayer(l1) {
		t.Error("second RemoveLayer returned true")
	}
	if l1.NumCameras() != 0 {
		t.Error("layer still references camera")
	}
	if err := c.AddLayer(nil); !errors.Is(err, ErrStructural) {
		t.Errorf("err = %v, want ErrStructural", err)
	}
	if err := c.AddLayerAt(l1, 5); !errors.Is(err, ErrStructural) {
		t.Errorf("err = %v, want ErrStructural", err)
	}
	c.RemoveAllLayers()
	if c.NumLayers() != 0 || l2.NumCameras() != 0 {
		t.Error("RemoveAllLayers left links behind")
	}
}

func TestCameraUnionOfLayerFullBounds(t *testing.T) {
	c := NewCamera("c")
	l1, l2 := NewLayer("l1"), NewLayer("l2")
	_ = l1.AddChild(mustRect(t, "a", 0, 0, 10, 10))
	_ = l2.AddChild(mustRect(t, "b", 50, 50, 10, 10))
	_ = c.AddLayer(l1)
	_ = c.AddLayer(l2)
	assertBounds(t, "union", c.UnionOfLayerFullBounds(), NewBounds(0, 0, 60, 60))
}

func TestCameraRepaintTracking(t *testing.T) {
	c := NewCamera("c")
	c.SetBoundsRect(0, 0, 10, 10)
	l := NewLayer("l")
	_ = c.AddLayer(l)
	r := mustRect(t, "r", 0, 0, 5, 5)
	_ = l.AddChild(r)

	c.Render(&recordingCanvas{})
	if c.NeedsRepaint() {
		t.Fatal("Render should clear NeedsRepaint")
	}
	before := c.RepaintCount()

	r.SetPaint(Color{R: 1, A: 1})
	if !c.NeedsRepaint() {
		t.Error("layer content change did not mark the camera")
	}
	r.SetPaint(Color{G: 1, A: 1})
	if c.RepaintCount() != before+1 {
		t.Errorf("RepaintCount = %d, want %d", c.RepaintCount(), before+1)
	}

	c.Render(&recordingCanvas{})
	c.TranslateView(1, 0)
	if !c.NeedsRepaint() {
		t.Error("view change did not mark the camera")
	}
}

func TestCameraRepaintReachesOuterCamera(t *testing.T) {
	s := NewScene()
	outer := s.Camera()
	outer.SetBoundsRect(0, 0, 100, 100)

	// An inner camera sits in the default layer and views a second layer.
	inner := NewCamera("inner")
	inner.SetBoundsRect(0, 0, 50, 50)
	_ = s.Layer().AddChild(inner.Node)
	l2 := NewLayer("l2")
	_ = s.Root().AddChild(l2.Node)
	_ = inner.AddLayer(l2)
	r := mustRect(t, "r", 0, 0, 5, 5)
	_ = l2.AddChild(r)

	s.Render(&recordingCanvas{})
	if outer.NeedsRepaint() || inner.NeedsRepaint() {
		t.Fatal("Render should clear both cameras")
	}
	r.SetAlpha(0.5)
	if !inner.NeedsRepaint() || !outer.NeedsRepaint() {
		t.Error("change seen through an inner camera must mark the outer camera")
	}
}

func TestAnimateViewToTransform(t *testing.T) {
	s := NewScene()
	c := s.Camera()
	c.SetBoundsRect(0, 0, 100, 100)
	start := time.Unix(0, 0)
	s.Scheduler().SetTime(start)

	dest := NewTranslation(50, 0)
	a, err := c.AnimateViewToTransform(dest, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if a.Scheduler() != s.Scheduler() {
		t.Fatal("view animation not scheduled on the scene")
	}
	s.Step(start.Add(500 * time.Millisecond))
	if tx := c.ViewTransform().TranslateX(); tx <= 0 || tx >= 50 {
		t.Errorf("midway tx = %v, want strictly between 0 and 50", tx)
	}
	s.Step(start.Add(time.Second))
	assertMatrix(t, "final view", c.ViewTransform(), dest)
	if a.State() != ActivityFinished {
		t.Errorf("State = %v, want finished", a.State())
	}
}

func TestAnimateViewImmediate(t *testing.T) {
	c := NewCamera("c")
	a, err := c.AnimateViewToTransform(NewTranslation(3, 3), 0)
	if err != nil || a != nil {
		t.Fatalf("AnimateViewToTransform = %v, %v", a, err)
	}
	assertMatrix(t, "view", c.ViewTransform(), NewTranslation(3, 3))

	a, err = c.AnimateViewToTransform(NewTranslation(1, 1), time.Second)
	if err != nil || a != nil {
		t.Fatalf("detached camera: AnimateViewToTransform = %v, %v", a, err)
	}
	assertMatrix(t, "detached view", c.ViewTransform(), NewTranslation(1, 1))
	if _, err := c.AnimateViewToTransform(NewScale(0, 0), time.Second); !errors.Is(err, ErrNonInvertible) {
		t.Errorf("singular dest: err = %v, want ErrNonInvertible", err)
	}
}

func TestAnimateViewToCenterBounds(t *testing.T) {
	s := NewScene()
	c := s.Camera()
	c.SetBoundsRect(0, 0, 100, 100)
	start := time.Unix(0, 0)
	s.Scheduler().SetTime(start)

	if _, err := c.AnimateViewToCenterBounds(NewBounds(0, 0, 20, 20), false, time.Second); err != nil {
		t.Fatal(err)
	}
	s.Step(start.Add(2 * time.Second))
	x, y := c.ViewToLocal(10, 10)
	assertNear(t, "centre x", x, 50)
	assertNear(t, "centre y", y, 50)
	assertNear(t, "scale kept", c.ViewScale(), 1)
}
