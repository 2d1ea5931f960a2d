package canopy

import (
	"time"
)

// Scene is the top-level object. It owns the root node, a default layer and
// camera, the activity scheduler and input state.
//
// The root's children are placed in device space: the root-level cameras
// are what Render paints and what pointer samples are routed to. NewScene
// builds the usual arrangement:
//
//	root
//	├── layer      (content goes here)
//	└── camera     (views layer)
type Scene struct {
	root      *Node
	layer     *Layer
	camera    *Camera
	scheduler *ActivityScheduler
	store     EntityStore
	debug     bool

	// Input state
	handlers     handlerRegistry
	captured     [maxPointers]*Node
	pointers     [maxPointers]pointerState
	dragDeadZone float64
	pickHalo     float64
	focus        *Node

	// Synthetic input and scripted tests
	injectQueue []PointerSample
	testRunner  *TestRunner

	// OnSnapshot is called by a test runner "snapshot" step with its label.
	// Hosts that can capture frames set it; see ebitenhost.
	OnSnapshot func(label string)
}

// NewScene creates a scene with a root, a default layer and a default camera
// viewing that layer. The camera has empty bounds until the host sizes it.
func NewScene() *Scene {
	root := NewNode("root")
	layer := NewLayer("layer")
	camera := NewCamera("camera")
	_ = root.AddChild(layer.Node)
	_ = root.AddChild(camera.Node)
	camera.AddLayer(layer)

	s := &Scene{
		root:         root,
		layer:        layer,
		camera:       camera,
		scheduler:    NewActivityScheduler(),
		dragDeadZone: defaultDragDeadZone,
	}
	root.scene = s
	return s
}

// Root returns the scene's root node.
func (s *Scene) Root() *Node {
	return s.root
}

// Layer returns the default layer.
func (s *Scene) Layer() *Layer {
	return s.layer
}

// Camera returns the default camera.
func (s *Scene) Camera() *Camera {
	return s.camera
}

// NewCamera creates a camera with the given device bounds viewing layers,
// and adds it to the root above the existing cameras.
func (s *Scene) NewCamera(name string, bounds Bounds, layers ...*Layer) *Camera {
	c := NewCamera(name)
	c.SetBounds(bounds)
	for _, l := range layers {
		c.AddLayer(l)
	}
	_ = s.root.AddChild(c.Node)
	return c
}

// Cameras returns the cameras that are direct children of the root, in
// paint order.
func (s *Scene) Cameras() []*Camera {
	var out []*Camera
	for _, child := range s.root.children {
		if child.camera != nil {
			out = append(out, child.camera)
		}
	}
	return out
}

// Scheduler returns the scene's activity scheduler.
func (s *Scene) Scheduler() *ActivityScheduler {
	return s.scheduler
}

// SetDebugMode enables or disables debug mode. When enabled, tree depth and
// child count warnings and per-step timing are sent to Logger.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// Step advances the scene to now: the test runner, one injected pointer
// sample, every scheduled activity and finally full bounds validation.
func (s *Scene) Step(now time.Time) {
	var stats debugStats
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	s.processInjectedInput()

	if s.debug {
		t1 := time.Now()
		stats.inputTime = t1.Sub(t0)
		t0 = t1
	}

	s.scheduler.Step(now)

	if s.debug {
		t1 := time.Now()
		stats.activityTime = t1.Sub(t0)
		t0 = t1
	}

	s.root.ValidateFullBounds()

	if s.debug {
		stats.boundsTime = time.Since(t0)
		stats.activities = s.scheduler.Len()
		stats.nodes = debugCheckTree(s.root, 1)
		s.debugLog(stats)
	}
}

// NeedsRepaint reports whether any root-level camera needs repainting.
func (s *Scene) NeedsRepaint() bool {
	for _, child := range s.root.children {
		if child.camera != nil && child.camera.needsRepaint {
			return true
		}
	}
	return false
}

// Pick picks through the default camera at a point in its local space.
func (s *Scene) Pick(x, y, halo float64) *PickPath {
	return s.camera.Pick(x, y, halo)
}

// Render paints every visible root-level camera into canvas, through the
// root's transform, and returns the paint context used.
func (s *Scene) Render(canvas Canvas) *PaintContext {
	s.root.ValidateFullBounds()
	ctx := NewPaintContext(canvas)
	if !s.root.visible {
		return ctx
	}
	ctx.save()
	ctx.concat(s.root.transform)
	ctx.alpha *= s.root.alpha
	for _, child := range s.root.children {
		if child.camera != nil {
			ctx.paintNode(child)
		}
	}
	ctx.restore()
	return ctx
}

// Scene returns the scene whose root this node is attached under, or nil.
func (n *Node) Scene() *Scene {
	return n.Root().scene
}

// Scheduler returns the activity scheduler of the node's scene, or nil when
// the node is not attached to a scene.
func (n *Node) Scheduler() *ActivityScheduler {
	if s := n.Scene(); s != nil {
		return s.scheduler
	}
	return nil
}
