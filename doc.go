// Package canopy is a retained-mode 2D scenegraph with zoomable cameras.
//
// Canopy keeps a tree of nodes, each with its own affine transform and
// bounds, and answers three questions about it quickly: what does it look
// like ([Camera.Render]), what is under a point ([Camera.Pick]) and how does
// it change over time ([ActivityScheduler]). Drawing itself goes through the
// small [Canvas] interface; backends live in sub-packages (canopy/ggcanvas
// for images and PNG files, canopy/ebitenhost for a window and game loop).
//
// # Quick start
//
//	scene := canopy.NewScene()
//	scene.Camera().SetBounds(canopy.NewBounds(0, 0, 640, 480))
//
//	box, _ := canopy.NewRectangle("box", 0, 0, 80, 40)
//	box.SetPaint(canopy.Color{R: 0.3, G: 0.7, B: 1, A: 1})
//	box.SetOffset(100, 50)
//	scene.Layer().AddChild(box)
//
//	ebitenhost.Run(scene, ebitenhost.RunConfig{Title: "demo", Width: 640, Height: 480})
//
// # Scene graph
//
// Every element is a [Node]. A node's transform maps its local coordinates
// into its parent's. Its full bounds, the union of its own bounds and its
// children's full bounds, are cached and recomputed lazily; edits only mark
// the path to the root stale.
//
// A [Layer] is a node that cameras look at. A [Camera] is a node that paints
// and picks a list of layers through a view transform, so the same content
// can be shown by several cameras at different pans and zooms, and a camera
// can itself live inside a layer seen by another camera.
//
// # Input
//
// Hosts decode raw input into [PointerSample], [WheelSample] and
// [KeySample] values and feed them to [Scene.ProcessPointer],
// [Scene.ProcessWheel] and [Scene.ProcessKey]. The scene picks, tracks
// hover, press, click and drag, and delivers [Event] values to listeners
// registered with [Node.On] and [Scene.On]. Nodes linked to entities through
// [Node.EntityID] are also reported to an [EntityStore] (see canopy/ecs).
//
// # Activities
//
// [Activity] values run over time: animations built with [AnimatePosition],
// [AnimatePaint] and friends, or arbitrary update functions. Easing uses
// [gween] tween functions. Time never advances on its own; the host calls
// [Scene.Step] with the current time.
//
// [gween]: https://github.com/tanema/gween
package canopy
