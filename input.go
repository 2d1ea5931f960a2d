package canopy

import "math"

// --- Constants ---

const (
	maxPointers         = 10  // pointer 0 = mouse, 1-9 = touch
	defaultDragDeadZone = 4.0 // pixels
)

// --- Samples ---

// PointerSample is one already-decoded pointer reading from the host.
// X and Y are device coordinates: the space the root's direct camera
// children are placed in.
type PointerSample struct {
	PointerID int
	X, Y      float64
	Pressed   bool
	Button    MouseButton
	Modifiers KeyModifiers
}

// WheelSample is one decoded wheel reading at a device position.
type WheelSample struct {
	X, Y           float64
	DeltaX, DeltaY float64
	Modifiers      KeyModifiers
}

// KeySample is one decoded keyboard event. Type must be EventKeyPressed,
// EventKeyReleased or EventKeyTyped.
type KeySample struct {
	Type      EventType
	Key       Key
	Rune      rune
	Modifiers KeyModifiers
}

// --- Per-pointer state ---

type pointerState struct {
	down      bool
	camera    *Camera // camera the press landed in
	startX    float64
	startY    float64
	lastX     float64
	lastY     float64
	hitNode   *Node
	hitPath   *PickPath
	hoverNode *Node // last node the pointer was hovering over (for enter/leave)
	hoverPath *PickPath
	dragging  bool
	button    MouseButton // button captured at press time
}

// --- Scene-level registration and settings ---

// On registers a scene-level listener. Scene-level listeners run after the
// nodes on the event's path, unless one of them handled the event.
func (s *Scene) On(kind EventType, fn Listener) ListenerHandle {
	return s.handlers.add(kind, fn)
}

// CapturePointer routes all events for pointerID to the given node until
// the pointer is released.
func (s *Scene) CapturePointer(pointerID int, node *Node) {
	if pointerID >= 0 && pointerID < maxPointers {
		s.captured[pointerID] = node
	}
}

// ReleasePointer stops routing events for pointerID to a captured node.
func (s *Scene) ReleasePointer(pointerID int) {
	if pointerID >= 0 && pointerID < maxPointers {
		s.captured[pointerID] = nil
	}
}

// SetDragDeadZone sets the minimum movement in pixels before a drag starts.
func (s *Scene) SetDragDeadZone(pixels float64) {
	s.dragDeadZone = pixels
}

// SetPickHalo sets the halo radius used when picking for pointer events.
func (s *Scene) SetPickHalo(halo float64) {
	s.pickHalo = math.Max(0, halo)
}

// --- Camera selection ---

// cameraAt returns the topmost visible root-level camera whose bounds
// contain the device point, and the point in that camera's local space.
func (s *Scene) cameraAt(x, y float64) (*Camera, float64, float64) {
	kids := s.root.children
	for i := len(kids) - 1; i >= 0; i-- {
		c := kids[i].camera
		if c == nil || !c.visible {
			continue
		}
		lx, ly, err := c.GlobalToLocal(x, y)
		if err != nil {
			continue
		}
		if c.bounds.Contains(lx, ly) {
			return c, lx, ly
		}
	}
	return nil, 0, 0
}

// toCamera maps a device point into c's local space.
func toCamera(c *Camera, x, y float64) (float64, float64, bool) {
	lx, ly, err := c.GlobalToLocal(x, y)
	return lx, ly, err == nil
}

// --- Pointer state machine ---

// ProcessPointer runs the pointer state machine for one sample: hover
// enter/leave, press, click, dead-zone drag and release. While a pointer is
// down its coordinates stay in the camera it was pressed in.
func (s *Scene) ProcessPointer(p PointerSample) {
	if p.PointerID < 0 || p.PointerID >= maxPointers {
		Logger().Warn("pointer sample dropped", "pointer", p.PointerID, "max", maxPointers-1)
		return
	}
	id := p.PointerID
	ps := &s.pointers[id]

	var cam *Camera
	var cx, cy float64
	if ps.down && ps.camera != nil {
		var ok bool
		cam = ps.camera
		if cx, cy, ok = toCamera(cam, p.X, p.Y); !ok {
			cx, cy = ps.lastX, ps.lastY
		}
	} else {
		cam, cx, cy = s.cameraAt(p.X, p.Y)
	}

	// Determine target node: captured node or pick.
	var path *PickPath
	var target *Node
	if cam != nil {
		path = cam.Pick(cx, cy, s.pickHalo)
		target = path.PickedNode()
	}
	if s.captured[id] != nil {
		target = s.captured[id]
	}

	base := Event{PointerID: id, X: cx, Y: cy, Button: p.Button, Modifiers: p.Modifiers}

	// Fire hover enter/leave when the hovered node changes.
	if target != ps.hoverNode {
		if ps.hoverNode != nil {
			s.firePointer(EventPointerLeave, base, ps.hoverNode, ps.hoverPath, false)
		}
		if target != nil {
			s.firePointer(EventPointerEnter, base, target, path, false)
		}
		ps.hoverNode = target
		ps.hoverPath = path
	}

	switch {
	case p.Pressed && !ps.down:
		// Just pressed: capture button for the duration of this interaction.
		ps.down = true
		ps.camera = cam
		ps.button = p.Button
		ps.startX, ps.startY = cx, cy
		ps.lastX, ps.lastY = cx, cy
		ps.hitNode = target
		ps.hitPath = path
		ps.dragging = false

		base.Button = ps.button
		s.firePointer(EventPointerDown, base, target, path, true)

	case !p.Pressed && ps.down:
		// Just released: use button from press start.
		base.Button = ps.button
		if ps.dragging {
			drag := base
			drag.StartX, drag.StartY = ps.startX, ps.startY
			drag.DeltaX, drag.DeltaY = cx-ps.lastX, cy-ps.lastY
			s.firePointer(EventDragEnd, drag, ps.hitNode, ps.hitPath, true)
		} else if ps.hitNode != nil && ps.hitNode == target {
			s.firePointer(EventClick, base, target, path, true)
		}
		s.firePointer(EventPointerUp, base, target, path, true)

		// Auto-release capture.
		s.captured[id] = nil
		ps.down = false
		ps.camera = nil
		ps.hitNode = nil
		ps.hitPath = nil
		ps.dragging = false
		ps.lastX, ps.lastY = cx, cy

	case p.Pressed && ps.down:
		// Held down, possibly moved: use button from press start.
		base.Button = ps.button
		if cx != ps.lastX || cy != ps.lastY {
			drag := base
			drag.StartX, drag.StartY = ps.startX, ps.startY
			if !ps.dragging {
				dx := cx - ps.startX
				dy := cy - ps.startY
				if math.Sqrt(dx*dx+dy*dy) > s.dragDeadZone {
					ps.dragging = true
					start := drag
					start.DeltaX, start.DeltaY = dx, dy
					s.firePointer(EventDragStart, start, ps.hitNode, ps.hitPath, true)
				}
			}
			if ps.dragging {
				drag.DeltaX, drag.DeltaY = cx-ps.lastX, cy-ps.lastY
				s.firePointer(EventDrag, drag, ps.hitNode, ps.hitPath, true)
			}
		}
		ps.lastX, ps.lastY = cx, cy

	default:
		// Hover move.
		if cx != ps.lastX || cy != ps.lastY {
			s.firePointer(EventPointerMove, base, target, path, true)
			ps.lastX, ps.lastY = cx, cy
		}
	}
}

// ProcessWheel picks under the wheel position and delivers EventWheel.
func (s *Scene) ProcessWheel(w WheelSample) {
	cam, cx, cy := s.cameraAt(w.X, w.Y)
	var path *PickPath
	var target *Node
	if cam != nil {
		path = cam.Pick(cx, cy, s.pickHalo)
		target = path.PickedNode()
	}
	e := Event{
		X: cx, Y: cy,
		WheelX: w.DeltaX, WheelY: w.DeltaY,
		Modifiers: w.Modifiers,
	}
	s.firePointer(EventWheel, e, target, path, true)
}

// firePointer delivers a pointer event to target and, when bubbling, its
// ancestors, then to scene-level listeners and the entity store.
func (s *Scene) firePointer(kind EventType, base Event, target *Node, path *PickPath, bubble bool) {
	e := base
	e.Type = kind
	e.Target = target
	e.Path = path
	if target != nil {
		if path != nil && path.PickedNode() == target {
			dispatchPath(&e, path, bubble)
		} else {
			dispatchChain(&e, target, path, bubble)
		}
	}
	s.finish(&e)
}

// finish runs scene-level listeners and forwards to the ECS bridge.
func (s *Scene) finish(e *Event) {
	if !e.handled {
		e.Current = nil
		s.handlers.fire(e)
	}
	s.emitInteractionEvent(e)
}

// --- Keyboard ---

// KeyboardFocus returns the node receiving keyboard events, or nil.
func (s *Scene) KeyboardFocus() *Node {
	return s.focus
}

// SetKeyboardFocus moves keyboard focus to n (nil clears it). The old focus
// receives EventFocusLost and n receives EventFocusGained; neither bubbles.
func (s *Scene) SetKeyboardFocus(n *Node) {
	if s.focus == n {
		return
	}
	old := s.focus
	s.focus = n
	if old != nil {
		e := Event{Type: EventFocusLost, Target: old}
		dispatchChain(&e, old, nil, false)
		s.finish(&e)
	}
	if n != nil {
		e := Event{Type: EventFocusGained, Target: n}
		dispatchChain(&e, n, nil, false)
		s.finish(&e)
	}
}

// ProcessKey delivers a key event to the focus node and its ancestors, then
// to scene-level listeners. Without focus only scene-level listeners run.
func (s *Scene) ProcessKey(k KeySample) {
	switch k.Type {
	case EventKeyPressed, EventKeyReleased, EventKeyTyped:
	default:
		Logger().Warn("key sample dropped", "type", k.Type.String())
		return
	}
	if s.focus != nil && s.focus.disposed {
		s.focus = nil
	}
	e := Event{Type: k.Type, Target: s.focus, Key: k.Key, Rune: k.Rune, Modifiers: k.Modifiers}
	if s.focus != nil {
		dispatchChain(&e, s.focus, nil, true)
	}
	s.finish(&e)
}
