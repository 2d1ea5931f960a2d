package canopy

// Key is a host-defined key code. The core does not interpret it.
type Key int

// Event is an already-classified input event being delivered to listeners.
// Pointer coordinates are in the local space of the camera that was picked.
type Event struct {
	Type EventType

	// Target is the node the event is about: the picked node for pointer
	// events, the focus node for keyboard events.
	Target *Node
	// Current is the node whose listeners are running, or nil while
	// scene-level listeners run.
	Current *Node
	// Path is the pick path the event travels along. Nil for keyboard and
	// focus events.
	Path *PickPath

	PointerID int
	X, Y      float64 // camera-local
	// LocalX and LocalY are the pointer position in Current's local space.
	LocalX, LocalY float64

	// Drag
	StartX, StartY float64 // camera-local press position
	DeltaX, DeltaY float64 // movement since the previous drag event

	// Wheel
	WheelX, WheelY float64

	Button    MouseButton
	Modifiers KeyModifiers

	// Keyboard
	Key  Key
	Rune rune

	handled bool
}

// SetHandled stops delivery to listeners further up the path.
func (e *Event) SetHandled() {
	e.handled = true
}

// Handled reports whether a listener consumed the event.
func (e *Event) Handled() bool {
	return e.handled
}

// Listener receives events registered with Node.On or Scene.On.
type Listener func(*Event)

// --- Handler registry ---

type listenerEntry struct {
	id uint32
	fn Listener
}

type handlerRegistry struct {
	byType [numEventTypes][]listenerEntry
	nextID uint32
}

func (r *handlerRegistry) add(kind EventType, fn Listener) ListenerHandle {
	if kind >= numEventTypes || fn == nil {
		return ListenerHandle{}
	}
	r.nextID++
	id := r.nextID
	r.byType[kind] = append(r.byType[kind], listenerEntry{id: id, fn: fn})
	return ListenerHandle{id: id, reg: r, event: kind}
}

func (r *handlerRegistry) has(kind EventType) bool {
	return len(r.byType[kind]) > 0
}

// fire calls the listeners for e.Type in registration order until one marks
// the event handled. Listeners added or removed during delivery take effect
// for the next event.
func (r *handlerRegistry) fire(e *Event) {
	list := r.byType[e.Type]
	if len(list) == 0 {
		return
	}
	snapshot := make([]listenerEntry, len(list))
	copy(snapshot, list)
	for _, h := range snapshot {
		h.fn(e)
		if e.handled {
			return
		}
	}
}

// ListenerHandle allows removing a registered listener.
type ListenerHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters the listener so it no longer fires.
// The entry is removed from the slice to avoid nil iteration waste.
func (h ListenerHandle) Remove() {
	if h.reg == nil {
		return
	}
	s := h.reg.byType[h.event]
	for i := range s {
		if s[i].id == h.id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = listenerEntry{}
			h.reg.byType[h.event] = s[:len(s)-1]
			return
		}
	}
}

// On registers fn for events of the given kind delivered to this node.
func (n *Node) On(kind EventType, fn Listener) ListenerHandle {
	return n.listeners.add(kind, fn)
}

// HasListeners reports whether any listener for kind is registered on n.
func (n *Node) HasListeners(kind EventType) bool {
	return n.listeners.has(kind)
}

// --- Dispatch ---

// dispatchPath delivers e to the nodes of pp from the picked node up to the
// camera, stopping once handled. Without bubbling only the picked node
// receives it.
func dispatchPath(e *Event, pp *PickPath, bubble bool) {
	for _, entry := range pp.stack {
		n := entry.node
		if n.listeners.has(e.Type) {
			e.Current = n
			e.LocalX, e.LocalY = e.X, e.Y
			if inv, err := entry.transform.Inverse(); err == nil {
				e.LocalX, e.LocalY = inv.TransformPoint(e.X, e.Y)
			}
			n.listeners.fire(e)
			if e.handled {
				break
			}
		}
		if !bubble {
			break
		}
	}
	e.Current = nil
}

// dispatchChain delivers e to n and then its ancestors, stopping once
// handled. Used for keyboard events and for nodes that are no longer the
// pick result, such as a captured or dragged node. Local coordinates are
// resolved through pp when it still contains the node.
func dispatchChain(e *Event, n *Node, pp *PickPath, bubble bool) {
	for p := n; p != nil; p = p.parent {
		if p.listeners.has(e.Type) {
			e.Current = p
			e.LocalX, e.LocalY = e.X, e.Y
			if pp != nil {
				if lx, ly, err := pp.CameraToLocal(p, e.X, e.Y); err == nil {
					e.LocalX, e.LocalY = lx, ly
				}
			}
			p.listeners.fire(e)
			if e.handled {
				break
			}
		}
		if !bubble {
			break
		}
	}
	e.Current = nil
}
