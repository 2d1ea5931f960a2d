package canopy

// EntityStore is the interface for optional ECS integration.
// When set on a Scene, interaction events on nodes with a non-zero EntityID
// are forwarded to the store.
type EntityStore interface {
	EmitEvent(event InteractionEvent)
}

// InteractionEvent carries interaction data for the ECS bridge.
type InteractionEvent struct {
	Type     EventType
	EntityID uint32
	NodeID   uint32
	// X and Y are camera-local.
	X, Y      float64
	LocalX    float64
	LocalY    float64
	Button    MouseButton
	Modifiers KeyModifiers
	// Drag fields (valid for EventDragStart, EventDrag, EventDragEnd)
	StartX float64
	StartY float64
	DeltaX float64
	DeltaY float64
	// Wheel fields (valid for EventWheel)
	WheelX float64
	WheelY float64
	// Keyboard fields (valid for key events)
	Key  Key
	Rune rune
}

// SetEntityStore sets the optional ECS bridge.
func (s *Scene) SetEntityStore(store EntityStore) {
	s.store = store
}

// emitInteractionEvent forwards e to the entity store when its target is
// linked to an entity.
func (s *Scene) emitInteractionEvent(e *Event) {
	if s.store == nil || e.Target == nil || e.Target.EntityID == 0 {
		return
	}
	lx, ly := e.X, e.Y
	if e.Path != nil {
		if t, ok := e.Path.TransformTo(e.Target); ok {
			if inv, err := t.Inverse(); err == nil {
				lx, ly = inv.TransformPoint(e.X, e.Y)
			}
		}
	}
	s.store.EmitEvent(InteractionEvent{
		Type:      e.Type,
		EntityID:  e.Target.EntityID,
		NodeID:    e.Target.ID,
		X:         e.X,
		Y:         e.Y,
		LocalX:    lx,
		LocalY:    ly,
		Button:    e.Button,
		Modifiers: e.Modifiers,
		StartX:    e.StartX,
		StartY:    e.StartY,
		DeltaX:    e.DeltaX,
		DeltaY:    e.DeltaY,
		WheelX:    e.WheelX,
		WheelY:    e.WheelY,
		Key:       e.Key,
		Rune:      e.Rune,
	})
}
