// Package ecs provides ECS adapters for canopy.
package ecs

import (
	"github.com/phanxgames/canopy"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// InteractionEventType is the Donburi event type for canopy interaction events.
// Subscribe to this in your ECS systems to receive pointer, drag, wheel and
// key events for nodes linked to entities.
var InteractionEventType = events.NewEventType[canopy.InteractionEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Interaction events are published to InteractionEventType and can be
// consumed with events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) canopy.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event canopy.InteractionEvent) {
	InteractionEventType.Publish(s.world, event)
}

// SubscribeType subscribes fn to interaction events of a single type.
func SubscribeType(world donburi.World, kind canopy.EventType, fn func(donburi.World, canopy.InteractionEvent)) {
	InteractionEventType.Subscribe(world, func(w donburi.World, e canopy.InteractionEvent) {
		if e.Type == kind {
			fn(w, e)
		}
	})
}
