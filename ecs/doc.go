// Package ecs provides ECS adapters for canopy's interaction event system.
//
// The primary adapter is [NewDonburiStore], which bridges canopy interaction
// events (pointer, click, drag, wheel, key) into a [Donburi] world as typed
// events. Subscribe to [InteractionEventType] in your ECS systems to receive
// them, or use [SubscribeType] for a single event type.
//
// Only nodes with a non-zero EntityID are reported.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	scene.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
