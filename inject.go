package canopy

// InjectPress queues a pointer press event at the given device coordinates
// (left button). Queued events are consumed one per Scene.Step.
func (s *Scene) InjectPress(x, y float64) {
	s.injectQueue = append(s.injectQueue, PointerSample{
		X: x, Y: y,
		Pressed: true,
		Button:  MouseButtonLeft,
	})
}

// InjectMove queues a pointer move event at the given device coordinates
// with the button held down. Use this between InjectPress and InjectRelease
// to simulate a drag.
func (s *Scene) InjectMove(x, y float64) {
	s.injectQueue = append(s.injectQueue, PointerSample{
		X: x, Y: y,
		Pressed: true,
		Button:  MouseButtonLeft,
	})
}

// InjectHover queues a pointer move event with no button held.
func (s *Scene) InjectHover(x, y float64) {
	s.injectQueue = append(s.injectQueue, PointerSample{X: x, Y: y})
}

// InjectRelease queues a pointer release event at the given device coordinates.
func (s *Scene) InjectRelease(x, y float64) {
	s.injectQueue = append(s.injectQueue, PointerSample{
		X: x, Y: y,
		Pressed: false,
		Button:  MouseButtonLeft,
	})
}

// InjectClick is a convenience that queues a press followed by a release
// at the same coordinates. Consumes two steps.
func (s *Scene) InjectClick(x, y float64) {
	s.InjectPress(x, y)
	s.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// linearly interpolated moves over steps-2 intermediate steps, and
// release at (toX, toY). The total sequence consumes `steps` steps.
// Minimum steps is 2 (press + release).
func (s *Scene) InjectDrag(fromX, fromY, toX, toY float64, steps int) {
	if steps < 2 {
		steps = 2
	}
	s.InjectPress(fromX, fromY)
	moves := steps - 2
	for i := 1; i <= moves; i++ {
		t := float64(i) / float64(moves+1)
		x := fromX + (toX-fromX)*t
		y := fromY + (toY-fromY)*t
		s.InjectMove(x, y)
	}
	s.InjectRelease(toX, toY)
}

// PendingInjections returns the number of queued synthetic pointer events.
func (s *Scene) PendingInjections() int {
	return len(s.injectQueue)
}

// processInjectedInput pops one event from the inject queue and feeds it
// through ProcessPointer. Returns true if an event was consumed.
func (s *Scene) processInjectedInput() bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	s.ProcessPointer(evt)
	return true
}
