package canopy

import (
	"encoding/json"
	"fmt"
)

// scriptAction names what one script step does.
type scriptAction string

const (
	actionSnapshot scriptAction = "snapshot"
	actionClick    scriptAction = "click"
	actionHover    scriptAction = "hover"
	actionDrag     scriptAction = "drag"
	actionWait     scriptAction = "wait"
)

func (a scriptAction) valid() bool {
	switch a {
	case actionSnapshot, actionClick, actionHover, actionDrag, actionWait:
		return true
	}
	return false
}

// scriptStep is one entry of a script's "steps" array. Which fields matter
// depends on Action: X/Y for click and hover, From/To for drag, Steps for
// drag interpolation and wait length, Label for snapshot.
type scriptStep struct {
	Action scriptAction `json:"action"`
	Label  string       `json:"label,omitempty"`
	X      float64      `json:"x,omitempty"`
	Y      float64      `json:"y,omitempty"`
	FromX  float64      `json:"fromX,omitempty"`
	FromY  float64      `json:"fromY,omitempty"`
	ToX    float64      `json:"toX,omitempty"`
	ToY    float64      `json:"toY,omitempty"`
	Steps  int          `json:"steps,omitempty"`
}

// TestRunner replays a scripted sequence of pointer input and snapshot
// requests against a scene, one action per Scene.Step. Build one with
// LoadTestScript.
type TestRunner struct {
	script   []scriptStep
	next     int // index of the next action to run
	idle     int // scene steps still to sit out for a wait action
	finished bool
}

// LoadTestScript decodes a JSON script:
//
//	{"steps": [
//	  {"action": "click", "x": 50, "y": 50},
//	  {"action": "drag", "fromX": 10, "fromY": 10, "toX": 90, "toY": 10, "steps": 5},
//	  {"action": "wait", "steps": 3},
//	  {"action": "snapshot", "label": "after-drag"}
//	]}
//
// Coordinates are device coordinates, as for Scene.ProcessPointer. An empty
// script or an unknown action is a *ConfigError.
func LoadTestScript(data []byte) (*TestRunner, error) {
	var doc struct {
		Steps []scriptStep `json:"steps"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("test script: %w", err)
	}
	if len(doc.Steps) == 0 {
		return nil, &ConfigError{Field: "steps", Value: 0, Reason: "script has no steps"}
	}
	for i, st := range doc.Steps {
		if !st.Action.valid() {
			return nil, fmt.Errorf("test script step %d: %w", i,
				&ConfigError{Field: "action", Value: string(st.Action), Reason: "unknown action"})
		}
	}
	return &TestRunner{script: doc.Steps}, nil
}

// SetTestRunner makes the scene replay runner; nil detaches it.
func (s *Scene) SetTestRunner(runner *TestRunner) {
	s.testRunner = runner
}

// Done reports whether every action has run and its input was consumed.
func (r *TestRunner) Done() bool {
	return r.finished
}

// step runs at the start of Scene.Step. An action only starts once the
// input queued by the previous one has been consumed.
func (r *TestRunner) step(s *Scene) {
	if r.finished || len(s.injectQueue) > 0 {
		return
	}
	if r.idle > 0 {
		r.idle--
		return
	}
	if r.next == len(r.script) {
		r.finished = true
		return
	}

	r.run(s, r.script[r.next])
	r.next++
	r.finished = r.next == len(r.script) && r.idle == 0 && len(s.injectQueue) == 0
}

func (r *TestRunner) run(s *Scene, st scriptStep) {
	switch st.Action {
	case actionSnapshot:
		if s.OnSnapshot != nil {
			s.OnSnapshot(st.Label)
		}
	case actionClick:
		s.InjectClick(st.X, st.Y)
	case actionHover:
		s.InjectHover(st.X, st.Y)
	case actionDrag:
		s.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Steps)
	case actionWait:
		// The step running the wait is the first one waited.
		r.idle = max(st.Steps-1, 0)
	}
}
