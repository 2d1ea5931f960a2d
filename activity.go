package canopy

import (
	"time"

	"github.com/tanema/gween/ease"
)

// DefaultStepRate is the minimum interval between two steps of an activity
// created by the animation helpers.
const DefaultStepRate = 20 * time.Millisecond

// LoopForever makes an activity repeat until terminated.
const LoopForever = -1

// ActivityState is the lifecycle state of an Activity.
type ActivityState uint8

const (
	ActivityScheduled  ActivityState = iota // waiting for its start time
	ActivityRunning                         // started, stepping
	ActivityFinished                        // ran to completion
	ActivityTerminated                      // stopped early by Terminate
)

var activityStateNames = [...]string{
	ActivityScheduled:  "scheduled",
	ActivityRunning:    "running",
	ActivityFinished:   "finished",
	ActivityTerminated: "terminated",
}

func (s ActivityState) String() string {
	if int(s) < len(activityStateNames) {
		return activityStateNames[s]
	}
	return "unknown"
}

// ActivityEvent identifies a lifecycle notification.
type ActivityEvent uint8

const (
	ActivityStarted       ActivityEvent = iota // fired once, before the first step
	ActivityStepped                            // fired after every update
	ActivityFinishedEvent                      // fired exactly once, on completion or termination
)

var activityEventNames = [...]string{
	ActivityStarted:       "started",
	ActivityStepped:       "stepped",
	ActivityFinishedEvent: "finished",
}

func (e ActivityEvent) String() string {
	if int(e) < len(activityEventNames) {
		return activityEventNames[e]
	}
	return "unknown"
}

// ActivityMode maps the elapsed fraction of an iteration onto the value
// passed to the update function.
type ActivityMode uint8

const (
	SourceToDestination         ActivityMode = iota // 0 → 1
	DestinationToSource                             // 1 → 0
	SourceToDestinationToSource                     // 0 → 1 → 0
)

// TerminationBehavior decides what Terminate does to the animated value.
type TerminationBehavior uint8

const (
	// TerminateWithoutFinishing leaves the value where the last step put it.
	TerminateWithoutFinishing TerminationBehavior = iota
	// TerminateAndFinish applies the end value of the current iteration
	// before stopping.
	TerminateAndFinish
)

// Activity is a time-bounded task stepped by an ActivityScheduler. Each step
// computes the elapsed fraction of the current iteration, clamps it to
// [0, 1], shapes it with the mode and easing function and passes the result
// to the update function.
//
// Activities never read a clock; time only advances through
// ActivityScheduler.Step.
type Activity struct {
	duration time.Duration
	stepRate time.Duration
	update   func(t float64)
	begin    func() // captures animation sources when the activity starts

	startTime time.Time
	resolved  bool // startTime is meaningful
	after     *Activity

	loopCount   int
	mode        ActivityMode
	easing      ease.TweenFunc
	termination TerminationBehavior

	state     ActivityState
	scheduler *ActivityScheduler
	pending   bool // start to be resolved by the scheduler's first Step
	iteration int
	fraction  float64
	lastStep  time.Time
	stepped   bool

	listeners []func(*Activity, ActivityEvent)
}

// NewActivity creates an activity lasting duration per iteration that steps
// at most once per stepRate (0 steps on every scheduler step). update
// receives the shaped fraction in [0, 1]. Negative durations or step rates
// are rejected with a *ConfigError.
func NewActivity(duration, stepRate time.Duration, update func(t float64)) (*Activity, error) {
	if duration < 0 {
		return nil, &ConfigError{Field: "duration", Value: duration, Reason: "must not be negative"}
	}
	if stepRate < 0 {
		return nil, &ConfigError{Field: "step rate", Value: stepRate, Reason: "must not be negative"}
	}
	return &Activity{
		duration:  duration,
		stepRate:  stepRate,
		update:    update,
		loopCount: 1,
	}, nil
}

// --- Configuration ---

// SetStartTime fixes the start time. Start times in the past are honored:
// the first step lands at the matching fraction.
func (a *Activity) SetStartTime(t time.Time) {
	a.startTime = t
	a.resolved = true
	a.after = nil
	a.pending = false
}

// StartAfter makes the activity start when other stops. The start time is
// resolved once, when the activity is scheduled; later changes to other do
// not move it.
func (a *Activity) StartAfter(other *Activity) error {
	if other == nil || other == a {
		return &ConfigError{Field: "predecessor", Value: other, Reason: "must be another activity"}
	}
	a.after = other
	a.resolved = false
	return nil
}

// SetLoopCount sets how many iterations run before finishing, or LoopForever.
func (a *Activity) SetLoopCount(n int) error {
	if n == 0 || n < LoopForever {
		return &ConfigError{Field: "loop count", Value: n, Reason: "must be positive or LoopForever"}
	}
	a.loopCount = n
	return nil
}

// SetMode sets how the fraction is mapped for each iteration.
func (a *Activity) SetMode(m ActivityMode) {
	a.mode = m
}

// SetEasing sets the easing function applied to each fraction. nil restores
// linear interpolation.
func (a *Activity) SetEasing(fn ease.TweenFunc) {
	a.easing = fn
}

// SetTerminationBehavior sets what Terminate does to the animated value.
func (a *Activity) SetTerminationBehavior(b TerminationBehavior) {
	a.termination = b
}

// OnEvent registers fn for every lifecycle notification.
func (a *Activity) OnEvent(fn func(*Activity, ActivityEvent)) {
	a.listeners = append(a.listeners, fn)
}

// OnStarted registers fn for the started notification.
func (a *Activity) OnStarted(fn func(*Activity)) {
	a.OnEvent(func(a *Activity, e ActivityEvent) {
		if e == ActivityStarted {
			fn(a)
		}
	})
}

// OnStepped registers fn for every step notification.
func (a *Activity) OnStepped(fn func(*Activity)) {
	a.OnEvent(func(a *Activity, e ActivityEvent) {
		if e == ActivityStepped {
			fn(a)
		}
	})
}

// OnFinished registers fn for the finished notification.
func (a *Activity) OnFinished(fn func(*Activity)) {
	a.OnEvent(func(a *Activity, e ActivityEvent) {
		if e == ActivityFinishedEvent {
			fn(a)
		}
	})
}

// --- Queries ---

// State returns the lifecycle state.
func (a *Activity) State() ActivityState { return a.state }

// IsStepping reports whether the activity has started and not yet ended.
func (a *Activity) IsStepping() bool { return a.state == ActivityRunning }

// Duration returns the length of one iteration.
func (a *Activity) Duration() time.Duration { return a.duration }

// StepRate returns the minimum interval between steps.
func (a *Activity) StepRate() time.Duration { return a.stepRate }

// LoopCount returns the number of iterations, or LoopForever.
func (a *Activity) LoopCount() int { return a.loopCount }

// Mode returns the fraction mapping mode.
func (a *Activity) Mode() ActivityMode { return a.mode }

// Iteration returns the number of completed iterations.
func (a *Activity) Iteration() int { return a.iteration }

// Fraction returns the clamped, unshaped fraction of the current iteration
// at the last step.
func (a *Activity) Fraction() float64 { return a.fraction }

// StartTime returns the start time. ok is false until it is known: set
// explicitly or resolved by scheduling.
func (a *Activity) StartTime() (t time.Time, ok bool) {
	return a.startTime, a.resolved
}

// StopTime returns the time the last iteration ends. ok is false when the
// start time is not yet known or the activity loops forever.
func (a *Activity) StopTime() (t time.Time, ok bool) {
	if !a.resolved || a.loopCount == LoopForever {
		return time.Time{}, false
	}
	return a.startTime.Add(a.duration * time.Duration(a.loopCount)), true
}

// Scheduler returns the scheduler the activity is on, or nil.
func (a *Activity) Scheduler() *ActivityScheduler { return a.scheduler }

// --- Control ---

// Terminate stops the activity immediately and fires the finished
// notification exactly once. Terminating an ended activity is a no-op.
func (a *Activity) Terminate() {
	if a.state == ActivityFinished || a.state == ActivityTerminated {
		return
	}
	if a.termination == TerminateAndFinish && a.state == ActivityRunning {
		a.apply(1)
	}
	a.state = ActivityTerminated
	if a.scheduler != nil {
		a.scheduler.remove(a)
	}
	a.emit(ActivityFinishedEvent)
}

// --- Stepping ---

func (a *Activity) emit(e ActivityEvent) {
	for _, fn := range a.listeners {
		fn(a, e)
	}
}

// iterationEnd returns when the current iteration ends.
func (a *Activity) iterationEnd() time.Time {
	return a.startTime.Add(a.duration * time.Duration(a.iteration+1))
}

// step advances the activity to now. It reports whether the activity ended.
func (a *Activity) step(now time.Time) bool {
	if a.state == ActivityFinished || a.state == ActivityTerminated {
		return true
	}
	if !a.resolved || now.Before(a.startTime) {
		return false
	}
	if a.state == ActivityScheduled {
		a.state = ActivityRunning
		if a.begin != nil {
			a.begin()
		}
		a.emit(ActivityStarted)
		if a.state != ActivityRunning {
			// Terminated from the started notification.
			return true
		}
	}

	// Rate limiting never delays the step that completes an iteration.
	if a.stepRate > 0 && a.stepped && now.Sub(a.lastStep) < a.stepRate &&
		a.duration > 0 && now.Before(a.iterationEnd()) {
		return false
	}
	a.lastStep = now
	a.stepped = true

	if a.duration > 0 && a.loopCount == LoopForever {
		// Skip whole iterations missed since the last step without
		// replaying them.
		if behind := int(now.Sub(a.startTime)/a.duration) - a.iteration; behind > 1 {
			a.iteration += behind - 1
		}
	}

	for {
		f := 1.0
		if a.duration > 0 {
			iterStart := a.startTime.Add(a.duration * time.Duration(a.iteration))
			f = clamp01(float64(now.Sub(iterStart)) / float64(a.duration))
		}
		a.apply(f)
		if a.state != ActivityRunning {
			return true
		}
		if f < 1 {
			return false
		}

		a.iteration++
		if a.loopCount != LoopForever && a.iteration >= a.loopCount {
			a.state = ActivityFinished
			a.emit(ActivityFinishedEvent)
			return true
		}
		// The next iteration shows on a later step unless time has already
		// moved past its start.
		if a.duration > 0 && !now.After(a.startTime.Add(a.duration*time.Duration(a.iteration))) {
			return false
		}
	}
}

// apply shapes the raw fraction f, calls update and fires stepped.
func (a *Activity) apply(f float64) {
	a.fraction = f
	t := f
	switch a.mode {
	case DestinationToSource:
		t = 1 - t
	case SourceToDestinationToSource:
		if t <= 0.5 {
			t *= 2
		} else {
			t = 2 * (1 - t)
		}
	}
	if a.easing != nil {
		t = float64(a.easing(float32(t), 0, 1, 1))
	}
	if a.update != nil {
		a.update(t)
	}
	if a.state == ActivityTerminated {
		return
	}
	a.emit(ActivityStepped)
}
