package canopy

import "time"

// ActivityScheduler owns a list of activities and steps them when the host
// calls Step. It has no thread or timer of its own. Each Scene owns one;
// more can be created freely.
type ActivityScheduler struct {
	activities []*Activity
	now        time.Time
	started    bool // Step has been called at least once
}

// NewActivityScheduler returns an empty scheduler whose clock is unset until
// the first Step or SetTime.
func NewActivityScheduler() *ActivityScheduler {
	return &ActivityScheduler{}
}

// Now returns the time passed to the last Step or SetTime.
func (s *ActivityScheduler) Now() time.Time {
	return s.now
}

// SetTime sets the scheduler clock without stepping. Activities scheduled
// afterwards without an explicit start time start at t.
func (s *ActivityScheduler) SetTime(t time.Time) {
	s.now = t
	s.started = true
	s.resolvePending()
}

// Schedule adds a to the scheduler and resolves its start time:
//   - an explicit start time is kept;
//   - StartAfter resolves to the predecessor's stop time, once;
//   - otherwise the activity starts at Now.
//
// Before the clock has been set, unresolved starts are deferred to the
// first Step and resolved in schedule order.
func (s *ActivityScheduler) Schedule(a *Activity) error {
	if a == nil {
		return &ConfigError{Field: "activity", Value: nil, Reason: "must not be nil"}
	}
	if a.scheduler == s {
		return nil
	}
	if a.scheduler != nil {
		return &ConfigError{Field: "activity", Value: a.scheduler, Reason: "already scheduled on another scheduler"}
	}
	if a.state == ActivityFinished || a.state == ActivityTerminated {
		return &ConfigError{Field: "activity", Value: a.state, Reason: "cannot reschedule an ended activity"}
	}
	if a.loopCount == LoopForever && a.duration == 0 {
		return &ConfigError{Field: "loop count", Value: a.loopCount, Reason: "looping forever needs a positive duration"}
	}
	if err := s.resolveStart(a); err != nil {
		return err
	}
	a.scheduler = s
	s.activities = append(s.activities, a)
	return nil
}

// resolveStart fixes a's start time or marks it pending.
func (s *ActivityScheduler) resolveStart(a *Activity) error {
	if a.resolved {
		return nil
	}
	if p := a.after; p != nil {
		if stop, ok := p.StopTime(); ok {
			a.startTime = stop
			a.resolved = true
			a.pending = false
			return nil
		}
		if p.loopCount == LoopForever {
			return &ConfigError{Field: "predecessor", Value: p.loopCount, Reason: "predecessor loops forever and never stops"}
		}
		if p.pending && p.scheduler == s {
			a.pending = true
			return nil
		}
		return &ConfigError{Field: "predecessor", Value: nil, Reason: "predecessor has no start time"}
	}
	if !s.started {
		a.pending = true
		return nil
	}
	a.startTime = s.now
	a.resolved = true
	a.pending = false
	return nil
}

// resolvePending fixes the start of every deferred activity in schedule
// order. An activity whose start can no longer be known, because its
// predecessor left the scheduler, is terminated.
func (s *ActivityScheduler) resolvePending() {
	for _, a := range s.Activities() {
		if !a.pending || a.scheduler != s {
			continue
		}
		if err := s.resolveStart(a); err != nil {
			Logger().Warn("activity start unresolved, terminating", "err", err)
			a.pending = false
			a.Terminate()
		}
	}
}

// Unschedule removes a without terminating it or firing notifications.
// It reports whether a was scheduled here.
func (s *ActivityScheduler) Unschedule(a *Activity) bool {
	if a == nil || a.scheduler != s {
		return false
	}
	a.pending = false
	s.remove(a)
	return true
}

func (s *ActivityScheduler) remove(a *Activity) {
	for i, o := range s.activities {
		if o == a {
			copy(s.activities[i:], s.activities[i+1:])
			s.activities[len(s.activities)-1] = nil
			s.activities = s.activities[:len(s.activities)-1]
			break
		}
	}
	a.scheduler = nil
}

// Step advances every scheduled activity to now, in schedule order.
// Activities that end are removed. Activities scheduled from inside a
// notification are first stepped on the next call.
func (s *ActivityScheduler) Step(now time.Time) {
	s.now = now
	if !s.started {
		s.started = true
		s.resolvePending()
	}
	if len(s.activities) == 0 {
		return
	}
	snapshot := make([]*Activity, len(s.activities))
	copy(snapshot, s.activities)
	for _, a := range snapshot {
		if a.scheduler != s {
			// Unscheduled or terminated by an earlier activity this step.
			continue
		}
		if a.step(now) && a.scheduler == s {
			s.remove(a)
		}
	}
}

// Activities returns a copy of the scheduled activities in schedule order.
func (s *ActivityScheduler) Activities() []*Activity {
	out := make([]*Activity, len(s.activities))
	copy(out, s.activities)
	return out
}

// Len returns the number of scheduled activities.
func (s *ActivityScheduler) Len() int {
	return len(s.activities)
}

// TerminateAll terminates every scheduled activity.
func (s *ActivityScheduler) TerminateAll() {
	for _, a := range s.Activities() {
		a.Terminate()
	}
}
