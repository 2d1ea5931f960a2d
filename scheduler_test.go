package canopy

import (
	"errors"
	"testing"
	"time"
)

func TestSchedulerDefersStartUntilFirstStep(t *testing.T) {
	s := NewActivityScheduler()
	var rec recorder
	a, _ := NewActivity(time.Second, 0, rec.update)
	b, _ := NewActivity(time.Second, 0, nil)
	_ = b.StartAfter(a)

	if err := s.Schedule(a); err != nil {
		t.Fatal(err)
	}
	if err := s.Schedule(b); err != nil {
		t.Fatalf("successor of a pending activity: %v", err)
	}
	if _, ok := a.StartTime(); ok {
		t.Fatal("start time resolved before the clock was set")
	}

	s.Step(ms(0))
	start, ok := a.StartTime()
	if !ok || !start.Equal(ms(0)) {
		t.Errorf("a start = %v, %v; want %v", start, ok, ms(0))
	}
	start, ok = b.StartTime()
	if !ok || !start.Equal(ms(1000)) {
		t.Errorf("b start = %v, %v; want %v", start, ok, ms(1000))
	}
	rec.assert(t, 0)
}

func TestSchedulerStepsInScheduleOrder(t *testing.T) {
	s := NewActivityScheduler()
	s.SetTime(epoch)
	var order []string
	for _, name := range []string{"a", "b", "c"} {
		name := name
		a, _ := NewActivity(time.Second, 0, func(float64) { order = append(order, name) })
		_ = s.Schedule(a)
	}
	s.Step(ms(0))
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("order = %v, want [a b c]", order)
	}
}

func TestSchedulerScheduleTwice(t *testing.T) {
	s := NewActivityScheduler()
	a, _ := NewActivity(time.Second, 0, nil)
	_ = s.Schedule(a)
	if err := s.Schedule(a); err != nil {
		t.Errorf("rescheduling on the same scheduler: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	other := NewActivityScheduler()
	if err := other.Schedule(a); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("scheduling on a second scheduler: err = %v", err)
	}
	if err := s.Schedule(nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nil: err = %v", err)
	}
}

func TestSchedulerUnschedule(t *testing.T) {
	s := NewActivityScheduler()
	s.SetTime(epoch)
	var rec recorder
	a, _ := NewActivity(time.Second, 0, rec.update)
	finished := 0
	a.OnFinished(func(*Activity) { finished++ })
	_ = s.Schedule(a)
	if !s.Unschedule(a) {
		t.Fatal("Unschedule returned false")
	}
	if s.Unschedule(a) {
		t.Error("second Unschedule returned true")
	}
	s.Step(ms(500))
	rec.assert(t)
	if finished != 0 {
		t.Error("Unschedule fired finished")
	}
	if a.Scheduler() != nil {
		t.Error("Scheduler() still set")
	}
}

func TestSchedulerActivityUnschedulesAnother(t *testing.T) {
	s := NewActivityScheduler()
	s.SetTime(epoch)
	var rec recorder
	victim, _ := NewActivity(time.Second, 0, rec.update)
	killer, _ := NewActivity(time.Second, 0, func(float64) { victim.Terminate() })
	_ = s.Schedule(killer)
	_ = s.Schedule(victim)
	s.Step(ms(0))
	rec.assert(t)
	if victim.State() != ActivityTerminated || s.Len() != 1 {
		t.Errorf("victim state = %v, scheduled = %d", victim.State(), s.Len())
	}
}

func TestSchedulerScheduleFromNotification(t *testing.T) {
	s := NewActivityScheduler()
	s.SetTime(epoch)
	var rec recorder
	follow, _ := NewActivity(time.Second, 0, rec.update)
	first, _ := NewActivity(0, 0, nil)
	first.OnFinished(func(*Activity) { _ = s.Schedule(follow) })
	_ = s.Schedule(first)

	s.Step(ms(0))
	rec.assert(t)
	if follow.Scheduler() != s {
		t.Fatal("follow-up not scheduled")
	}
	s.Step(ms(250))
	rec.assert(t, 0.25)
}

func TestSchedulerTerminateAll(t *testing.T) {
	s := NewActivityScheduler()
	s.SetTime(epoch)
	finished := 0
	for i := 0; i < 3; i++ {
		a, _ := NewActivity(time.Second, 0, nil)
		a.OnFinished(func(*Activity) { finished++ })
		_ = s.Schedule(a)
	}
	if len(s.Activities()) != 3 {
		t.Fatalf("Activities = %d, want 3", len(s.Activities()))
	}
	s.TerminateAll()
	if s.Len() != 0 || finished != 3 {
		t.Errorf("Len = %d finished = %d", s.Len(), finished)
	}
}

func TestSchedulerNow(t *testing.T) {
	s := NewActivityScheduler()
	s.Step(ms(42))
	if !s.Now().Equal(ms(42)) {
		t.Errorf("Now = %v, want %v", s.Now(), ms(42))
	}
}

func TestSchedulerDropsSuccessorOfUnscheduledPredecessor(t *testing.T) {
	s := NewActivityScheduler()
	p, _ := NewActivity(time.Second, 0, nil)
	var rec recorder
	a, _ := NewActivity(time.Second, 0, rec.update)
	_ = a.StartAfter(p)
	finished := 0
	a.OnFinished(func(*Activity) { finished++ })

	if err := s.Schedule(p); err != nil {
		t.Fatal(err)
	}
	if err := s.Schedule(a); err != nil {
		t.Fatal(err)
	}
	s.Unschedule(p)
	for i := 0; i < 5; i++ {
		s.Step(ms(i * 100))
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
	if a.State() != ActivityTerminated || finished != 1 {
		t.Errorf("state = %v finished = %d, want terminated once", a.State(), finished)
	}
	rec.assert(t)

	// The unscheduled predecessor is no longer waiting on the clock.
	if err := s.Schedule(p); err != nil {
		t.Fatal(err)
	}
	start, ok := p.StartTime()
	if !ok || !start.Equal(ms(400)) {
		t.Errorf("rescheduled start = %v, %v; want %v", start, ok, ms(400))
	}
}
