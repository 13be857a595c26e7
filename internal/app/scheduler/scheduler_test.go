package scheduler

import (
	"context"
	"testing"
	"time"

	"tilebot/internal/adapter/repo/memory"
)

func TestSchedulerTicksAllSessions(t *testing.T) {
	sc := New(time.Second, testLogger())
	a := newTestSession(memory.NewActionLog(), &countingMetrics{})
	b := newTestSession(memory.NewActionLog(), &countingMetrics{})
	sc.Add(a)
	sc.Add(b)

	sc.TickOnce(context.Background(), time.Unix(1000, 0))
	sc.TickOnce(context.Background(), time.Unix(1001, 0))

	if a.Status().Ticks != 2 || b.Status().Ticks != 2 {
		t.Fatalf("ticks = %d/%d, want 2/2", a.Status().Ticks, b.Status().Ticks)
	}
}

func TestSchedulerRemove(t *testing.T) {
	sc := New(time.Second, testLogger())
	s := newTestSession(memory.NewActionLog(), &countingMetrics{})
	sc.Add(s)

	if !sc.Remove(context.Background(), s.ID) {
		t.Fatalf("remove returned false")
	}
	if _, ok := sc.Get(s.ID); ok {
		t.Fatalf("session still registered after remove")
	}
	if sc.Remove(context.Background(), s.ID) {
		t.Fatalf("second remove returned true")
	}
}

func TestSchedulerSessionsAreIsolated(t *testing.T) {
	sc := New(time.Second, testLogger())
	a := newTestSession(memory.NewActionLog(), &countingMetrics{})
	b := newTestSession(memory.NewActionLog(), &countingMetrics{})
	sc.Add(a)
	sc.Add(b)

	a.Apply(thirstyPlayer())
	sc.TickOnce(context.Background(), time.Unix(1000, 0))

	if a.Status().Meters["stamina"].Value != 20 {
		t.Fatalf("session a meter not applied")
	}
	if _, ok := b.Status().Meters["stamina"]; ok {
		t.Fatalf("session b saw session a's update")
	}
}

func TestSchedulerShutdownClearsSessions(t *testing.T) {
	sc := New(time.Second, testLogger())
	sc.Add(newTestSession(memory.NewActionLog(), &countingMetrics{}))
	sc.Add(newTestSession(memory.NewActionLog(), &countingMetrics{}))

	sc.Shutdown(context.Background())
	if got := len(sc.Sessions()); got != 0 {
		t.Fatalf("sessions after shutdown = %d, want 0", got)
	}
}

func TestSchedulerRunStopsOnContextCancel(t *testing.T) {
	sc := New(time.Millisecond, testLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- sc.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run did not stop after cancel")
	}
}
