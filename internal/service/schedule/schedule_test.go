package schedule

import (
	"testing"
	"time"
)

func TestManualRunsInDueOrder(t *testing.T) {
	m := NewManual()
	var order []string

	m.AfterFunc(2*time.Second, func() { order = append(order, "b") })
	m.AfterFunc(time.Second, func() { order = append(order, "a") })
	m.AfterFunc(2*time.Second, func() { order = append(order, "c") })

	if fired := m.Advance(1500 * time.Millisecond); fired != 1 {
		t.Fatalf("expected 1 callback, got %d", fired)
	}
	if fired := m.Advance(time.Second); fired != 2 {
		t.Fatalf("expected 2 callbacks, got %d", fired)
	}
	if got := len(order); got != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("unexpected order: %v", order)
	}
	if m.Elapsed() != 2500*time.Millisecond {
		t.Fatalf("unexpected virtual time: %s", m.Elapsed())
	}
}

func TestManualStop(t *testing.T) {
	m := NewManual()
	ran := false
	task := m.AfterFunc(time.Second, func() { ran = true })

	if !task.Stop() {
		t.Fatal("expected first Stop to cancel")
	}
	if task.Stop() {
		t.Fatal("expected second Stop to report false")
	}
	m.Advance(time.Minute)
	if ran {
		t.Fatal("stopped task ran")
	}
	if m.Pending() != 0 {
		t.Fatalf("expected no pending tasks, got %d", m.Pending())
	}
}

func TestManualChainedCallbacks(t *testing.T) {
	m := NewManual()
	count := 0
	m.AfterFunc(time.Second, func() {
		count++
		m.AfterFunc(time.Second, func() { count++ })
	})

	if fired := m.Advance(3 * time.Second); fired != 2 {
		t.Fatalf("expected chained callback to run, fired %d", fired)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
}

func TestTimerStop(t *testing.T) {
	task := Timer{}.AfterFunc(time.Hour, func() { t.Error("timer fired") })
	if !task.Stop() {
		t.Fatal("expected Stop to cancel pending timer")
	}
}
