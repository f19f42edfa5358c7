package runner

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"
)

func clock() func() uint64 {
	start := time.Now()
	return func() uint64 { return uint64(time.Since(start)) + 1_000_000_000 }
}

func TestPostPastTargetRunsImmediately(t *testing.T) {
	m := NewMailbox()
	r := NewTaskRunner(m, clock())
	ran := false
	r.Post(func() { ran = true }, 0)
	if m.Len() != 1 || r.Pending() != 0 {
		t.Fatalf("Len() = %d, Pending() = %d, want 1, 0", m.Len(), r.Pending())
	}
	m.Drain()
	if !ran {
		t.Error("task did not run")
	}
}

func TestPostFutureTargetWaits(t *testing.T) {
	m := NewMailbox()
	now := clock()
	r := NewTaskRunner(m, now)
	var ran atomic.Bool
	r.Post(func() { ran.Store(true) }, now()+uint64(20*time.Millisecond))

	if m.Len() != 0 {
		t.Fatalf("task queued before its target")
	}
	select {
	case <-m.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("timer never posted the task")
	}
	m.Drain()
	if !ran.Load() {
		t.Error("task did not run after its target")
	}
	if r.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", r.Pending())
	}
}

func TestStopCancelsTimers(t *testing.T) {
	m := NewMailbox()
	now := clock()
	r := NewTaskRunner(m, now)
	r.Post(func() {}, now()+uint64(time.Hour))
	if r.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", r.Pending())
	}
	r.Stop()
	if r.Pending() != 0 {
		t.Errorf("Pending() = %d after Stop, want 0", r.Pending())
	}
	r.Post(func() {}, now()+uint64(time.Hour))
	if r.Pending() != 0 {
		t.Errorf("Post() after Stop armed a timer")
	}
}

func TestRunsOnCurrentThread(t *testing.T) {
	r := NewTaskRunner(NewMailbox(), clock())
	if r.RunsOnCurrentThread() {
		t.Fatal("RunsOnCurrentThread() = true before Bind")
	}
	if currentThread() == 0 {
		t.Skip("no thread identity on this platform")
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	r.Bind()
	if !r.RunsOnCurrentThread() {
		t.Error("RunsOnCurrentThread() = false on the bound thread")
	}

	other := make(chan bool)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		other <- r.RunsOnCurrentThread()
	}()
	if <-other {
		t.Error("RunsOnCurrentThread() = true on another thread")
	}
}
