package runner

import (
	"sync"
	"sync/atomic"
	"time"
)

// TaskRunner schedules deferred work onto a Mailbox. It stands in for the
// platform task runner the engine is configured with.
type TaskRunner struct {
	mailbox *Mailbox
	now     func() uint64

	owner atomic.Uint64

	mu      sync.Mutex
	timers  map[*time.Timer]struct{}
	stopped bool
}

// NewTaskRunner returns a runner posting to mailbox. now is the engine
// clock in nanoseconds; it must be the clock task targets are expressed in.
func NewTaskRunner(mailbox *Mailbox, now func() uint64) *TaskRunner {
	return &TaskRunner{
		mailbox: mailbox,
		now:     now,
		timers:  make(map[*time.Timer]struct{}),
	}
}

// Bind records the calling OS thread as the owner. The caller must have
// locked its goroutine to the thread.
func (r *TaskRunner) Bind() {
	r.owner.Store(currentThread())
	slogger().Debug("runner: bound", "thread", r.owner.Load())
}

// RunsOnCurrentThread reports whether the caller is on the owner thread.
// It is false before Bind and on platforms without thread identity.
func (r *TaskRunner) RunsOnCurrentThread() bool {
	owner := r.owner.Load()
	return owner != 0 && owner == currentThread()
}

// Post queues task once the engine clock reaches targetNanos. A target in
// the past is queued immediately.
func (r *TaskRunner) Post(task func(), targetNanos uint64) {
	now := r.now()
	if targetNanos <= now {
		r.mailbox.Post(task)
		return
	}
	delay := time.Duration(targetNanos - now)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		r.mu.Lock()
		_, live := r.timers[t]
		delete(r.timers, t)
		r.mu.Unlock()
		if live {
			r.mailbox.Post(task)
		}
	})
	r.timers[t] = struct{}{}
}

// Pending returns the number of tasks waiting on a timer.
func (r *TaskRunner) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

// Stop cancels every pending timer. Tasks posted afterwards with a future
// target are dropped.
func (r *TaskRunner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	for t := range r.timers {
		t.Stop()
		delete(r.timers, t)
	}
}
