// Package runner runs engine work on the thread that owns the UI.
//
// The engine calls into the host from threads it owns. Nothing it asks for
// may run there: work is posted to a Mailbox and executed when the UI
// thread drains it. Deferred engine tasks go through a TaskRunner, which
// holds them on a timer until their target time and then posts them.
package runner

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("runner: mailbox closed")

// Mailbox is an unbounded FIFO of closures. Post is safe from any goroutine;
// Drain runs the queued closures on the caller's goroutine.
type Mailbox struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	// ready holds a token while the queue is non-empty.
	ready chan struct{}
}

// NewMailbox returns an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{ready: make(chan struct{}, 1)}
}

// Post appends f. It reports false once the mailbox is closed.
func (m *Mailbox) Post(f func()) bool {
	if f == nil {
		return true
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, f)
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
	return true
}

// Ready is signalled after Post. A receive does not guarantee work remains.
func (m *Mailbox) Ready() <-chan struct{} { return m.ready }

// Len returns the number of queued closures.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Drain runs every closure queued at the time of the call, in order, and
// returns how many ran. Closures posted while draining wait for the next
// call.
func (m *Mailbox) Drain() int {
	m.mu.Lock()
	batch := m.queue
	m.queue = nil
	m.mu.Unlock()

	for i, f := range batch {
		f()
		batch[i] = nil
	}
	return len(batch)
}

// Run drains the mailbox whenever it becomes ready until ctx is done or the
// mailbox is closed. Work still queued at Close is run before returning.
func (m *Mailbox) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.ready:
			m.Drain()
			if m.isClosed() {
				m.Drain()
				return ErrClosed
			}
		}
	}
}

// Close stops accepting work and wakes Run.
func (m *Mailbox) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
}

// isClosed reports whether Close has been called.
func (m *Mailbox) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
