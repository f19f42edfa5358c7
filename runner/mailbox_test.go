package runner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMailboxFIFO(t *testing.T) {
	m := NewMailbox()
	var got []int
	for i := range 5 {
		m.Post(func() { got = append(got, i) })
	}
	if m.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", m.Len())
	}
	if n := m.Drain(); n != 5 {
		t.Errorf("Drain() = %d, want 5", n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order = %v, want ascending", got)
		}
	}
}

func TestMailboxPostDuringDrain(t *testing.T) {
	m := NewMailbox()
	ran := 0
	m.Post(func() {
		ran++
		m.Post(func() { ran++ })
	})
	if n := m.Drain(); n != 1 {
		t.Errorf("first Drain() = %d, want 1", n)
	}
	if n := m.Drain(); n != 1 {
		t.Errorf("second Drain() = %d, want 1", n)
	}
	if ran != 2 {
		t.Errorf("ran = %d, want 2", ran)
	}
}

func TestMailboxConcurrentPost(t *testing.T) {
	m := NewMailbox()
	var wg sync.WaitGroup
	const writers, each = 8, 100
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range each {
				m.Post(func() {})
			}
		}()
	}
	wg.Wait()
	if n := m.Drain(); n != writers*each {
		t.Errorf("Drain() = %d, want %d", n, writers*each)
	}
}

func TestMailboxClose(t *testing.T) {
	m := NewMailbox()
	ran := false
	m.Post(func() { ran = true })
	m.Close()
	m.Close()
	if m.Post(func() {}) {
		t.Error("Post() after Close = true, want false")
	}
	err := m.Run(context.Background())
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Run() = %v, want ErrClosed", err)
	}
	if !ran {
		t.Error("work queued before Close did not run")
	}
}

func TestMailboxRunContext(t *testing.T) {
	m := NewMailbox()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.Post(func() { close(done) })

	errc := make(chan error, 1)
	go func() { errc <- m.Run(ctx) }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("posted work did not run")
	}
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}
