package dbapi

import (
	"context"
	"sync"
	"time"
)

// Priority classifies callers of the shared throttle. Interactive requests
// are dequeued ahead of background cache-warming requests of equal readiness,
// so warming traffic can never delay a live search beyond one in-flight slot.
type Priority int

const (
	Background Priority = iota
	Interactive
)

// Throttle is a process-wide minimum-interval gate. Every outbound call to
// the timetable provider acquires a slot here first, regardless of whether it
// originates from live traffic or from the cache warmer.
type Throttle struct {
	interval time.Duration

	mu     sync.Mutex
	next   time.Time
	armed  bool
	queues [2][]*waiter
}

type waiter struct {
	ready     chan struct{}
	cancelled bool
}

func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval}
}

// Acquire blocks until a dispatch slot is granted or ctx is done. Slots are
// granted one per interval, interactive waiters first.
func (t *Throttle) Acquire(ctx context.Context, p Priority) error {
	w := &waiter{ready: make(chan struct{})}
	t.mu.Lock()
	t.queues[p] = append(t.queues[p], w)
	t.arm()
	t.mu.Unlock()

	select {
	case <-w.ready:
		return nil
	case <-ctx.Done():
		t.mu.Lock()
		w.cancelled = true
		t.mu.Unlock()
		return ctx.Err()
	}
}

// arm schedules the next dispatch if one is not already pending. Callers must
// hold t.mu.
func (t *Throttle) arm() {
	if t.armed {
		return
	}
	if len(t.queues[Interactive]) == 0 && len(t.queues[Background]) == 0 {
		return
	}
	t.armed = true
	delay := time.Until(t.next)
	if delay < 0 {
		delay = 0
	}
	time.AfterFunc(delay, t.dispatch)
}

func (t *Throttle) dispatch() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armed = false
	w := t.pop()
	if w == nil {
		return
	}
	t.next = time.Now().Add(t.interval)
	close(w.ready)
	t.arm()
}

// pop removes the next live waiter, preferring interactive ones. Cancelled
// waiters are discarded. Callers must hold t.mu.
func (t *Throttle) pop() *waiter {
	for _, p := range []Priority{Interactive, Background} {
		q := t.queues[p]
		for len(q) > 0 {
			w := q[0]
			q = q[1:]
			if !w.cancelled {
				t.queues[p] = q
				return w
			}
		}
		t.queues[p] = q
	}
	return nil
}
