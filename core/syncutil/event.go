package syncutil

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrEventDestroyed is returned to waiters of an unset event whose last
// reference was dropped.
var ErrEventDestroyed = errors.New("syncutil: event destroyed")

// Event is a one-shot waitable flag carrying its own reference count. Create it
// with NewEvent.
type Event struct {
	set  atomic.Bool
	refs atomic.Int32

	mu        sync.Mutex
	ch        chan struct{}
	waiters   int
	destroyed bool
}

// NewEvent returns an unset event holding one reference.
func NewEvent() *Event {
	e := &Event{}
	e.refs.Store(1)
	return e
}

// Set marks the event and wakes every waiter. Extra calls do nothing.
func (e *Event) Set() {
	if e.set.Swap(true) {
		return
	}

	e.mu.Lock()
	if e.ch != nil {
		close(e.ch)
		e.ch = nil
	}
	e.mu.Unlock()
}

// Test reports whether the event is set without blocking.
func (e *Event) Test() bool {
	return e.set.Load()
}

// Reset re-arms a set event.
func (e *Event) Reset() {
	e.mu.Lock()
	e.set.Store(false)
	e.mu.Unlock()
}

func (e *Event) waitChannel() (<-chan struct{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.set.Load() {
		return nil, nil
	}
	if e.destroyed {
		return nil, ErrEventDestroyed
	}
	if e.ch == nil {
		e.ch = make(chan struct{})
	}
	e.waiters++
	return e.ch, nil
}

// leave drops the wait channel once the last waiter gives up on an unset event.
func (e *Event) leave() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.waiters--
	if e.waiters == 0 && !e.set.Load() {
		e.ch = nil
	}
}

// Wait blocks until the event is set or ctx is done. It returns
// ErrEventDestroyed if the last reference goes before the event is set.
func (e *Event) Wait(ctx context.Context) error {
	if e.Test() {
		return nil
	}

	ch, err := e.waitChannel()
	if err != nil || ch == nil {
		return err
	}
	defer e.leave()

	select {
	case <-ch:
		if !e.Test() && e.isDestroyed() {
			return ErrEventDestroyed
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitTimeout blocks until the event is set or d elapses. It reports whether
// the event was set.
func (e *Event) WaitTimeout(d time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	return e.Wait(ctx) == nil
}

// Reference takes a reference on the event. It panics once the event has
// been destroyed.
func (e *Event) Reference() {
	for {
		n := e.refs.Load()
		if n <= 0 {
			panic("syncutil: reference to destroyed Event")
		}
		if e.refs.CompareAndSwap(n, n+1) {
			return
		}
	}
}

// Dereference drops a reference and reports whether it was the last one.
// The last reference wakes remaining waiters and releases the wait channel.
func (e *Event) Dereference() bool {
	n := e.refs.Add(-1)
	if n < 0 {
		panic("syncutil: too many dereferences of Event")
	}
	if n > 0 {
		return false
	}

	e.mu.Lock()
	e.destroyed = true
	if e.ch != nil {
		close(e.ch)
		e.ch = nil
	}
	e.mu.Unlock()
	return true
}

func (e *Event) isDestroyed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.destroyed
}

func (e *Event) allocated() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ch != nil
}
