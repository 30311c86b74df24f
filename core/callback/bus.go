package callback

import (
	"sync"
	"sync/atomic"

	"system-mirror/core/syncutil"
)

// Func is a callback receiving the invocation parameter and the context given
// at registration.
type Func[T any] func(param T, context any)

// Registration is a handle returned by Register.
type Registration[T any] struct {
	fn      Func[T]
	context any

	unregistering atomic.Bool

	busyMu sync.Mutex
	busy   int
	idle   *sync.Cond

	prev, next *Registration[T]
	linked     bool
}

// Unregistering reports whether the registration has been flagged for removal.
func (r *Registration[T]) Unregistering() bool {
	return r.unregistering.Load()
}

func (r *Registration[T]) enter() {
	r.busyMu.Lock()
	r.busy++
	r.busyMu.Unlock()
}

func (r *Registration[T]) leave() {
	r.busyMu.Lock()
	r.busy--
	if r.busy == 0 {
		r.idle.Broadcast()
	}
	r.busyMu.Unlock()
}

// Bus holds an ordered list of registrations. The zero value is ready to use.
type Bus[T any] struct {
	lock       syncutil.QueuedLock
	head, tail *Registration[T]
	count      int
}

// Register appends fn to the bus.
func (b *Bus[T]) Register(fn Func[T], context any) *Registration[T] {
	r := &Registration[T]{fn: fn, context: context}
	r.idle = sync.NewCond(&r.busyMu)

	b.lock.Lock()
	r.prev = b.tail
	if b.tail != nil {
		b.tail.next = r
	} else {
		b.head = r
	}
	b.tail = r
	r.linked = true
	b.count++
	b.lock.Unlock()

	return r
}

// Unregister flags r so no further invocation reaches it and unlinks it. An
// invocation already inside r keeps running. Calling it more than once is
// harmless.
func (b *Bus[T]) Unregister(r *Registration[T]) {
	r.unregistering.Store(true)

	b.lock.Lock()
	defer b.lock.Unlock()

	if !r.linked {
		return
	}
	if r.prev != nil {
		r.prev.next = r.next
	} else {
		b.head = r.next
	}
	if r.next != nil {
		r.next.prev = r.prev
	} else {
		b.tail = r.prev
	}
	// r.next is kept so an invocation parked on r can still step forward.
	r.prev = nil
	r.linked = false
	b.count--
}

// UnregisterAndWait unregisters r and blocks until no invocation of r is in
// flight. It must not be called from inside r.
func (b *Bus[T]) UnregisterAndWait(r *Registration[T]) {
	b.Unregister(r)

	r.busyMu.Lock()
	for r.busy > 0 {
		r.idle.Wait()
	}
	r.busyMu.Unlock()
}

// Invoke calls every live registration with param, in order.
func (b *Bus[T]) Invoke(param T) {
	b.lock.RLock()
	r := b.head
	for {
		for r != nil && r.unregistering.Load() {
			r = r.next
		}
		if r == nil {
			b.lock.RUnlock()
			return
		}
		r.enter()
		b.lock.RUnlock()

		r.fn(param, r.context)

		b.lock.RLock()
		r.leave()
		r = r.next
	}
}

// Len returns the number of linked registrations.
func (b *Bus[T]) Len() int {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.count
}
