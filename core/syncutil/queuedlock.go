package syncutil

import (
	"sync"

	"github.com/gammazero/deque"
)

type waiter struct {
	exclusive bool
	ready     chan struct{}
}

// QueuedLock is a FIFO-fair reader/writer lock. The zero value is unlocked.
type QueuedLock struct {
	mu      sync.Mutex
	readers int
	writer  bool
	queue   deque.Deque[*waiter]
}

// Lock acquires the lock for writing.
func (l *QueuedLock) Lock() {
	l.mu.Lock()
	if !l.writer && l.readers == 0 && l.queue.Len() == 0 {
		l.writer = true
		l.mu.Unlock()
		return
	}
	w := &waiter{exclusive: true, ready: make(chan struct{})}
	l.queue.PushBack(w)
	l.mu.Unlock()

	<-w.ready
}

// TryLock acquires the lock for writing if that is possible without waiting.
func (l *QueuedLock) TryLock() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writer || l.readers > 0 || l.queue.Len() > 0 {
		return false
	}
	l.writer = true
	return true
}

// Unlock releases a write lock.
func (l *QueuedLock) Unlock() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.writer {
		panic("syncutil: unlock of unlocked QueuedLock")
	}
	l.writer = false
	l.grant()
}

// RLock acquires the lock for reading.
func (l *QueuedLock) RLock() {
	l.mu.Lock()
	if !l.writer && l.queue.Len() == 0 {
		l.readers++
		l.mu.Unlock()
		return
	}
	w := &waiter{ready: make(chan struct{})}
	l.queue.PushBack(w)
	l.mu.Unlock()

	<-w.ready
}

// TryRLock acquires the lock for reading if that is possible without waiting.
func (l *QueuedLock) TryRLock() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writer || l.queue.Len() > 0 {
		return false
	}
	l.readers++
	return true
}

// RUnlock releases a read lock.
func (l *QueuedLock) RUnlock() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.readers <= 0 {
		panic("syncutil: runlock of unlocked QueuedLock")
	}
	l.readers--
	if l.readers == 0 {
		l.grant()
	}
}

// grant wakes the head of the queue: one writer, or every reader up to the
// next queued writer. Must be called with mu held.
func (l *QueuedLock) grant() {
	for l.queue.Len() > 0 {
		w := l.queue.Front()
		if w.exclusive {
			if l.readers == 0 && !l.writer {
				l.writer = true
				l.queue.PopFront()
				close(w.ready)
			}
			return
		}
		if l.writer {
			return
		}
		l.readers++
		l.queue.PopFront()
		close(w.ready)
	}
}

// RLocker returns a sync.Locker that takes the read side.
func (l *QueuedLock) RLocker() sync.Locker {
	return (*rlocker)(l)
}

type rlocker QueuedLock

func (r *rlocker) Lock()   { (*QueuedLock)(r).RLock() }
func (r *rlocker) Unlock() { (*QueuedLock)(r).RUnlock() }
