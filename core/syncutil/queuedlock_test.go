package syncutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueuedLock_Exclusive(t *testing.T) {
	var lock QueuedLock
	lock.Lock()

	assert.False(t, lock.TryLock())
	assert.False(t, lock.TryRLock())

	lock.Unlock()
	assert.True(t, lock.TryLock())
	lock.Unlock()
}

func TestQueuedLock_SharedReaders(t *testing.T) {
	var lock QueuedLock
	lock.RLock()
	assert.True(t, lock.TryRLock())
	assert.False(t, lock.TryLock())

	lock.RUnlock()
	lock.RUnlock()
	assert.True(t, lock.TryLock())
	lock.Unlock()
}

func TestQueuedLock_UnlockPanics(t *testing.T) {
	var lock QueuedLock
	assert.Panics(t, func() { lock.Unlock() })
	assert.Panics(t, func() { lock.RUnlock() })
}

func TestQueuedLock_WriterBlocksLaterReaders(t *testing.T) {
	var lock QueuedLock
	lock.RLock()

	writerIn := make(chan struct{})
	go func() {
		lock.Lock()
		close(writerIn)
		time.Sleep(20 * time.Millisecond)
		lock.Unlock()
	}()

	// Wait for the writer to queue behind the first reader.
	assert.Eventually(t, func() bool {
		lock.mu.Lock()
		defer lock.mu.Unlock()
		return lock.queue.Len() == 1
	}, time.Second, time.Millisecond)

	readerIn := make(chan struct{})
	go func() {
		lock.RLock()
		close(readerIn)
		lock.RUnlock()
	}()

	lock.RUnlock()

	<-writerIn
	select {
	case <-readerIn:
		t.Fatal("reader admitted while writer held the lock")
	default:
	}
	<-readerIn
}

func TestQueuedLock_FIFO(t *testing.T) {
	var lock QueuedLock
	lock.Lock()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lock.Lock()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			lock.Unlock()
		}(i)
		// Let goroutine i queue before i+1.
		queued := i + 1
		assert.Eventually(t, func() bool {
			lock.mu.Lock()
			defer lock.mu.Unlock()
			return lock.queue.Len() == queued
		}, time.Second, time.Millisecond)
	}

	lock.Unlock()
	wg.Wait()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestQueuedLock_Concurrent(t *testing.T) {
	var lock QueuedLock
	counter := 0
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			lock.Lock()
			counter++
			lock.Unlock()
		}()
		go func() {
			defer wg.Done()
			lock.RLock()
			_ = counter
			lock.RUnlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestQueuedLock_RLocker(t *testing.T) {
	var lock QueuedLock
	l := lock.RLocker()
	l.Lock()
	assert.True(t, lock.TryRLock())
	lock.RUnlock()
	l.Unlock()
	assert.True(t, lock.TryLock())
}
