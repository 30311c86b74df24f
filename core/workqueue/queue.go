package workqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"system-mirror/core/metrics"

	"github.com/gammazero/deque"
	"go.uber.org/zap"
)

// ErrClosed is returned by Enqueue after Close.
var ErrClosed = errors.New("workqueue: closed")

// Item is a unit of work. The context is cancelled when the queue is closed
// and the drain deadline has passed.
type Item func(ctx context.Context)

// Queue is a pool of workers consuming a FIFO of items.
type Queue struct {
	cfg    Config
	logger *zap.Logger

	mu      sync.Mutex
	items   deque.Deque[Item]
	workers int
	idle    int
	busy    int
	closed  bool

	wake   chan struct{}
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a queue and starts its minimum workers. Invalid bounds are
// clamped: the maximum to at least one, the minimum into [0, max].
func New(cfg Config, logger *zap.Logger) *Queue {
	if err := cfg.Validate(); err != nil {
		logger.Warn("Invalid work queue configuration, clamping", zap.Error(err))
		if cfg.MaximumWorkers < 1 {
			cfg.MaximumWorkers = 1
		}
		cfg.MinimumWorkers = min(max(cfg.MinimumWorkers, 0), cfg.MaximumWorkers)
		if cfg.IdleTimeout <= 0 {
			cfg.IdleTimeout = time.Second
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		cfg:    cfg,
		logger: logger.Named("workqueue").With(zap.String("queue", cfg.Name)),
		wake:   make(chan struct{}, cfg.MaximumWorkers),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}

	q.mu.Lock()
	for i := 0; i < cfg.MinimumWorkers; i++ {
		q.spawn()
	}
	q.mu.Unlock()

	return q
}

// Enqueue schedules item. It only fails once the queue is closed.
func (q *Queue) Enqueue(item Item) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	q.items.PushBack(item)
	metrics.QueuePending.WithLabelValues(q.cfg.Name).Set(float64(q.items.Len()))

	if q.idle > 0 {
		select {
		case q.wake <- struct{}{}:
		default:
			// Enough wake-ups are already pending.
		}
	}
	if q.items.Len() > q.idle && q.workers < q.cfg.MaximumWorkers {
		q.spawn()
	}

	return nil
}

// spawn starts a worker. Must be called with mu held.
func (q *Queue) spawn() {
	q.workers++
	metrics.QueueWorkers.WithLabelValues(q.cfg.Name).Set(float64(q.workers))
	q.wg.Add(1)
	go q.worker()
}

func (q *Queue) worker() {
	defer q.wg.Done()

	timer := time.NewTimer(q.cfg.IdleTimeout)
	timer.Stop()

	for {
		q.mu.Lock()
		if q.items.Len() > 0 {
			item := q.items.PopFront()
			q.busy++
			metrics.QueuePending.WithLabelValues(q.cfg.Name).Set(float64(q.items.Len()))
			metrics.QueueBusy.WithLabelValues(q.cfg.Name).Set(float64(q.busy))
			q.mu.Unlock()

			q.run(item)

			q.mu.Lock()
			q.busy--
			metrics.QueueBusy.WithLabelValues(q.cfg.Name).Set(float64(q.busy))
			q.mu.Unlock()
			continue
		}
		if q.closed {
			q.exit()
			q.mu.Unlock()
			return
		}
		q.idle++
		q.mu.Unlock()

		timedOut := false
		timer.Reset(q.cfg.IdleTimeout)
		select {
		case <-q.wake:
		case <-q.done:
		case <-timer.C:
			timedOut = true
		}
		timer.Stop()

		q.mu.Lock()
		q.idle--
		if timedOut && q.items.Len() == 0 && q.workers > q.cfg.MinimumWorkers {
			q.exit()
			q.mu.Unlock()
			q.logger.Debug("Worker exited after idle timeout")
			return
		}
		q.mu.Unlock()
	}
}

// exit accounts for a stopping worker. Must be called with mu held.
func (q *Queue) exit() {
	q.workers--
	metrics.QueueWorkers.WithLabelValues(q.cfg.Name).Set(float64(q.workers))
}

func (q *Queue) run(item Item) {
	defer func() {
		if r := recover(); r != nil {
			metrics.QueuePanics.WithLabelValues(q.cfg.Name).Inc()
			q.logger.Error("Work item panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	item(q.ctx)
}

// Stats is a point-in-time view of the pool.
type Stats struct {
	Pending int `json:"pending"`
	Workers int `json:"workers"`
	Idle    int `json:"idle"`
	Busy    int `json:"busy"`
}

// Stats returns the current pool counters.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	return Stats{
		Pending: q.items.Len(),
		Workers: q.workers,
		Idle:    q.idle,
		Busy:    q.busy,
	}
}

// Close stops accepting items, lets workers drain what is queued and waits for
// them to exit. If ctx expires first, the items' context is cancelled and
// ctx's error is returned.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.done)
	q.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		return fmt.Errorf("workqueue %q: close: %w", q.cfg.Name, ctx.Err())
	}
}
