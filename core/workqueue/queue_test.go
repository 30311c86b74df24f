package workqueue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(name string, min, max int, idle time.Duration) Config {
	return Config{Name: name, MinimumWorkers: min, MaximumWorkers: max, IdleTimeout: idle}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"Valid", testConfig("a", 0, 3, time.Second), false},
		{"Zero max", testConfig("b", 0, 0, time.Second), true},
		{"Min above max", testConfig("c", 4, 2, time.Second), true},
		{"Negative min", testConfig("d", -1, 2, time.Second), true},
		{"Zero idle", testConfig("e", 0, 2, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQueue_RunsAllItems(t *testing.T) {
	q := New(testConfig("runs", 0, 3, 50*time.Millisecond), zap.NewNop())

	var ran atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		require.NoError(t, q.Enqueue(func(context.Context) {
			defer wg.Done()
			ran.Add(1)
		}))
	}
	wg.Wait()

	assert.Equal(t, int32(100), ran.Load())
	assert.LessOrEqual(t, q.Stats().Workers, 3)
	assert.NoError(t, q.Close(context.Background()))
}

func TestQueue_MaximumWorkers(t *testing.T) {
	q := New(testConfig("max", 0, 2, time.Second), zap.NewNop())
	defer q.Close(context.Background())

	var running, peak atomic.Int32
	release := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < 6; i++ {
		wg.Add(1)
		_ = q.Enqueue(func(context.Context) {
			defer wg.Done()
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			<-release
			running.Add(-1)
		})
	}

	assert.Eventually(t, func() bool { return q.Stats().Busy == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, 4, q.Stats().Pending)

	close(release)
	wg.Wait()
	assert.Equal(t, int32(2), peak.Load())
}

func TestQueue_IdleTimeout(t *testing.T) {
	q := New(testConfig("idle", 1, 3, 20*time.Millisecond), zap.NewNop())
	defer q.Close(context.Background())

	assert.Equal(t, 1, q.Stats().Workers)

	release := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		_ = q.Enqueue(func(context.Context) {
			defer wg.Done()
			<-release
		})
	}
	assert.Eventually(t, func() bool { return q.Stats().Workers == 3 }, time.Second, time.Millisecond)

	close(release)
	wg.Wait()

	// Extra workers leave; the minimum stays.
	assert.Eventually(t, func() bool { return q.Stats().Workers == 1 }, time.Second, 5*time.Millisecond)
}

func TestQueue_PanicRecovered(t *testing.T) {
	q := New(testConfig("panic", 0, 1, time.Second), zap.NewNop())
	defer q.Close(context.Background())

	done := make(chan struct{})
	_ = q.Enqueue(func(context.Context) { panic("boom") })
	_ = q.Enqueue(func(context.Context) { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("queue stopped after a panic")
	}
}

func TestQueue_Close(t *testing.T) {
	t.Run("Drains pending items", func(t *testing.T) {
		q := New(testConfig("drain", 0, 1, time.Second), zap.NewNop())

		var ran atomic.Int32
		for i := 0; i < 10; i++ {
			_ = q.Enqueue(func(context.Context) {
				time.Sleep(time.Millisecond)
				ran.Add(1)
			})
		}

		require.NoError(t, q.Close(context.Background()))
		assert.Equal(t, int32(10), ran.Load())
		assert.ErrorIs(t, q.Enqueue(func(context.Context) {}), ErrClosed)
		assert.NoError(t, q.Close(context.Background()))
	})

	t.Run("Deadline cancels items", func(t *testing.T) {
		q := New(testConfig("deadline", 0, 1, time.Second), zap.NewNop())

		cancelled := make(chan struct{})
		_ = q.Enqueue(func(ctx context.Context) {
			<-ctx.Done()
			close(cancelled)
		})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		err := q.Close(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		<-cancelled
	})
}

func TestNew_ClampsInvalidConfig(t *testing.T) {
	q := New(testConfig("clamp", 5, 0, 0), zap.NewNop())
	defer q.Close(context.Background())

	assert.Equal(t, 1, q.cfg.MaximumWorkers)
	assert.Equal(t, 1, q.cfg.MinimumWorkers)
	assert.Equal(t, time.Second, q.cfg.IdleTimeout)
}
