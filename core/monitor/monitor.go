package monitor

import (
	"context"
	"errors"
	"sync"

	"system-mirror/core/provider"
	"system-mirror/core/workqueue"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrStopped is returned by Add and Run once Stop has been called.
var ErrStopped = errors.New("monitor stopped")

// Runnable is the part of a provider the monitor drives.
// *provider.Provider satisfies it for any adapter.
type Runnable interface {
	Name() string
	Run(ctx context.Context) error
	Terminate(ctx context.Context) error
	Stats() provider.Stats
}

// Monitor owns the shared enrichment queue and the providers scheduled on it.
type Monitor struct {
	queue  *workqueue.Queue
	logger *zap.Logger

	mu        sync.Mutex
	providers []Runnable
	stopped   bool
}

// New creates a monitor with its own worker pool.
func New(cfg workqueue.Config, logger *zap.Logger) *Monitor {
	return &Monitor{
		queue:  workqueue.New(cfg, logger),
		logger: logger.Named("monitor"),
	}
}

// Queue returns the shared scheduler providers should be created with.
func (m *Monitor) Queue() *workqueue.Queue {
	return m.queue
}

// Add registers a provider. It must be called before Run.
func (m *Monitor) Add(p Runnable) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return ErrStopped
	}
	m.providers = append(m.providers, p)
	m.logger.Debug("Provider registered", zap.String("provider", p.Name()))
	return nil
}

// Providers returns the registered providers in registration order.
func (m *Monitor) Providers() []Runnable {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Runnable(nil), m.providers...)
}

// Run drives every provider on its own goroutine until ctx is done or one of
// them fails.
func (m *Monitor) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return ErrStopped
	}
	providers := append([]Runnable(nil), m.providers...)
	m.mu.Unlock()

	m.logger.Info("Monitor started", zap.Int("providers", len(providers)))

	g, ctx := errgroup.WithContext(ctx)
	for _, p := range providers {
		g.Go(func() error {
			return p.Run(ctx)
		})
	}
	return g.Wait()
}

// Stop terminates every provider, then closes the queue. All failures are
// reported together.
func (m *Monitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	providers := append([]Runnable(nil), m.providers...)
	m.mu.Unlock()

	var result *multierror.Error
	for _, p := range providers {
		if err := p.Terminate(ctx); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := m.queue.Close(ctx); err != nil {
		result = multierror.Append(result, err)
	}

	if err := result.ErrorOrNil(); err != nil {
		m.logger.Warn("Monitor stopped with errors", zap.Error(err))
		return err
	}
	m.logger.Info("Monitor stopped")
	return nil
}

// Stats returns the counters of every provider.
func (m *Monitor) Stats() []provider.Stats {
	providers := m.Providers()
	stats := make([]provider.Stats, 0, len(providers))
	for _, p := range providers {
		stats = append(stats, p.Stats())
	}
	return stats
}
