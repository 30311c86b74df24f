package thread

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"system-mirror/core/provider"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultIdleTimeout is how long an unused thread provider is kept.
const DefaultIdleTimeout = time.Minute

// ErrTerminated is returned by Open after Terminate.
var ErrTerminated = errors.New("thread manager terminated")

// Provider is the thread provider instantiation.
type Provider = provider.Provider[int32, Record, Thread]

// Names resolves a pid to its process name.
type Names interface {
	Name(pid int32) (string, bool)
}

// Entry is a thread as returned to API and CLI consumers.
type Entry struct {
	Thread
	Process   string    `json:"process,omitempty"`
	FirstSeen time.Time `json:"first_seen"`
}

type tracked struct {
	provider *Provider
	lastUsed time.Time
}

// Manager creates thread providers on demand, keeps them updated while they
// are in use and terminates them once idle.
type Manager struct {
	cfg       provider.Config
	idle      time.Duration
	source    Source
	fs        afero.Fs
	proc      string
	names     Names
	scheduler provider.Scheduler
	logger    *zap.Logger
	now       func() time.Time

	mu          sync.Mutex
	providers   map[int32]*tracked
	terminating bool
	opening     singleflight.Group
}

// NewManager creates a manager. names may be nil.
func NewManager(cfg provider.Config, source Source, fs afero.Fs, names Names, scheduler provider.Scheduler, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:       cfg,
		idle:      DefaultIdleTimeout,
		source:    source,
		fs:        fs,
		proc:      "/proc",
		names:     names,
		scheduler: scheduler,
		logger:    logger.Named("thread"),
		now:       time.Now,
		providers: make(map[int32]*tracked),
	}
}

// Name identifies the manager in the monitor.
func (m *Manager) Name() string {
	return "thread"
}

// Open returns the provider of pid, creating it and running its first cycle
// if needed. Concurrent opens of the same pid share one first cycle.
func (m *Manager) Open(ctx context.Context, pid int32) (*Provider, error) {
	if p, ok, err := m.lookup(pid); ok || err != nil {
		return p, err
	}

	v, err, _ := m.opening.Do(strconv.Itoa(int(pid)), func() (any, error) {
		if p, ok, err := m.lookup(pid); ok || err != nil {
			return p, err
		}

		adapter := NewAdapter(pid, m.source, m.fs, m.proc)
		p := provider.New[int32, Record, Thread](adapter, m.scheduler, m.cfg, m.logger.With(zap.Int32("pid", pid)))
		if err := p.Update(ctx); err != nil {
			_ = p.Terminate(ctx)
			return nil, fmt.Errorf("threads of %d: %w", pid, err)
		}

		m.mu.Lock()
		if m.terminating {
			m.mu.Unlock()
			_ = p.Terminate(ctx)
			return nil, ErrTerminated
		}
		m.providers[pid] = &tracked{provider: p, lastUsed: m.now()}
		m.mu.Unlock()

		m.logger.Debug("Thread provider opened", zap.Int32("pid", pid))
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Provider), nil
}

func (m *Manager) lookup(pid int32) (*Provider, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.terminating {
		return nil, false, ErrTerminated
	}
	if t, ok := m.providers[pid]; ok {
		t.lastUsed = m.now()
		return t.provider, true, nil
	}
	return nil, false, nil
}

// List returns the threads of pid ordered by tid. An already open provider is
// refreshed first.
func (m *Manager) List(ctx context.Context, pid int32) ([]Entry, error) {
	m.mu.Lock()
	_, existed := m.providers[pid]
	m.mu.Unlock()

	p, err := m.Open(ctx, pid)
	if err != nil {
		return nil, err
	}
	if existed {
		if err := p.Update(ctx); err != nil && !errors.Is(err, provider.ErrCycleInProgress) {
			return nil, err
		}
	}

	var process string
	if m.names != nil {
		process, _ = m.names.Name(pid)
	}

	var entries []Entry
	p.Enumerate(func(item *provider.Item[int32, Thread]) bool {
		entries = append(entries, Entry{Thread: *item.Value(), Process: process, FirstSeen: item.AddedAt()})
		return true
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].TID < entries[j].TID })
	return entries, nil
}

// Close terminates the provider of pid.
func (m *Manager) Close(ctx context.Context, pid int32) error {
	m.mu.Lock()
	t, ok := m.providers[pid]
	delete(m.providers, pid)
	m.mu.Unlock()

	if !ok {
		return nil
	}
	return t.provider.Terminate(ctx)
}

// Len returns the number of open providers.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.providers)
}

// Sweep terminates providers unused for longer than the idle timeout and
// returns how many were closed.
func (m *Manager) Sweep(ctx context.Context) int {
	cutoff := m.now().Add(-m.idle)

	m.mu.Lock()
	var stale []*Provider
	for pid, t := range m.providers {
		if t.lastUsed.Before(cutoff) {
			stale = append(stale, t.provider)
			delete(m.providers, pid)
		}
	}
	m.mu.Unlock()

	for _, p := range stale {
		if err := p.Terminate(ctx); err != nil {
			m.logger.Warn("Failed to terminate idle thread provider", zap.Error(err))
		}
	}
	return len(stale)
}

// Run updates open providers every interval and sweeps idle ones until ctx
// is done. Providers whose process exited are closed.
func (m *Manager) Run(ctx context.Context) error {
	interval := m.cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		m.Sweep(ctx)

		m.mu.Lock()
		open := make(map[int32]*Provider, len(m.providers))
		for pid, t := range m.providers {
			open[pid] = t.provider
		}
		m.mu.Unlock()

		for pid, p := range open {
			err := p.Update(ctx)
			if err == nil || errors.Is(err, provider.ErrCycleInProgress) || errors.Is(err, provider.ErrTerminated) {
				continue
			}
			m.logger.Debug("Closing thread provider", zap.Int32("pid", pid), zap.Error(err))
			_ = m.Close(ctx, pid)
		}
	}
}

// Terminate closes every provider and rejects further Open calls.
func (m *Manager) Terminate(ctx context.Context) error {
	m.mu.Lock()
	m.terminating = true
	providers := m.providers
	m.providers = make(map[int32]*tracked)
	m.mu.Unlock()

	var result *multierror.Error
	for _, t := range providers {
		if err := t.provider.Terminate(ctx); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Stats aggregates the counters of the open providers.
func (m *Manager) Stats() provider.Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := provider.Stats{Name: m.Name()}
	for _, t := range m.providers {
		ps := t.provider.Stats()
		s.Cycles += ps.Cycles
		s.Items += ps.Items
		s.LiveItems += ps.LiveItems
		if ps.LastRun.After(s.LastRun) {
			s.LastRun = ps.LastRun
		}
		if ps.LastError != "" {
			s.LastError = ps.LastError
		}
	}
	return s
}
