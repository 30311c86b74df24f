package process

import (
	"sort"
	"time"

	"system-mirror/core/cache"
	"system-mirror/core/provider"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Provider is the process provider instantiation.
type Provider = provider.Provider[int32, Record, Process]

// Entry is a process as returned to API and CLI consumers.
type Entry struct {
	Process
	FirstSeen  time.Time `json:"first_seen"`
	AddedCycle uint64    `json:"added_cycle"`
}

// Sort orders for List.
const (
	SortPID = "pid"
	SortCPU = "cpu"
	SortIO  = "io"
)

// Service owns the process provider and answers queries against it.
type Service struct {
	adapter  *Adapter
	provider *Provider
	digests  *cache.Cache[string]
	logger   *zap.Logger
}

// NewService builds the adapter and provider. Enrichment runs on scheduler.
func NewService(cfg provider.Config, digest cache.Config, source Source, fs afero.Fs, scheduler provider.Scheduler, logger *zap.Logger) *Service {
	digests := cache.New[string]("digest", digest)
	adapter := NewAdapter(source, fs, digests, logger)
	return &Service{
		adapter:  adapter,
		provider: provider.New[int32, Record, Process](adapter, scheduler, cfg, logger),
		digests:  digests,
		logger:   logger.Named("process"),
	}
}

// Provider returns the underlying provider.
func (s *Service) Provider() *Provider {
	return s.provider
}

// List returns a copy of every live process ordered by order. A positive
// limit truncates the result.
func (s *Service) List(order string, limit int) []Entry {
	var entries []Entry
	s.provider.Enumerate(func(item *provider.Item[int32, Process]) bool {
		entries = append(entries, entryOf(item, *item.Value()))
		return true
	})

	switch order {
	case SortCPU:
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].CPUUsage != entries[j].CPUUsage {
				return entries[i].CPUUsage > entries[j].CPUUsage
			}
			return entries[i].PID < entries[j].PID
		})
	case SortIO:
		sort.SliceStable(entries, func(i, j int) bool {
			if a, b := entries[i].IOBytes(), entries[j].IOBytes(); a != b {
				return a > b
			}
			return entries[i].PID < entries[j].PID
		})
	default:
		sort.Slice(entries, func(i, j int) bool { return entries[i].PID < entries[j].PID })
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// Get returns the live process with pid.
func (s *Service) Get(pid int32) (Entry, bool) {
	ref, ok := s.provider.Lookup(pid)
	if !ok {
		return Entry{}, false
	}
	defer ref.Dereference()

	item := ref.Value()
	return entryOf(item, item.Load()), true
}

// Name returns the name of the live process with pid.
func (s *Service) Name(pid int32) (string, bool) {
	ref, ok := s.provider.Lookup(pid)
	if !ok {
		return "", false
	}
	defer ref.Dereference()
	return ref.Value().Load().Name, true
}

// Maximums returns the busiest processes of the last cycle.
func (s *Service) Maximums() Maximums {
	return s.adapter.Maximums()
}

// Close releases the digest cache. The provider is terminated by its owner.
func (s *Service) Close() error {
	return s.digests.Close()
}

func entryOf(item *provider.Item[int32, Process], v Process) Entry {
	return Entry{Process: v, FirstSeen: item.AddedAt(), AddedCycle: item.AddedCycle()}
}
