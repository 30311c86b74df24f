package network

import (
	"sort"
	"time"

	"system-mirror/core/provider"
	"system-mirror/core/resolve"

	"go.uber.org/zap"
)

// Provider is the network provider instantiation.
type Provider = provider.Provider[Key, Record, Connection]

// Entry is a connection as returned to API and CLI consumers.
type Entry struct {
	Connection
	FirstSeen time.Time `json:"first_seen"`
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	PID      int32
	Protocol string
	Status   string
}

func (f Filter) match(c *Connection) bool {
	return (f.PID == 0 || c.PID == f.PID) &&
		(f.Protocol == "" || c.Protocol == f.Protocol) &&
		(f.Status == "" || c.Status == f.Status)
}

// Service owns the network provider and answers queries against it.
type Service struct {
	provider *Provider
	logger   *zap.Logger
}

// NewService builds the adapter and provider. processes may be nil.
func NewService(cfg provider.Config, source Source, resolver *resolve.Service, processes Processes, scheduler provider.Scheduler, logger *zap.Logger) *Service {
	adapter := NewAdapter(source, resolver, processes)
	return &Service{
		provider: provider.New[Key, Record, Connection](adapter, scheduler, cfg, logger),
		logger:   logger.Named("network"),
	}
}

// Provider returns the underlying provider.
func (s *Service) Provider() *Provider {
	return s.provider
}

// List returns the live connections matching f, ordered by pid then local
// endpoint.
func (s *Service) List(f Filter) []Entry {
	var entries []Entry
	s.provider.Enumerate(func(item *provider.Item[Key, Connection]) bool {
		if c := item.Value(); f.match(c) {
			entries = append(entries, Entry{Connection: *c, FirstSeen: item.AddedAt()})
		}
		return true
	})

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.PID != b.PID {
			return a.PID < b.PID
		}
		if a.LocalPort != b.LocalPort {
			return a.LocalPort < b.LocalPort
		}
		if a.Protocol != b.Protocol {
			return a.Protocol < b.Protocol
		}
		return a.RemoteAddr < b.RemoteAddr
	})
	return entries
}
