package resolve

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"strings"
	"time"

	"system-mirror/core/cache"

	"go.uber.org/zap"
)

// ErrNotResolvable is returned for addresses that are never looked up.
var ErrNotResolvable = errors.New("resolve: address not resolvable")

// Resolver is the reverse lookup backend. *net.Resolver satisfies it.
type Resolver interface {
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

// Service resolves addresses to host names.
type Service struct {
	cfg      Config
	resolver Resolver
	cache    *cache.Cache[string]
	logger   *zap.Logger
}

// New creates a service backed by resolver. A nil resolver uses
// net.DefaultResolver.
func New(cfg Config, resolver Resolver, logger *zap.Logger) *Service {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}

	return &Service{
		cfg:      cfg,
		resolver: resolver,
		cache:    cache.New[string]("dns", cfg.Cache),
		logger:   logger.Named("resolve"),
	}
}

// Resolvable reports whether addr would be sent to the resolver.
func Resolvable(addr string) bool {
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return false
	}
	return !ip.IsLoopback() && !ip.IsUnspecified() && !ip.IsMulticast()
}

// Cached returns the host name for addr if it is already known.
func (s *Service) Cached(addr string) (string, bool) {
	host, ok, err := s.cache.Peek(addr)
	if !ok || err != nil {
		return "", false
	}
	return host, true
}

// Lookup returns the host name for addr.
func (s *Service) Lookup(ctx context.Context, addr string) (string, error) {
	if !s.cfg.Enabled || !Resolvable(addr) {
		return "", ErrNotResolvable
	}

	return s.cache.Get(ctx, addr, func(ctx context.Context) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()

		names, err := s.resolver.LookupAddr(ctx, addr)
		if err != nil {
			s.logger.Debug("Reverse lookup failed", zap.String("addr", addr), zap.Error(err))
			return "", err
		}
		if len(names) == 0 {
			return "", nil
		}
		return strings.TrimSuffix(names[0], "."), nil
	})
}

// Flush drops every cached name.
func (s *Service) Flush() {
	s.cache.Flush()
}

// Close releases the cache.
func (s *Service) Close() error {
	return s.cache.Close()
}
