package cmd

import (
	"context"

	"system-mirror/core/config"
	"system-mirror/core/monitor"
	"system-mirror/core/resolve"
	"system-mirror/feature/network"
	"system-mirror/feature/process"
	"system-mirror/feature/thread"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// services wires the providers onto one monitor.
type services struct {
	monitor   *monitor.Monitor
	resolver  *resolve.Service
	processes *process.Service
	network   *network.Service
	threads   *thread.Manager
}

// newServices builds every provider against the local machine. Disabled
// providers are built but not registered with the monitor, so commands can
// still drive them directly.
func newServices(cfg *config.Config, logg *zap.Logger) *services {
	s := &services{
		monitor:  monitor.New(cfg.WorkQueue, logg),
		resolver: resolve.New(cfg.Resolve, nil, logg),
	}
	queue := s.monitor.Queue()
	fs := afero.NewOsFs()

	s.processes = process.NewService(cfg.Process, cfg.Digest, process.NewGopsutilSource(), fs, queue, logg)
	s.network = network.NewService(cfg.Network, network.NewGopsutilSource(), s.resolver, s.processes.Provider(), queue, logg)
	s.threads = thread.NewManager(cfg.Thread, thread.NewGopsutilSource(), fs, s.processes, queue, logg)

	if cfg.Process.Enabled {
		_ = s.monitor.Add(s.processes.Provider())
	}
	if cfg.Network.Enabled {
		_ = s.monitor.Add(s.network.Provider())
	}
	if cfg.Thread.Enabled {
		_ = s.monitor.Add(s.threads)
	}
	return s
}

// close stops the monitor and releases the caches.
func (s *services) close(ctx context.Context) error {
	var result *multierror.Error
	if err := s.monitor.Stop(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	// Unregistered providers are terminated here; repeated calls are no-ops.
	for _, terminate := range []func(context.Context) error{
		s.processes.Provider().Terminate,
		s.network.Provider().Terminate,
		s.threads.Terminate,
	} {
		if err := terminate(ctx); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := s.processes.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := s.resolver.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
