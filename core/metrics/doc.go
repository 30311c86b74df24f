// Package metrics declares the Prometheus collectors exported by the monitor.
//
// Collectors are registered on the default registry at init time through
// promauto, and are labelled by queue or provider name so several providers
// can share one process. The HTTP API exposes them on /metrics.
package metrics
