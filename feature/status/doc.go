// Package status exposes the monitor's counters: GET /stats returns provider
// and worker pool statistics as JSON, GET /metrics serves the Prometheus
// registry.
package status
