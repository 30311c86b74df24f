package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueuePending tracks items waiting in each work queue.
	QueuePending = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "workqueue_pending_items",
		Help: "Number of work items waiting for a worker.",
	}, []string{"queue"})

	// QueueWorkers tracks the workers of each work queue.
	QueueWorkers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "workqueue_workers",
		Help: "Number of running workers.",
	}, []string{"queue"})

	// QueueBusy tracks the workers running an item.
	QueueBusy = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "workqueue_busy_workers",
		Help: "Number of workers currently running an item.",
	}, []string{"queue"})

	// QueuePanics counts work items that panicked.
	QueuePanics = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workqueue_panics_total",
		Help: "Number of work items that panicked.",
	}, []string{"queue"})

	// ProviderCycles counts completed update cycles.
	ProviderCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_cycles_total",
		Help: "Number of completed update cycles.",
	}, []string{"provider"})

	// ProviderCycleErrors counts cycles aborted by enumeration errors.
	ProviderCycleErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_cycle_errors_total",
		Help: "Number of update cycles aborted by an enumeration error.",
	}, []string{"provider"})

	// ProviderCycleSeconds observes the duration of update cycles.
	ProviderCycleSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "provider_cycle_duration_seconds",
		Help:    "Duration of a full update cycle.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	}, []string{"provider"})

	// ProviderItems tracks the registry size of each provider.
	ProviderItems = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "provider_items",
		Help: "Number of items in the provider registry.",
	}, []string{"provider"})

	// ProviderEvents counts notifications by kind.
	ProviderEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_events_total",
		Help: "Number of notifications raised, by kind.",
	}, []string{"provider", "kind"})

	// ProviderEnrichments counts merged enrichment tasks.
	ProviderEnrichments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_enrichments_total",
		Help: "Number of enrichment tasks merged, by stage and outcome.",
	}, []string{"provider", "stage", "outcome"})

	// CacheLookups counts cache hits and misses.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Number of cache lookups, by cache and result.",
	}, []string{"cache", "result"})
)
