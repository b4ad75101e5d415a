// Package metrics holds the prometheus collectors of the image pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "webimage"

// Metrics is safe to use as a nil pointer, every recording method is then a no-op.
type Metrics struct {
	InFlightFetches prometheus.Gauge
	CacheLookups    *prometheus.CounterVec
	CacheIOErrors   *prometheus.CounterVec
	Operations      *prometheus.CounterVec
	FetchDuration   prometheus.Histogram
	MemoryCost      prometheus.Gauge
	Evictions       *prometheus.CounterVec
	Blacklisted     prometheus.Counter
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		InFlightFetches: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fetches_in_flight",
			Help:      "Number of image fetches currently using the network",
		}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by tier and result",
		}, []string{"tier", "result"}),
		CacheIOErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_io_errors_total",
			Help:      "Persistent cache failures converted to misses",
		}, []string{"operation"}),
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Finished fetch operations by outcome and provenance",
		}, []string{"outcome", "from"}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of the network phase of fetch operations",
			Buckets:   prometheus.DefBuckets,
		}),
		MemoryCost: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_cache_cost_bytes",
			Help:      "Summed cost of images held in the memory cache",
		}),
		Evictions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_evictions_total",
			Help:      "Entries evicted from the cache by tier",
		}, []string{"tier"}),
		Blacklisted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failed_urls_total",
			Help:      "URLs added to the failed URL blacklist",
		}),
	}
}

func (m *Metrics) FetchStarted() {
	if m == nil {
		return
	}
	m.InFlightFetches.Inc()
}

func (m *Metrics) FetchFinished(seconds float64) {
	if m == nil {
		return
	}
	m.InFlightFetches.Dec()
	m.FetchDuration.Observe(seconds)
}

func (m *Metrics) RecordLookup(tier string, hit bool) {
	if m == nil {
		return
	}

	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(tier, result).Inc()
}

func (m *Metrics) RecordCacheIOError(operation string) {
	if m == nil {
		return
	}
	m.CacheIOErrors.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordOperation(outcome, from string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(outcome, from).Inc()
}

func (m *Metrics) SetMemoryCost(cost int64) {
	if m == nil {
		return
	}
	m.MemoryCost.Set(float64(cost))
}

func (m *Metrics) RecordEviction(tier string) {
	if m == nil {
		return
	}
	m.Evictions.WithLabelValues(tier).Inc()
}

func (m *Metrics) RecordBlacklisted() {
	if m == nil {
		return
	}
	m.Blacklisted.Inc()
}
