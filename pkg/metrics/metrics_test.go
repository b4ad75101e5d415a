package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_ShouldRecordIntoOwnRegistry(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.FetchStarted()
	m.FetchStarted()
	m.FetchFinished(0.5)
	m.RecordLookup("memory", true)
	m.RecordLookup("memory", false)
	m.RecordLookup("memory", false)
	m.RecordCacheIOError("get")
	m.RecordOperation("finished", "remote")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.InFlightFetches))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("memory", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("memory", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheIOErrors.WithLabelValues("get")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("finished", "remote")))
}

func TestMetrics_NilShouldBeNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.FetchStarted()
		m.FetchFinished(1)
		m.RecordLookup("disk", true)
		m.RecordCacheIOError("set")
		m.RecordOperation("failed", "none")
		m.SetMemoryCost(10)
		m.RecordEviction("memory")
		m.RecordBlacklisted()
	})
}
