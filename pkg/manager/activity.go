package manager

import (
	"sync/atomic"
	"time"

	"github.com/thebartekbanach/webimage/pkg/metrics"
)

// NetworkActivity counts fetches that are currently downloading. Visible
// counts only the ones that asked for a network activity indicator.
type NetworkActivity struct {
	fetching atomic.Int64
	visible  atomic.Int64
	metrics  *metrics.Metrics
}

func NewNetworkActivity(m *metrics.Metrics) *NetworkActivity {
	return &NetworkActivity{metrics: m}
}

func (a *NetworkActivity) Start(visible bool) {
	a.fetching.Add(1)
	if visible {
		a.visible.Add(1)
	}
	a.metrics.FetchStarted()
}

func (a *NetworkActivity) Stop(visible bool, elapsed time.Duration) {
	a.fetching.Add(-1)
	if visible {
		a.visible.Add(-1)
	}
	a.metrics.FetchFinished(elapsed.Seconds())
}

func (a *NetworkActivity) Count() int64 {
	return a.fetching.Load()
}

func (a *NetworkActivity) Visible() int64 {
	return a.visible.Load()
}
