package manager

import (
	"net/url"
	"sync"

	"github.com/thebartekbanach/webimage/pkg/metrics"
)

// FailedURLs remembers URLs that failed permanently. Entries never expire.
type FailedURLs struct {
	lock    sync.RWMutex
	urls    map[string]struct{}
	metrics *metrics.Metrics
}

func NewFailedURLs(m *metrics.Metrics) *FailedURLs {
	return &FailedURLs{
		urls:    make(map[string]struct{}),
		metrics: m,
	}
}

func (f *FailedURLs) Add(u *url.URL) {
	key := u.String()

	f.lock.Lock()
	_, exists := f.urls[key]
	f.urls[key] = struct{}{}
	f.lock.Unlock()

	if !exists {
		f.metrics.RecordBlacklisted()
	}
}

func (f *FailedURLs) Contains(u *url.URL) bool {
	f.lock.RLock()
	defer f.lock.RUnlock()

	_, found := f.urls[u.String()]
	return found
}

func (f *FailedURLs) Len() int {
	f.lock.RLock()
	defer f.lock.RUnlock()

	return len(f.urls)
}
